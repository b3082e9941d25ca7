package openclaw_test

import (
	"context"
	"io"
	"testing"
	"time"

	clock_testing "k8s.io/utils/clock/testing"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/memstore"
	"github.com/luno/openclaw/internal/logger"
)

var epoch = time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)

type harness struct {
	ctx     context.Context
	manager *openclaw.Manager
	store   *memstore.Store
	clock   *clock_testing.FakeClock
}

func newHarness(t *testing.T, opts ...openclaw.Option) harness {
	t.Helper()

	store := memstore.New()
	clock := clock_testing.NewFakeClock(epoch)
	opts = append([]openclaw.Option{
		openclaw.WithClock(clock),
		openclaw.WithLogger(logger.New(io.Discard)),
		openclaw.WithDebugMode(),
	}, opts...)

	return harness{
		ctx:     context.Background(),
		manager: openclaw.New(store, opts...),
		store:   store,
		clock:   clock,
	}
}
