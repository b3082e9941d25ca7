package memnotifier_test

import (
	"context"
	"testing"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/memnotifier"
)

func TestNotifier(t *testing.T) {
	n := memnotifier.New()
	require.Empty(t, n.Events())

	ctx := context.Background()
	jtest.RequireNil(t, n.Notify(ctx, openclaw.Event{Type: openclaw.EventInstanceRegistered, RecordID: "a"}))
	jtest.RequireNil(t, n.Notify(ctx, openclaw.Event{Type: openclaw.EventInstanceRemoved, RecordID: "a"}))

	events := n.Events()
	require.Len(t, events, 2)
	require.Equal(t, openclaw.EventInstanceRemoved, events[1].Type)

	events[0].RecordID = "changed"
	require.Equal(t, "a", n.Events()[0].RecordID)
}
