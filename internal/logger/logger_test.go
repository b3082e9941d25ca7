package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw/internal/logger"
)

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf)

	ctx := t.Context()
	log.Debug(ctx, "skipped item", map[string]string{"section": "agents"})

	require.Contains(t, buf.String(), "\"level\":\"DEBUG\",\"msg\":\"skipped item\",\"meta\":{\"section\":\"agents\"}")
}

func TestLoggerError(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf)

	ctx := t.Context()
	log.Error(ctx, errors.New("store unavailable"), map[string]string{"operation": "ping"})

	require.Contains(t, buf.String(), "\"level\":\"ERROR\",\"msg\":\"store unavailable\",\"meta\":{\"operation\":\"ping\"}")
}
