package openclaw_test

import (
	"testing"

	"github.com/luno/jettison/jtest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/internal/metrics"
)

func TestOperationMetrics(t *testing.T) {
	metrics.Reset()
	h := newHarness(t)

	inst := registerInstance(t, h)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreWrites.WithLabelValues("register_instance")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.RecordsCreated.WithLabelValues(openclaw.KindInstance)))

	_, err := h.manager.ImportConfig(h.ctx, inst.ID, openclaw.Config{
		"agents":   []any{"not an object", map[string]any{"name": "bot", "model": "gpt-4"}},
		"uiConfig": "not an object",
	})
	jtest.RequireNil(t, err)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.DecomposeSkipped.WithLabelValues("agents")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.DecomposeSkipped.WithLabelValues("uiConfig")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.RecordsCreated.WithLabelValues(openclaw.KindAgent)))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreWrites.WithLabelValues("import_config")))

	_, err = h.manager.GetInstance(h.ctx, "missing")
	jtest.Require(t, openclaw.ErrRecordNotFound, err)
	require.Equal(t, 0, testutil.CollectAndCount(metrics.StoreErrors))
}
