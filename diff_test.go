package openclaw_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw"
)

func TestDiffConfigsIdentical(t *testing.T) {
	configs := []openclaw.Config{
		{},
		fullConfig(),
		{
			"agents":        []any{map[string]any{"name": "bot", "model": "gpt-4"}},
			"sessionConfig": map[string]any{"maxSessions": 10},
			"uiConfig":      "scalar",
		},
	}

	for _, c := range configs {
		d := openclaw.DiffConfigs(c, c)
		require.True(t, d.Empty())
		require.Equal(t, map[string]any{}, d.Added)
		require.Equal(t, map[string]any{}, d.Removed)
		require.Equal(t, map[string]map[string]openclaw.FieldChange{}, d.Changed)
	}
}

func TestDiffConfigsArrays(t *testing.T) {
	a := openclaw.Config{
		"agents": []any{map[string]any{"name": "alpha"}},
	}
	b := openclaw.Config{
		"agents": []any{map[string]any{"name": "alpha"}, map[string]any{"name": "beta"}},
	}

	d := openclaw.DiffConfigs(a, b)
	require.Equal(t, []any{map[string]any{"name": "beta"}}, d.Added["agents"])
	require.NotContains(t, d.Removed, "agents")
	require.Empty(t, d.Changed)

	d = openclaw.DiffConfigs(b, a)
	require.Equal(t, []any{map[string]any{"name": "beta"}}, d.Removed["agents"])
	require.NotContains(t, d.Added, "agents")
}

func TestDiffConfigsArrayIdentity(t *testing.T) {
	testCases := []struct {
		name    string
		a, b    []any
		added   []any
		removed []any
	}{
		{
			name: "same name different fields is not a change",
			a:    []any{map[string]any{"name": "bot", "model": "gpt-4"}},
			b:    []any{map[string]any{"name": "bot", "model": "gpt-5"}},
		},
		{
			name:    "rename is remove and add",
			a:       []any{map[string]any{"name": "bot"}},
			b:       []any{map[string]any{"name": "robot"}},
			added:   []any{map[string]any{"name": "robot"}},
			removed: []any{map[string]any{"name": "bot"}},
		},
		{
			name: "unnamed items match on canonical form",
			a:    []any{map[string]any{"url": "https://a", "events": []any{"x"}}},
			b:    []any{map[string]any{"events": []any{"x"}, "url": "https://a"}},
		},
		{
			name:    "unnamed items that differ",
			a:       []any{map[string]any{"url": "https://a"}},
			b:       []any{map[string]any{"url": "https://b"}},
			added:   []any{map[string]any{"url": "https://b"}},
			removed: []any{map[string]any{"url": "https://a"}},
		},
		{
			name: "reordering is not a change",
			a:    []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
			b:    []any{map[string]any{"name": "b"}, map[string]any{"name": "a"}},
		},
		{
			name:  "missing section counts as empty",
			a:     nil,
			b:     []any{map[string]any{"name": "a"}},
			added: []any{map[string]any{"name": "a"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := openclaw.Config{}
			if tc.a != nil {
				a["hooks"] = tc.a
			}
			b := openclaw.Config{"hooks": tc.b}

			d := openclaw.DiffConfigs(a, b)
			if tc.added == nil {
				require.NotContains(t, d.Added, "hooks")
			} else {
				require.Equal(t, tc.added, d.Added["hooks"])
			}

			if tc.removed == nil {
				require.NotContains(t, d.Removed, "hooks")
			} else {
				require.Equal(t, tc.removed, d.Removed["hooks"])
			}
		})
	}
}

func TestDiffConfigsSingletons(t *testing.T) {
	d := openclaw.DiffConfigs(
		openclaw.Config{"sessionConfig": map[string]any{"maxSessions": 5}},
		openclaw.Config{"sessionConfig": map[string]any{"maxSessions": 10}},
	)
	require.Equal(t, openclaw.FieldChange{From: 5, To: 10}, d.Changed["sessionConfig"]["maxSessions"])
	require.Empty(t, d.Added)
	require.Empty(t, d.Removed)

	d = openclaw.DiffConfigs(
		openclaw.Config{},
		openclaw.Config{"sessionConfig": map[string]any{"maxSessions": 10}},
	)
	require.Equal(t, map[string]any{"maxSessions": 10}, d.Added["sessionConfig"])

	d = openclaw.DiffConfigs(
		openclaw.Config{"gatewayConfig": map[string]any{"port": 8080}, "talkConfig": map[string]any{}},
		openclaw.Config{"talkConfig": nil},
	)
	require.Equal(t, map[string]any{"port": 8080}, d.Removed["gatewayConfig"])
	require.Equal(t, map[string]any{}, d.Removed["talkConfig"])

	d = openclaw.DiffConfigs(
		openclaw.Config{"gatewayConfig": map[string]any{"port": 8080, "host": "a", "keyPath": nil}},
		openclaw.Config{"gatewayConfig": map[string]any{"port": float64(8080), "tlsEnabled": true}},
	)
	require.Equal(t, map[string]openclaw.FieldChange{
		"host":       {From: "a", To: nil},
		"tlsEnabled": {From: nil, To: true},
	}, d.Changed["gatewayConfig"])
}

func TestDiffConfigsNestedCanonical(t *testing.T) {
	a := openclaw.Config{"discoveryConfig": map[string]any{"meta": map[string]any{"a": 1, "b": []any{1, 2}}}}
	b := openclaw.Config{"discoveryConfig": map[string]any{"meta": map[string]any{"b": []any{1, 2}, "a": 1}}}
	require.True(t, openclaw.DiffConfigs(a, b).Empty())

	c := openclaw.Config{"discoveryConfig": map[string]any{"meta": map[string]any{"b": []any{2, 1}, "a": 1}}}
	require.Contains(t, openclaw.DiffConfigs(a, c).Changed["discoveryConfig"], "meta")
}

func TestDiffConfigsNonObjectSingleton(t *testing.T) {
	d := openclaw.DiffConfigs(
		openclaw.Config{"uiConfig": "old"},
		openclaw.Config{"uiConfig": map[string]any{"port": 1}},
	)
	require.Equal(t, "old", d.Removed["uiConfig"])
	require.Equal(t, map[string]any{"port": 1}, d.Added["uiConfig"])
	require.Empty(t, d.Changed)
}

func TestDiffSnapshots(t *testing.T) {
	kind, _ := openclaw.NewDefaultRegistry().BySlug(openclaw.KindSnapshot)
	fields := openclaw.Fields{"instanceId": "i", "agentCount": 2, "config": `{"a":1}`}

	a, _ := openclaw.NewRecord(kind, "first", fields, epoch)
	b, _ := openclaw.NewRecord(kind, "second", openclaw.Fields{"instanceId": "i", "agentCount": 2, "config": `{"a":1}`}, epoch)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, map[string]openclaw.FieldChange{}, openclaw.DiffSnapshots(a, b))

	b.Fields["agentCount"] = 3
	b.Fields["modelCount"] = 1
	delete(b.Fields, "config")

	require.Equal(t, map[string]openclaw.FieldChange{
		"agentCount": {From: 2, To: 3},
		"modelCount": {From: nil, To: 1},
		"config":     {From: `{"a":1}`, To: nil},
	}, openclaw.DiffSnapshots(a, b))
}
