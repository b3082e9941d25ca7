package gatewayws_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/luno/jettison/jtest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/gatewayws"
	"github.com/luno/openclaw/adapters/memstore"
	"github.com/luno/openclaw/internal/logger"
	"github.com/luno/openclaw/internal/metrics"
)

type fakeGateway struct {
	reject    bool
	responses map[string]any

	mu      sync.Mutex
	auth    string
	connect map[string]any
	calls   []string
}

var upgrader = websocket.Upgrader{}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	f.mu.Lock()
	f.auth = r.Header.Get("Authorization")
	f.mu.Unlock()

	err = conn.WriteJSON(map[string]any{
		"type": "connect.challenge",
		"payload": map[string]any{
			"nonce":     "n-1",
			"timestamp": "1743588000000",
		},
	})
	if err != nil {
		return
	}

	var connect struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := conn.ReadJSON(&connect); err != nil {
		return
	}

	f.mu.Lock()
	f.connect = connect.Payload
	f.mu.Unlock()

	if f.reject {
		_ = conn.WriteJSON(map[string]any{
			"type":    "hello-error",
			"payload": map[string]any{"reason": "unknown device"},
		})
		return
	}

	err = conn.WriteJSON(map[string]any{
		"type":    "hello-ok",
		"payload": map[string]any{"deviceToken": "device-1"},
	})
	if err != nil {
		return
	}

	for {
		var call struct {
			Type   string         `json:"type"`
			ID     string         `json:"id"`
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
		}
		if err := conn.ReadJSON(&call); err != nil {
			return
		}

		f.mu.Lock()
		f.calls = append(f.calls, call.Method)
		f.mu.Unlock()

		payload, ok := f.responses[call.Method]
		if !ok {
			continue
		}

		err := conn.WriteJSON(map[string]any{
			"type":    "result",
			"id":      call.ID,
			"payload": payload,
		})
		if err != nil {
			return
		}
	}
}

func (f *fakeGateway) connectPayload() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connect
}

func (f *fakeGateway) authorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth
}

func (f *fakeGateway) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func serve(t *testing.T, f *fakeGateway) string {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newDialer(opts ...gatewayws.Option) *gatewayws.Dialer {
	return gatewayws.New(append([]gatewayws.Option{gatewayws.WithLogger(logger.New(io.Discard))}, opts...)...)
}

func presenceResponses() map[string]any {
	return map[string]any{
		"agents.list":     map[string]any{"items": []any{map[string]any{"name": "main"}}},
		"channels.list":   map[string]any{"items": []any{}},
		"models.list":     "not an object",
		"system-presence": map[string]any{"version": "1.4.2"},
	}
}

func TestPresence(t *testing.T) {
	metrics.Reset()
	f := &fakeGateway{responses: presenceResponses()}
	url := serve(t, f)

	gw, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url, Token: "secret"})
	jtest.RequireNil(t, err)
	t.Cleanup(func() { gw.Close() })

	p, err := gw.Presence(t.Context())
	jtest.RequireNil(t, err)

	require.Equal(t, openclaw.Presence{
		Agents:   []any{map[string]any{"name": "main"}},
		Channels: []any{},
		Models:   []any{},
		Config:   map[string]any{"version": "1.4.2"},
	}, p)

	require.Equal(t, "Bearer secret", f.authorization())
	require.ElementsMatch(t, []string{"agents.list", "channels.list", "models.list", "system-presence"}, f.methods())
	require.Equal(t, "device-1", gw.DeviceToken())
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.PresenceFailures.WithLabelValues("models.list")))
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.PresenceFailures.WithLabelValues("agents.list")))
}

func TestConnectPayload(t *testing.T) {
	f := &fakeGateway{}
	url := serve(t, f)

	gw, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url})
	jtest.RequireNil(t, err)
	jtest.RequireNil(t, gw.Close())

	require.Equal(t, map[string]any{
		"role":      "operator",
		"scopes":    []any{"operator.read"},
		"signature": "",
		"timestamp": "1743588000000",
		"nonce":     "n-1",
	}, f.connectPayload())
	require.Empty(t, f.authorization())
}

func TestConnectSendsDeviceToken(t *testing.T) {
	f := &fakeGateway{}
	url := serve(t, f)

	gw, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url, DeviceToken: "device-0"})
	jtest.RequireNil(t, err)
	jtest.RequireNil(t, gw.Close())

	require.Equal(t, "device-0", f.connectPayload()["deviceToken"])
	require.Equal(t, "device-1", gw.DeviceToken())
}

func TestList(t *testing.T) {
	url := serve(t, &fakeGateway{responses: presenceResponses()})

	gw, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url})
	jtest.RequireNil(t, err)
	t.Cleanup(func() { gw.Close() })

	agents, err := gw.List(t.Context(), openclaw.ListAgents)
	jtest.RequireNil(t, err)
	require.Equal(t, []any{map[string]any{"name": "main"}}, agents)

	channels, err := gw.List(t.Context(), openclaw.ListChannels)
	jtest.RequireNil(t, err)
	require.Equal(t, []any{}, channels)

	_, err = gw.List(t.Context(), openclaw.ListModels)
	require.Error(t, err)
}

func TestConnectSignature(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	jtest.RequireNil(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	f := &fakeGateway{}
	url := serve(t, f)

	gw, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url, DevicePrivateKey: string(keyPEM)})
	jtest.RequireNil(t, err)
	jtest.RequireNil(t, gw.Close())

	sig, err := base64.StdEncoding.DecodeString(f.connectPayload()["signature"].(string))
	jtest.RequireNil(t, err)

	digest := sha256.Sum256([]byte("n-1:1743588000000"))
	jtest.RequireNil(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig))
}

func TestHandshakeRejected(t *testing.T) {
	url := serve(t, &fakeGateway{reject: true})

	_, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url})
	jtest.Require(t, openclaw.ErrHandshakeRejected, err)
}

func TestDialUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err := newDialer(gatewayws.WithHandshakeTimeout(time.Second)).Dial(t.Context(), openclaw.GatewayTarget{URL: url})
	require.Error(t, err)
}

func TestUnansweredQueryIsEmpty(t *testing.T) {
	metrics.Reset()
	responses := presenceResponses()
	delete(responses, "system-presence")

	url := serve(t, &fakeGateway{responses: responses})

	gw, err := newDialer(gatewayws.WithCallTimeout(50*time.Millisecond)).Dial(t.Context(), openclaw.GatewayTarget{URL: url})
	jtest.RequireNil(t, err)
	t.Cleanup(func() { gw.Close() })

	p, err := gw.Presence(t.Context())
	jtest.RequireNil(t, err)
	require.Equal(t, map[string]any{}, p.Config)
	require.Len(t, p.Agents, 1)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.PresenceFailures.WithLabelValues("system-presence")))
}

func TestCallAfterClose(t *testing.T) {
	url := serve(t, &fakeGateway{responses: presenceResponses()})

	gw, err := newDialer().Dial(t.Context(), openclaw.GatewayTarget{URL: url})
	jtest.RequireNil(t, err)
	jtest.RequireNil(t, gw.Close())
	jtest.RequireNil(t, gw.Close())

	_, err = gw.(*gatewayws.Gateway).Call(t.Context(), "agents.list", nil)
	require.Error(t, err)
}

func TestCaptureFromGateway(t *testing.T) {
	f := &fakeGateway{responses: presenceResponses()}
	url := serve(t, f)

	ctx := t.Context()
	m := openclaw.New(memstore.New(),
		openclaw.WithLogger(logger.New(io.Discard)),
		openclaw.WithDialer(newDialer()),
	)

	inst, err := m.RegisterInstance(ctx, "local", url, "secret")
	jtest.RequireNil(t, err)

	pinged, err := m.Ping(ctx, inst.ID)
	jtest.RequireNil(t, err)
	require.Equal(t, "online", pinged.Fields["status"])
	require.Equal(t, "device-1", pinged.Fields["deviceToken"])

	agents, err := m.ListLive(ctx, inst.ID, openclaw.ListAgents)
	jtest.RequireNil(t, err)
	require.Equal(t, []any{map[string]any{"name": "main"}}, agents)
	require.Equal(t, "device-1", f.connectPayload()["deviceToken"])

	snap, err := m.CaptureFromGateway(ctx, inst.ID)
	jtest.RequireNil(t, err)
	require.Equal(t, openclaw.KindID(openclaw.KindSnapshot), snap.KindID)
	require.Equal(t, `{"version":"1.4.2"}`, snap.Fields["config"])
	require.Equal(t, 1, snap.Fields["agentCount"])
	require.Equal(t, 0, snap.Fields["modelCount"])
}
