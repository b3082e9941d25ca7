package gatewayws

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/internal/logger"
	"github.com/luno/openclaw/internal/metrics"
)

const defaultTimeout = 10 * time.Second

var errConnectionClosed = errors.New("gateway connection closed", j.C("ERR_9b1f0c3ad7e24c58"))

// Dialer connects to gateways over websocket and performs the challenge
// handshake.
type Dialer struct {
	ws               *websocket.Dialer
	handshakeTimeout time.Duration
	callTimeout      time.Duration
	logger           openclaw.Logger
}

func New(opts ...Option) *Dialer {
	o := options{
		handshakeTimeout: defaultTimeout,
		callTimeout:      defaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.New(os.Stdout)
	}

	return &Dialer{
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: o.handshakeTimeout,
		},
		handshakeTimeout: o.handshakeTimeout,
		callTimeout:      o.callTimeout,
		logger:           o.logger,
	}
}

var _ openclaw.Dialer = (*Dialer)(nil)

// Dial opens the websocket and waits for the gateway to accept the connect request.
// A hello-error reply returns openclaw.ErrHandshakeRejected.
func (d *Dialer) Dial(ctx context.Context, target openclaw.GatewayTarget) (openclaw.Gateway, error) {
	ctx, cancel := context.WithTimeout(ctx, d.handshakeTimeout)
	defer cancel()

	header := http.Header{}
	if target.Token != "" {
		header.Set("Authorization", "Bearer "+target.Token)
	}

	conn, _, err := d.ws.DialContext(ctx, target.URL, header)
	if err != nil {
		return nil, errors.Wrap(err, "dial", j.MKV{"url": target.URL})
	}

	deviceToken, err := handshake(ctx, conn, target)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "handshake", j.MKV{"url": target.URL})
	}

	g := &Gateway{
		conn:        conn,
		logger:      d.logger,
		callTimeout: d.callTimeout,
		deviceToken: deviceToken,
		pending:     make(map[string]chan message),
		done:        make(chan struct{}),
	}
	go g.readLoop()

	return g, nil
}

func handshake(ctx context.Context, conn *websocket.Conn, target openclaw.GatewayTarget) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return "", errors.Wrap(err, "read handshake")
		}

		payload := msg.object()

		switch msg.Type {
		case typeChallenge:
			nonce := stringOf(payload["nonce"])
			timestamp := stringOf(payload["timestamp"])

			connect := map[string]any{
				"role":      "operator",
				"scopes":    []string{"operator.read"},
				"signature": sign(target.DevicePrivateKey, nonce, timestamp),
				"timestamp": payload["timestamp"],
				"nonce":     payload["nonce"],
			}
			if target.DeviceToken != "" {
				connect["deviceToken"] = target.DeviceToken
			}

			err := conn.WriteJSON(envelope{Type: typeConnect, Payload: connect})
			if err != nil {
				return "", errors.Wrap(err, "write connect")
			}

		case typeHelloOK:
			_ = conn.SetReadDeadline(time.Time{})
			_ = conn.SetWriteDeadline(time.Time{})
			return stringOf(payload["deviceToken"]), nil

		case typeHelloError:
			return "", errors.Wrap(openclaw.ErrHandshakeRejected, string(msg.Payload))
		}
	}
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Gateway is an authenticated gateway connection. Calls may be made concurrently;
// replies are matched to calls by id.
type Gateway struct {
	conn        *websocket.Conn
	logger      openclaw.Logger
	callTimeout time.Duration
	deviceToken string

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan message
	done    chan struct{}
	readErr error

	closeOnce sync.Once
	closeErr  error
}

var _ openclaw.Gateway = (*Gateway)(nil)

// DeviceToken is the token the gateway issued in its hello-ok reply, if any.
func (g *Gateway) DeviceToken() string {
	return g.deviceToken
}

func (g *Gateway) readLoop() {
	defer close(g.done)

	for {
		var msg message
		if err := g.conn.ReadJSON(&msg); err != nil {
			g.mu.Lock()
			g.readErr = err
			g.mu.Unlock()
			return
		}

		if msg.ID == "" {
			continue
		}

		g.mu.Lock()
		ch, ok := g.pending[msg.ID]
		delete(g.pending, msg.ID)
		g.mu.Unlock()

		if ok {
			ch <- msg
		}
	}
}

// Call sends a call and waits for the reply with the same id.
func (g *Gateway) Call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	id := uuid.NewString()
	ch := make(chan message, 1)

	g.mu.Lock()
	g.pending[id] = ch
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
	}()

	g.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = g.conn.SetWriteDeadline(deadline)
	}
	err := g.conn.WriteJSON(envelope{Type: typeCall, ID: id, Method: method, Params: params})
	g.writeMu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "write call", j.MKV{"method": method})
	}

	select {
	case msg := <-ch:
		return msg.Payload, nil
	case <-g.done:
		g.mu.Lock()
		readErr := g.readErr
		g.mu.Unlock()
		return nil, errors.Wrap(errConnectionClosed, "", j.MKV{"method": method, "cause": errString(readErr)})
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "call", j.MKV{"method": method})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

const methodPresence = "system-presence"

// List calls a list method and returns the items of its reply. A reply without
// items is an empty list.
func (g *Gateway) List(ctx context.Context, method openclaw.ListMethod) ([]any, error) {
	raw, err := g.Call(ctx, string(method), nil)
	if err != nil {
		return nil, err
	}

	var res struct {
		Items []any `json:"items"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, errors.Wrap(err, "decode items", j.MKV{"method": string(method)})
		}
	}

	if res.Items == nil {
		return []any{}, nil
	}

	return res.Items, nil
}

// Presence runs the four presence queries concurrently. A query that fails or
// returns an unexpected payload contributes an empty value.
func (g *Gateway) Presence(ctx context.Context) (openclaw.Presence, error) {
	var (
		wg sync.WaitGroup
		p  = openclaw.Presence{
			Agents:   []any{},
			Channels: []any{},
			Models:   []any{},
			Config:   map[string]any{},
		}
	)

	items := func(method openclaw.ListMethod, dst *[]any) {
		defer wg.Done()

		l, err := g.List(ctx, method)
		if err != nil {
			g.failed(ctx, string(method), err)
			return
		}

		*dst = l
	}

	wg.Add(4)
	go items(openclaw.ListAgents, &p.Agents)
	go items(openclaw.ListChannels, &p.Channels)
	go items(openclaw.ListModels, &p.Models)
	go func() {
		defer wg.Done()

		raw, err := g.Call(ctx, methodPresence, nil)
		if err != nil {
			g.failed(ctx, methodPresence, err)
			return
		}

		var config map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &config); err != nil {
				g.failed(ctx, methodPresence, errors.Wrap(err, "decode config"))
				return
			}
		}

		if config != nil {
			p.Config = config
		}
	}()
	wg.Wait()

	return p, nil
}

func (g *Gateway) failed(ctx context.Context, method string, err error) {
	metrics.PresenceFailures.WithLabelValues(method).Inc()
	g.logger.Error(ctx, errors.Wrap(err, "presence query failed"), openclaw.MKV{"method": method})
}

// Close sends a close frame and closes the connection. It is safe to call more
// than once.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = g.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		g.closeErr = g.conn.Close()
		<-g.done
	})

	return g.closeErr
}
