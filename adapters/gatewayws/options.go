package gatewayws

import (
	"time"

	"github.com/luno/openclaw"
)

type options struct {
	handshakeTimeout time.Duration
	callTimeout      time.Duration
	logger           openclaw.Logger
}

type Option func(*options)

// WithHandshakeTimeout bounds dialing and the challenge handshake. Defaults to 10s.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.handshakeTimeout = d
	}
}

// WithCallTimeout bounds how long a call waits for its reply. Defaults to 10s.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}

func WithLogger(l openclaw.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
