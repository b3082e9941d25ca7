package openclaw

import (
	"k8s.io/utils/clock"
)

type options struct {
	clock     clock.Clock
	logger    Logger
	debugMode bool
	registry  *Registry
	dialer    Dialer
	notifier  Notifier
}

type Option func(o *options)

// WithClock overrides the clock used to stamp records, relations and pings.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger used for debug output and for errors that do not fail
// the calling operation. The default logger writes JSON lines to stdout.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDebugMode enables debug logs.
func WithDebugMode() Option {
	return func(o *options) {
		o.debugMode = true
	}
}

// WithRegistry replaces the default registry of built in kinds.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithDialer sets how the manager connects to gateways. Ping and CaptureFromGateway
// return ErrDialerNotSet without one.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithNotifier publishes an Event after every successful mutation.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}
