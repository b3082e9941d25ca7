package jlog

import (
	"context"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	"github.com/luno/openclaw"
)

// New returns a Logger that writes through jettison's global logger.
func New() *logger {
	return &logger{}
}

type logger struct{}

func (l logger) Debug(ctx context.Context, msg string, meta map[string]string) {
	log.Debug(ctx, msg, j.MKS(meta))
}

// Error attaches meta to the error so that it is logged with the error's own
// key values.
func (l logger) Error(ctx context.Context, err error, meta map[string]string) {
	log.Error(ctx, errors.Wrap(err, "", j.MKS(meta)))
}

var _ openclaw.Logger = (*logger)(nil)
