package openclaw

import "context"

type Logger interface {
	// Debug is only called when the Manager is built with WithDebugMode.
	Debug(ctx context.Context, msg string, meta map[string]string)
	// Error is used for failures that do not fail the calling operation.
	Error(ctx context.Context, err error, meta map[string]string)
}

// MKV is a multiple key value store for the logger to format into its output.
type MKV map[string]string
