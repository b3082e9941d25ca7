package openclaw

import (
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

var (
	ErrRecordNotFound    = errors.New("record not found", j.C("ERR_6d982e73339f351a"))
	ErrSnapshotNotFound  = errors.New("snapshot not found", j.C("ERR_4b1c07d2e85f9a36"))
	ErrValidationFailed  = errors.New("validation failed", j.C("ERR_a90e3f6c2b7d1185"))
	ErrKindNotFound      = errors.New("kind not registered", j.C("ERR_17f2c5b98e0d4a63"))
	ErrDialerNotSet      = errors.New("no gateway dialer configured", j.C("ERR_c3e8a1f04d96b27e"))
	ErrInvalidConfig     = errors.New("invalid config document", j.C("ERR_58d0b7e2a1c94f3b"))
	ErrHandshakeRejected = errors.New("gateway rejected handshake", j.C("ERR_e2a47c91b05f8d36"))
)
