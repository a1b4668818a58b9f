package core

import "errors"

// Error codes for domain errors carried to the wire.
const (
	ErrCodeNotJoined       = "not_joined"
	ErrCodeMessageNotFound = "message_not_found"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeStorage         = "storage_error"
)

// ErrDuplicateConnection signals a registry insert for a connection id that
// is already present. Connection ids are server-generated, so hitting this
// means an internal invariant was violated.
var ErrDuplicateConnection = errors.New("duplicate connection")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
