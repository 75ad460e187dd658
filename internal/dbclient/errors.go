package dbclient

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("dbclient: not connected")
	ErrNoReply      = errors.New("dbclient: connection closed without a reply")
)

// EncodingError means a request could not be serialised.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return "dbclient: encode request: " + e.Err.Error() }
func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError means an inbound message did not match the expected reply shape.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string { return "dbclient: decode response: " + e.Err.Error() }
func (e *DecodingError) Unwrap() error { return e.Err }

// SendError wraps a transport failure while writing a request.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return "dbclient: send: " + e.Err.Error() }
func (e *SendError) Unwrap() error { return e.Err }

// ActorError is an {"error": ...} reply from the database actor.
type ActorError struct {
	Table   string
	Action  Action
	Message string
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("dbclient: %s %s: %s", e.Action, e.Table, e.Message)
}
