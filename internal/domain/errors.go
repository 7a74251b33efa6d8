package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Match them with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrPaymentUnverified = errors.New("payment not verified")
	ErrRendering         = errors.New("rendering failed")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("artifact storage failed")
)

// Error carries a kind, a message safe to show to the caller and the
// underlying cause, which is only ever logged.
type Error struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind as well as the wrapped cause.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(op string, kind error, msg string, cause error) error {
	return &Error{Op: op, Kind: kind, Msg: msg, Err: cause}
}

// Message returns the caller-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return fallback
}
