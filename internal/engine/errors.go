package engine

import (
	"errors"
	"fmt"
)

// Op names the remote operation an error or event belongs to.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

var (
	// ErrUnauthenticated means there is no credential; the caller should
	// send the user to login. No request was made.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrUnknownItem means the id is not in the local list. No request was made.
	ErrUnknownItem = errors.New("unknown todo item")
	// ErrSessionClosed is returned for calls that settle after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrNotEditing is returned by edit operations while idle.
	ErrNotEditing = errors.New("no item is being edited")
)

// ValidationError is a local rejection that never reaches the network.
type ValidationError struct {
	Op      Op
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// OperationError is a failed remote call. Err keeps the gateway's cause
// (usually a *gateway.RemoteError with the status).
type OperationError struct {
	Op  Op
	ID  string
	Err error
}

func (e *OperationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
