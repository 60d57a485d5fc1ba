package api

import (
	"fmt"
)

// Error wraps an underlying domain error with the operation and path that produced it.
type Error struct {
	Op     string // Operation: "getUser", "listBooks", "follow", ...
	Method string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("api %s [%s %s]: %v", e.Op, e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, method, path string, err error) error {
	return &Error{Op: op, Method: method, Path: path, Err: err}
}
