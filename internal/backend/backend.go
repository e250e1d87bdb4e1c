// Package backend abstracts the browser automation backend behind a small
// navigate/find/close capability.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoHandle reports that no backend handle is available, typically because
// connecting to the remote browser failed and the factory returned nil.
var ErrNoHandle = errors.New("backend handle unavailable")

// ErrNotFound reports that a selector matched no element on the current
// page. Extraction code matches on it to write a null placeholder instead
// of treating the miss as a backend fault.
var ErrNotFound = errors.New("no matching element")

// Error is the outcome type for every backend-facing operation. Op names the
// failed operation (connect, navigate, find, close); Err carries the cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Guard returns a handle-unavailable Error for op when h is nil. Callers use
// it so a missing handle fails the same way a live backend fault does.
func Guard(op string, h Handle) error {
	if h == nil {
		return &Error{Op: op, Err: ErrNoHandle}
	}
	return nil
}

// Handle is an open connection to a browser automation backend. A handle
// survives Close: closing releases the current page, the connection stays
// usable for a subsequent Navigate.
type Handle interface {
	Navigate(ctx context.Context, url string) error
	Find(ctx context.Context, selector string) (Element, error)
	Close(ctx context.Context) error
}

// Element is a queried node of the current page.
type Element interface {
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value, or the empty string when the
	// attribute is absent.
	Attribute(ctx context.Context, name string) (string, error)
}

// Profile selects how the remote browser is driven.
type Profile struct {
	Headless       bool
	DisableScripts bool
}
