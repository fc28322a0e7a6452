// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr classifies failures crossing component boundaries.
// Fallible operations return wrapped errors rather than panicking; callers
// branch on the kind via KindOf or errors.Is against the sentinel kinds.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindValidation indicates bad input, such as an unsupported lookup
	// for a source.
	KindValidation Kind = "validation"

	// KindNotFound indicates a requested entity does not exist.
	KindNotFound Kind = "not_found"

	// KindNetwork indicates a transport failure with no response.
	KindNetwork Kind = "network"

	// KindTimeout indicates an exceeded deadline.
	KindTimeout Kind = "timeout"

	// KindAPI indicates a non-2xx response from an external API.
	KindAPI Kind = "api"

	// KindStorage indicates a document read, write, or parse failure.
	KindStorage Kind = "storage"

	// KindConfiguration indicates invalid static configuration, fatal at
	// startup.
	KindConfiguration Kind = "configuration"
)

// Error carries the failure kind plus enough context to render a
// user-facing message: the operation name and, for API failures, the
// HTTP status code.
type Error struct {
	Kind   Kind
	Op     string // operation name, e.g. "arxiv.search"
	Status int    // HTTP status for KindAPI, zero otherwise
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Msg, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with a message and no underlying cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Newf returns an Error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error wrapping an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// API returns a KindAPI error carrying the HTTP status.
func API(op string, status int) *Error {
	return &Error{Kind: KindAPI, Op: op, Status: status, Msg: "unexpected response"}
}

// KindOf returns the kind of err, or the empty Kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusOf returns the HTTP status attached to err, or zero.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Retryable reports whether the failure is worth retrying: transport and
// timeout failures, plus 429 and 5xx API responses.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindAPI:
		return e.Status == 429 || e.Status >= 500
	default:
		return false
	}
}
