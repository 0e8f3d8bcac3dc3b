// Package merrors encodes the language-neutral error kinds of spec §7 as
// sentinel-wrapped errors, following the single-sentinel style BeadsLog's
// storage package uses for storage.ErrDBNotInitialized.
package merrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure the way §7 of the specification does.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindTimeout        Kind = "timeout"
	KindTransient      Kind = "transient"
	KindFatal          Kind = "fatal"
)

// Error is a typed error carrying its §7 kind plus an optional field path.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is supports errors.Is comparisons against Kind sentinels created with New.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a bare Kind sentinel, usable with errors.Is(err, merrors.New(KindNotFound)).
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Validation reports an input that violates its declared schema (§7).
// Never recoverable — surfaced with the offending field path.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// NotFound reports a missing referenced entity, recoverable at the caller.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s %q not found", entity, id)}
}

// SchemaMismatch reports a corrupt or out-of-range stored value.
func SchemaMismatch(msg string, err error) *Error {
	return &Error{Kind: KindSchemaMismatch, Msg: msg, Err: err}
}

// Timeout reports a deadline firing.
func Timeout(msg string) *Error {
	return &Error{Kind: KindTimeout, Msg: msg}
}

// Transient reports a failed external call (HTTP, grammar download) with
// no automatic retry; callers fall back.
func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// Fatal reports that the store could not be opened or migrated.
func Fatal(msg string, err error) *Error {
	return &Error{Kind: KindFatal, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
