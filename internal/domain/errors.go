// Package domain holds the value types, state-transition table, and error
// taxonomy that the rest of the service is built on. Nothing in this package
// touches the database, HTTP, or the provider API.
package domain

import (
	"errors"
	"fmt"
)

// Kind is the single error taxonomy used across the service (see spec §7).
// Every layer — webhook handler, worker, store — makes its retry/response
// decision off Kind alone.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindWebhookSignature Kind = "webhook_signature"
	KindProvider        Kind = "provider"
	KindDatabase        Kind = "database"
	KindSerialization   Kind = "serialization"
)

// Error wraps an underlying cause with a Kind so callers can branch on
// classification without parsing message strings.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validationf builds a Validation-kind error.
func Validationf(format string, args ...any) *Error {
	return newErr(KindValidation, fmt.Sprintf(format, args...), nil)
}

// WebhookSignaturef builds a WebhookSignature-kind error.
func WebhookSignaturef(format string, args ...any) *Error {
	return newErr(KindWebhookSignature, fmt.Sprintf(format, args...), nil)
}

// Providerf builds a Provider-kind error, wrapping the upstream cause.
func Providerf(err error, format string, args ...any) *Error {
	return newErr(KindProvider, fmt.Sprintf(format, args...), err)
}

// Databasef builds a Database-kind error, wrapping the underlying store error.
func Databasef(err error, format string, args ...any) *Error {
	return newErr(KindDatabase, fmt.Sprintf(format, args...), err)
}

// Serializationf builds a Serialization-kind error, wrapping the parse error.
func Serializationf(err error, format string, args ...any) *Error {
	return newErr(KindSerialization, fmt.Sprintf(format, args...), err)
}

// KindOf extracts the Kind from err, walking the wrap chain. Errors not
// produced by this package are classified KindDatabase — the conservative
// default, since an unclassified failure almost always originates from the
// store and should be retried rather than silently discarded.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDatabase
}

// Is reports whether err (or something it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
