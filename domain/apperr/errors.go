// Package apperr defines the error kinds shared by every module.
//
// Errors cross module boundaries as plain strings (request-reply replies
// carry only the message), so Error() always starts with the kind marker and
// FromRemote recovers the kind on the calling side.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindBadRequest   Kind = "bad_request"
	KindNotFound     Kind = "not_found"
	KindDuplicate    Kind = "duplicate_entry"
	KindUnauthorized Kind = "unauthorized"
	KindPersistence  Kind = "persistence_failure"
	KindAudit        Kind = "audit_failure"
)

var kinds = []Kind{
	KindValidation,
	KindBadRequest,
	KindNotFound,
	KindDuplicate,
	KindUnauthorized,
	KindPersistence,
	KindAudit,
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports input that violates a field rule or enum.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports a request that could not be decoded.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Duplicate reports a uniqueness conflict.
func Duplicate(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports failed authentication.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure.
func Persistence(err error, format string, args ...any) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

// Audit wraps a failed history append.
func Audit(err error, format string, args ...any) *Error {
	return &Error{Kind: KindAudit, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindPersistence when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// Is reports whether err is an application error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// FromRemote rebuilds a typed error from the text of an error that crossed a
// request-reply boundary. The earliest kind marker in the text wins. Errors
// that are already typed, or carry no marker, are returned unchanged.
func FromRemote(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	text := err.Error()
	best := -1
	var found Kind
	for _, k := range kinds {
		idx := strings.Index(text, string(k)+": ")
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = k
		}
	}
	if best < 0 {
		return err
	}

	msg := text[best+len(found)+2:]
	return &Error{Kind: found, Message: msg}
}
