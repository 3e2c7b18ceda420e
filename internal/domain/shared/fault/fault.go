// Package fault classifies domain failures into the three recoverable
// kinds the HTTP layer knows how to surface. No kind is fatal: every
// fault is a rejected operation that left state unchanged.
package fault

import "errors"

type Kind int

const (
	// KindUnknown marks errors that carry no classification.
	KindUnknown Kind = iota
	// KindValidation covers malformed or out-of-policy input.
	KindValidation
	// KindConflict covers date overlaps and voucher limit/expiry races.
	KindConflict
	// KindNotFound covers unknown property, booking or voucher ids.
	KindNotFound
)

// Error is a classified domain error.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Validation builds a new validation fault.
func Validation(msg string) error { return &Error{kind: KindValidation, msg: msg} }

// Conflict builds a new conflict fault.
func Conflict(msg string) error { return &Error{kind: KindConflict, msg: msg} }

// NotFound builds a new not-found fault.
func NotFound(msg string) error { return &Error{kind: KindNotFound, msg: msg} }

// Wrap attaches a kind to an existing error, preserving the chain.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{kind: kind, msg: msg, err: err}
}

type kinder interface {
	Kind() Kind
}

// KindOf walks the error chain and returns the first classification found.
// Any error exposing a Kind method participates, not only *Error.
func KindOf(err error) Kind {
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// IsValidation reports whether err is classified as validation.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err is classified as conflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsNotFound reports whether err is classified as not-found.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
