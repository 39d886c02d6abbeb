// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

import "fmt"

// ErrKind is a stable, numeric identifier for a parsing failure. Unlike a
// plain string error, it can be compared with == and used to drive caller
// logic (e.g. retry vs. drop the stream) without parsing error text.
type ErrKind uint8

// Error kinds, exhaustive.
const (
	// ErrNone means no error occurred; returned internally, never surfaced.
	ErrNone ErrKind = iota
	// ErrOctetCountTooLong: more than 10 digits in the octet-count prefix,
	// or the accumulated value overflows 32 bits.
	ErrOctetCountTooLong
	// ErrOctetCountTooShort: the declared frame length was exhausted
	// before the body phase was reached, or Flush was called on an
	// octet-counted message before its declared length was consumed.
	ErrOctetCountTooShort
	// ErrOctetCountMismatch: the declared length is inconsistent with what
	// was actually parsed (over- or under-run once the body completes).
	ErrOctetCountMismatch
	// ErrBadPriority: non-digit inside "<...>", empty PRIVAL, or PRIVAL > 191.
	ErrBadPriority
	// ErrBadVersion: non-digit version, empty version, or unsupported value.
	ErrBadVersion
	// ErrMalformedHead: unexpected byte while parsing a header field.
	ErrMalformedHead
	// ErrMalformedSD: unexpected byte inside structured data, an empty
	// SD-ID or parameter name, a value with no preceding name, or (unless
	// WithAllowDuplicateSDID is set) a duplicate SD-ID.
	ErrMalformedSD
	// ErrTokenTooLong: the token buffer cap (see WithTokenCap) was exceeded.
	ErrTokenTooLong
	// ErrHandlerFailed: a Handler callback returned a non-nil error.
	ErrHandlerFailed
	// ErrParserInError: Read (or Flush) was called while latched in ERROR;
	// only Reset clears it.
	ErrParserInError
)

// names for each ErrKind, indexed by the constant value.
var errKindNames = [...]string{
	ErrNone:               "no_error",
	ErrOctetCountTooLong:  "octet_count_too_long",
	ErrOctetCountTooShort: "octet_count_too_short",
	ErrOctetCountMismatch: "octet_count_mismatch",
	ErrBadPriority:        "bad_priority",
	ErrBadVersion:         "bad_version",
	ErrMalformedHead:      "malformed_head",
	ErrMalformedSD:        "malformed_sd",
	ErrTokenTooLong:       "token_too_long",
	ErrHandlerFailed:      "handler_failed",
	ErrParserInError:      "parser_in_error",
}

// String returns the stable kind identifier (e.g. "malformed_sd").
func (k ErrKind) String() string {
	if int(k) < 0 || int(k) >= len(errKindNames) {
		return "unknown_error"
	}
	return errKindNames[k]
}

// ParsingError is the error type surfaced by Session.Read, Session.Flush
// and the internal state machine. Kind identifies the failure class; Msg
// is a human-readable description; Cause, set only for ErrHandlerFailed,
// is the error a Handler callback returned.
type ParsingError struct {
	Kind  ErrKind
	Msg   string
	Cause error
}

// Error implements the error interface.
func (e *ParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap allows errors.Is / errors.As to reach the causal handler error.
func (e *ParsingError) Unwrap() error {
	return e.Cause
}

// newErr builds a *ParsingError with no cause.
func newErr(kind ErrKind, msg string) *ParsingError {
	return &ParsingError{Kind: kind, Msg: msg}
}

// newHandlerErr wraps a Handler-surfaced error as ErrHandlerFailed.
func newHandlerErr(cause error) *ParsingError {
	return &ParsingError{Kind: ErrHandlerFailed, Msg: "handler callback failed", Cause: cause}
}
