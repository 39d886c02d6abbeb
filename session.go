// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

// Option configures a Session at construction time (functional-options
// pattern).
type Option func(*Session)

// WithTokenCap overrides the token buffer cap (see DefaultTokenCap). A
// non-positive value is ignored and the default is used instead.
func WithTokenCap(n int) Option {
	return func(s *Session) {
		s.tokenCap = n
	}
}

// WithAllowDuplicateSDID reproduces the legacy silent-overwrite behavior
// for a duplicate SD-ID instead of failing with ErrMalformedSD. Off by
// default.
func WithAllowDuplicateSDID(allow bool) Option {
	return func(s *Session) {
		s.ps.allowDupSDID = allow
	}
}

// Session drives the incremental syslog parser over one byte stream. It
// is not safe for concurrent use; a Session is meant to be owned by a
// single reader goroutine per connection (spec's concurrency model: one
// Session per stream, no internal locking).
type Session struct {
	ps      parserState
	tb      tokenBuffer
	head    MessageHead
	handler Handler
	bodyBuf []byte

	tokenCap int
}

// NewSession creates a Session that delivers parsed messages to handler.
// handler must be non-nil.
func NewSession(handler Handler, opts ...Option) *Session {
	s := &Session{handler: handler}
	for _, opt := range opts {
		opt(s)
	}
	s.tb.init(s.tokenCap)
	s.head.reset()
	return s
}

// Read feeds data into the parser, driving the state machine one byte at
// a time and invoking Handler callbacks as messages (or message
// fragments) become available. It returns on the first parsing error,
// after which the Session is latched into the error state; every
// subsequent Read or Flush call returns ErrParserInError until Reset.
//
// Read is resumable: data may be split at any byte boundary across calls
// (including mid-field, mid-escape or mid-octet-count) without affecting
// the parsed result.
func (s *Session) Read(data []byte) error {
	if s.ps.st == sError {
		return newErr(ErrParserInError, "read called while latched in error")
	}
	for _, c := range data {
		if err := s.stepByte(c); err != nil {
			s.ps.st = sError
			return err
		}
	}
	return s.flushBodyBuf()
}

// Flush forces completion of a pending non-octet-counted message that is
// parked in MSG_BODY without having seen its terminating newline yet
// (e.g. at EOF or an idle timeout on a connection-oriented transport). It
// is a no-op if no message is pending, and an error if octet-counted
// framing is active for the pending message (the frame length, not the
// caller, determines completion in that mode) or if the Session is
// latched in the error state.
func (s *Session) Flush() error {
	switch {
	case s.ps.st == sError:
		return newErr(ErrParserInError, "flush called while latched in error")
	case s.ps.st == sFrameStart || s.ps.st == sComplete:
		return nil
	case s.ps.st == sMsgBody && !s.ps.octetMode:
		if err := s.finishMessage(); err != nil {
			s.ps.st = sError
			return err
		}
		return nil
	case (s.ps.st == sAfterNilSD || s.ps.st == sSDAfterElement) && !s.ps.octetMode:
		// structured data is fully parsed and no body byte has arrived
		// yet; per the grammar SD SP? MSG? with MSG empty, this is a
		// complete, empty-body message.
		if err := s.completeHead(); err != nil {
			s.ps.st = sError
			return err
		}
		if err := s.finishMessage(); err != nil {
			s.ps.st = sError
			return err
		}
		return nil
	case s.ps.octetMode:
		s.ps.st = sError
		return newErr(ErrOctetCountTooShort, "flush called before the declared octet count was reached")
	default:
		s.ps.st = sError
		return newErr(ErrMalformedHead, "flush called with an incomplete message header or structured data")
	}
}

// Reset discards all in-progress parsing state and returns the Session to
// its freshly-constructed state, clearing any latched error. Options
// passed to NewSession (token cap, duplicate-SD-ID policy) are preserved.
func (s *Session) Reset() {
	s.ps.reset()
	s.tb.init(s.tokenCap)
	s.head.reset()
	s.bodyBuf = nil
}

// flushBodyBuf delivers any body bytes accumulated since the last flush
// via Handler.OnMsgPart, so a body split across Read calls is still
// delivered incrementally rather than withheld until message completion.
func (s *Session) flushBodyBuf() error {
	if len(s.bodyBuf) == 0 {
		return nil
	}
	part := s.bodyBuf
	s.bodyBuf = nil
	if err := s.handler.OnMsgPart(part); err != nil {
		werr := newHandlerErr(err)
		s.ps.st = sError
		return werr
	}
	return nil
}
