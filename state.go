// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

// pstate is the state machine's primary state, one byte consumed per step.
type pstate uint8

// Primary states (spec component C).
const (
	sFrameStart pstate = iota // initial; decides octet-count vs. direct header
	sOctetCount               // accumulating ASCII digits, terminated by SP
	sPriOpen                  // expect '<'
	sPri                      // priority digits, closed by '>'
	sVersion                  // version digits, terminated by SP
	sAwaiting                 // generic "skip extra whitespace" sub-state
	sTimestamp
	sHostname
	sAppName
	sProcID
	sMsgID
	sSDOrMsg        // after MSGID's SP: '-', '[' or first body byte
	sAfterNilSD     // after NILSD '-': SP (tolerated), '[' (SD element) or body start
	sSDID           // SD-ID bytes, terminated by SP or ']'
	sSDParamsAwait  // after SD-ID (or after a value): next param or ']'
	sSDParamName    // parameter name bytes, terminated by '='
	sSDValueOpen    // expect opening '"'
	sSDValue        // quoted value bytes
	sSDValueEscape  // byte following a '\' inside a quoted value
	sSDAfterElement // after ']': '[' (next element) or SP/body start
	sMsgBody        // accumulating body bytes
	sComplete       // terminal per message; next byte re-enters sFrameStart
	sError          // terminal until Reset
)

// awaiting targets: which real state sAwaiting resumes into once a
// non-space byte arrives.
type awaitTarget uint8

const (
	awaitVersion awaitTarget = iota
	awaitTimestamp
	awaitHostname
	awaitAppName
	awaitProcID
	awaitMsgID
)

// parserState holds the state machine's mutable fields. It is reset
// wholesale on Session.Reset; the per-message values (octet count,
// priority/version accumulators, body length) are re-initialised at
// FRAME_START when the next message begins.
type parserState struct {
	st pstate

	// octet-counted framing
	octetMode       bool // true once FRAME_START saw a leading digit
	octetsRemain    int64
	messageLength   int64
	octetDigits     int
	pendingMismatch bool // set when the previous message completed by
	// octet countdown, so the next FRAME_START failure is reclassified
	// as octet_count_mismatch instead of malformed_head.

	// header numeric accumulators
	priVal    int
	priDigits int
	verVal    int
	verDigits int

	awaiting awaitTarget

	// body accounting
	bodyLen int // total body bytes delivered this message (any framing mode)

	allowDupSDID bool
}

func (p *parserState) reset() {
	*p = parserState{allowDupSDID: p.allowDupSDID}
}

// isHeaderByte reports whether c is a valid byte inside a TIMESTAMP,
// HOSTNAME, APP-NAME, PROCID or MSGID field (printable, non-space ASCII;
// NILVALUE "-" is just the one-byte case of this).
func isHeaderByte(c byte) bool {
	return c > 32 && c < 127
}

// isSDIdentByte reports whether c is valid inside an SD-ID or a parameter
// name: printable, non-space, and not '=', ']' or '"'.
func isSDIdentByte(c byte) bool {
	if !isHeaderByte(c) {
		return false
	}
	switch c {
	case '=', ']', '"':
		return false
	}
	return true
}

// stepByte drives the state machine for one input byte. Field bytes go to
// the session's token buffer (component A); body bytes are appended to
// s.bodyBuf, which is delivered via OnMsgPart at message completion or at
// the end of the Read call. It returns a *ParsingError on failure
// (the caller latches the session into sError), or nil on success.
func (s *Session) stepByte(c byte) *ParsingError {
	ps := &s.ps
	tb := &s.tb
	h := &s.head

	// octet-count bookkeeping: every byte consumed once the count itself
	// has been closed (i.e. from the opening '<' of the header onward)
	// decrements octets_remaining.
	decrementOctets := ps.octetMode && ps.st != sFrameStart && ps.st != sOctetCount

	switch ps.st {
	case sFrameStart:
		switch {
		case c == ' ':
			// leading whitespace before the frame is tolerated
			return nil
		case c >= '0' && c <= '9':
			ps.pendingMismatch = false
			if err := s.notifyBegin(); err != nil {
				return err
			}
			ps.bodyLen = 0
			h.reset()
			ps.octetMode = true
			ps.octetsRemain = 0
			ps.messageLength = 0
			ps.octetDigits = 1
			ps.octetsRemain = int64(c - '0')
			ps.messageLength = ps.octetsRemain
			ps.st = sOctetCount
			return nil
		case c == '<':
			ps.pendingMismatch = false
			if err := s.notifyBegin(); err != nil {
				return err
			}
			ps.bodyLen = 0
			h.reset()
			ps.octetMode = false
			ps.priVal = 0
			ps.priDigits = 0
			ps.st = sPri
			return nil
		default:
			if ps.pendingMismatch {
				ps.pendingMismatch = false
				return newErr(ErrOctetCountMismatch, "trailing bytes after a truncated octet-counted frame")
			}
			return newErr(ErrMalformedHead, "expected whitespace, a digit or '<' at frame start")
		}

	case sOctetCount:
		switch {
		case c >= '0' && c <= '9':
			ps.octetDigits++
			if ps.octetDigits > 10 {
				return newErr(ErrOctetCountTooLong, "octet count has more than 10 digits")
			}
			next := ps.octetsRemain*10 + int64(c-'0')
			if next > 0xFFFFFFFF {
				return newErr(ErrOctetCountTooLong, "octet count overflows 32 bits")
			}
			ps.octetsRemain = next
			ps.messageLength = next
			return nil
		case c == ' ':
			ps.st = sPriOpen
			return nil
		default:
			return newErr(ErrMalformedHead, "non-digit byte in octet count")
		}

	case sPriOpen:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		if c != '<' {
			return newErr(ErrMalformedHead, "expected '<' to open the priority field")
		}
		ps.priVal = 0
		ps.priDigits = 0
		ps.st = sPri
		return nil

	case sPri:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch {
		case c >= '0' && c <= '9':
			ps.priDigits++
			ps.priVal = ps.priVal*10 + int(c-'0')
			if ps.priVal > 191 {
				return newErr(ErrBadPriority, "priority value exceeds 191")
			}
			return nil
		case c == '>':
			if ps.priDigits == 0 {
				return newErr(ErrBadPriority, "empty priority value")
			}
			h.Priority = Priority(ps.priVal)
			ps.verVal = 0
			ps.verDigits = 0
			ps.st = sVersion
			return nil
		default:
			return newErr(ErrBadPriority, "non-digit byte in priority")
		}

	case sVersion:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch {
		case c >= '0' && c <= '9':
			ps.verDigits++
			ps.verVal = ps.verVal*10 + int(c-'0')
			return nil
		case c == ' ':
			if ps.verDigits == 0 || ps.verVal < 1 {
				return newErr(ErrBadVersion, "empty or zero version value")
			}
			h.Version = ps.verVal
			ps.st = sAwaiting
			ps.awaiting = awaitTimestamp
			return nil
		default:
			return newErr(ErrBadVersion, "non-digit byte in version")
		}

	case sAwaiting:
		if c == ' ' {
			if decrementOctets {
				return s.decrementAndCheck()
			}
			return nil // extra whitespace between header fields is tolerated
		}
		// c belongs to the target field, not to this whitespace-skipping
		// sub-state: let the recursive call into the target state decrement
		// it exactly once, instead of double-counting it here too.
		ps.st = s.targetState(ps.awaiting)
		return s.stepByte(c)

	case sTimestamp, sHostname, sAppName, sProcID, sMsgID:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		if c == ' ' {
			field := tb.take()
			s.storeHeaderField(ps.st, field)
			ps.st, ps.awaiting = s.afterField(ps.st)
			return nil
		}
		if !isHeaderByte(c) {
			return newErr(ErrMalformedHead, "non-printable byte in header field")
		}
		if err := tb.append(c); err != nil {
			return err
		}
		return nil

	case sSDOrMsg:
		switch {
		case c == ' ':
			if decrementOctets {
				return s.decrementAndCheck()
			}
			return nil
		case c == '-':
			if decrementOctets {
				if err := s.decrementAndCheck(); err != nil {
					return err
				}
			}
			ps.st = sAfterNilSD
			return nil
		case c == '[':
			if decrementOctets {
				if err := s.decrementAndCheck(); err != nil {
					return err
				}
			}
			tb.clear()
			ps.st = sSDID
			return nil
		default:
			// this byte is the first body byte: the state only becomes
			// sMsgBody below, so the octet countdown (which decides
			// between octet_count_too_short and a normal completion) must
			// run after the transition, not before.
			if err := s.completeHead(); err != nil {
				return err
			}
			if err := s.consumeBodyByte(c); err != nil {
				return err
			}
			if decrementOctets {
				return s.decrementAndCheck()
			}
			return nil
		}

	case sAfterNilSD:
		if c == ' ' {
			if decrementOctets {
				return s.decrementAndCheck()
			}
			return nil
		}
		if c == '[' {
			if decrementOctets {
				if err := s.decrementAndCheck(); err != nil {
					return err
				}
			}
			tb.clear()
			ps.st = sSDID
			return nil
		}
		if err := s.completeHead(); err != nil {
			return err
		}
		if err := s.consumeBodyByte(c); err != nil {
			return err
		}
		if decrementOctets {
			return s.decrementAndCheck()
		}
		return nil

	case sSDID:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch {
		case c == ' ':
			if tb.len() == 0 {
				return newErr(ErrMalformedSD, "empty sd-id")
			}
			if err := h.beginSDElement(tb.take(), ps.allowDupSDID); err != nil {
				return err
			}
			ps.st = sSDParamsAwait
			return nil
		case c == ']':
			if tb.len() == 0 {
				return newErr(ErrMalformedSD, "empty sd-id")
			}
			if err := h.beginSDElement(tb.take(), ps.allowDupSDID); err != nil {
				return err
			}
			ps.st = sSDAfterElement
			return nil
		case isSDIdentByte(c):
			return appendOrErr(tb, c)
		default:
			return newErr(ErrMalformedSD, "invalid byte in sd-id")
		}

	case sSDParamsAwait:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch {
		case c == ' ':
			return nil
		case c == ']':
			ps.st = sSDAfterElement
			return nil
		case isSDIdentByte(c):
			tb.clear()
			ps.st = sSDParamName
			return appendOrErr(tb, c)
		default:
			return newErr(ErrMalformedSD, "invalid byte before sd parameter name")
		}

	case sSDParamName:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch {
		case c == '=':
			if tb.len() == 0 {
				return newErr(ErrMalformedSD, "empty sd parameter name")
			}
			if err := h.setSDParam(tb.take()); err != nil {
				return err
			}
			ps.st = sSDValueOpen
			return nil
		case isSDIdentByte(c):
			return appendOrErr(tb, c)
		default:
			return newErr(ErrMalformedSD, "invalid byte in sd parameter name")
		}

	case sSDValueOpen:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		if c != '"' {
			return newErr(ErrMalformedSD, "expected opening quote for sd parameter value")
		}
		tb.clear()
		ps.st = sSDValue
		return nil

	case sSDValue:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch c {
		case '"':
			if err := h.setSDValue(tb.take()); err != nil {
				return err
			}
			ps.st = sSDParamsAwait
			return nil
		case '\\':
			ps.st = sSDValueEscape
			return nil
		default:
			return appendOrErr(tb, c)
		}

	case sSDValueEscape:
		if decrementOctets {
			if err := s.decrementAndCheck(); err != nil {
				return err
			}
		}
		switch c {
		case '"', '\\', ']':
			ps.st = sSDValue
			return appendOrErr(tb, c)
		default:
			return newErr(ErrMalformedSD, "invalid escape sequence in sd parameter value")
		}

	case sSDAfterElement:
		switch {
		case c == '[':
			if decrementOctets {
				if err := s.decrementAndCheck(); err != nil {
					return err
				}
			}
			tb.clear()
			ps.st = sSDID
			return nil
		case c == ' ':
			if decrementOctets {
				return s.decrementAndCheck()
			}
			return nil
		default:
			if err := s.completeHead(); err != nil {
				return err
			}
			if err := s.consumeBodyByte(c); err != nil {
				return err
			}
			if decrementOctets {
				return s.decrementAndCheck()
			}
			return nil
		}

	case sMsgBody:
		if err := s.consumeBodyByte(c); err != nil {
			return err
		}
		if decrementOctets {
			return s.decrementAndCheck()
		}
		return nil

	case sComplete:
		// next byte re-enters FRAME_START
		ps.st = sFrameStart
		return s.stepByte(c)

	case sError:
		return newErr(ErrParserInError, "read called while latched in error")

	default:
		return newErr(ErrMalformedHead, "unreachable parser state")
	}
}

// appendOrErr is a tiny helper so the identifier-accumulation cases above
// read as one line each.
func appendOrErr(tb *tokenBuffer, c byte) *ParsingError {
	return tb.append(c)
}

// targetState maps an awaitTarget to its real pstate.
func (s *Session) targetState(t awaitTarget) pstate {
	switch t {
	case awaitVersion:
		return sVersion
	case awaitTimestamp:
		return sTimestamp
	case awaitHostname:
		return sHostname
	case awaitAppName:
		return sAppName
	case awaitProcID:
		return sProcID
	case awaitMsgID:
		return sMsgID
	default:
		return sError
	}
}

// storeHeaderField records a just-completed header field's value onto the
// message head under construction.
func (s *Session) storeHeaderField(st pstate, field []byte) {
	v := field
	if len(v) == 0 {
		v = nilValue
	}
	switch st {
	case sTimestamp:
		s.head.Timestamp = v
	case sHostname:
		s.head.Hostname = v
	case sAppName:
		s.head.AppName = v
	case sProcID:
		s.head.ProcessID = v
	case sMsgID:
		s.head.MessageID = v
	}
}

// afterField returns the state to enter after a header field's
// terminating space: either the generic whitespace-tolerant sAwaiting
// (with its target) or, after MSGID, sSDOrMsg directly.
func (s *Session) afterField(st pstate) (pstate, awaitTarget) {
	switch st {
	case sTimestamp:
		return sAwaiting, awaitHostname
	case sHostname:
		return sAwaiting, awaitAppName
	case sAppName:
		return sAwaiting, awaitProcID
	case sProcID:
		return sAwaiting, awaitMsgID
	case sMsgID:
		return sSDOrMsg, 0
	default:
		return sError, 0
	}
}

// notifyBegin calls Handler.OnMsgBegin, wrapping any returned error.
func (s *Session) notifyBegin() *ParsingError {
	if err := s.handler.OnMsgBegin(); err != nil {
		return newHandlerErr(err)
	}
	return nil
}

// completeHead calls Handler.OnMsgHead exactly once per message,
// immediately before the first body byte is processed.
func (s *Session) completeHead() *ParsingError {
	if err := s.handler.OnMsgHead(&s.head); err != nil {
		return newHandlerErr(err)
	}
	s.ps.st = sMsgBody
	return nil
}

// consumeBodyByte appends c to the body accumulator and -- for
// newline-terminated (non-octet-counted) framing -- completes the message
// on a '\n' byte. The accumulator is flushed via OnMsgPart either at
// message completion (finishMessage) or at the end of a Read call (so a
// body split across chunks is still delivered incrementally).
func (s *Session) consumeBodyByte(c byte) *ParsingError {
	s.bodyBuf = append(s.bodyBuf, c)
	s.ps.bodyLen++
	if !s.ps.octetMode && c == '\n' {
		return s.finishMessage()
	}
	return nil
}

// decrementAndCheck accounts for one consumed byte against the declared
// octet-count frame length. If the count reaches zero while still
// somewhere in the header/SD phases, that is octet_count_too_short. If it
// reaches zero while in MSG_BODY, the message completes normally.
func (s *Session) decrementAndCheck() *ParsingError {
	ps := &s.ps
	ps.octetsRemain--
	if ps.octetsRemain > 0 {
		return nil
	}
	if ps.octetsRemain < 0 {
		return newErr(ErrOctetCountMismatch, "octet count underflowed")
	}
	if ps.st != sMsgBody {
		return newErr(ErrOctetCountTooShort, "octet count exhausted before the message body")
	}
	return s.finishMessage()
}

// finishMessage flushes any pending body bytes, calls
// Handler.OnMsgComplete, and transitions to sComplete.
func (s *Session) finishMessage() *ParsingError {
	if len(s.bodyBuf) > 0 {
		part := s.bodyBuf
		s.bodyBuf = nil
		if err := s.handler.OnMsgPart(part); err != nil {
			return newHandlerErr(err)
		}
	}
	if err := s.handler.OnMsgComplete(s.ps.bodyLen); err != nil {
		return newHandlerErr(err)
	}
	s.ps.pendingMismatch = s.ps.octetMode
	s.ps.st = sComplete
	return nil
}
