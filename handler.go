// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

// Handler is the sink a Session delivers parsed messages to. It is
// externally owned: the Session keeps a reference to it and calls into it
// only from Read and Flush, and it must not call back into the same
// Session's Read/Flush (the parser is not re-entrant).
//
// Any method may return a non-nil error to abort parsing of the current
// stream; the Session surfaces it wrapped as a *ParsingError with
// Kind == ErrHandlerFailed and Cause set to the returned error, then
// latches into the error state until Reset.
type Handler interface {
	// OnMsgBegin is called once, as soon as a new message is recognized at
	// FRAME_START: on the first digit of an octet count, or on the leading
	// '<' when there is no octet count.
	OnMsgBegin() error

	// OnMsgHead is called exactly once per message, immediately after the
	// header and structured data are fully parsed. head is valid only for
	// the duration of this call unless the handler copies it (its byte
	// fields and SD map alias the session's internal buffers).
	OnMsgHead(head *MessageHead) error

	// OnMsgPart delivers a body fragment. It may be called zero or more
	// times per message; part is valid only for the duration of this
	// call.
	OnMsgPart(part []byte) error

	// OnMsgComplete is called exactly once per message, when the message
	// boundary is reached. messageLength is the byte length of the body
	// only (not the declared octet-count frame length).
	OnMsgComplete(messageLength int) error
}
