// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Test utils

package syslogsp

import (
	"errors"
	"math/rand"
)

var errTestFailure = errors.New("test handler failure")

// splitRandom splits data into a random number of non-empty chunks,
// preserving order, for chunk-boundary-independence testing (spec
// invariant 1 generalized beyond strict 1-byte-at-a-time feeding).
func splitRandom(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var chunks [][]byte
	i := 0
	for i < len(data) {
		n := rand.Intn(4) + 1 // 1..4 bytes per chunk
		if i+n > len(data) {
			n = len(data) - i
		}
		chunks = append(chunks, data[i:i+n])
		i += n
	}
	return chunks
}

// splitOneByOne splits data into single-byte chunks.
func splitOneByOne(data []byte) [][]byte {
	chunks := make([][]byte, len(data))
	for i, c := range data {
		chunks[i] = []byte{c}
	}
	return chunks
}

// recordedMsg captures one parsed message for assertions.
type recordedMsg struct {
	head          MessageHead
	body          []byte
	messageLength int
}

// recordingHandler is a Handler that snapshots every message it sees, in
// the order on_msg_complete fires.
type recordingHandler struct {
	begins   int
	heads    int
	messages []recordedMsg

	head *MessageHead // snapshot from the latest OnMsgHead, pending completion
	body []byte

	failOn string // if non-empty, the named callback returns an error
}

func (h *recordingHandler) OnMsgBegin() error {
	h.begins++
	h.body = nil
	if h.failOn == "begin" {
		return errTestFailure
	}
	return nil
}

func (h *recordingHandler) OnMsgHead(head *MessageHead) error {
	h.heads++
	if h.failOn == "head" {
		return errTestFailure
	}
	snap := cloneHead(head)
	h.head = &snap
	return nil
}

func (h *recordingHandler) OnMsgPart(part []byte) error {
	if h.failOn == "part" {
		return errTestFailure
	}
	cp := make([]byte, len(part))
	copy(cp, part)
	h.body = append(h.body, cp...)
	return nil
}

func (h *recordingHandler) OnMsgComplete(messageLength int) error {
	if h.failOn == "complete" {
		return errTestFailure
	}
	m := recordedMsg{body: h.body, messageLength: messageLength}
	if h.head != nil {
		m.head = *h.head
	}
	h.messages = append(h.messages, m)
	h.head = nil
	h.body = nil
	return nil
}

// cloneHead takes a defensive snapshot of head, since the real one is
// reused (and mutated) by the Session across messages.
func cloneHead(head *MessageHead) MessageHead {
	clone := MessageHead{
		Priority:  head.Priority,
		Version:   head.Version,
		Timestamp: append([]byte(nil), head.Timestamp...),
		Hostname:  append([]byte(nil), head.Hostname...),
		AppName:   append([]byte(nil), head.AppName...),
		ProcessID: append([]byte(nil), head.ProcessID...),
		MessageID: append([]byte(nil), head.MessageID...),
	}
	for _, id := range head.SDIDs() {
		clone.beginOrReuseSDForTest(id)
		for _, name := range head.SDParamNames([]byte(id)) {
			val, _ := head.SDParam([]byte(id), []byte(name))
			_ = clone.setSDParam([]byte(name))
			_ = clone.setSDValue(val)
		}
	}
	return clone
}

// beginOrReuseSDForTest is a tiny test-only helper so cloneHead can
// rebuild an independent sdElements/sdByID without exporting
// beginSDElement's duplicate-id policy parameter to callers.
func (h *MessageHead) beginOrReuseSDForTest(id string) {
	if h.sdByID != nil {
		if _, ok := h.sdByID[id]; ok {
			h.curSDE = h.sdByID[id]
			return
		}
	}
	_ = h.beginSDElement([]byte(id), true)
}
