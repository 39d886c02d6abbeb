// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

import "testing"

func TestIsHeaderByte(t *testing.T) {
	cases := []struct {
		c    byte
		want bool
	}{
		{' ', false},
		{'\t', false},
		{'a', true},
		{'-', true},
		{127, false},
		{32, false},
		{33, true},
		{126, true},
	}
	for _, tc := range cases {
		if got := isHeaderByte(tc.c); got != tc.want {
			t.Errorf("isHeaderByte(%q) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestIsSDIdentByte(t *testing.T) {
	cases := []struct {
		c    byte
		want bool
	}{
		{'a', true},
		{'=', false},
		{']', false},
		{'"', false},
		{' ', false},
	}
	for _, tc := range cases {
		if got := isSDIdentByte(tc.c); got != tc.want {
			t.Errorf("isSDIdentByte(%q) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

// Leading whitespace before the octet count / frame is tolerated.
func TestLeadingWhitespaceTolerated(t *testing.T) {
	h := &recordingHandler{}
	s := NewSession(h)
	if err := s.Read([]byte("   <46>1 - tohru - 6611 - - body\n")); err != nil {
		t.Fatalf("Read: unexpected error %v", err)
	}
	if len(h.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(h.messages))
	}
}

// Extra internal whitespace between header fields is tolerated (spec.md
// Open Question #2, resolved as required behavior -- see DESIGN.md).
func TestExtraInternalWhitespaceTolerated(t *testing.T) {
	h := &recordingHandler{}
	s := NewSession(h)
	err := s.Read([]byte("<46>1   - tohru   -   6611   -  - body\n"))
	if err != nil {
		t.Fatalf("Read: unexpected error %v", err)
	}
	if len(h.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(h.messages))
	}
	if string(h.messages[0].head.Hostname) != "tohru" {
		t.Errorf("Hostname = %q, want tohru", h.messages[0].head.Hostname)
	}
}

// A non-digit, non-'<', non-space byte at frame start (no prior
// truncated octet-counted message) is malformed_head, not mismatch.
func TestFrameStartGarbageIsMalformedNotMismatch(t *testing.T) {
	h := &recordingHandler{}
	s := NewSession(h)
	err := s.Read([]byte("garbage"))
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	pe := err.(*ParsingError)
	if pe.Kind != ErrMalformedHead {
		t.Fatalf("Kind = %v, want ErrMalformedHead", pe.Kind)
	}
}

// pendingMismatch must not leak across an unrelated later message: once
// a new frame genuinely starts, the flag is cleared.
func TestPendingMismatchDoesNotLeak(t *testing.T) {
	h := &recordingHandler{}
	s := NewSession(h)

	// first message completes exactly via octet countdown (no leftover
	// bytes), so there is nothing to reclassify as a mismatch.
	msg := `<46>1 - tohru - 6611 - - first`
	if err := s.Read([]byte(octetFrame(msg))); err != nil {
		t.Fatalf("first Read: unexpected error %v", err)
	}
	if len(h.messages) != 1 {
		t.Fatalf("got %d messages after first Read, want 1", len(h.messages))
	}

	// second message is unrelated and well-formed; pendingMismatch must
	// not have lingered from the first message's completion.
	if err := s.Read([]byte("<47>1 - other - - - - second\n")); err != nil {
		t.Fatalf("second Read: unexpected error %v", err)
	}
	if len(h.messages) != 2 {
		t.Fatalf("got %d messages after second Read, want 2", len(h.messages))
	}
}
