// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

import (
	"strconv"

	"github.com/intuitivelabs/bytescase"
)

// nilValue is the single-byte NILVALUE marker ("-").
var nilValue = []byte("-")

// sdParam is a single "name=value" pair inside an SD element, keeping
// insertion order alongside a lookup index (mirrors sdElement below).
type sdParam struct {
	name  []byte
	value []byte
}

// sdElement is one "[sdid param=\"value\" ...]" block. Parameter order is
// preserved in params; byIdx gives O(1) duplicate-name detection without
// relying on Go map iteration order (which cannot satisfy the ordering
// invariant spec.md requires).
type sdElement struct {
	id     []byte
	params []sdParam
	byIdx  map[string]int // param name -> index in params
}

func (e *sdElement) paramIndex(name []byte) (int, bool) {
	i, ok := e.byIdx[string(name)]
	return i, ok
}

// MessageHead holds one syslog message's header fields and structured
// data, fully parsed by the time Handler.OnMsgHead is invoked.
//
// SD-ID and parameter-name order of insertion is preserved for
// deterministic iteration (SDIDs, SDParamNames), but lookup (SDParam) is by
// exact key, matching spec.md's "ordered mapping ... lookup is by exact
// key" data model note.
type MessageHead struct {
	Priority   Priority
	Version    int
	Timestamp  []byte
	Hostname   []byte
	AppName    []byte
	ProcessID  []byte
	MessageID  []byte
	sdElements []*sdElement
	sdByID     map[string]*sdElement

	// current parses-in-progress pointers, used by the state machine only.
	curSDE   *sdElement
	curParam []byte // current param name, pending a value
}

// reset clears all fields to NILVALUE/empty, as if freshly constructed.
func (h *MessageHead) reset() {
	h.Priority = 0
	h.Version = 0
	h.Timestamp = nilValue
	h.Hostname = nilValue
	h.AppName = nilValue
	h.ProcessID = nilValue
	h.MessageID = nilValue
	h.sdElements = nil
	h.sdByID = nil
	h.curSDE = nil
	h.curParam = nil
}

// beginSDElement starts a new SD element identified by id. id must be
// non-empty (empty SD-IDs are rejected by the state machine before this
// is called). Returns ErrMalformedSD if id was already used in this
// message, unless allowDup is set (legacy silent-overwrite behavior, see
// WithAllowDuplicateSDID).
func (h *MessageHead) beginSDElement(id []byte, allowDup bool) *ParsingError {
	key := string(id)
	if h.sdByID == nil {
		h.sdByID = make(map[string]*sdElement)
	}
	if existing, dup := h.sdByID[key]; dup {
		if !allowDup {
			return newErr(ErrMalformedSD, "duplicate_sd_id: "+key)
		}
		// legacy behavior: silently reuse/overwrite the existing element.
		existing.params = existing.params[:0]
		existing.byIdx = make(map[string]int)
		h.curSDE = existing
		h.curParam = nil
		return nil
	}
	e := &sdElement{id: cloneBytes(id), byIdx: make(map[string]int)}
	h.sdElements = append(h.sdElements, e)
	h.sdByID[key] = e
	h.curSDE = e
	h.curParam = nil
	return nil
}

// setSDParam marks name as the current parameter name, pending a value.
// Must follow beginSDElement. Returns ErrMalformedSD if no SD element is
// open, or if name is a duplicate within the current element.
func (h *MessageHead) setSDParam(name []byte) *ParsingError {
	if h.curSDE == nil {
		return newErr(ErrMalformedSD, "sd param outside of an sd element")
	}
	if _, dup := h.curSDE.paramIndex(name); dup {
		return newErr(ErrMalformedSD, "duplicate sd parameter name: "+string(name))
	}
	h.curParam = cloneBytes(name)
	return nil
}

// setSDValue stores value under the current (SD-ID, parameter name).
// Returns ErrMalformedSD if setSDParam has not been called since the last
// beginSDElement/setSDValue.
func (h *MessageHead) setSDValue(value []byte) *ParsingError {
	if h.curSDE == nil || h.curParam == nil {
		return newErr(ErrMalformedSD, "sd_value_without_name")
	}
	idx := len(h.curSDE.params)
	h.curSDE.params = append(h.curSDE.params, sdParam{name: h.curParam, value: cloneBytes(value)})
	h.curSDE.byIdx[string(h.curParam)] = idx
	h.curParam = nil
	return nil
}

// SDIDs returns the SD-IDs present in this message, in insertion order.
func (h *MessageHead) SDIDs() []string {
	ids := make([]string, len(h.sdElements))
	for i, e := range h.sdElements {
		ids[i] = string(e.id)
	}
	return ids
}

// SDParam returns the value of parameter name within SD element id, and
// whether it was present.
func (h *MessageHead) SDParam(id, name []byte) ([]byte, bool) {
	e, ok := h.sdByID[string(id)]
	if !ok {
		return nil, false
	}
	i, ok := e.paramIndex(name)
	if !ok {
		return nil, false
	}
	return e.params[i].value, true
}

// SDParamNames returns the parameter names of SD element id, in
// insertion order, or nil if id is not present.
func (h *MessageHead) SDParamNames(id []byte) []string {
	e, ok := h.sdByID[string(id)]
	if !ok {
		return nil
	}
	names := make([]string, len(e.params))
	for i, p := range e.params {
		names[i] = string(p.name)
	}
	return names
}

// HasHostname reports whether Hostname case-insensitively equals name.
// This is a caller convenience, not used by the parser itself: RFC 5424
// hostnames are parsed and stored byte-exact (see DESIGN.md).
func (h *MessageHead) HasHostname(name []byte) bool {
	return bytescase.CmpEq(h.Hostname, name)
}

// HasAppName reports whether AppName case-insensitively equals name. See
// HasHostname.
func (h *MessageHead) HasAppName(name []byte) bool {
	return bytescase.CmpEq(h.AppName, name)
}

// Strings returns a snapshot of the scalar head fields as strings (decimal
// priority/version, NILVALUE "-" or the field value otherwise), safe to
// retain past the Handler callback that received this head.
func (h *MessageHead) Strings() map[string]string {
	return map[string]string{
		"priority":  strconv.Itoa(int(h.Priority)),
		"version":   strconv.Itoa(h.Version),
		"timestamp": string(h.Timestamp),
		"hostname":  string(h.Hostname),
		"appname":   string(h.AppName),
		"processid": string(h.ProcessID),
		"messageid": string(h.MessageID),
	}
}

// SDStrings returns a snapshot of the structured-data map as nested plain
// maps, keyed by SD-ID then parameter name. Iteration order of the
// returned maps is not guaranteed (Go map semantics); use SDIDs /
// SDParamNames for ordered access.
func (h *MessageHead) SDStrings() map[string]map[string]string {
	out := make(map[string]map[string]string, len(h.sdElements))
	for _, e := range h.sdElements {
		m := make(map[string]string, len(e.params))
		for _, p := range e.params {
			m[string(p.name)] = string(p.value)
		}
		out[string(e.id)] = m
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

