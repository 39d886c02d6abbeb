// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package syslogsp implements a streaming, incremental parser for RFC 5424
// syslog messages, with optional octet-counted framing.
//
// The parser consumes byte chunks of arbitrary size (a TCP read, a UDP
// datagram, a line from a file) through Session.Read and delivers parsed
// results through a caller-supplied Handler: a completed message head
// (priority, version, timestamp, hostname, app name, process id, message
// id and structured data) once per message, zero or more body fragments,
// and exactly one completion signal. A message never needs to arrive in a
// single Read call: partial fields are accumulated internally and survive
// chunk boundaries.
//
// Transport I/O, message routing, and FFI bindings are not part of this
// package; it only ever sees byte slices and calls back into a Handler.
package syslogsp
