// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSocketPath is the well-known control socket bound by tetherd.
const DefaultSocketPath = "/run/tetherd.sock"

// Command names understood by the daemon.
const (
	CommandStatus = "status"
	CommandTether = "tether"
	CommandSevere = "severe"
)

// ErrorPrefix tags a failure response body on the wire.
const ErrorPrefix = "ERR: "

// MaxRequestSize is the largest request the daemon will read from a
// connection. The longest valid command ("tether 255 255") is far
// smaller; the bound exists so a misbehaving client cannot make the
// daemon buffer unbounded input.
const MaxRequestSize = 512

// ErrRejected is returned when the daemon closes the connection without
// writing a response. The daemon does this for callers whose peer
// credentials fail the same-user check.
var ErrRejected = errors.New("daemon closed the connection without responding")

// ParseResponse splits a raw response body into its success text or its
// error. An empty body means the daemon refused to serve the caller.
func ParseResponse(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", ErrRejected
	}
	if message, ok := strings.CutPrefix(trimmed, ErrorPrefix); ok {
		return "", fmt.Errorf("%s", strings.TrimSpace(message))
	}
	return trimmed, nil
}
