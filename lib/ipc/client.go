// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// Client sends control commands to a running tetherd.
type Client struct {
	// SocketPath is the daemon's control socket. Empty means
	// DefaultSocketPath.
	SocketPath string
}

// Status asks the daemon for its tether table.
func (c *Client) Status() (string, error) {
	return c.roundTrip(CommandStatus)
}

// Tether asks the daemon to tether the device at (bus, address). The
// fields are sent as decimal text; the daemon validates the range.
func (c *Client) Tether(bus, address uint8) (string, error) {
	return c.roundTrip(fmt.Sprintf("%s %d %d", CommandTether, bus, address))
}

// Severe asks the daemon to disarm every tether without locking.
func (c *Client) Severe() (string, error) {
	return c.roundTrip(CommandSevere)
}

// roundTrip performs one request-response cycle: connect, write the
// command, half-close to signal end of request, read until the daemon
// closes. Failure responses become errors via ParseResponse.
func (c *Client) roundTrip(command string) (string, error) {
	body, err := c.Send(command)
	if err != nil {
		return "", err
	}
	return ParseResponse(body)
}

// Send transmits a raw command and returns the trimmed response body
// without interpreting it. Most callers want Status, Tether, or Severe;
// Send exists for tests and tooling that speak the wire format
// directly.
func (c *Client) Send(command string) (string, error) {
	socketPath := c.SocketPath
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command)); err != nil {
		// The daemon slams the door on unauthorized peers without
		// reading; that surfaces here as a broken pipe rather than an
		// empty read. Report it as the empty response it stands for.
		if isPeerClosed(err) {
			return "", nil
		}
		return "", fmt.Errorf("writing request: %w", err)
	}

	// Half-close: the daemon reads until EOF before dispatching.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		if err := unixConn.CloseWrite(); err != nil {
			if isPeerClosed(err) {
				return "", nil
			}
			return "", fmt.Errorf("closing write side: %w", err)
		}
	}

	body, err := io.ReadAll(conn)
	if err != nil {
		if isPeerClosed(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

func isPeerClosed(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
