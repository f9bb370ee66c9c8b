// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tetherlock/tetherlock/lib/ipc"
)

// commandKind tags the parsed request variants.
type commandKind int

const (
	commandStatus commandKind = iota
	commandTether
	commandSevere
)

// command is one parsed request. bus and address are only meaningful
// for commandTether.
type command struct {
	kind    commandKind
	bus     uint8
	address uint8
}

// parseCommand turns a trimmed request line into a typed command.
// Malformed input is rejected with an error naming the offending
// field, before any registry access.
func parseCommand(text string) (command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return command{}, errors.New("empty command")
	}

	switch fields[0] {
	case ipc.CommandStatus:
		if len(fields) > 1 {
			return command{}, fmt.Errorf("unexpected argument: %s", fields[1])
		}
		return command{kind: commandStatus}, nil

	case ipc.CommandTether:
		if len(fields) < 2 {
			return command{}, errors.New("missing bus number")
		}
		if len(fields) < 3 {
			return command{}, errors.New("missing device id")
		}
		if len(fields) > 3 {
			return command{}, fmt.Errorf("unexpected argument: %s", fields[3])
		}
		bus, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return command{}, fmt.Errorf("invalid bus number: %s", fields[1])
		}
		address, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return command{}, fmt.Errorf("invalid device id: %s", fields[2])
		}
		return command{kind: commandTether, bus: uint8(bus), address: uint8(address)}, nil

	case ipc.CommandSevere:
		if len(fields) > 1 {
			return command{}, fmt.Errorf("unexpected argument: %s", fields[1])
		}
		return command{kind: commandSevere}, nil

	default:
		return command{}, fmt.Errorf("unknown command: %s", fields[0])
	}
}

// handle is the dispatcher: trimmed text in, response body out. It
// runs synchronously on the accepting connection's goroutine, so a
// slow tether (enumeration) blocks only that caller.
func (d *daemon) handle(request string) (string, error) {
	cmd, err := parseCommand(request)
	if err != nil {
		return "", err
	}

	switch cmd.kind {
	case commandStatus:
		return d.status()
	case commandTether:
		return d.tether(cmd.bus, cmd.address)
	case commandSevere:
		return d.severe()
	default:
		return "", fmt.Errorf("unhandled command kind %d", cmd.kind)
	}
}
