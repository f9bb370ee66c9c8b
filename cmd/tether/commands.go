// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/tetherlock/tetherlock/lib/cli"
	"github.com/tetherlock/tetherlock/lib/ipc"
)

// socketPath is shared by every subcommand that talks to the daemon.
var socketPath string

func socketFlags(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringVar(&socketPath, "socket", ipc.DefaultSocketPath, "tetherd control socket path")
	return flags
}

func client() *ipc.Client {
	return &ipc.Client{SocketPath: socketPath}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Summary: "Show the daemon's active tethers",
		Usage:   "tether status [flags]",
		Flags:   func() *pflag.FlagSet { return socketFlags("status") },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			response, err := client().Status()
			if err != nil {
				return err
			}
			fmt.Println(response)
			return nil
		},
	}
}

func tetherCommand() *cli.Command {
	return &cli.Command{
		Name:    "tether",
		Summary: "Tether the device at <bus> <address>; removal locks all sessions",
		Usage:   "tether tether <bus> <address> [flags]",
		Flags:   func() *pflag.FlagSet { return socketFlags("tether") },
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("usage: tether tether <bus> <address>")
			}
			if len(args) > 2 {
				return fmt.Errorf("unexpected argument: %s", args[2])
			}
			bus, err := parseID(args[0])
			if err != nil {
				return fmt.Errorf("invalid bus number: %s", args[0])
			}
			address, err := parseID(args[1])
			if err != nil {
				return fmt.Errorf("invalid device id: %s", args[1])
			}
			response, err := client().Tether(bus, address)
			if err != nil {
				return err
			}
			fmt.Println(response)
			return nil
		},
	}
}

func severeCommand() *cli.Command {
	return &cli.Command{
		Name:    "severe",
		Summary: "Clear every tether without locking any session",
		Usage:   "tether severe [flags]",
		Flags:   func() *pflag.FlagSet { return socketFlags("severe") },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			response, err := client().Severe()
			if err != nil {
				return err
			}
			fmt.Println(response)
			return nil
		},
	}
}

func parseID(text string) (uint8, error) {
	value, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(value), nil
}
