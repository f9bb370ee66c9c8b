// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// The tether CLI controls a running tetherd.
//
// Bare invocation lists attached USB devices so the user can find the
// bus/address pair to tether; the status, tether, severe, and devices
// subcommands speak the daemon's control protocol or enumerate
// locally.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tetherlock/tetherlock/lib/cli"
	"github.com/tetherlock/tetherlock/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	var showVersion bool
	return &cli.Command{
		Name:    "tether",
		Summary: "Control a running tetherd: tether USB devices, inspect and clear tethers.",
		Usage:   "tether [command]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("tether", pflag.ContinueOnError)
			flags.BoolVar(&showVersion, "version", false, "print version information and exit")
			return flags
		},
		Subcommands: []*cli.Command{
			devicesCommand(),
			statusCommand(),
			tetherCommand(),
			severeCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("tether %s\n", version.Info())
					return nil
				},
			},
		},
		// Bare invocation lists devices, the natural first step.
		Run: func(args []string) error {
			if showVersion {
				fmt.Printf("tether %s\n", version.Info())
				return nil
			}
			return runDevices(os.Stdout)
		},
	}
}
