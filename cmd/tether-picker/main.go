// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// The tether-picker TUI lists attached USB devices and tethers the
// selected one through a running tetherd. When the daemon refuses the
// connection (it only talks to its own user, normally root), the
// picker re-runs the plain tether CLI under pkexec or sudo instead.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tetherlock/tetherlock/lib/ipc"
	"github.com/tetherlock/tetherlock/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("tether-picker", pflag.ContinueOnError)
	socketPath := flags.String("socket", ipc.DefaultSocketPath, "tetherd control socket path")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("tether-picker %s\n", version.Info())
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tether-picker requires a terminal; use the tether CLI for scripting")
	}

	client := &ipc.Client{SocketPath: *socketPath}
	program := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
