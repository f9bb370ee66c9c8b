// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/tetherlock/tetherlock/lib/cli"
	"github.com/tetherlock/tetherlock/lib/usb"
)

func devicesCommand() *cli.Command {
	return &cli.Command{
		Name:    "devices",
		Summary: "List attached USB devices with their bus/address pairs",
		Usage:   "tether devices",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runDevices(os.Stdout)
		},
	}
}

// runDevices enumerates locally rather than asking the daemon, so it
// works even when tetherd is not running.
func runDevices(w io.Writer) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	bus := usb.NewSystemBus(logger)

	devices, err := bus.ListDevices()
	if err != nil {
		return err
	}
	return printDevices(w, devices)
}

func printDevices(w io.Writer, devices []usb.DeviceInfo) error {
	if len(devices) == 0 {
		fmt.Fprintln(w, "no USB devices found")
		return nil
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Key.Bus != devices[j].Key.Bus {
			return devices[i].Key.Bus < devices[j].Key.Bus
		}
		return devices[i].Key.Address < devices[j].Key.Address
	})
	for _, device := range devices {
		fmt.Fprintln(w, device.Summary())
	}
	return nil
}
