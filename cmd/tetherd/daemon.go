// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tetherlock/tetherlock/lib/session"
	"github.com/tetherlock/tetherlock/lib/usb"
)

// daemon owns the tether registry and its collaborators. It is an
// ordinary injected object rather than package state, so tests stand
// up as many independent instances as they need.
type daemon struct {
	registry     *registry
	usb          usb.Interface
	sessions     session.Manager
	pollInterval time.Duration
	logger       *slog.Logger
}

func newDaemon(bus usb.Interface, sessions session.Manager, pollInterval time.Duration, logger *slog.Logger) *daemon {
	return &daemon{
		registry:     newRegistry(),
		usb:          bus,
		sessions:     sessions,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// status renders the tether table, one line per tracked device.
func (d *daemon) status() (string, error) {
	views := d.registry.activeMonitors()
	if len(views) == 0 {
		return "no active tethers", nil
	}

	lines := make([]string, 0, len(views))
	for _, view := range views {
		tag := "watching"
		if view.removed {
			tag = "disconnected"
		}
		lines = append(lines, fmt.Sprintf("%s [%s]", view.info.Summary(), tag))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

// tether starts monitoring the device at (bus, address). Any failure
// leaves the registry untouched; there is no partially visible
// monitor state.
func (d *daemon) tether(bus, address uint8) (string, error) {
	if !d.usb.HotplugSupported() {
		d.logger.Warn("tether requested but hotplug support is not available")
		return "", fmt.Errorf("USB hotplug support is not available on this system")
	}

	key := usb.DeviceKey{Bus: bus, Address: address}

	// Fast rejection before the enumeration round-trip. The insert
	// below re-checks under the lock, which closes the race window
	// between this check and the insert.
	if d.registry.contains(key) {
		return "", alreadyTethered(key)
	}

	info, err := usb.Lookup(d.usb, key)
	if err != nil {
		return "", err
	}

	entry := &monitorEntry{info: info}
	entry.lockOnRemove.Store(true)

	if !d.registry.insert(key, entry) {
		return "", alreadyTethered(key)
	}

	go d.watch(key, entry)

	summary := info.Summary()
	d.logger.Info("tether activated", "device", summary)
	return "tether active for " + summary, nil
}

// severe disarms and evicts every tether without locking anything.
// Watchers notice their flags on their next poll wake and terminate;
// the registry does not wait for them.
func (d *daemon) severe() (string, error) {
	d.logger.Warn("received severe command; clearing active tethers")

	cleared := d.registry.clearAll()
	if len(cleared) == 0 {
		d.logger.Info("no tethers to clear")
		return "no active tethers", nil
	}

	for _, info := range cleared {
		d.logger.Info("cleared tether", "device", info.Summary())
	}
	return fmt.Sprintf("cleared %d tether(s)", len(cleared)), nil
}

func alreadyTethered(key usb.DeviceKey) error {
	return fmt.Errorf("device %s is already tethered", key)
}
