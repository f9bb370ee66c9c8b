// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/tetherlock/tetherlock/lib/session"
	"github.com/tetherlock/tetherlock/lib/usb"
)

// watch is the per-tether watcher goroutine. It owns a private hotplug
// subscription and runs until the removed flag is observed or the
// subscription fails. On removal with lock-on-remove still armed it
// locks all sessions; on every exit path it deregisters its callback
// and removes its own registry entry. Nothing else ever removes an
// entry except severe's eager clear, which this self-removal may race
// harmlessly.
func (d *daemon) watch(key usb.DeviceKey, entry *monitorEntry) {
	defer d.registry.remove(key)

	label := entry.info.Summary()

	events, err := d.usb.OpenEvents()
	if err != nil {
		d.logger.Error("failed to open hotplug events", "device", label, "error", err)
		return
	}
	defer events.Close()

	deregister, err := events.Register(entry.info.VendorID, entry.info.ProductID, func(event usb.Event) {
		// The subscription filters by vendor/product only and several
		// units may share that identity, so the exact key must match.
		// The event's identity is also re-checked: if the kernel
		// reassigned this address to a different device, its events
		// carry a different vendor/product and must not count as a
		// reattach.
		if event.Key != key {
			return
		}
		if event.VendorID != entry.info.VendorID || event.ProductID != entry.info.ProductID {
			return
		}
		if event.Arrived {
			d.logger.Info("device reattached", "device", label)
			entry.removed.Store(false)
		} else {
			d.logger.Info("device unplugged", "device", label)
			entry.removed.Store(true)
		}
	})
	if err != nil {
		d.logger.Error("failed to register hotplug callback", "device", label, "error", err)
		return
	}

	d.logger.Info("monitoring device for removal", "device", label)

	for !entry.removed.Load() {
		if err := events.Pump(d.pollInterval); err != nil {
			// Subsystem failure: terminate without any locking side
			// effect. The request that created this watcher finished
			// long ago, so there is nobody to report to but the log.
			d.logger.Error("error while pumping hotplug events", "device", label, "error", err)
			break
		}
	}

	deregister()

	if !entry.removed.Load() {
		return
	}

	if entry.lockOnRemove.Load() {
		d.logger.Info("device removal detected; locking sessions", "device", label)
		if err := session.LockAll(d.sessions, d.logger); err != nil {
			d.logger.Error("failed to lock sessions", "device", label, "error", err)
		}
	} else {
		d.logger.Info("tether cleared without locking sessions", "device", label)
	}
}
