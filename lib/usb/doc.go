// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package usb is the boundary to the USB subsystem: enumeration of
// attached devices and a hotplug event feed.
//
// The daemon consumes the [Interface] and [EventContext] contracts and
// never touches the subsystem directly, so tests substitute in-memory
// fakes and drive arrival/departure events deterministically.
//
// [SystemBus] is the production implementation. Enumeration goes
// through libusb (gousb); hotplug events come from the kernel's uevent
// netlink socket, which reports USB attach/detach with bus number,
// device address, and the vendor/product pair. Event subscriptions are
// filtered by vendor/product only — the subsystem cannot filter by
// physical address, so callbacks must re-check bus/address themselves.
package usb
