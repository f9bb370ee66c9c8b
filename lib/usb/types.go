// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package usb

import "fmt"

// DeviceKey identifies a physical device's current attachment point.
// The pair is unique among attached devices but not stable across
// replug: the kernel may assign a new address (or reuse this one for a
// different device) after a detach.
type DeviceKey struct {
	Bus     uint8
	Address uint8
}

// String renders the key in the zero-padded BBB:AAA form used in
// conflict messages.
func (k DeviceKey) String() string {
	return fmt.Sprintf("%03d:%03d", k.Bus, k.Address)
}

// DeviceInfo describes one attached device as reported by enumeration.
type DeviceInfo struct {
	Key       DeviceKey
	VendorID  uint16
	ProductID uint16

	// ProductName is the device's product string descriptor, or empty
	// when the device could not be opened or has none. Absence is
	// normal and never an enumeration failure.
	ProductName string
}

// Summary renders the device as a one-line human-readable description:
//
//	bus 003 address 007 046d:c52b - USB Receiver
//
// The name part is omitted when unknown.
func (d DeviceInfo) Summary() string {
	summary := fmt.Sprintf("bus %03d address %03d %04x:%04x",
		d.Key.Bus, d.Key.Address, d.VendorID, d.ProductID)
	if d.ProductName != "" {
		summary += " - " + d.ProductName
	}
	return summary
}

// Event is one hotplug notification. Arrived distinguishes attach from
// detach. The identity fields come from the kernel event itself, not
// from a fresh descriptor read; consumers re-check them against their
// own expectations before acting.
type Event struct {
	Key       DeviceKey
	VendorID  uint16
	ProductID uint16
	Arrived   bool
}
