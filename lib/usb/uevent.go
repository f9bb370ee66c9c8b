// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package usb

import (
	"strconv"
	"strings"
)

// Kernel uevent environment keys for USB device events.
const (
	ueventSubsystem = "SUBSYSTEM"
	ueventDevType   = "DEVTYPE"
	ueventBusNum    = "BUSNUM"
	ueventDevNum    = "DEVNUM"
	ueventProduct   = "PRODUCT"
)

// parseUEvent converts a kernel uevent environment into an Event.
// Only whole-device USB events carry the fields we need; interface
// events and other subsystems return ok=false.
func parseUEvent(env map[string]string, arrived bool) (Event, bool) {
	if env[ueventSubsystem] != "usb" || env[ueventDevType] != "usb_device" {
		return Event{}, false
	}

	key, ok := parseBusAddress(env[ueventBusNum], env[ueventDevNum])
	if !ok {
		return Event{}, false
	}

	vendorID, productID, ok := parseProductField(env[ueventProduct])
	if !ok {
		return Event{}, false
	}

	return Event{
		Key:       key,
		VendorID:  vendorID,
		ProductID: productID,
		Arrived:   arrived,
	}, true
}

// parseBusAddress parses the zero-padded decimal BUSNUM/DEVNUM pair.
func parseBusAddress(busNum, devNum string) (DeviceKey, bool) {
	bus, err := strconv.ParseUint(busNum, 10, 8)
	if err != nil {
		return DeviceKey{}, false
	}
	address, err := strconv.ParseUint(devNum, 10, 8)
	if err != nil {
		return DeviceKey{}, false
	}
	return DeviceKey{Bus: uint8(bus), Address: uint8(address)}, true
}

// parseProductField parses the kernel's PRODUCT value, which is
// "vendor/product/bcdDevice" in unpadded lowercase hex (for example
// "46d/c52b/1211").
func parseProductField(product string) (vendorID, productID uint16, ok bool) {
	parts := strings.Split(product, "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	vendor, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	productValue, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return uint16(vendor), uint16(productValue), true
}
