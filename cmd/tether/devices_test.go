// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/tetherlock/tetherlock/lib/usb"
)

func TestPrintDevicesSortsByBusAndAddress(t *testing.T) {
	devices := []usb.DeviceInfo{
		{Key: usb.DeviceKey{Bus: 3, Address: 7}, VendorID: 0x046d, ProductID: 0xc52b, ProductName: "USB Receiver"},
		{Key: usb.DeviceKey{Bus: 1, Address: 2}, VendorID: 0x1d6b, ProductID: 0x0002},
		{Key: usb.DeviceKey{Bus: 1, Address: 9}, VendorID: 0x0781, ProductID: 0x5567, ProductName: "Cruzer Blade"},
	}

	var out strings.Builder
	if err := printDevices(&out, devices); err != nil {
		t.Fatalf("printDevices: %v", err)
	}

	want := "bus 001 address 002 1d6b:0002\n" +
		"bus 001 address 009 0781:5567 - Cruzer Blade\n" +
		"bus 003 address 007 046d:c52b - USB Receiver\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestPrintDevicesEmpty(t *testing.T) {
	var out strings.Builder
	if err := printDevices(&out, nil); err != nil {
		t.Fatalf("printDevices: %v", err)
	}
	if out.String() != "no USB devices found\n" {
		t.Errorf("output = %q, want %q", out.String(), "no USB devices found\n")
	}
}
