// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tetherlock/tetherlock/lib/ipc"
	"github.com/tetherlock/tetherlock/lib/usb"
)

func pickerDevices() []usb.DeviceInfo {
	return []usb.DeviceInfo{
		{Key: usb.DeviceKey{Bus: 1, Address: 2}, VendorID: 0x1d6b, ProductID: 0x0002},
		{Key: usb.DeviceKey{Bus: 3, Address: 7}, VendorID: 0x046d, ProductID: 0xc52b, ProductName: "USB Receiver"},
	}
}

func TestMarkTethered(t *testing.T) {
	status := "bus 003 address 007 046d:c52b - USB Receiver [watching]"

	items := markTethered(pickerDevices(), status)
	if len(items) != 2 {
		t.Fatalf("markTethered returned %d items, want 2", len(items))
	}
	if items[0].tethered {
		t.Error("untethered device marked tethered")
	}
	if !items[1].tethered {
		t.Error("tethered device not marked")
	}
}

func TestMarkTetheredDisconnected(t *testing.T) {
	status := "bus 003 address 007 046d:c52b - USB Receiver [disconnected]"

	items := markTethered(pickerDevices(), status)
	if !items[1].tethered {
		t.Error("disconnected tether not marked as tethered")
	}
}

func TestMarkTetheredNoActiveTethers(t *testing.T) {
	for _, item := range markTethered(pickerDevices(), "no active tethers") {
		if item.tethered {
			t.Errorf("device %s marked tethered with no active tethers", item.info.Key)
		}
	}
}

func TestNeedsElevation(t *testing.T) {
	if !needsElevation(ipc.ErrRejected) {
		t.Error("rejected connection should trigger elevation")
	}
	if !needsElevation(os.ErrPermission) {
		t.Error("permission error should trigger elevation")
	}
	if needsElevation(errors.New("unknown command: foo")) {
		t.Error("protocol error should not trigger elevation")
	}
}

func TestCursorNavigation(t *testing.T) {
	m := newModel(&ipc.Client{})
	updated, _ := m.Update(devicesMsg{items: markTethered(pickerDevices(), "")})
	m = updated.(model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	// Cursor stops at the end of the list.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down at end, want 1", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = updated.(model)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestSevereRequiresConfirmation(t *testing.T) {
	m := newModel(&ipc.Client{})
	updated, _ := m.Update(devicesMsg{items: markTethered(pickerDevices(), "")})
	m = updated.(model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(model)
	if !m.confirmingSevere {
		t.Fatal("severe did not enter confirmation")
	}
	if cmd != nil {
		t.Error("severe ran before confirmation")
	}

	// Anything but y cancels.
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(model)
	if m.confirmingSevere {
		t.Error("confirmation still active after cancel")
	}
	if cmd != nil {
		t.Error("severe ran after cancel")
	}
}

func TestTetherOfTetheredDeviceIsRefusedLocally(t *testing.T) {
	m := newModel(&ipc.Client{})
	status := "bus 001 address 002 1d6b:0002 [watching]"
	updated, _ := m.Update(devicesMsg{items: markTethered(pickerDevices(), status)})
	m = updated.(model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	if cmd != nil {
		t.Error("tether request sent for an already tethered device")
	}
	if m.notice == "" {
		t.Error("no notice shown for already tethered device")
	}
}
