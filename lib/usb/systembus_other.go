// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package usb

import (
	"errors"
	"log/slog"
)

// SystemBus is a stub on platforms without the kernel uevent socket.
// Enumeration and hotplug both report unsupported; the daemon refuses
// tether requests accordingly.
type SystemBus struct {
	logger *slog.Logger
}

// NewSystemBus returns the stub subsystem boundary for this platform.
func NewSystemBus(logger *slog.Logger) *SystemBus {
	return &SystemBus{logger: logger}
}

var errUnsupported = errors.New("USB hotplug is not supported on this platform")

func (b *SystemBus) ListDevices() ([]DeviceInfo, error) {
	return nil, errUnsupported
}

func (b *SystemBus) HotplugSupported() bool {
	return false
}

func (b *SystemBus) OpenEvents() (EventContext, error) {
	return nil, errUnsupported
}
