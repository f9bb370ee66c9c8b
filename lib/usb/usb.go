// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package usb

import (
	"fmt"
	"time"
)

// Interface is the USB subsystem as the daemon sees it.
type Interface interface {
	// ListDevices enumerates currently attached devices. Product names
	// are best effort; a device that cannot be opened still appears,
	// with an empty name.
	ListDevices() ([]DeviceInfo, error)

	// HotplugSupported reports whether this platform can deliver
	// attach/detach events. When false, tether requests fail before
	// touching any state.
	HotplugSupported() bool

	// OpenEvents opens an independent hotplug subscription context.
	// Each monitor owns its own context, separate from the enumeration
	// path used for lookups.
	OpenEvents() (EventContext, error)
}

// EventContext is one hotplug subscription: register callbacks, pump
// events, close. Implementations deliver callbacks from within Pump on
// the caller's goroutine.
type EventContext interface {
	// Register installs a callback for attach/detach events matching
	// the vendor/product pair. The subsystem cannot filter by
	// bus/address, so the callback receives every unit with that
	// identity and must re-check the key itself. The returned function
	// deregisters the callback.
	Register(vendorID, productID uint16, callback func(Event)) (deregister func(), err error)

	// Pump waits up to maxWait for pending events and dispatches them
	// to registered callbacks. Returns nil on timeout with no events;
	// an error means the subscription is broken and the caller should
	// stop pumping.
	Pump(maxWait time.Duration) error

	// Close releases the subscription.
	Close() error
}

// NotFoundError reports that no device was attached at the requested
// key at lookup time.
type NotFoundError struct {
	Key DeviceKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no device found on bus %03d address %03d", e.Key.Bus, e.Key.Address)
}

// Lookup re-enumerates the bus and returns the device at key, or a
// *NotFoundError when nothing is attached there.
func Lookup(bus Interface, key DeviceKey) (DeviceInfo, error) {
	devices, err := bus.ListDevices()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("listing devices: %w", err)
	}
	for _, device := range devices {
		if device.Key == key {
			return device, nil
		}
	}
	return DeviceInfo{}, &NotFoundError{Key: key}
}
