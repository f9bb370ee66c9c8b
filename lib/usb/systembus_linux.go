// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package usb

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/pilebones/go-udev/netlink"
)

// SystemBus is the production USB subsystem: libusb for enumeration,
// the kernel uevent netlink socket for hotplug events.
type SystemBus struct {
	logger *slog.Logger
}

// NewSystemBus returns the real USB subsystem boundary.
func NewSystemBus(logger *slog.Logger) *SystemBus {
	return &SystemBus{logger: logger}
}

// ListDevices enumerates attached devices through libusb. Every device
// is opened briefly to read its product string; devices that refuse
// the open or the string read still appear, with an empty name.
func (b *SystemBus) ListDevices() ([]DeviceInfo, error) {
	context := gousb.NewContext()
	defer context.Close()

	devices, err := context.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return true
	})
	defer func() {
		for _, device := range devices {
			device.Close()
		}
	}()
	if err != nil {
		if len(devices) == 0 {
			return nil, fmt.Errorf("enumerating USB devices: %w", err)
		}
		// Some devices could not be opened; report the ones we have.
		b.logger.Warn("partial USB enumeration", "error", err, "devices", len(devices))
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for _, device := range devices {
		name, nameErr := device.Product()
		if nameErr != nil {
			b.logger.Debug("could not read product string",
				"bus", device.Desc.Bus,
				"address", device.Desc.Address,
				"error", nameErr,
			)
			name = ""
		}
		infos = append(infos, DeviceInfo{
			Key: DeviceKey{
				Bus:     uint8(device.Desc.Bus),
				Address: uint8(device.Desc.Address),
			},
			VendorID:    uint16(device.Desc.Vendor),
			ProductID:   uint16(device.Desc.Product),
			ProductName: name,
		})
	}
	return infos, nil
}

// HotplugSupported reports true: the uevent netlink family is always
// present on Linux.
func (b *SystemBus) HotplugSupported() bool {
	return true
}

// OpenEvents connects a dedicated netlink socket for kernel uevents
// and starts a reader feeding this context's queue. Each call is an
// independent subscription with its own socket.
func (b *SystemBus) OpenEvents() (EventContext, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.KernelEvent); err != nil {
		return nil, fmt.Errorf("connecting uevent netlink socket: %w", err)
	}

	context := &ueventContext{
		conn:          conn,
		queue:         make(chan netlink.UEvent, 64),
		monitorErrors: make(chan error, 1),
		subscriptions: make(map[int]*subscription),
	}
	context.quit = conn.Monitor(context.queue, context.monitorErrors, nil)
	return context, nil
}

// subscription is one registered callback with its vendor/product
// filter.
type subscription struct {
	vendorID  uint16
	productID uint16
	callback  func(Event)
}

// ueventContext adapts the netlink monitor to the EventContext
// contract: events accumulate in queue and are dispatched to matching
// callbacks from within Pump, on the pumping goroutine.
type ueventContext struct {
	conn          *netlink.UEventConn
	queue         chan netlink.UEvent
	monitorErrors chan error
	quit          chan struct{}

	mu            sync.Mutex
	subscriptions map[int]*subscription
	nextID        int
}

func (c *ueventContext) Register(vendorID, productID uint16, callback func(Event)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subscriptions[id] = &subscription{
		vendorID:  vendorID,
		productID: productID,
		callback:  callback,
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscriptions, id)
	}, nil
}

// Pump waits up to maxWait for an event, dispatches it and anything
// else already queued, then returns. A monitor error is fatal for this
// subscription.
func (c *ueventContext) Pump(maxWait time.Duration) error {
	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case uevent := <-c.queue:
		c.dispatch(uevent)
	case err := <-c.monitorErrors:
		return fmt.Errorf("uevent monitor: %w", err)
	case <-timer.C:
		return nil
	}

	// Drain whatever arrived in the meantime without blocking again.
	for {
		select {
		case uevent := <-c.queue:
			c.dispatch(uevent)
		case err := <-c.monitorErrors:
			return fmt.Errorf("uevent monitor: %w", err)
		default:
			return nil
		}
	}
}

func (c *ueventContext) dispatch(uevent netlink.UEvent) {
	var arrived bool
	switch uevent.Action {
	case netlink.ADD:
		arrived = true
	case netlink.REMOVE:
		arrived = false
	default:
		return
	}

	event, ok := parseUEvent(uevent.Env, arrived)
	if !ok {
		return
	}

	c.mu.Lock()
	callbacks := make([]func(Event), 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		if sub.vendorID == event.VendorID && sub.productID == event.ProductID {
			callbacks = append(callbacks, sub.callback)
		}
	}
	c.mu.Unlock()

	// Callbacks run outside the lock so they may deregister.
	for _, callback := range callbacks {
		callback(event)
	}
}

func (c *ueventContext) Close() error {
	close(c.quit)
	return c.conn.Close()
}
