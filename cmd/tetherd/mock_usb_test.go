// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"sync"
	"time"

	"github.com/tetherlock/tetherlock/lib/usb"
)

// fakeBus is an in-memory usb.Interface. Enumeration returns a fixed
// device list; every OpenEvents call produces a fresh fakeEvents that
// is also sent on the opened channel so tests can drive the watcher
// that owns it.
type fakeBus struct {
	devices []usb.DeviceInfo
	hotplug bool

	// gated controls whether new fakeEvents pump only when the test
	// releases the gate. See fakeEvents.Pump.
	gated bool

	opened chan *fakeEvents
}

func newFakeBus(devices ...usb.DeviceInfo) *fakeBus {
	return &fakeBus{
		devices: devices,
		hotplug: true,
		opened:  make(chan *fakeEvents, 16),
	}
}

func (b *fakeBus) ListDevices() ([]usb.DeviceInfo, error) {
	return append([]usb.DeviceInfo(nil), b.devices...), nil
}

func (b *fakeBus) HotplugSupported() bool {
	return b.hotplug
}

func (b *fakeBus) OpenEvents() (usb.EventContext, error) {
	events := &fakeEvents{
		queue:         make(chan usb.Event, 16),
		pumpErrs:      make(chan error, 1),
		closed:        make(chan struct{}),
		subscriptions: make(map[int]fakeSubscription),
	}
	if b.gated {
		events.gate = make(chan struct{})
	}
	b.opened <- events
	return events, nil
}

type fakeSubscription struct {
	vendorID  uint16
	productID uint16
	callback  func(usb.Event)
}

// fakeEvents is an in-memory usb.EventContext. Tests enqueue events
// with emit; the owning watcher dispatches them from inside Pump, the
// same thread of control the real netlink context uses.
type fakeEvents struct {
	queue    chan usb.Event
	pumpErrs chan error

	// gate, when non-nil, makes Pump wait for an explicit release
	// before draining the queue. This lets a test enqueue several
	// events and have them observed in a single pump cycle.
	gate chan struct{}

	closed    chan struct{}
	closeOnce sync.Once

	mu            sync.Mutex
	subscriptions map[int]fakeSubscription
	nextID        int
}

func (e *fakeEvents) Register(vendorID, productID uint16, callback func(usb.Event)) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.subscriptions[id] = fakeSubscription{
		vendorID:  vendorID,
		productID: productID,
		callback:  callback,
	}
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscriptions, id)
	}, nil
}

func (e *fakeEvents) Pump(maxWait time.Duration) error {
	if e.gate != nil {
		select {
		case err := <-e.pumpErrs:
			return err
		case <-e.gate:
		case <-time.After(maxWait):
			return nil
		}
	} else {
		select {
		case err := <-e.pumpErrs:
			return err
		case event := <-e.queue:
			e.dispatch(event)
		case <-time.After(maxWait):
			return nil
		}
	}
	for {
		select {
		case event := <-e.queue:
			e.dispatch(event)
		default:
			return nil
		}
	}
}

func (e *fakeEvents) dispatch(event usb.Event) {
	e.mu.Lock()
	callbacks := make([]func(usb.Event), 0, len(e.subscriptions))
	for _, subscription := range e.subscriptions {
		if subscription.vendorID == event.VendorID && subscription.productID == event.ProductID {
			callbacks = append(callbacks, subscription.callback)
		}
	}
	e.mu.Unlock()
	for _, callback := range callbacks {
		callback(event)
	}
}

func (e *fakeEvents) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return nil
}

func (e *fakeEvents) emit(event usb.Event) {
	e.queue <- event
}

// release lets one gated pump cycle proceed.
func (e *fakeEvents) release() {
	e.gate <- struct{}{}
}

// fakeSessions is an in-memory session.Manager recording every lock
// attempt on a channel.
type fakeSessions struct {
	mu       sync.Mutex
	sessions []string
	listErr  error
	lockErrs map[string]error

	listCalls chan struct{}
	locked    chan string
}

func newFakeSessions(sessions ...string) *fakeSessions {
	return &fakeSessions{
		sessions:  sessions,
		lockErrs:  make(map[string]error),
		listCalls: make(chan struct{}, 16),
		locked:    make(chan string, 16),
	}
}

func (s *fakeSessions) ListSessions() ([]string, error) {
	s.listCalls <- struct{}{}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.sessions...), nil
}

func (s *fakeSessions) LockSession(id string) error {
	s.locked <- id
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockErrs[id]
}
