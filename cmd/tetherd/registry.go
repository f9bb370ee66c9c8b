// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"sync"
	"sync/atomic"

	"github.com/tetherlock/tetherlock/lib/usb"
)

// monitorEntry is one tracked tether. The two flags are shared between
// the watcher goroutine, the dispatcher, and severe; they are the only
// cross-goroutine hand-off and need nothing stronger than
// visibility-by-next-poll.
type monitorEntry struct {
	info usb.DeviceInfo

	// removed is set by a departure event for this exact key and
	// cleared again by a matching reattach. The watcher's poll loop
	// exits once it observes the flag set.
	removed atomic.Bool

	// lockOnRemove starts true. Severe clears it so a watcher that
	// subsequently observes removal disarms instead of locking; this
	// is the only mechanism distinguishing physical removal from a
	// deliberate disarm.
	lockOnRemove atomic.Bool
}

// monitorView is a read-only snapshot of one entry for rendering.
type monitorView struct {
	info    usb.DeviceInfo
	removed bool
}

// registry is the single source of truth for active tethers. The
// mutex guards only map operations and is never held across socket
// I/O, enumeration, event pumping, or session locking.
type registry struct {
	mu       sync.Mutex
	monitors map[usb.DeviceKey]*monitorEntry
}

func newRegistry() *registry {
	return &registry{monitors: make(map[usb.DeviceKey]*monitorEntry)}
}

// contains reports whether key is tracked. Callers must not treat a
// false result as permission to insert; insert re-checks atomically.
func (r *registry) contains(key usb.DeviceKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.monitors[key]
	return exists
}

// insert adds entry under key unless the key is already present. The
// presence check and the insert share one critical section, so two
// concurrent tethers for the same key cannot both succeed.
func (r *registry) insert(key usb.DeviceKey, entry *monitorEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.monitors[key]; exists {
		return false
	}
	r.monitors[key] = entry
	return true
}

// remove deletes key. Removing an absent key is a no-op: a watcher's
// self-removal routinely races severe's eager clear.
func (r *registry) remove(key usb.DeviceKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.monitors, key)
}

// activeMonitors returns a snapshot of every tracked entry. Entries
// whose removed flag is set are still reported (tagged disconnected by
// the caller); their watcher removes them shortly. No ordering is
// guaranteed.
func (r *registry) activeMonitors() []monitorView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]monitorView, 0, len(r.monitors))
	for _, entry := range r.monitors {
		views = append(views, monitorView{
			info:    entry.info,
			removed: entry.removed.Load(),
		})
	}
	return views
}

// clearAll disarms and evicts every entry: lock-on-remove is cleared
// before removed is set, so a watcher that wakes mid-clear can never
// observe removal with locking still armed. The map is emptied without
// waiting for watchers; their later self-removal of a missing key is
// harmless. Returns the evicted entries.
func (r *registry) clearAll() []usb.DeviceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := make([]usb.DeviceInfo, 0, len(r.monitors))
	for _, entry := range r.monitors {
		entry.lockOnRemove.Store(false)
		entry.removed.Store(true)
		cleared = append(cleared, entry.info)
	}
	clear(r.monitors)
	return cleared
}
