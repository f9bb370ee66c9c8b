// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// tetherd is the privileged dead-man's-switch daemon. It binds a
// monitoring relationship (a "tether") to a specific USB device
// instance at (bus, address) and locks every active login session when
// that device is physically removed.
//
// Control happens over a Unix socket speaking the text protocol in
// lib/ipc. Only callers with the daemon's own effective UID are
// served; everyone else is disconnected without a response.
//
// Each tether owns one watcher goroutine holding a private hotplug
// subscription. Two lock-free flags per tether carry all coordination:
// "removed" (set by departure events, cleared by a matching reattach)
// and "lock-on-remove" (cleared by the severe command to disarm a
// tether without locking). The watcher is the only party that removes
// its registry entry, and it does so exactly once, on every exit path.
package main
