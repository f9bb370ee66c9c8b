// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the daemon side of the tetherd control
// socket: a Unix-socket server for the text protocol defined in
// package ipc.
//
// The trust boundary sits at the transport, not in the messages. Every
// accepted connection is checked against the kernel's peer credentials
// before a single byte is read; a caller whose effective UID differs
// from the daemon's is disconnected with no response. This is what
// makes the socket safe to leave at a well-known path on a multi-user
// machine.
//
// [SocketServer.Serve] runs a continuous accept loop with one goroutine
// per connection. [SocketServer.ServeOnce] serves exactly one
// connection and returns, which gives tests a deterministic lifecycle;
// [SocketServer.Ready] reports when the listener is bound so tests do
// not need sleeps.
package service
