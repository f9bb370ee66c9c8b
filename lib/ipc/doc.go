// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the tetherd control protocol and a client for it.
//
// The protocol is plain text over a Unix domain socket. A request is a
// single whitespace-delimited command:
//
//	status
//	tether <bus> <address>
//	severe
//
// The client writes the request, half-closes the connection, and reads
// until the daemon closes. A success response is free text; a failure
// response is the error message prefixed with "ERR: ". There is no
// framing beyond read-until-close and no multiplexing: one request per
// connection.
//
// Authentication is not part of the message format. The daemon admits
// only callers whose effective UID matches its own, verified through
// kernel peer credentials; rejected callers see the connection close
// with zero bytes written.
package ipc
