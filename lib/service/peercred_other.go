// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package service

import (
	"errors"
	"net"
)

// SameUserCheck rejects every connection on platforms without
// SO_PEERCRED. The daemon itself only runs on Linux; this keeps the
// package compiling for client-side tooling built elsewhere.
func SameUserCheck(conn *net.UnixConn) error {
	return errors.New("peer credentials are not supported on this platform")
}
