// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package service

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// SameUserCheck verifies that the connecting process runs as the same
// effective UID as this process, using SO_PEERCRED. The credentials
// come from the kernel at connect time and cannot be forged by the
// peer, which makes this a transport-layer trust boundary rather than
// a convention.
func SameUserCheck(conn *net.UnixConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("accessing raw connection: %w", err)
	}

	var credentials *unix.Ucred
	var sockoptErr error
	if err := raw.Control(func(fd uintptr) {
		credentials, sockoptErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return fmt.Errorf("reading peer credentials: %w", err)
	}
	if sockoptErr != nil {
		return fmt.Errorf("reading peer credentials: %w", sockoptErr)
	}

	ownUID := uint32(os.Geteuid())
	if credentials.Uid != ownUID {
		return fmt.Errorf("peer uid %d does not match daemon uid %d (pid %d)",
			credentials.Uid, ownUID, credentials.Pid)
	}
	return nil
}
