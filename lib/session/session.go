// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package session locks active login sessions through the system
// session manager.
//
// The [Manager] contract is what the daemon consumes; [Loginctl] is
// the production implementation on top of systemd-logind's loginctl.
// [LockAll] implements the locking policy: a failure to enumerate
// sessions aborts the attempt, while a failure to lock one session is
// logged and skipped so the remaining sessions still lock. There is no
// rollback; a partially locked machine is an accepted outcome.
package session

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Manager enumerates and locks login sessions.
type Manager interface {
	// ListSessions returns the identifiers of active sessions.
	ListSessions() ([]string, error)

	// LockSession locks one session by identifier.
	LockSession(id string) error
}

// LockAll locks every active session, best effort. Per-session lock
// failures are logged and skipped; only a failure to enumerate
// sessions is returned as an error.
func LockAll(manager Manager, logger *slog.Logger) error {
	sessions, err := manager.ListSessions()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	for _, id := range sessions {
		if err := manager.LockSession(id); err != nil {
			logger.Warn("failed to lock session", "session", id, "error", err)
			continue
		}
		logger.Info("locked session", "session", id)
	}
	return nil
}

// Loginctl is the production Manager backed by the loginctl binary.
type Loginctl struct {
	// Path is the loginctl executable. Empty means "loginctl" resolved
	// through PATH.
	Path string
}

func (l *Loginctl) binary() string {
	if l.Path == "" {
		return "loginctl"
	}
	return l.Path
}

// ListSessions runs "loginctl list-sessions --no-legend" and returns
// the session identifier from each output line.
func (l *Loginctl) ListSessions() ([]string, error) {
	output, err := exec.Command(l.binary(), "list-sessions", "--no-legend").Output()
	if err != nil {
		return nil, fmt.Errorf("running %s list-sessions: %w", l.binary(), err)
	}
	return parseSessionList(output), nil
}

// LockSession runs "loginctl lock-session <id>".
func (l *Loginctl) LockSession(id string) error {
	if err := exec.Command(l.binary(), "lock-session", id).Run(); err != nil {
		return fmt.Errorf("running %s lock-session %s: %w", l.binary(), id, err)
	}
	return nil
}

// parseSessionList extracts the first column of each non-empty line of
// loginctl's legend-free table output.
func parseSessionList(output []byte) []string {
	var sessions []string
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		sessions = append(sessions, fields[0])
	}
	return sessions
}
