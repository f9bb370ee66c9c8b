// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
)

type fakeManager struct {
	sessions []string
	listErr  error
	lockErrs map[string]error

	locked []string
}

func (m *fakeManager) ListSessions() ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sessions, nil
}

func (m *fakeManager) LockSession(id string) error {
	m.locked = append(m.locked, id)
	return m.lockErrs[id]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLockAllLocksEverySession(t *testing.T) {
	manager := &fakeManager{sessions: []string{"1", "2", "c3"}}

	if err := LockAll(manager, discardLogger()); err != nil {
		t.Fatalf("LockAll: %v", err)
	}
	if !slices.Equal(manager.locked, []string{"1", "2", "c3"}) {
		t.Errorf("locked = %v, want [1 2 c3]", manager.locked)
	}
}

func TestLockAllSkipsFailedSessions(t *testing.T) {
	manager := &fakeManager{
		sessions: []string{"1", "2", "3"},
		lockErrs: map[string]error{"2": errors.New("session busy")},
	}

	if err := LockAll(manager, discardLogger()); err != nil {
		t.Fatalf("LockAll returned error for a per-session failure: %v", err)
	}
	if !slices.Equal(manager.locked, []string{"1", "2", "3"}) {
		t.Errorf("locked = %v, want all three attempted", manager.locked)
	}
}

func TestLockAllAbortsWhenListingFails(t *testing.T) {
	manager := &fakeManager{listErr: errors.New("logind unreachable")}

	err := LockAll(manager, discardLogger())
	if err == nil {
		t.Fatal("LockAll succeeded despite listing failure")
	}
	if len(manager.locked) != 0 {
		t.Errorf("locked = %v, want none", manager.locked)
	}
}

func TestParseSessionList(t *testing.T) {
	output := []byte(" 1  1000 alice seat0 tty2  active no  -\n" +
		" 4  1001 bob   -     pts/1 active no  -\n" +
		"\n" +
		"c2  0    root  -     -     active no  -\n")

	got := parseSessionList(output)
	if !slices.Equal(got, []string{"1", "4", "c2"}) {
		t.Errorf("parseSessionList = %v, want [1 4 c2]", got)
	}
}

func TestParseSessionListEmpty(t *testing.T) {
	if got := parseSessionList(nil); len(got) != 0 {
		t.Errorf("parseSessionList(nil) = %v, want empty", got)
	}
	if got := parseSessionList([]byte("\n\n")); len(got) != 0 {
		t.Errorf("parseSessionList(blank) = %v, want empty", got)
	}
}
