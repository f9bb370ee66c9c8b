// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tetherd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.SocketPath != "/run/tetherd.sock" {
		t.Errorf("SocketPath = %q, want /run/tetherd.sock", cfg.SocketPath)
	}
	interval, err := cfg.PollIntervalDuration()
	if err != nil {
		t.Fatalf("PollIntervalDuration: %v", err)
	}
	if interval != 250*time.Millisecond {
		t.Errorf("poll interval = %v, want 250ms", interval)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"socket_path: /tmp/test-tetherd.sock",
		"poll_interval: 1s",
		"log_level: debug",
	}, "\n"))

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.SocketPath != "/tmp/test-tetherd.sock" {
		t.Errorf("SocketPath = %q, want /tmp/test-tetherd.sock", cfg.SocketPath)
	}
	interval, err := cfg.PollIntervalDuration()
	if err != nil {
		t.Fatalf("PollIntervalDuration: %v", err)
	}
	if interval != time.Second {
		t.Errorf("poll interval = %v, want 1s", interval)
	}
	// Fields absent from the file keep their defaults.
	if cfg.LoginctlPath != "loginctl" {
		t.Errorf("LoginctlPath = %q, want loginctl", cfg.LoginctlPath)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level)
	}
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad poll interval",
			content: "poll_interval: fast",
			wantErr: "poll_interval",
		},
		{
			name:    "negative poll interval",
			content: "poll_interval: -1s",
			wantErr: "poll_interval must be positive",
		},
		{
			name:    "bad log level",
			content: "log_level: loud",
			wantErr: "log_level",
		},
		{
			name:    "empty socket path",
			content: `socket_path: ""`,
			wantErr: "socket_path is required",
		},
		{
			name:    "malformed yaml",
			content: "socket_path: [",
			wantErr: "parsing config file",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeConfig(t, test.content)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatalf("LoadFile accepted %q", test.content)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), test.wantErr)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile succeeded for a missing file")
	}
}

func TestSlogLevels(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		cfg := Default()
		cfg.LogLevel = name
		got, err := cfg.SlogLevel()
		if err != nil {
			t.Errorf("SlogLevel(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
