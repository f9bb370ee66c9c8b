// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tetherlock/tetherlock/lib/usb"
)

// elevatedTether re-runs the tether CLI under pkexec or sudo. pkexec
// is preferred because it prompts graphically; sudo covers plain
// terminal sessions.
func elevatedTether(socketPath string, key usb.DeviceKey) (string, error) {
	return runElevated(socketPath, "tether", fmt.Sprintf("%d", key.Bus), fmt.Sprintf("%d", key.Address))
}

func elevatedSevere(socketPath string) (string, error) {
	return runElevated(socketPath, "severe")
}

func runElevated(socketPath string, args ...string) (string, error) {
	cli, err := findTetherCLI()
	if err != nil {
		return "", err
	}
	elevator, err := findElevator()
	if err != nil {
		return "", err
	}

	full := append([]string{cli}, args...)
	full = append(full, "--socket", socketPath)

	output, err := exec.Command(elevator, full...).CombinedOutput()
	text := strings.TrimSpace(string(output))
	if err != nil {
		if text != "" {
			return "", fmt.Errorf("%s: %s", elevator, text)
		}
		return "", fmt.Errorf("running %s %s: %w", elevator, cli, err)
	}
	return text, nil
}

// findTetherCLI locates the tether binary, preferring the one
// installed next to this picker.
func findTetherCLI() (string, error) {
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "tether")
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	if path, err := exec.LookPath("tether"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("tether CLI not found next to this binary or in PATH")
}

func findElevator() (string, error) {
	for _, candidate := range []string{"pkexec", "sudo"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("neither pkexec nor sudo is available to elevate")
}
