// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tetherlock/tetherlock/lib/config"
	"github.com/tetherlock/tetherlock/lib/service"
	"github.com/tetherlock/tetherlock/lib/session"
	"github.com/tetherlock/tetherlock/lib/usb"
	"github.com/tetherlock/tetherlock/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   string
		socketPath   string
		pollInterval string
		showVersion  bool
	)

	flag.StringVar(&configPath, "config", "", "path to tetherd.yaml (built-in defaults when empty)")
	flag.StringVar(&socketPath, "socket", "", "control socket path (overrides config)")
	flag.StringVar(&pollInterval, "poll-interval", "", "hotplug poll interval, e.g. 250ms (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("tetherd %s\n", version.Info())
		return nil
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if pollInterval != "" {
		cfg.PollInterval = pollInterval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Session locking and the control socket's trust model both assume
	// the daemon owns the machine; refuse to run without privileges.
	if os.Geteuid() != 0 {
		logger.Error("tetherd must be run with root privileges")
		return fmt.Errorf("tetherd must be run with root privileges")
	}

	interval, err := cfg.PollIntervalDuration()
	if err != nil {
		return err
	}

	bus := usb.NewSystemBus(logger)
	if !bus.HotplugSupported() {
		logger.Warn("USB hotplug support is not available; tether commands will fail")
	}

	tetherDaemon := newDaemon(bus, &session.Loginctl{Path: cfg.LoginctlPath}, interval, logger)
	server := service.NewSocketServer(cfg.SocketPath, tetherDaemon.handle, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tetherd starting",
		"socket", cfg.SocketPath,
		"poll_interval", interval.String(),
		"version", version.Info(),
	)
	return server.Serve(ctx)
}
