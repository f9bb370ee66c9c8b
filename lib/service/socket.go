// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tetherlock/tetherlock/lib/ipc"
)

// HandlerFunc processes one trimmed request line and returns the
// response body, or an error that the server reports to the caller
// with the ipc.ErrorPrefix tag. Handlers run on the connection's own
// goroutine, so a slow handler blocks only that one caller.
type HandlerFunc func(request string) (string, error)

// readTimeout is how long we wait for the client to send its request
// and half-close. A well-behaved client does both immediately.
const readTimeout = 30 * time.Second

// writeTimeout is how long we wait for the response to be written.
const writeTimeout = 10 * time.Second

// SocketServer serves the text control protocol on a Unix socket.
// Each connection handles exactly one request-response cycle: the
// client writes the request and half-closes, the server authenticates
// the peer, dispatches, writes the response, and closes.
type SocketServer struct {
	socketPath string
	handler    HandlerFunc
	logger     *slog.Logger

	// checkPeer authenticates an accepted connection before any read.
	// Defaults to SameUserCheck; tests substitute their own to
	// exercise the rejection path.
	checkPeer func(conn *net.UnixConn) error

	readyOnce sync.Once
	ready     chan struct{}

	// activeConnections tracks in-flight handlers so Serve can drain
	// before returning.
	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server that will listen on socketPath and
// dispatch every authenticated request to handler.
func NewSocketServer(socketPath string, handler HandlerFunc, logger *slog.Logger) *SocketServer {
	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		checkPeer:  SameUserCheck,
		ready:      make(chan struct{}),
	}
}

// SetPeerCheck replaces the peer-credential check. Intended for tests;
// production callers keep the default same-user check.
func (s *SocketServer) SetPeerCheck(check func(conn *net.UnixConn) error) {
	s.checkPeer = check
}

// Ready is closed once the listener is bound. Callers that start the
// server on another goroutine wait on this instead of sleeping.
func (s *SocketServer) Ready() <-chan struct{} {
	return s.ready
}

// Serve binds the socket and accepts connections until ctx is
// cancelled, then waits for active handlers to drain. Any stale socket
// file at the configured path is removed unconditionally before
// binding; a bind failure is returned to the caller, which for the
// daemon is fatal.
func (s *SocketServer) Serve(ctx context.Context) error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("control socket listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// ServeOnce binds the socket, serves exactly one connection, and
// returns. This gives tests a deterministic single-shot lifecycle.
func (s *SocketServer) ServeOnce() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	conn, err := listener.Accept()
	if err != nil {
		return fmt.Errorf("accepting connection: %w", err)
	}
	s.handleConnection(conn)
	return nil
}

func (s *SocketServer) listen() (net.Listener, error) {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}

	s.readyOnce.Do(func() { close(s.ready) })
	return listener, nil
}

// handleConnection processes one request-response cycle. The peer is
// authenticated before anything is read: on a credential mismatch the
// connection closes with zero bytes written, so an unauthorized caller
// learns nothing about the protocol.
func (s *SocketServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		s.logger.Error("accepted connection is not a unix socket")
		return
	}

	if err := s.checkPeer(unixConn); err != nil {
		s.logger.Warn("rejected control connection", "error", err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// The client half-closes after writing, so the request is simply
	// everything until EOF, bounded by MaxRequestSize.
	raw, err := io.ReadAll(io.LimitReader(conn, ipc.MaxRequestSize))
	if err != nil {
		s.logger.Error("failed to read request", "error", err)
		return
	}

	request := strings.TrimSpace(string(raw))
	s.logger.Debug("received control request", "request", request)

	body, err := s.handler(request)
	if err != nil {
		s.logger.Warn("handler reported error", "request", request, "error", err)
		body = ipc.ErrorPrefix + err.Error()
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte(body)); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
