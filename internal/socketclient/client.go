// Package socketclient delivers wire documents to a running build socket
// daemon. The protocol is fire-and-forget: one connection carries one JSON
// document, framed by closing the write side, and nothing comes back.
package socketclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"
)

// DetectTimeout bounds the connection probe in Detect
const DetectTimeout = 1 * time.Second

// Client sends documents to the socket at a fixed path
type Client struct {
	socketPath string
}

// NewClient creates a client for the given socket path
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Send marshals the request, delivers it over a fresh connection, and closes
// the write side so the server sees EOF-terminated framing.
func (c *Client) Send(ctx context.Context, req *Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}

	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return fmt.Errorf("failed to close write side: %w", err)
		}
	}

	return nil
}

// Detect reports whether a live daemon is listening at socketPath: the file
// must exist, be a socket, and accept a connection.
func Detect(socketPath string) bool {
	info, err := os.Stat(socketPath)
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeSocket == 0 {
		return false
	}

	conn, err := net.DialTimeout("unix", socketPath, DetectTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
