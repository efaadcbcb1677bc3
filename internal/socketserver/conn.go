package socketserver

import (
	"io"
	"net"
	"sync/atomic"

	"github.com/buildsock/buildsock/internal/logger"
	"github.com/buildsock/buildsock/internal/protocol"
)

// Conn owns one accepted connection. The wire protocol is one JSON document
// per connection, delimited by the peer closing its write side: the reader
// consumes the stream to EOF, decodes, closes the connection, then hands the
// decoded value to the callback. A malformed peer is logged and discarded,
// never propagated.
type Conn struct {
	conn     net.Conn
	callback func(interface{})

	// shuttingDown is set before the forced close in Stop, so the read
	// error it provokes is classified as expected instead of logged.
	shuttingDown atomic.Bool
	done         chan struct{}
}

// newConn starts the read loop for an already-accepted connection.
func newConn(conn net.Conn, callback func(interface{})) *Conn {
	c := &Conn{
		conn:     conn,
		callback: callback,
		done:     make(chan struct{}),
	}
	go c.read()
	return c
}

func (c *Conn) read() {
	defer close(c.done)

	data, err := io.ReadAll(c.conn)
	if err != nil {
		c.conn.Close()
		c.fail("read", err)
		return
	}

	v, err := protocol.Decode(data)
	if err != nil {
		c.conn.Close()
		c.fail("decode", err)
		return
	}

	c.conn.Close()
	c.callback(v)
}

func (c *Conn) fail(stage string, err error) {
	if c.shuttingDown.Load() {
		// Expected: our own Stop forced the connection closed.
		return
	}
	logger.Error("Connection %s failed: %v", stage, err)
}

// Stop forcibly closes the connection and waits for the read loop to finish.
// Safe to call after the loop has already exited naturally.
func (c *Conn) Stop() {
	c.shuttingDown.Store(true)
	c.conn.Close()
	<-c.done
}

// IsActive reports whether the read loop is still running.
func (c *Conn) IsActive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}
