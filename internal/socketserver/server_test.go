package socketserver

import (
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// collector gathers decoded documents handed to the server callback
type collector struct {
	mu   sync.Mutex
	docs []interface{}
}

func (c *collector) add(v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, v)
}

func (c *collector) get() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interface{}(nil), c.docs...)
}

func (c *collector) waitFor(t *testing.T, n int) []interface{} {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if docs := c.get(); len(docs) >= n {
			return docs
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d documents, got %d", n, len(c.get()))
	return nil
}

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

// sendRaw writes data over a fresh connection and closes the write side so
// the server sees EOF
func sendRaw(t *testing.T, socketPath, data string) {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", socketPath, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(data)); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := conn.(*net.UnixConn).CloseWrite(); err != nil {
		t.Fatalf("failed to close write side: %v", err)
	}
}

// TestStartStop tests the basic listener lifecycle
func TestStartStop(t *testing.T) {
	path := testSocketPath(t)
	s := NewServer(path, func(interface{}) {})

	if s.IsRunning() {
		t.Error("server must not be running before Start")
	}
	if s.SocketPath() != path {
		t.Errorf("expected socket path %q, got %q", path, s.SocketPath())
	}

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	if !s.IsRunning() {
		t.Error("server must be running after Start")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("socket file missing: %v", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		t.Error("socket path is not a socket")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("server must not be running after Stop")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("socket file must be removed on Stop")
	}
}

// TestOneDocumentPerConnection tests the EOF-framed document delivery
func TestOneDocumentPerConnection(t *testing.T) {
	path := testSocketPath(t)
	c := &collector{}
	s := NewServer(path, c.add)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer s.Stop()

	sendRaw(t, path, `{"project": "/proj", "commands": []}`)

	docs := c.waitFor(t, 1)
	m, ok := docs[0].(map[string]interface{})
	if !ok {
		t.Fatalf("expected decoded object, got %T", docs[0])
	}
	if m["project"] != "/proj" {
		t.Errorf("unexpected project: %v", m["project"])
	}
}

// TestChunkedWrite tests that a document split across several writes is
// reassembled before decoding
func TestChunkedWrite(t *testing.T) {
	path := testSocketPath(t)
	c := &collector{}
	s := NewServer(path, c.add)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer s.Stop()

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	for _, chunk := range []string{`{"project": `, `"/proj", "comm`, `ands": []}`} {
		if _, err := conn.Write([]byte(chunk)); err != nil {
			t.Fatalf("failed to write chunk: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := conn.(*net.UnixConn).CloseWrite(); err != nil {
		t.Fatalf("failed to close write side: %v", err)
	}

	c.waitFor(t, 1)
}

// TestMalformedDocumentDiscarded tests that invalid JSON never reaches the
// callback and does not break later connections
func TestMalformedDocumentDiscarded(t *testing.T) {
	path := testSocketPath(t)
	c := &collector{}
	s := NewServer(path, c.add)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer s.Stop()

	sendRaw(t, path, `{this is not json`)
	sendRaw(t, path, ``)
	sendRaw(t, path, `{"project": "/after"}`)

	docs := c.waitFor(t, 1)
	if len(docs) != 1 {
		t.Fatalf("expected only the valid document, got %d", len(docs))
	}
	m := docs[0].(map[string]interface{})
	if m["project"] != "/after" {
		t.Errorf("unexpected project: %v", m["project"])
	}
}

// TestConcurrentConnections tests that simultaneous peers all get through
func TestConcurrentConnections(t *testing.T) {
	path := testSocketPath(t)
	c := &collector{}
	s := NewServer(path, c.add)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer s.Stop()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendRaw(t, path, `{"project": "/proj"}`)
		}()
	}
	wg.Wait()

	c.waitFor(t, n)
}

// TestStaleSocketRemoved tests that a leftover socket file from an unclean
// shutdown does not block the bind
func TestStaleSocketRemoved(t *testing.T) {
	path := testSocketPath(t)

	// Fabricate a stale socket by listening and skipping cleanup.
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to create stale socket: %v", err)
	}
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	l.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stale socket file missing: %v", err)
	}

	s := NewServer(path, func(interface{}) {})
	if err := s.Start(); err != nil {
		t.Fatalf("start must remove the stale socket first: %v", err)
	}
	s.Stop()
}

// TestRestartRebinds tests a full stop/start cycle on the same path
func TestRestartRebinds(t *testing.T) {
	path := testSocketPath(t)
	c := &collector{}
	s := NewServer(path, c.add)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("failed to restart server: %v", err)
	}
	defer s.Stop()

	sendRaw(t, path, `{"project": "/proj"}`)
	c.waitFor(t, 1)
}

// TestStartWhileRunning tests that Start on a running server recycles it
// instead of failing
func TestStartWhileRunning(t *testing.T) {
	path := testSocketPath(t)
	c := &collector{}
	s := NewServer(path, c.add)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("second start must succeed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("server must be running after second start")
	}

	sendRaw(t, path, `{"project": "/proj"}`)
	c.waitFor(t, 1)
}

// TestStartBindFailure tests that an unbindable path leaves the server in
// the not-started state
func TestStartBindFailure(t *testing.T) {
	s := NewServer(filepath.Join(t.TempDir(), "missing-dir", "test.sock"), func(interface{}) {})

	if err := s.Start(); err == nil {
		t.Fatal("expected bind failure")
	}
	if s.IsRunning() {
		t.Error("server must not be running after a failed start")
	}
}

// TestStopIdempotent tests that stopping twice is harmless
func TestStopIdempotent(t *testing.T) {
	s := NewServer(testSocketPath(t), func(interface{}) {})

	s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	s.Stop()
	s.Stop()
}

// TestStopCutsOpenConnection tests that Stop force-closes a peer that is
// still holding its connection open. A peer can stall a single reader for
// as long as it keeps the connection alive; shutdown must not wait for it.
func TestStopCutsOpenConnection(t *testing.T) {
	path := testSocketPath(t)
	s := NewServer(path, func(interface{}) {})

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(`{"project":`)); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	// Give the accept loop a moment to register the connection.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return while a peer held its connection open")
	}
}
