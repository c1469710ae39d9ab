// Package testutil provides integration test helpers: a telnet test client
// and a disposable PostgreSQL container.
package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sa-mud/samud/internal/telnet"
)

// TelnetClient is a line-oriented telnet test client.
type TelnetClient struct {
	conn net.Conn
	t    *testing.T
	// buf holds raw bytes read from the server but not yet consumed by a
	// ReadUntil match, so output arriving in one TCP burst is not lost
	// between calls.
	buf string
}

// NewTelnetClient dials addr and returns a connected client, closed
// automatically at test cleanup.
//
// Precondition: addr must have a listening server.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })

	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the accumulated output (ANSI
// escapes stripped) or the timeout passes. Returns everything read.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns accumulated output containing substr, or fails the test.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	for {
		if strings.Contains(telnet.StripANSI(c.buf), substr) {
			out := telnet.StripANSI(c.buf)
			c.buf = consumeThrough(c.buf, substr)
			return out
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.buf += string(tmp[:n])
		}
		if err != nil && !strings.Contains(telnet.StripANSI(c.buf), substr) {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, telnet.StripANSI(c.buf), err)
		}
	}
}

// consumeThrough returns raw with everything up to and including the first
// occurrence of substr (matched against the ANSI-stripped form) removed.
func consumeThrough(raw, substr string) string {
	for i := 1; i <= len(raw); i++ {
		if strings.Contains(telnet.StripANSI(raw[:i]), substr) {
			return raw[i:]
		}
	}
	return raw
}

// Send writes one line to the server, appending \r\n.
//
// Precondition: text should not carry its own newline.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// SendAndExpect sends a line and waits for substr in the response.
func (c *TelnetClient) SendAndExpect(text, substr string, timeout time.Duration) string {
	c.t.Helper()
	c.Send(text)
	return c.ReadUntil(substr, timeout)
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}

// Login drives the signup flow for a fresh account and waits until the
// player is in the world.
func (c *TelnetClient) Login(username, password string) {
	c.t.Helper()
	c.ReadUntil("Welcome to the San Antonio MUD", 5*time.Second)
	c.SendAndExpect("signup", "Choose a username:", 5*time.Second)
	c.SendAndExpect(username, "Choose a password:", 5*time.Second)
	c.SendAndExpect(password, "Account created", 5*time.Second)
}
