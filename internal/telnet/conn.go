// Package telnet implements the TCP listener and the minimal subset of the
// telnet protocol (RFC 854) the server speaks: IAC sequence filtering on
// input, line-based reads, and echo suppression for password entry.
package telnet

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"sync"
	"time"
)

// Telnet IAC (Interpret As Command) bytes per RFC 854.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // sub-negotiation begin
	SE   byte = 240 // sub-negotiation end

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

// Conn wraps a TCP connection with telnet protocol handling: IAC sequences
// are stripped from input, and writes are serialized so the session's read
// loop and write pump can share the connection.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader

	writeMu      sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection. Zero timeouts disable deadlines.
//
// Precondition: raw must be an open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate sends the initial option negotiation: we suppress go-ahead and
// keep echo client-side until password entry.
func (c *Conn) Negotiate() error {
	return c.writeRaw([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads one line of input with IAC sequences filtered out. The
// returned line excludes the trailing newline. Blocks until a full line
// arrives, the read deadline passes, or the peer disconnects.
//
// Postcondition: Returns the line, or an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		switch {
		case b == IAC:
			if err := c.skipIAC(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			// Consume a following \n if present, then end the line.
			if next, err := c.reader.Peek(1); err == nil && len(next) > 0 && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t':
			// Drop control characters.
		default:
			line.WriteByte(b)
		}
	}
}

// skipIAC consumes one telnet command sequence after its leading IAC byte.
func (c *Conn) skipIAC() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		// One option byte follows.
		_, err := c.reader.ReadByte()
		return err
	case SB:
		// Consume sub-negotiation payload up to IAC SE.
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	default:
		// NOP, GA, escaped IAC: nothing further to consume.
		return nil
	}
}

// ReadPassword reads one line with client-side echo suppressed: IAC WILL
// Echo before the read, IAC WONT Echo after, plus a blank line so the
// cursor advances past the hidden input.
//
// Postcondition: Echo is restored even when the read fails.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.writeRaw([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}

	line, err := c.ReadLine()

	_ = c.writeRaw([]byte{IAC, WONT, OptEcho})
	_ = c.writeRaw([]byte("\r\n"))
	return line, err
}

// WriteLine sends text followed by \r\n.
//
// Precondition: text should not carry its own trailing newline.
func (c *Conn) WriteLine(text string) error {
	return c.writeRaw([]byte(text + "\r\n"))
}

// WritePrompt sends a prompt without a trailing newline.
func (c *Conn) WritePrompt(prompt string) error {
	return c.writeRaw([]byte(prompt))
}

func (c *Conn) writeRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if _, err := c.raw.Write(data); err != nil {
		return fmt.Errorf("writing to %s: %w", c.raw.RemoteAddr(), err)
	}
	return nil
}

// Close closes the underlying TCP connection. A blocked ReadLine returns
// with an error once the connection closes.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
