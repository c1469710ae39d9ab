package telnet

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeConn returns a telnet Conn and the raw peer end of an in-memory pipe.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, time.Second, time.Second), client
}

func TestReadLineStripsLineEndings(t *testing.T) {
	conn, peer := pipeConn(t)

	go peer.Write([]byte("look\r\nnorth\n"))

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "look", line)

	line, err = conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "north", line)
}

func TestReadLineFiltersIACNegotiation(t *testing.T) {
	conn, peer := pipeConn(t)

	// A client option refusal in the middle of typed input.
	go peer.Write([]byte{'s', 'a', IAC, WONT, OptEcho, 'y', '\r', '\n'})

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "say", line)
}

func TestReadLineFiltersSubnegotiation(t *testing.T) {
	conn, peer := pipeConn(t)

	go peer.Write([]byte{IAC, SB, OptEcho, 1, 2, 3, IAC, SE, 'h', 'i', '\n'})

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hi", line)
}

func TestReadLineDropsControlCharacters(t *testing.T) {
	conn, peer := pipeConn(t)

	go peer.Write([]byte("a\x07b\tc\r\n"))

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ab\tc", line)
}

func TestWriteLineAppendsCRLF(t *testing.T) {
	conn, peer := pipeConn(t)

	done := make(chan error, 1)
	go func() { done <- conn.WriteLine("hello") }()

	buf := make([]byte, 16)
	n, err := peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello\r\n", string(buf[:n]))
	require.NoError(t, <-done)
}

func TestReadPasswordTogglesEcho(t *testing.T) {
	conn, peer := pipeConn(t)

	got := make(chan string, 1)
	go func() {
		pw, err := conn.ReadPassword()
		require.NoError(t, err)
		got <- pw
	}()

	// Server suppresses echo first.
	buf := make([]byte, 3)
	_, err := peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptEcho}, buf)

	_, err = peer.Write([]byte("s3cret\r\n"))
	require.NoError(t, err)

	// Then restores echo and advances the cursor.
	buf = make([]byte, 3)
	_, err = peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WONT, OptEcho}, buf)

	crlf := make([]byte, 2)
	_, err = peer.Read(crlf)
	require.NoError(t, err)
	assert.Equal(t, "\r\n", string(crlf))

	assert.Equal(t, "s3cret", <-got)
}
