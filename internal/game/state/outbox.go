package state

import (
	"fmt"
	"sync"
)

// DefaultOutboxSize is the bounded event queue depth per session.
const DefaultOutboxSize = 64

// Outbox is a session's bounded outbound event queue. The broadcast router
// pushes rendered lines in; the session's write pump drains them to the
// transport. Push never blocks: a full queue is reported as an error so a
// slow client stalls only itself.
type Outbox struct {
	sessionID string
	lines     chan string
	mu        sync.Mutex
	closed    bool
}

// NewOutbox creates an Outbox for the given session ID.
//
// Precondition: sessionID must be non-empty.
// Postcondition: Returns an Outbox with an open lines channel.
func NewOutbox(sessionID string, size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{
		sessionID: sessionID,
		lines:     make(chan string, size),
	}
}

// SessionID returns the owning session's identifier.
func (o *Outbox) SessionID() string {
	return o.sessionID
}

// Push enqueues a rendered line for delivery.
//
// Postcondition: The line is enqueued, or an error if the outbox is closed or full.
func (o *Outbox) Push(line string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox %s is closed", o.sessionID)
	}
	select {
	case o.lines <- line:
		return nil
	default:
		return fmt.Errorf("outbox %s queue full", o.sessionID)
	}
}

// Pending returns the number of queued lines not yet drained. The write
// pump uses this to decide when a burst of output has settled.
func (o *Outbox) Pending() int {
	return len(o.lines)
}

// Lines returns the read-only delivery channel. The channel is closed when
// the outbox is closed; the write pump exits by ranging over it.
func (o *Outbox) Lines() <-chan string {
	return o.lines
}

// Close marks the outbox closed and closes the lines channel. Idempotent.
//
// Postcondition: Further Push calls return an error.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.lines)
	}
}

// IsClosed reports whether the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
