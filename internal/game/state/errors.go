package state

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when an operation references a session ID
// that is not registered. Given correct session lifecycle handling this only
// happens when a command races a disconnect.
var ErrSessionNotFound = errors.New("session not found")

// ErrAlreadyConnected is returned by AddPlayer when the username already has
// a live session.
var ErrAlreadyConnected = errors.New("player already connected")

// ErrPlayerNotOnline is returned by Whisper when the target has no live session.
var ErrPlayerNotOnline = errors.New("player not online")

// ErrInvariantViolation signals corrupted world state, e.g. an item with both
// a room and a holder. It is a programming-defect signal: the offending
// operation fails, surrounding state is left untouched.
var ErrInvariantViolation = errors.New("world state invariant violation")

// NoSuchExitError is returned by Move when the current room has no exit in
// the requested direction. It carries the room's exits for rendering.
type NoSuchExitError struct {
	Direction string
	Exits     []string
}

func (e *NoSuchExitError) Error() string {
	return fmt.Sprintf("no exit %q", e.Direction)
}

// NotFoundError is returned when a name fragment matches nothing visible to
// the actor. Visible carries the names that were searched, for rendering.
type NotFoundError struct {
	// Kind is "item" or "npc".
	Kind     string
	Fragment string
	Visible  []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s matching %q", e.Kind, e.Fragment)
}

// AmbiguousError is returned when a name fragment matches more than one item.
// Candidates is sorted alphabetically; no state changes when this is returned.
type AmbiguousError struct {
	Fragment   string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous: %s", e.Fragment, strings.Join(e.Candidates, ", "))
}
