// Package event defines the broadcastable event type and its delivery scopes.
package event

import "fmt"

// ScopeKind enumerates the delivery scopes an event can target.
type ScopeKind int

const (
	// ScopeRoom delivers to every live session in one room.
	ScopeRoom ScopeKind = iota
	// ScopeGlobal delivers to every live session.
	ScopeGlobal
	// ScopeDirect delivers to exactly one session.
	ScopeDirect
)

// String returns the scope kind name for logging.
func (k ScopeKind) String() string {
	switch k {
	case ScopeRoom:
		return "room"
	case ScopeGlobal:
		return "global"
	case ScopeDirect:
		return "direct"
	default:
		return fmt.Sprintf("scope(%d)", int(k))
	}
}

// Scope identifies the set of sessions eligible to receive an event.
type Scope struct {
	Kind ScopeKind
	// RoomID is set when Kind is ScopeRoom.
	RoomID string
	// SessionID is set when Kind is ScopeDirect.
	SessionID string
}

// Event is an immutable message with a delivery scope and rendered text.
type Event struct {
	Scope Scope
	// Text is the fully rendered line, without a trailing newline.
	Text string
	// ExcludeSession, when non-empty, is a session ID the event must not be
	// delivered to (typically the actor who caused it).
	ExcludeSession string
}

// Room constructs a room-scoped event.
func Room(roomID, text string) Event {
	return Event{Scope: Scope{Kind: ScopeRoom, RoomID: roomID}, Text: text}
}

// RoomExcept constructs a room-scoped event that skips one session.
func RoomExcept(roomID, excludeSessionID, text string) Event {
	e := Room(roomID, text)
	e.ExcludeSession = excludeSessionID
	return e
}

// Global constructs a world-wide event.
func Global(text string) Event {
	return Event{Scope: Scope{Kind: ScopeGlobal}, Text: text}
}

// Direct constructs an event addressed to a single session.
func Direct(sessionID, text string) Event {
	return Event{Scope: Scope{Kind: ScopeDirect, SessionID: sessionID}, Text: text}
}
