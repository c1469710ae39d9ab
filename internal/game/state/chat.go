package state

import (
	"fmt"
	"strings"

	"github.com/sa-mud/samud/internal/game/event"
)

// SayResult carries the room-scoped chat event plus the count of other
// listeners, so the sender can be told when nobody heard them.
type SayResult struct {
	Event     event.Event
	Rendered  string
	Listeners int
}

// Say constructs a room-scoped chat event for the session's current room.
// The event excludes the sender; the rendered line is echoed back separately.
//
// Postcondition: Returns the SayResult, or ErrSessionNotFound. No state changes.
func (m *Manager) Say(sessionID, text string) (SayResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return SayResult{}, ErrSessionNotFound
	}

	line := fmt.Sprintf("[Room] %s: %s", p.username, text)
	listeners := 0
	for id := range m.roomPlayers[p.roomID] {
		if id != sessionID {
			listeners++
		}
	}

	return SayResult{
		Event:     event.RoomExcept(p.roomID, sessionID, line),
		Rendered:  line,
		Listeners: listeners,
	}, nil
}

// Shout constructs a global chat event delivered to every live session,
// including the sender.
//
// Postcondition: Returns the event, or ErrSessionNotFound. No state changes.
func (m *Manager) Shout(sessionID, text string) (event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return event.Event{}, ErrSessionNotFound
	}
	return event.Global(fmt.Sprintf("[Global] %s: %s", p.username, text)), nil
}

// Emote constructs a room-scoped action line ("* name waves"), sender included.
//
// Postcondition: Returns the event, or ErrSessionNotFound. No state changes.
func (m *Manager) Emote(sessionID, action string) (event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return event.Event{}, ErrSessionNotFound
	}
	return event.Room(p.roomID, fmt.Sprintf("* %s %s", p.username, action)), nil
}

// WhisperResult carries the direct event for the target and the echo line
// for the sender.
type WhisperResult struct {
	Event event.Event
	Echo  string
}

// Whisper constructs a direct event to the target player's session. Whispers
// are not queued: if the target is offline the sender gets ErrPlayerNotOnline
// and nothing is delivered.
//
// Postcondition: Returns the WhisperResult, ErrSessionNotFound, or
// ErrPlayerNotOnline. No state changes.
func (m *Manager) Whisper(sessionID, targetUsername, text string) (WhisperResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return WhisperResult{}, ErrSessionNotFound
	}

	targetID, ok := m.byUsername[strings.ToLower(targetUsername)]
	if !ok {
		return WhisperResult{}, ErrPlayerNotOnline
	}
	target := m.players[targetID]

	return WhisperResult{
		Event: event.Direct(target.id, fmt.Sprintf("%s whispers: %s", p.username, text)),
		Echo:  fmt.Sprintf("You whisper to %s: %s", target.username, text),
	}, nil
}
