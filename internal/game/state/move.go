package state

import (
	"github.com/sa-mud/samud/internal/game/world"
)

// MoveResult describes a completed player move: the rooms involved and the
// view of the destination, enough for the caller to render arrival text and
// broadcast departure/arrival to both rooms.
type MoveResult struct {
	Username  string
	Direction world.Direction
	OldRoomID string
	NewRoomID string
	View      RoomView
}

// Move relocates the session's player through the exit in the given
// direction. The player's current-room field and both rooms' occupancy sets
// are updated atomically; on any error nothing changes.
//
// Postcondition: Returns a MoveResult, or ErrSessionNotFound, or a
// *NoSuchExitError carrying the current room's exits.
func (m *Manager) Move(sessionID string, dir world.Direction) (*MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	from := m.world.Rooms[p.roomID]
	targetID, ok := from.Exits[dir]
	if !ok {
		exits := make([]string, 0, len(from.Exits))
		for _, d := range from.SortedExits() {
			exits = append(exits, string(d))
		}
		return nil, &NoSuchExitError{Direction: string(dir), Exits: exits}
	}

	oldRoomID := p.roomID
	m.removeFromSet(m.roomPlayers, oldRoomID, sessionID)
	p.roomID = targetID
	m.addToSet(m.roomPlayers, targetID, sessionID)

	return &MoveResult{
		Username:  p.username,
		Direction: dir,
		OldRoomID: oldRoomID,
		NewRoomID: targetID,
		View:      m.buildRoomView(p),
	}, nil
}

// Where returns the name of the room the session's player occupies.
//
// Postcondition: Returns the room name, or ErrSessionNotFound.
func (m *Manager) Where(sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return m.world.Rooms[p.roomID].Name, nil
}
