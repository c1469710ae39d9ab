package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sa-mud/samud/internal/game/event"
)

// DialogueResult is the outcome of a Talk operation, for rendering to the
// speaker and the rest of the room.
type DialogueResult struct {
	NPCName string
	Keyword string
	Line    string
}

// Talk resolves an NPC in the session's room by name fragment and looks up
// its response for the given keyword. An empty keyword asks for the NPC's
// default greeting.
//
// Postcondition: Returns the DialogueResult, or ErrSessionNotFound, or a
// *NotFoundError listing the NPCs present.
func (m *Manager) Talk(sessionID, npcFragment, keyword string) (*DialogueResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	// Deterministic resolution: candidates in alphabetical name order,
	// first match wins.
	var present []string
	for id := range m.roomNPCs[p.roomID] {
		present = append(present, m.npcs[id].def.Name)
	}
	sort.Strings(present)

	var target *npcState
	for _, name := range present {
		if matchesName(npcFragment, name) {
			for id := range m.roomNPCs[p.roomID] {
				if m.npcs[id].def.Name == name {
					target = m.npcs[id]
					break
				}
			}
			break
		}
	}
	if target == nil {
		return nil, &NotFoundError{Kind: "npc", Fragment: npcFragment, Visible: present}
	}

	if keyword == "" {
		keyword = "default"
	}
	return &DialogueResult{
		NPCName: target.def.Name,
		Keyword: keyword,
		Line:    respondTo(target.def.Responses, keyword),
	}, nil
}

// respondTo picks the dialogue line for keyword: exact key first, then a
// case-insensitive substring match in either direction, then the default.
func respondTo(responses map[string]string, keyword string) string {
	kw := strings.ToLower(keyword)
	if line, ok := responses[kw]; ok {
		return line
	}

	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, kw) || strings.Contains(kw, k) {
			return responses[k]
		}
	}

	return responses["default"]
}

// Rand is the randomness source for NPC wandering, injected so tick tests
// are deterministic. math/rand/v2's *Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// AdvanceNPCs performs one tick of NPC behavior: each wandering NPC rolls
// against chance and, on success, relocates to another of its permitted
// rooms, updating occupancy the same way a player move does. Returns one
// departure and one arrival event per relocation.
//
// Postcondition: Every NPC remains inside its permitted room set; returns a
// non-nil slice of room-scoped events.
func (m *Manager) AdvanceNPCs(rng Rand, chance float64) []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.npcs))
	for id := range m.npcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	events := []event.Event{}
	for _, id := range ids {
		n := m.npcs[id]
		if len(n.def.Wander) < 2 {
			continue
		}
		if rng.Float64() >= chance {
			continue
		}

		// Pick a permitted destination other than the current room.
		var candidates []string
		for _, roomID := range n.def.Wander {
			if roomID != n.roomID {
				candidates = append(candidates, roomID)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		destID := candidates[rng.IntN(len(candidates))]

		oldRoomID := n.roomID
		m.removeFromSet(m.roomNPCs, oldRoomID, id)
		n.roomID = destID
		m.addToSet(m.roomNPCs, destID, id)

		dest := m.world.Rooms[destID]
		events = append(events,
			event.Room(oldRoomID, fmt.Sprintf("%s wanders %s toward %s.",
				n.def.Name, m.directionBetween(oldRoomID, destID), dest.Name)),
			event.Room(destID, fmt.Sprintf("%s wanders in.", n.def.Name)),
		)
	}
	return events
}

// NPCRoom returns the current room of the NPC with the given ID.
//
// Postcondition: Returns (roomID, true) if the NPC exists, or ("", false).
func (m *Manager) NPCRoom(npcID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.npcs[npcID]
	if !ok {
		return "", false
	}
	return n.roomID, true
}

// directionBetween names the exit direction from one room to another, or
// "off" when no direct exit connects them. Caller must hold m.mu.
func (m *Manager) directionBetween(fromID, toID string) string {
	from := m.world.Rooms[fromID]
	for _, d := range from.SortedExits() {
		if from.Exits[d] == toID {
			return string(d)
		}
	}
	return "off"
}
