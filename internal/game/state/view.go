package state

import "sort"

// NPCInfo is a display entry for an NPC in a room view.
type NPCInfo struct {
	Name        string
	Description string
}

// ItemInfo is a display entry for an item in a room view or inventory.
type ItemInfo struct {
	Name        string
	Description string
}

// RoomView is a read-only snapshot of a room as seen by one player. Players
// excludes the viewer; all slices are sorted for deterministic rendering.
type RoomView struct {
	RoomID      string
	Name        string
	Description string
	Exits       []string
	Players     []string
	NPCs        []NPCInfo
	Items       []ItemInfo
}

// Look returns the view of the session's current room, excluding the viewer
// from the occupant list.
//
// Postcondition: Returns the RoomView, or ErrSessionNotFound.
func (m *Manager) Look(sessionID string) (RoomView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return RoomView{}, ErrSessionNotFound
	}
	return m.buildRoomView(p), nil
}

// buildRoomView assembles the viewer's room snapshot. Caller must hold m.mu.
func (m *Manager) buildRoomView(viewer *playerState) RoomView {
	room := m.world.Rooms[viewer.roomID]

	view := RoomView{
		RoomID:      room.ID,
		Name:        room.Name,
		Description: room.Description,
	}

	for _, d := range room.SortedExits() {
		view.Exits = append(view.Exits, string(d))
	}

	for id := range m.roomPlayers[room.ID] {
		if id == viewer.id {
			continue
		}
		if other, ok := m.players[id]; ok {
			view.Players = append(view.Players, other.username)
		}
	}
	sort.Strings(view.Players)

	for id := range m.roomNPCs[room.ID] {
		n := m.npcs[id]
		view.NPCs = append(view.NPCs, NPCInfo{Name: n.def.Name, Description: n.def.Description})
	}
	sort.Slice(view.NPCs, func(i, j int) bool { return view.NPCs[i].Name < view.NPCs[j].Name })

	for id := range m.roomItems[room.ID] {
		it := m.items[id]
		view.Items = append(view.Items, ItemInfo{Name: it.def.Name, Description: it.def.Description})
	}
	sort.Slice(view.Items, func(i, j int) bool { return view.Items[i].Name < view.Items[j].Name })

	return view
}
