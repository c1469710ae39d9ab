// Package world provides the static game world definitions: rooms, exits,
// NPCs, and items, plus the YAML loader that populates them.
package world

import (
	"fmt"
	"sort"
	"strings"
)

// Direction represents a compass direction.
type Direction string

// The four compass directions of the world graph.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// StandardDirections contains all recognized directions.
var StandardDirections = []Direction{North, South, East, West}

// directionAliases maps shortcuts and full names to canonical directions.
var directionAliases = map[string]Direction{
	"n": North, "north": North,
	"s": South, "south": South,
	"e": East, "east": East,
	"w": West, "west": West,
}

// ParseDirection resolves a direction name or shortcut, case-insensitively.
//
// Postcondition: Returns (direction, true) if s names a direction, or ("", false).
func ParseDirection(s string) (Direction, bool) {
	d, ok := directionAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// Opposite returns the opposite of a standard direction.
// For unknown directions, it returns an empty string.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return ""
	}
}

// Room represents a location in the game world. Exits and description are
// immutable after load; occupancy lives in the runtime state, not here.
type Room struct {
	// ID uniquely identifies this room.
	ID string
	// Name is the short display name of the room.
	Name string
	// Description is the room description shown to players.
	Description string
	// Exits maps directions to destination room IDs. Exits need not be symmetric.
	Exits map[Direction]string
}

// SortedExits returns the room's exit directions in a fixed display order
// (north, south, east, west).
//
// Postcondition: Returns a non-nil slice; may be empty.
func (r *Room) SortedExits() []Direction {
	out := make([]Direction, 0, len(r.Exits))
	for _, d := range StandardDirections {
		if _, ok := r.Exits[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// NPC is a scripted non-player character. Behavior is declarative content:
// a keyword→response table and an optional set of rooms it may wander between.
type NPC struct {
	// ID uniquely identifies this NPC.
	ID string
	// Name is the display name (e.g. "Carlos, the Mariachi").
	Name string
	// Description is shown in room views.
	Description string
	// RoomID is the NPC's home room at load time.
	RoomID string
	// Responses maps lowercase keywords to dialogue lines. The "default" key
	// is the fallback greeting.
	Responses map[string]string
	// Wander lists the room IDs this NPC may relocate between on ticks.
	// Empty means the NPC is stationary.
	Wander []string
}

// Item is a portable object. Its runtime owner (room or player inventory)
// lives in the runtime state; RoomID here is only the starting placement.
type Item struct {
	// ID uniquely identifies this item.
	ID string
	// Name is the display name (e.g. "a historic brochure").
	Name string
	// Description is shown by look and inventory.
	Description string
	// RoomID is the item's starting room.
	RoomID string
}

// World holds the full static definition loaded at startup.
type World struct {
	// StartRoom is where new players begin.
	StartRoom string
	// Rooms contains all rooms keyed by room ID.
	Rooms map[string]*Room
	// NPCs contains all NPC definitions.
	NPCs []*NPC
	// Items contains all item definitions.
	Items []*Item
}

// Room returns the room with the given ID.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (w *World) Room(id string) (*Room, bool) {
	r, ok := w.Rooms[id]
	return r, ok
}

// Validate checks world invariants: the start room exists, every exit target
// resolves, every NPC and item starts in a known room, wander sets reference
// known rooms, and IDs are consistent.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (w *World) Validate() error {
	if w.StartRoom == "" {
		return fmt.Errorf("world: start_room must not be empty")
	}
	if len(w.Rooms) == 0 {
		return fmt.Errorf("world: must contain at least one room")
	}
	if _, ok := w.Rooms[w.StartRoom]; !ok {
		return fmt.Errorf("world: start_room %q not found in rooms", w.StartRoom)
	}

	for id, room := range w.Rooms {
		if room.ID != id {
			return fmt.Errorf("world: room key %q does not match room ID %q", id, room.ID)
		}
		if room.Name == "" {
			return fmt.Errorf("world: room %q: name must not be empty", id)
		}
		if room.Description == "" {
			return fmt.Errorf("world: room %q: description must not be empty", id)
		}
		for dir, target := range room.Exits {
			if _, known := directionAliases[string(dir)]; !known {
				return fmt.Errorf("world: room %q: unknown exit direction %q", id, dir)
			}
			if _, ok := w.Rooms[target]; !ok {
				return fmt.Errorf("world: room %q: exit %q targets unknown room %q", id, dir, target)
			}
		}
	}

	seenNPCs := make(map[string]bool, len(w.NPCs))
	for _, n := range w.NPCs {
		if n.ID == "" || n.Name == "" {
			return fmt.Errorf("world: npc %q: id and name must not be empty", n.ID)
		}
		if seenNPCs[n.ID] {
			return fmt.Errorf("world: duplicate npc ID %q", n.ID)
		}
		seenNPCs[n.ID] = true
		if _, ok := w.Rooms[n.RoomID]; !ok {
			return fmt.Errorf("world: npc %q: room %q not found", n.ID, n.RoomID)
		}
		for _, roomID := range n.Wander {
			if _, ok := w.Rooms[roomID]; !ok {
				return fmt.Errorf("world: npc %q: wander room %q not found", n.ID, roomID)
			}
		}
	}

	seenItems := make(map[string]bool, len(w.Items))
	for _, it := range w.Items {
		if it.ID == "" || it.Name == "" {
			return fmt.Errorf("world: item %q: id and name must not be empty", it.ID)
		}
		if seenItems[it.ID] {
			return fmt.Errorf("world: duplicate item ID %q", it.ID)
		}
		seenItems[it.ID] = true
		if _, ok := w.Rooms[it.RoomID]; !ok {
			return fmt.Errorf("world: item %q: room %q not found", it.ID, it.RoomID)
		}
	}

	return nil
}

// RoomIDs returns all room IDs in sorted order.
//
// Postcondition: Returns a non-nil sorted slice.
func (w *World) RoomIDs() []string {
	ids := make([]string, 0, len(w.Rooms))
	for id := range w.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
