package state

import (
	"fmt"
	"sort"
	"strings"
)

// matchesName reports whether fragment matches name: a case-insensitive
// substring of the full name or of any of its words. "get guitar" finds
// "a tortoiseshell guitar pick".
func matchesName(fragment, name string) bool {
	frag := strings.ToLower(fragment)
	lower := strings.ToLower(name)
	if strings.Contains(lower, frag) {
		return true
	}
	for _, word := range strings.Fields(lower) {
		if strings.Contains(word, frag) {
			return true
		}
	}
	return false
}

// TakeItem moves the item matching fragment from the session's current room
// into its inventory. When several items match, nothing moves and the
// candidates are reported, rather than guessing.
//
// Postcondition: Exactly one of: the item changes owner from room to session
// and is returned; *NotFoundError; *AmbiguousError; ErrSessionNotFound.
func (m *Manager) TakeItem(sessionID, fragment string) (ItemInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return ItemInfo{}, ErrSessionNotFound
	}

	itemID, err := m.resolveItem(fragment, m.roomItems[p.roomID], "item")
	if err != nil {
		return ItemInfo{}, err
	}

	it := m.items[itemID]
	if it.roomID == "" || it.holderID != "" {
		return ItemInfo{}, fmt.Errorf("%w: item %q owner mismatch (room=%q holder=%q)",
			ErrInvariantViolation, itemID, it.roomID, it.holderID)
	}

	m.removeFromSet(m.roomItems, it.roomID, itemID)
	it.roomID = ""
	it.holderID = sessionID
	m.addToSet(m.playerItems, sessionID, itemID)

	return ItemInfo{Name: it.def.Name, Description: it.def.Description}, nil
}

// DropItem moves the item matching fragment from the session's inventory
// into its current room.
//
// Postcondition: Exactly one of: the item changes owner from session to room
// and is returned; *NotFoundError; *AmbiguousError; ErrSessionNotFound.
func (m *Manager) DropItem(sessionID, fragment string) (ItemInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return ItemInfo{}, ErrSessionNotFound
	}

	itemID, err := m.resolveItem(fragment, m.playerItems[sessionID], "item")
	if err != nil {
		return ItemInfo{}, err
	}

	it := m.items[itemID]
	if it.holderID != sessionID || it.roomID != "" {
		return ItemInfo{}, fmt.Errorf("%w: item %q owner mismatch (room=%q holder=%q)",
			ErrInvariantViolation, itemID, it.roomID, it.holderID)
	}

	m.removeFromSet(m.playerItems, sessionID, itemID)
	it.holderID = ""
	it.roomID = p.roomID
	m.addToSet(m.roomItems, p.roomID, itemID)

	return ItemInfo{Name: it.def.Name, Description: it.def.Description}, nil
}

// Inventory returns the session's carried items, sorted by name.
//
// Postcondition: Returns a non-nil slice, or ErrSessionNotFound.
func (m *Manager) Inventory(sessionID string) ([]ItemInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.players[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	out := make([]ItemInfo, 0, len(m.playerItems[sessionID]))
	for id := range m.playerItems[sessionID] {
		it := m.items[id]
		out = append(out, ItemInfo{Name: it.def.Name, Description: it.def.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// resolveItem matches fragment against the item names in the given set.
// Candidates and visible-name lists are sorted alphabetically so ambiguity
// reporting is deterministic. Caller must hold m.mu.
func (m *Manager) resolveItem(fragment string, set map[string]bool, kind string) (string, error) {
	type match struct {
		id   string
		name string
	}
	var matches []match
	var visible []string

	for id := range set {
		name := m.items[id].def.Name
		visible = append(visible, name)
		if matchesName(fragment, name) {
			matches = append(matches, match{id: id, name: name})
		}
	}
	sort.Strings(visible)
	sort.Slice(matches, func(i, j int) bool { return matches[i].name < matches[j].name })

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Fragment: fragment, Visible: visible}
	case 1:
		return matches[0].id, nil
	default:
		names := make([]string, len(matches))
		for i, c := range matches {
			names[i] = c.name
		}
		return "", &AmbiguousError{Fragment: fragment, Candidates: names}
	}
}
