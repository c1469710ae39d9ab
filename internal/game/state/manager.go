// Package state implements the runtime world model: the single shared,
// mutable view of rooms, player sessions, NPCs, and items. Every operation
// that touches occupancy or ownership executes under one mutex, so all
// mutations are linearizable and the occupancy indexes stay the exact
// inverse of the per-entity current-room fields.
package state

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sa-mud/samud/internal/game/event"
	"github.com/sa-mud/samud/internal/game/world"
)

// playerState is a connected player's runtime record. Mutated only under
// Manager.mu; callers see copies (Snapshot) instead of pointers.
type playerState struct {
	id       string
	username string
	roomID   string
	outbox   *Outbox
}

// npcState tracks where an NPC currently is. The definition is immutable.
type npcState struct {
	def    *world.NPC
	roomID string
}

// itemState tracks an item's single owner: exactly one of roomID and
// holderID is non-empty at all times.
type itemState struct {
	def      *world.Item
	roomID   string
	holderID string
}

// Snapshot is a read-only copy of a player session's registry entry.
type Snapshot struct {
	ID       string
	Username string
	RoomID   string
}

// Recipient pairs a session ID with its outbox for event delivery. The
// broadcast router pushes into outboxes outside the world lock.
type Recipient struct {
	SessionID string
	Username  string
	Outbox    *Outbox
}

// Manager is the world model engine. All methods are safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	world *world.World

	players    map[string]*playerState   // sessionID → player
	byUsername map[string]string         // lowercase username → sessionID
	loginOrder []string                  // sessionIDs in login order
	roomPlayers map[string]map[string]bool // roomID → set of sessionIDs

	npcs     map[string]*npcState       // npcID → state
	roomNPCs map[string]map[string]bool // roomID → set of npcIDs

	items       map[string]*itemState      // itemID → state
	roomItems   map[string]map[string]bool // roomID → set of itemIDs
	playerItems map[string]map[string]bool // sessionID → set of itemIDs
}

// NewManager creates a Manager populated from the static world definition.
// NPCs start in their home rooms; items in their starting rooms.
//
// Precondition: w must be non-nil and already validated.
func NewManager(w *world.World) *Manager {
	m := &Manager{
		world:       w,
		players:     make(map[string]*playerState),
		byUsername:  make(map[string]string),
		roomPlayers: make(map[string]map[string]bool),
		npcs:        make(map[string]*npcState, len(w.NPCs)),
		roomNPCs:    make(map[string]map[string]bool),
		items:       make(map[string]*itemState, len(w.Items)),
		roomItems:   make(map[string]map[string]bool),
		playerItems: make(map[string]map[string]bool),
	}

	for _, n := range w.NPCs {
		m.npcs[n.ID] = &npcState{def: n, roomID: n.RoomID}
		m.addToSet(m.roomNPCs, n.RoomID, n.ID)
	}
	for _, it := range w.Items {
		m.items[it.ID] = &itemState{def: it, roomID: it.RoomID}
		m.addToSet(m.roomItems, it.RoomID, it.ID)
	}

	return m
}

// World returns the static world definition.
func (m *Manager) World() *world.World {
	return m.world
}

// StartRoom returns the ID of the room new players begin in.
func (m *Manager) StartRoom() string {
	return m.world.StartRoom
}

// AddPlayer registers a live session for username in roomID and returns its
// snapshot and outbox. If roomID does not name a known room (e.g. stale
// persisted state), the player is placed in the start room instead.
//
// Precondition: username must be non-empty.
// Postcondition: Returns the session snapshot, or ErrAlreadyConnected if the
// username already has a live session.
func (m *Manager) AddPlayer(username, roomID string) (Snapshot, *Outbox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(username)
	if _, exists := m.byUsername[key]; exists {
		return Snapshot{}, nil, ErrAlreadyConnected
	}

	if _, ok := m.world.Rooms[roomID]; !ok {
		roomID = m.world.StartRoom
	}

	id := uuid.NewString()
	p := &playerState{
		id:       id,
		username: username,
		roomID:   roomID,
		outbox:   NewOutbox(id, DefaultOutboxSize),
	}

	m.players[id] = p
	m.byUsername[key] = id
	m.loginOrder = append(m.loginOrder, id)
	m.addToSet(m.roomPlayers, roomID, id)

	return snapshotOf(p), p.outbox, nil
}

// DepartSummary describes the state changes made by RemovePlayer, for
// persistence and broadcasting by the caller.
type DepartSummary struct {
	Username string
	RoomID   string
	// DroppedItems are the names of carried items returned to the room, so
	// an item never ends up with no owner.
	DroppedItems []string
}

// RemovePlayer unregisters a session, cleans up occupancy, drops any carried
// items into the player's final room, and closes the outbox.
//
// Postcondition: Returns a DepartSummary, or ErrSessionNotFound.
func (m *Manager) RemovePlayer(sessionID string) (DepartSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return DepartSummary{}, ErrSessionNotFound
	}

	summary := DepartSummary{Username: p.username, RoomID: p.roomID}

	// Carried items fall to the floor so ownership is never dangling.
	for itemID := range m.playerItems[sessionID] {
		it := m.items[itemID]
		it.holderID = ""
		it.roomID = p.roomID
		m.addToSet(m.roomItems, p.roomID, itemID)
		summary.DroppedItems = append(summary.DroppedItems, it.def.Name)
	}
	sort.Strings(summary.DroppedItems)
	delete(m.playerItems, sessionID)

	m.removeFromSet(m.roomPlayers, p.roomID, sessionID)
	delete(m.byUsername, strings.ToLower(p.username))
	delete(m.players, sessionID)
	for i, id := range m.loginOrder {
		if id == sessionID {
			m.loginOrder = append(m.loginOrder[:i], m.loginOrder[i+1:]...)
			break
		}
	}

	p.outbox.Close()
	return summary, nil
}

// GetPlayer returns a snapshot of the session with the given ID.
//
// Postcondition: Returns (snapshot, true) if found, or (Snapshot{}, false).
func (m *Manager) GetPlayer(sessionID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[sessionID]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(p), true
}

// GetPlayerByUsername returns a snapshot of the live session for username,
// matched case-insensitively.
//
// Postcondition: Returns (snapshot, true) if online, or (Snapshot{}, false).
func (m *Manager) GetPlayerByUsername(username string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUsername[strings.ToLower(username)]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(m.players[id]), true
}

// Who returns the usernames of all online players in login order.
//
// Postcondition: Returns a non-nil slice; may be empty.
func (m *Manager) Who() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.loginOrder))
	for _, id := range m.loginOrder {
		if p, ok := m.players[id]; ok {
			names = append(names, p.username)
		}
	}
	return names
}

// PlayerCount returns the number of live sessions.
func (m *Manager) PlayerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// Recipients resolves an event's scope against the live session set at call
// time. The returned outboxes are pushed to outside the world lock.
//
// Postcondition: Returns a non-nil slice in deterministic (login) order.
func (m *Manager) Recipients(ev event.Event) []Recipient {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Recipient
	appendPlayer := func(p *playerState) {
		if p.id == ev.ExcludeSession {
			return
		}
		out = append(out, Recipient{SessionID: p.id, Username: p.username, Outbox: p.outbox})
	}

	switch ev.Scope.Kind {
	case event.ScopeDirect:
		if p, ok := m.players[ev.Scope.SessionID]; ok {
			appendPlayer(p)
		}
	case event.ScopeRoom:
		ids := m.roomPlayers[ev.Scope.RoomID]
		for _, id := range m.loginOrder {
			if ids[id] {
				appendPlayer(m.players[id])
			}
		}
	case event.ScopeGlobal:
		for _, id := range m.loginOrder {
			appendPlayer(m.players[id])
		}
	}

	if out == nil {
		out = []Recipient{}
	}
	return out
}

func snapshotOf(p *playerState) Snapshot {
	return Snapshot{ID: p.id, Username: p.username, RoomID: p.roomID}
}

func (m *Manager) addToSet(sets map[string]map[string]bool, key, member string) {
	if sets[key] == nil {
		sets[key] = make(map[string]bool)
	}
	sets[key][member] = true
}

func (m *Manager) removeFromSet(sets map[string]map[string]bool, key, member string) {
	if s, ok := sets[key]; ok {
		delete(s, member)
		if len(s) == 0 {
			delete(sets, key)
		}
	}
}
