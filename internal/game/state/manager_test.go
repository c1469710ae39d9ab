package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sa-mud/samud/internal/game/event"
	"github.com/sa-mud/samud/internal/game/world"
)

// testWorld builds a small three-room world: plaza ↔ market (east/west),
// market ↔ docks (north/south). The guide NPC and a lantern start in the
// plaza; a coin starts in the market.
func testWorld(t *testing.T) *world.World {
	t.Helper()
	w := &world.World{
		StartRoom: "plaza",
		Rooms: map[string]*world.Room{
			"plaza": {
				ID: "plaza", Name: "The Plaza", Description: "A wide stone plaza.",
				Exits: map[world.Direction]string{world.East: "market"},
			},
			"market": {
				ID: "market", Name: "The Market", Description: "Stalls and noise.",
				Exits: map[world.Direction]string{
					world.West:  "plaza",
					world.North: "docks",
				},
			},
			"docks": {
				ID: "docks", Name: "The Docks", Description: "Salt air and ropes.",
				Exits: map[world.Direction]string{world.South: "market"},
			},
		},
		NPCs: []*world.NPC{
			{
				ID: "guide", Name: "Old Guide", Description: "A weathered guide.",
				RoomID: "plaza",
				Responses: map[string]string{
					"default": "Welcome, traveler.",
					"docks":   "Follow the smell of salt.",
				},
				Wander: []string{"plaza", "market"},
			},
		},
		Items: []*world.Item{
			{ID: "lantern", Name: "brass lantern", Description: "A dented brass lantern.", RoomID: "plaza"},
			{ID: "coin", Name: "silver coin", Description: "A worn silver coin.", RoomID: "market"},
		},
	}
	require.NoError(t, w.Validate())
	return w
}

func TestAddPlayerPlacesInStartRoom(t *testing.T) {
	m := NewManager(testWorld(t))

	snap, outbox, err := m.AddPlayer("alice", "")
	require.NoError(t, err)
	require.NotNil(t, outbox)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "alice", snap.Username)
	assert.Equal(t, "plaza", snap.RoomID)
	assert.Equal(t, 1, m.PlayerCount())
}

func TestAddPlayerUnknownRoomFallsBackToStart(t *testing.T) {
	m := NewManager(testWorld(t))

	snap, _, err := m.AddPlayer("alice", "no_such_room")
	require.NoError(t, err)
	assert.Equal(t, "plaza", snap.RoomID)
}

func TestAddPlayerRejectsDuplicateUsername(t *testing.T) {
	m := NewManager(testWorld(t))

	_, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, _, err = m.AddPlayer("ALICE", "")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestRemovePlayerDropsCarriedItems(t *testing.T) {
	m := NewManager(testWorld(t))

	snap, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, err = m.TakeItem(snap.ID, "lantern")
	require.NoError(t, err)

	summary, err := m.RemovePlayer(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", summary.Username)
	assert.Equal(t, "plaza", summary.RoomID)
	assert.Equal(t, []string{"brass lantern"}, summary.DroppedItems)

	// The lantern is back on the plaza floor for the next player.
	bob, _, err := m.AddPlayer("bob", "")
	require.NoError(t, err)
	view, err := m.Look(bob.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "brass lantern", view.Items[0].Name)
}

func TestRemovePlayerClosesOutbox(t *testing.T) {
	m := NewManager(testWorld(t))

	snap, outbox, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, err = m.RemovePlayer(snap.ID)
	require.NoError(t, err)

	assert.True(t, outbox.IsClosed())
	assert.Error(t, outbox.Push("too late"))

	_, err = m.RemovePlayer(snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestWhoReturnsLoginOrder(t *testing.T) {
	m := NewManager(testWorld(t))

	for _, name := range []string{"zoe", "alice", "mike"} {
		_, _, err := m.AddPlayer(name, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"zoe", "alice", "mike"}, m.Who())
}

func TestRecipientsRoomScopeExcludesOtherRooms(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "plaza")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("bob", "plaza")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("carol", "market")
	require.NoError(t, err)

	recs := m.Recipients(event.Room("plaza", "hello"))
	names := recipientNames(recs)
	assert.Equal(t, []string{"alice", "bob"}, names)

	recs = m.Recipients(event.RoomExcept("plaza", alice.ID, "hello"))
	assert.Equal(t, []string{"bob"}, recipientNames(recs))
}

func TestRecipientsGlobalScopeReachesEveryone(t *testing.T) {
	m := NewManager(testWorld(t))

	_, _, err := m.AddPlayer("alice", "plaza")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("carol", "market")
	require.NoError(t, err)

	recs := m.Recipients(event.Global("hello all"))
	assert.Equal(t, []string{"alice", "carol"}, recipientNames(recs))
}

func TestRecipientsDirectScope(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("bob", "")
	require.NoError(t, err)

	recs := m.Recipients(event.Direct(alice.ID, "psst"))
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0].Username)

	recs = m.Recipients(event.Direct("gone", "psst"))
	assert.Empty(t, recs)
}

func recipientNames(recs []Recipient) []string {
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Username)
	}
	return names
}
