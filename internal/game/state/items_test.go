package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sa-mud/samud/internal/game/world"
)

func TestTakeAndDropItem(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	item, err := m.TakeItem(alice.ID, "lantern")
	require.NoError(t, err)
	assert.Equal(t, "brass lantern", item.Name)

	inv, err := m.Inventory(alice.ID)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, "brass lantern", inv[0].Name)

	view, err := m.Look(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	dropped, err := m.DropItem(alice.ID, "brass")
	require.NoError(t, err)
	assert.Equal(t, "brass lantern", dropped.Name)

	inv, err = m.Inventory(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, inv)

	view, err = m.Look(alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
}

func TestTakeItemMatchesWholeWords(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "market")
	require.NoError(t, err)

	// "coin" matches a word of "silver coin".
	item, err := m.TakeItem(alice.ID, "coin")
	require.NoError(t, err)
	assert.Equal(t, "silver coin", item.Name)
}

func TestTakeItemNotFoundListsVisible(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, err = m.TakeItem(alice.ID, "sword")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "sword", notFound.Fragment)
	assert.Equal(t, []string{"brass lantern"}, notFound.Visible)
}

func TestTakeItemAmbiguousListsCandidatesSorted(t *testing.T) {
	w := testWorld(t)
	w.Items = append(w.Items,
		&world.Item{ID: "map_old", Name: "old map", Description: "Faded.", RoomID: "plaza"},
		&world.Item{ID: "map_new", Name: "new map", Description: "Crisp.", RoomID: "plaza"},
	)
	m := NewManager(w)

	alice, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, err = m.TakeItem(alice.ID, "map")
	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []string{"new map", "old map"}, ambiguous.Candidates)
}

func TestDropItemNotCarried(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, err = m.DropItem(alice.ID, "lantern")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, notFound.Visible)
}

// Two players grabbing the same item concurrently: exactly one wins, and the
// item ends with exactly one owner.
func TestTakeItemRaceHasSingleWinner(t *testing.T) {
	for i := 0; i < 50; i++ {
		m := NewManager(testWorld(t))

		alice, _, err := m.AddPlayer("alice", "")
		require.NoError(t, err)
		bob, _, err := m.AddPlayer("bob", "")
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, id := range []string{alice.ID, bob.ID} {
			wg.Add(1)
			go func(j int, id string) {
				defer wg.Done()
				_, errs[j] = m.TakeItem(id, "lantern")
			}(j, id)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			}
		}
		require.Equal(t, 1, winners)

		aliceInv, _ := m.Inventory(alice.ID)
		bobInv, _ := m.Inventory(bob.ID)
		assert.Equal(t, 1, len(aliceInv)+len(bobInv))

		view, err := m.Look(alice.ID)
		require.NoError(t, err)
		assert.Empty(t, view.Items, "item must not remain in the room after a successful take")
	}
}
