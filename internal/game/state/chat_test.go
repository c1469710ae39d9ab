package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sa-mud/samud/internal/game/event"
)

func TestSayRendersRoomFormat(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "plaza")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("bob", "plaza")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("carol", "market")
	require.NoError(t, err)

	res, err := m.Say(alice.ID, "hello there")
	require.NoError(t, err)

	assert.Equal(t, "[Room] alice: hello there", res.Rendered)
	assert.Equal(t, res.Rendered, res.Event.Text)
	assert.Equal(t, event.ScopeRoom, res.Event.Scope.Kind)
	assert.Equal(t, "plaza", res.Event.Scope.RoomID)
	assert.Equal(t, alice.ID, res.Event.ExcludeSession)
	assert.Equal(t, 1, res.Listeners, "bob is the only other listener in the plaza")
}

func TestSayAloneHasNoListeners(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "docks")
	require.NoError(t, err)

	res, err := m.Say(alice.ID, "echo?")
	require.NoError(t, err)
	assert.Zero(t, res.Listeners)
}

func TestShoutIsGlobalAndIncludesSender(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "plaza")
	require.NoError(t, err)
	_, _, err = m.AddPlayer("carol", "market")
	require.NoError(t, err)

	ev, err := m.Shout(alice.ID, "remember the alamo")
	require.NoError(t, err)

	assert.Equal(t, "[Global] alice: remember the alamo", ev.Text)
	assert.Equal(t, event.ScopeGlobal, ev.Scope.Kind)
	assert.Empty(t, ev.ExcludeSession)

	recs := m.Recipients(ev)
	assert.Equal(t, []string{"alice", "carol"}, recipientNames(recs))
}

func TestEmoteRendersAction(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "plaza")
	require.NoError(t, err)

	ev, err := m.Emote(alice.ID, "waves at everyone")
	require.NoError(t, err)
	assert.Equal(t, "* alice waves at everyone", ev.Text)
	assert.Equal(t, event.ScopeRoom, ev.Scope.Kind)
	assert.Empty(t, ev.ExcludeSession, "the sender sees their own emote")
}

func TestWhisperTargetsSingleSession(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "plaza")
	require.NoError(t, err)
	bob, _, err := m.AddPlayer("bob", "docks")
	require.NoError(t, err)

	res, err := m.Whisper(alice.ID, "BOB", "psst")
	require.NoError(t, err)

	assert.Equal(t, "alice whispers: psst", res.Event.Text)
	assert.Equal(t, event.ScopeDirect, res.Event.Scope.Kind)
	assert.Equal(t, bob.ID, res.Event.Scope.SessionID)
	assert.Equal(t, "You whisper to bob: psst", res.Echo)
}

func TestWhisperOfflineTarget(t *testing.T) {
	m := NewManager(testWorld(t))

	alice, _, err := m.AddPlayer("alice", "")
	require.NoError(t, err)

	_, err = m.Whisper(alice.ID, "ghost", "anyone there?")
	assert.ErrorIs(t, err, ErrPlayerNotOnline)
}
