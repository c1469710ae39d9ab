package tick

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sa-mud/samud/internal/broadcast"
	"github.com/sa-mud/samud/internal/game/state"
	"github.com/sa-mud/samud/internal/game/world"
)

// alwaysWander forces a relocation on every tick and always picks the first
// candidate room.
type alwaysWander struct{}

func (alwaysWander) Float64() float64 { return 0 }
func (alwaysWander) IntN(int) int     { return 0 }

// neverWander fails every roll.
type neverWander struct{}

func (neverWander) Float64() float64 { return 1 }
func (neverWander) IntN(int) int     { return 0 }

func wanderWorld(t *testing.T) *world.World {
	t.Helper()
	w := &world.World{
		StartRoom: "north_bank",
		Rooms: map[string]*world.Room{
			"north_bank": {
				ID: "north_bank", Name: "North Bank", Description: "The north bank.",
				Exits: map[world.Direction]string{world.South: "south_bank"},
			},
			"south_bank": {
				ID: "south_bank", Name: "South Bank", Description: "The south bank.",
				Exits: map[world.Direction]string{world.North: "north_bank"},
			},
		},
		NPCs: []*world.NPC{
			{
				ID: "musician", Name: "Musician", Description: "Strumming away.",
				RoomID:    "north_bank",
				Responses: map[string]string{"default": "La la la."},
				Wander:    []string{"north_bank", "south_bank"},
			},
		},
	}
	require.NoError(t, w.Validate())
	return w
}

func TestTickMovesWanderingNPC(t *testing.T) {
	logger := zaptest.NewLogger(t)
	m := state.NewManager(wanderWorld(t))
	router := broadcast.NewRouter(m, logger)

	// A spectator on the south bank observes the arrival.
	bob, outbox, err := m.AddPlayer("bob", "south_bank")
	require.NoError(t, err)
	_ = bob

	s := NewScheduler(m, router, logger, time.Hour, 1.0, alwaysWander{})
	s.Tick()

	roomID, ok := m.NPCRoom("musician")
	require.True(t, ok)
	assert.Equal(t, "south_bank", roomID)

	require.Equal(t, 1, outbox.Pending())
	assert.Equal(t, "Musician wanders in.", <-outbox.Lines())
}

func TestTickWithFailedRollMovesNothing(t *testing.T) {
	logger := zaptest.NewLogger(t)
	m := state.NewManager(wanderWorld(t))
	router := broadcast.NewRouter(m, logger)

	s := NewScheduler(m, router, logger, time.Hour, 1.0, neverWander{})
	s.Tick()

	roomID, _ := m.NPCRoom("musician")
	assert.Equal(t, "north_bank", roomID)
}

// Repeated ticks bounce the musician between its two permitted rooms and
// never anywhere else.
func TestTicksStayWithinWanderSet(t *testing.T) {
	logger := zaptest.NewLogger(t)
	m := state.NewManager(wanderWorld(t))
	router := broadcast.NewRouter(m, logger)

	s := NewScheduler(m, router, logger, time.Hour, 1.0, alwaysWander{})

	expected := []string{"south_bank", "north_bank", "south_bank", "north_bank"}
	for i, want := range expected {
		s.Tick()
		roomID, _ := m.NPCRoom("musician")
		assert.Equal(t, want, roomID, "tick %d", i+1)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	m := state.NewManager(wanderWorld(t))
	router := broadcast.NewRouter(m, logger)

	s := NewScheduler(m, router, logger, 5*time.Millisecond, 1.0, alwaysWander{})
	s.Start(context.Background())

	// The timer loop drives at least one relocation.
	deadline := time.After(2 * time.Second)
	for {
		if roomID, _ := m.NPCRoom("musician"); roomID == "south_bank" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
	s.Stop() // idempotent

	// No ticks after Stop.
	after, _ := m.NPCRoom("musician")
	time.Sleep(30 * time.Millisecond)
	later, _ := m.NPCRoom("musician")
	assert.Equal(t, after, later)
}
