package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sa-mud/samud/internal/broadcast"
	"github.com/sa-mud/samud/internal/game/state"
	"github.com/sa-mud/samud/internal/game/tick"
	"github.com/sa-mud/samud/internal/game/world"
)

type stubHealth struct {
	err   error
	calls atomic.Int32
}

func (s *stubHealth) Health(context.Context, time.Duration) error {
	s.calls.Add(1)
	return s.err
}

func TestHealthServiceStopUnblocksStart(t *testing.T) {
	db := &stubHealth{err: errors.New("connection refused")}
	closed := false
	svc := healthService(context.Background(), db, time.Millisecond,
		zaptest.NewLogger(t), func() { closed = true })

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()

	deadline := time.After(2 * time.Second)
	for db.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("health check never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	svc.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.True(t, closed, "pool close ran during Stop")
}

func TestTickServiceStopUnblocksStart(t *testing.T) {
	logger := zaptest.NewLogger(t)

	w, err := world.Default()
	require.NoError(t, err)
	manager := state.NewManager(w)
	router := broadcast.NewRouter(manager, logger)
	scheduler := tick.NewScheduler(manager, router, logger,
		time.Hour, 0, rand.New(rand.NewPCG(1, 2)))

	svc := tickService(context.Background(), scheduler)

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()

	time.Sleep(10 * time.Millisecond)
	svc.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
