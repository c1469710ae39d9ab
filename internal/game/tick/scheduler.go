// Package tick drives periodic NPC behavior. A single goroutine owns the
// timer, so ticks never overlap: each tick's world mutation completes before
// the next fires.
package tick

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sa-mud/samud/internal/broadcast"
	"github.com/sa-mud/samud/internal/game/state"
)

// Scheduler runs the NPC wander tick on a fixed interval.
type Scheduler struct {
	state    *state.Manager
	router   *broadcast.Router
	logger   *zap.Logger
	interval time.Duration
	chance   float64
	rng      state.Rand

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewScheduler creates a Scheduler.
//
// Precondition: interval must be positive; rng must be non-nil.
func NewScheduler(st *state.Manager, router *broadcast.Router, logger *zap.Logger,
	interval time.Duration, chance float64, rng state.Rand) *Scheduler {
	return &Scheduler{
		state:    st,
		router:   router,
		logger:   logger,
		interval: interval,
		chance:   chance,
		rng:      rng,
	}
}

// Start launches the tick loop.
//
// Precondition: The Scheduler must not already be running.
// Postcondition: A single goroutine fires Tick every interval until Stop or
// ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Info("tick scheduler started",
		zap.Duration("interval", s.interval),
		zap.Float64("wander_chance", s.chance),
	)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick performs one NPC behavior pass and publishes the resulting room
// events. Exported so tests can drive ticks without a timer.
func (s *Scheduler) Tick() {
	events := s.state.AdvanceNPCs(s.rng, s.chance)
	if len(events) == 0 {
		return
	}
	s.logger.Debug("npc tick", zap.Int("moves", len(events)/2))
	s.router.PublishAll(events)
}

// Stop halts the tick loop and waits for any in-flight tick to finish.
//
// Postcondition: No further ticks fire after Stop returns. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done, started := s.cancel, s.done, s.started
	s.started = false
	s.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-done
	s.logger.Info("tick scheduler stopped")
}
