// Package session runs the per-connection actor: the authentication flow,
// the command read loop, and the write pump that drains the session's
// outbound queue to the telnet connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sa-mud/samud/internal/broadcast"
	"github.com/sa-mud/samud/internal/dispatch"
	"github.com/sa-mud/samud/internal/game/event"
	"github.com/sa-mud/samud/internal/game/state"
	"github.com/sa-mud/samud/internal/storage"
	"github.com/sa-mud/samud/internal/telnet"
)

// Phase is a session's lifecycle state. Transitions only move forward.
type Phase int

// Session lifecycle phases.
const (
	PhaseConnected Phase = iota
	PhaseAuthenticating
	PhaseActive
	PhaseDisconnecting
	PhaseClosed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseConnected:
		return "connected"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseActive:
		return "active"
	case PhaseDisconnecting:
		return "disconnecting"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one authenticated connection's actor state. The read loop runs
// on the connection goroutine; the write pump runs on its own goroutine and
// is the only writer of game output.
type Session struct {
	ID       string
	Username string

	conn   *telnet.Conn
	outbox *state.Outbox
	logger *zap.Logger

	mu    sync.Mutex
	phase Phase

	teardownOnce sync.Once
	pumpDone     chan struct{}
}

// Phase returns the session's current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p > s.phase {
		s.phase = p
	}
}

// prompt is the input prompt shown after output settles.
var prompt = telnet.Colorize(telnet.BrightWhite, "> ")

// runWritePump drains the outbox to the connection until the outbox closes.
// An empty line is a prompt refresh: nothing is printed, but the prompt is
// re-issued. After each burst of output the prompt follows, so broadcasts
// arriving mid-typing still leave the client at a prompt.
func (s *Session) runWritePump() {
	defer close(s.pumpDone)

	for line := range s.outbox.Lines() {
		if line != "" {
			if err := s.conn.WriteLine("\r\n" + line); err != nil {
				s.logger.Debug("write pump stopping",
					zap.String("session_id", s.ID),
					zap.Error(err),
				)
				return
			}
		}
		if s.outbox.Pending() == 0 {
			if err := s.conn.WritePrompt(prompt); err != nil {
				return
			}
		}
	}
}

// Handler implements telnet.SessionHandler: it owns the full lifecycle of
// every connection from greeting to teardown, and is the router's failure
// handler for dead sessions.
type Handler struct {
	state      *state.Manager
	router     *broadcast.Router
	dispatcher *dispatch.Dispatcher
	store      storage.Store
	logger     *zap.Logger

	mu     sync.Mutex
	active map[string]*Session // sessionID → session
}

// NewHandler creates a session Handler and registers it as the router's
// failure handler.
//
// Precondition: All arguments must be non-nil.
func NewHandler(st *state.Manager, router *broadcast.Router, store storage.Store, logger *zap.Logger) *Handler {
	h := &Handler{
		state:      st,
		router:     router,
		dispatcher: dispatch.NewDispatcher(st, router, logger),
		store:      store,
		logger:     logger,
		active:     make(map[string]*Session),
	}
	router.SetFailureHandler(h.Disconnect)
	return h
}

// HandleSession implements telnet.SessionHandler: banner, auth flow, then
// the command loop until quit, disconnect, or server shutdown.
//
// Postcondition: The session is fully unregistered and its location is
// persisted before this returns.
func (h *Handler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	if err := h.writeBanner(conn); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	username, err := h.authenticate(ctx, conn)
	if err != nil || username == "" {
		// Auth flow already told the client why.
		return err
	}

	roomID := h.loadLocation(ctx, username)

	snap, outbox, err := h.state.AddPlayer(username, roomID)
	if err != nil {
		if errors.Is(err, state.ErrAlreadyConnected) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That account is already logged in."))
			return nil
		}
		return fmt.Errorf("registering session: %w", err)
	}

	sess := &Session{
		ID:       snap.ID,
		Username: snap.Username,
		conn:     conn,
		outbox:   outbox,
		logger:   h.logger,
		phase:    PhaseActive,
		pumpDone: make(chan struct{}),
	}

	h.mu.Lock()
	h.active[sess.ID] = sess
	h.mu.Unlock()

	go sess.runWritePump()
	defer h.teardown(sess)

	// Shutdown or router-triggered teardown closes the connection, which
	// unblocks the read loop.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	h.logger.Info("player entered the world",
		zap.String("session_id", sess.ID),
		zap.String("username", sess.Username),
		zap.String("room_id", snap.RoomID),
	)

	h.router.Publish(event.Global(fmt.Sprintf("* %s has joined the game", sess.Username)))
	h.router.Publish(event.Direct(sess.ID, h.renderArrival(sess.ID)))

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return nil // disconnect, timeout, or shutdown
		}
		if h.dispatcher.Dispatch(sess.ID, line) {
			return nil
		}
	}
}

// renderArrival builds the post-login room view for the new session.
func (h *Handler) renderArrival(sessionID string) string {
	view, err := h.state.Look(sessionID)
	if err != nil {
		return ""
	}
	return dispatch.RenderRoomView(view)
}

// loadLocation returns the player's saved room, or "" for the start room.
func (h *Handler) loadLocation(ctx context.Context, username string) string {
	roomID, err := h.store.LoadLocation(ctx, username)
	if err != nil {
		if !errors.Is(err, storage.ErrNoLocation) {
			h.logger.Warn("loading saved location",
				zap.String("username", username),
				zap.Error(err),
			)
		}
		return ""
	}
	return roomID
}

// Disconnect tears down the identified session. Registered as the broadcast
// router's failure handler; also safe to call during shutdown.
//
// Postcondition: Idempotent; unknown session IDs are ignored.
func (h *Handler) Disconnect(sessionID string) {
	h.mu.Lock()
	sess := h.active[sessionID]
	h.mu.Unlock()

	if sess != nil {
		h.teardown(sess)
	}
}

// teardown unwinds an active session: persist location, unregister from the
// world (dropping carried items in the room), announce the departure, and
// close the connection. Runs at most once per session.
func (h *Handler) teardown(sess *Session) {
	sess.teardownOnce.Do(func() {
		sess.setPhase(PhaseDisconnecting)

		if snap, ok := h.state.GetPlayer(sess.ID); ok {
			if err := h.store.SaveLocation(context.Background(), snap.Username, snap.RoomID); err != nil {
				h.logger.Warn("persisting location",
					zap.String("username", snap.Username),
					zap.String("room_id", snap.RoomID),
					zap.Error(err),
				)
			}
		}

		summary, err := h.state.RemovePlayer(sess.ID)
		if err == nil {
			for _, itemName := range summary.DroppedItems {
				h.router.Publish(event.Room(summary.RoomID,
					fmt.Sprintf("%s drops %s.", summary.Username, itemName)))
			}
			h.router.Publish(event.Global(fmt.Sprintf("* %s has left the game", summary.Username)))
		}

		h.mu.Lock()
		delete(h.active, sess.ID)
		h.mu.Unlock()

		// RemovePlayer closed the outbox; the pump drains what is already
		// queued (the quit farewell included) and exits. Only then is the
		// connection closed, which also unblocks the read loop.
		<-sess.pumpDone
		_ = sess.conn.Close()
		sess.setPhase(PhaseClosed)

		h.logger.Info("session torn down",
			zap.String("session_id", sess.ID),
			zap.String("username", sess.Username),
		)
	})
}

// ActiveCount returns the number of registered sessions, for tests and the
// shutdown path.
func (h *Handler) ActiveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active)
}

// DisconnectAll tears down every active session, used during shutdown.
func (h *Handler) DisconnectAll() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.active))
	for id := range h.active {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Disconnect(id)
	}
}
