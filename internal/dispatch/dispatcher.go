// Package dispatch parses player input lines and routes them to world model
// operations, rendering results as direct replies and broadcast events.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sa-mud/samud/internal/broadcast"
	"github.com/sa-mud/samud/internal/game/command"
	"github.com/sa-mud/samud/internal/game/event"
	"github.com/sa-mud/samud/internal/game/state"
	"github.com/sa-mud/samud/internal/game/world"
)

// Dispatcher is the stateless command router. Parsing and argument
// extraction happen here; name resolution and all state changes happen in
// the world model.
type Dispatcher struct {
	state    *state.Manager
	router   *broadcast.Router
	registry *command.Registry
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given world model and router.
//
// Precondition: st, router, and logger must be non-nil.
func NewDispatcher(st *state.Manager, router *broadcast.Router, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		state:    st,
		router:   router,
		registry: command.DefaultRegistry(),
		logger:   logger,
	}
}

// Dispatch handles one input line from an active session. Replies to the
// issuing session travel through its outbox as direct events, so they
// interleave correctly with broadcasts. Returns true when the session asked
// to quit (or is no longer registered).
//
// Postcondition: No input ever produces a fatal error; unknown verbs and bad
// arguments yield direct replies.
func (d *Dispatcher) Dispatch(sessionID, line string) (quit bool) {
	parsed := command.Parse(line)
	if parsed.Verb == "" {
		d.reply(sessionID, "")
		return false
	}

	cmd, ok := d.registry.Resolve(parsed.Verb)
	if !ok {
		d.reply(sessionID, fmt.Sprintf("Unknown command: %s\r\nType 'help' for available commands", line))
		return false
	}

	if cmd.RequiresArgs() && len(parsed.Args) == 0 {
		d.reply(sessionID, "Usage: "+cmd.Usage)
		return false
	}

	var err error
	switch cmd.Handler {
	case command.HandlerLook:
		err = d.handleLook(sessionID)
	case command.HandlerMove:
		err = d.handleMove(sessionID, world.Direction(cmd.Name))
	case command.HandlerGo:
		err = d.handleGo(sessionID, parsed.Args[0])
	case command.HandlerSay:
		err = d.handleSay(sessionID, parsed.RawArgs)
	case command.HandlerShout:
		err = d.handleShout(sessionID, parsed.RawArgs)
	case command.HandlerEmote:
		err = d.handleEmote(sessionID, parsed.RawArgs)
	case command.HandlerWhisper:
		err = d.handleWhisper(sessionID, parsed.Args)
	case command.HandlerGet:
		err = d.handleGet(sessionID, parsed.RawArgs)
	case command.HandlerDrop:
		err = d.handleDrop(sessionID, parsed.RawArgs)
	case command.HandlerInventory:
		err = d.handleInventory(sessionID)
	case command.HandlerTalk:
		err = d.handleTalk(sessionID, parsed.Args)
	case command.HandlerWho:
		err = d.handleWho(sessionID)
	case command.HandlerWhere:
		err = d.handleWhere(sessionID)
	case command.HandlerHelp:
		err = d.handleHelp(sessionID)
	case command.HandlerQuit:
		d.reply(sessionID, "Goodbye! Your progress has been saved.")
		return true
	}

	if err != nil {
		if errors.Is(err, state.ErrSessionNotFound) {
			return true
		}
		if errors.Is(err, state.ErrInvariantViolation) {
			d.logger.Error("world state invariant violation",
				zap.String("session_id", sessionID),
				zap.String("command", cmd.Name),
				zap.Error(err),
			)
			d.reply(sessionID, "Something went wrong. The incident has been logged.")
			return false
		}
		d.logger.Warn("command failed",
			zap.String("session_id", sessionID),
			zap.String("command", cmd.Name),
			zap.Error(err),
		)
		d.reply(sessionID, "Something went wrong trying to do that.")
	}
	return false
}

// reply sends a direct line to the issuing session through its outbox.
func (d *Dispatcher) reply(sessionID, text string) {
	d.router.Publish(event.Direct(sessionID, text))
}

func (d *Dispatcher) handleLook(sessionID string) error {
	view, err := d.state.Look(sessionID)
	if err != nil {
		return err
	}
	d.reply(sessionID, RenderRoomView(view))
	return nil
}

func (d *Dispatcher) handleGo(sessionID, arg string) error {
	dir, ok := world.ParseDirection(arg)
	if !ok {
		d.reply(sessionID, fmt.Sprintf("You can't go %q from here.", arg))
		return nil
	}
	return d.handleMove(sessionID, dir)
}

func (d *Dispatcher) handleMove(sessionID string, dir world.Direction) error {
	res, err := d.state.Move(sessionID, dir)
	if err != nil {
		var noExit *state.NoSuchExitError
		if errors.As(err, &noExit) {
			msg := fmt.Sprintf("You can't go %s from here.", noExit.Direction)
			if len(noExit.Exits) > 0 {
				msg += "\r\nAvailable exits: " + strings.Join(noExit.Exits, ", ")
			}
			d.reply(sessionID, msg)
			return nil
		}
		return err
	}

	// Departure before arrival: both rooms observe the move in causal order.
	d.router.Publish(event.RoomExcept(res.OldRoomID, sessionID,
		fmt.Sprintf("%s leaves %s.", res.Username, res.Direction)))
	d.router.Publish(event.RoomExcept(res.NewRoomID, sessionID,
		fmt.Sprintf("%s arrives.", res.Username)))

	d.reply(sessionID, fmt.Sprintf("You head %s.\r\n\r\n%s", res.Direction, RenderRoomView(res.View)))
	return nil
}

func (d *Dispatcher) handleSay(sessionID, text string) error {
	res, err := d.state.Say(sessionID, text)
	if err != nil {
		return err
	}
	d.router.Publish(res.Event)

	reply := res.Rendered
	if res.Listeners == 0 {
		reply += "\r\n(No one else is here to hear you)"
	}
	d.reply(sessionID, reply)
	return nil
}

func (d *Dispatcher) handleShout(sessionID, text string) error {
	ev, err := d.state.Shout(sessionID, text)
	if err != nil {
		return err
	}
	// The sender receives the global line like everyone else.
	d.router.Publish(ev)
	return nil
}

func (d *Dispatcher) handleEmote(sessionID, action string) error {
	ev, err := d.state.Emote(sessionID, action)
	if err != nil {
		return err
	}
	d.router.Publish(ev)
	return nil
}

func (d *Dispatcher) handleWhisper(sessionID string, args []string) error {
	if len(args) < 2 {
		d.reply(sessionID, "Usage: whisper <player> <message>")
		return nil
	}
	target := args[0]
	text := strings.Join(args[1:], " ")

	res, err := d.state.Whisper(sessionID, target, text)
	if err != nil {
		if errors.Is(err, state.ErrPlayerNotOnline) {
			d.reply(sessionID, fmt.Sprintf("%s is not online.", target))
			return nil
		}
		return err
	}
	d.router.Publish(res.Event)
	d.reply(sessionID, res.Echo)
	return nil
}

func (d *Dispatcher) handleGet(sessionID, fragment string) error {
	item, err := d.state.TakeItem(sessionID, fragment)
	if err != nil {
		return d.replyItemError(sessionID, fragment, err, "get")
	}

	snap, ok := d.state.GetPlayer(sessionID)
	if ok {
		d.router.Publish(event.RoomExcept(snap.RoomID, sessionID,
			fmt.Sprintf("%s gets %s.", snap.Username, item.Name)))
	}
	d.reply(sessionID, fmt.Sprintf("You get %s.", item.Name))
	return nil
}

func (d *Dispatcher) handleDrop(sessionID, fragment string) error {
	item, err := d.state.DropItem(sessionID, fragment)
	if err != nil {
		return d.replyItemError(sessionID, fragment, err, "drop")
	}

	snap, ok := d.state.GetPlayer(sessionID)
	if ok {
		d.router.Publish(event.RoomExcept(snap.RoomID, sessionID,
			fmt.Sprintf("%s drops %s.", snap.Username, item.Name)))
	}
	d.reply(sessionID, fmt.Sprintf("You drop %s.", item.Name))
	return nil
}

// replyItemError renders take/drop resolution failures; other errors pass
// through to the generic handler.
func (d *Dispatcher) replyItemError(sessionID, fragment string, err error, verb string) error {
	var ambiguous *state.AmbiguousError
	if errors.As(err, &ambiguous) {
		d.reply(sessionID, fmt.Sprintf("Which do you mean: %s?",
			strings.Join(ambiguous.Candidates, ", ")))
		return nil
	}

	var notFound *state.NotFoundError
	if errors.As(err, &notFound) {
		var msg string
		if verb == "drop" {
			msg = fmt.Sprintf("You don't have '%s' to drop.", fragment)
			if len(notFound.Visible) > 0 {
				msg += "\r\nYou're carrying: " + strings.Join(notFound.Visible, ", ")
			} else {
				msg += "\r\nYou're not carrying anything."
			}
		} else {
			msg = fmt.Sprintf("There's no '%s' here to %s.", fragment, verb)
			if len(notFound.Visible) > 0 {
				msg += "\r\nAvailable items: " + strings.Join(notFound.Visible, ", ")
			}
		}
		d.reply(sessionID, msg)
		return nil
	}

	return err
}

func (d *Dispatcher) handleInventory(sessionID string) error {
	items, err := d.state.Inventory(sessionID)
	if err != nil {
		return err
	}
	d.reply(sessionID, RenderInventory(items))
	return nil
}

func (d *Dispatcher) handleTalk(sessionID string, args []string) error {
	npcFragment := args[0]
	keyword := ""
	if len(args) > 1 {
		keyword = strings.Join(args[1:], " ")
	}

	res, err := d.state.Talk(sessionID, npcFragment, keyword)
	if err != nil {
		var notFound *state.NotFoundError
		if errors.As(err, &notFound) {
			msg := fmt.Sprintf("There's no '%s' here to talk to.", npcFragment)
			if len(notFound.Visible) > 0 {
				msg += "\r\nAvailable NPCs: " + strings.Join(notFound.Visible, ", ")
			}
			d.reply(sessionID, msg)
			return nil
		}
		return err
	}

	d.reply(sessionID, fmt.Sprintf("%s says: %q", res.NPCName, res.Line))

	snap, ok := d.state.GetPlayer(sessionID)
	if ok {
		d.router.Publish(event.RoomExcept(snap.RoomID, sessionID,
			fmt.Sprintf("%s talks to %s about %s.\r\n%s says: %q",
				snap.Username, res.NPCName, res.Keyword, res.NPCName, res.Line)))
	}
	return nil
}

func (d *Dispatcher) handleWho(sessionID string) error {
	names := d.state.Who()
	d.reply(sessionID, "Online players: "+strings.Join(names, ", "))
	return nil
}

func (d *Dispatcher) handleWhere(sessionID string) error {
	name, err := d.state.Where(sessionID)
	if err != nil {
		return err
	}
	d.reply(sessionID, "You are at "+name)
	return nil
}

func (d *Dispatcher) handleHelp(sessionID string) error {
	d.reply(sessionID, RenderHelp(d.registry))
	return nil
}
