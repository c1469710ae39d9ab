package command

// Handler identifies which dispatcher routine services a command.
type Handler int

// Handler kinds for all built-in commands.
const (
	HandlerLook Handler = iota
	HandlerMove
	HandlerGo
	HandlerSay
	HandlerShout
	HandlerEmote
	HandlerWhisper
	HandlerGet
	HandlerDrop
	HandlerInventory
	HandlerTalk
	HandlerWho
	HandlerWhere
	HandlerHelp
	HandlerQuit
)

// Command categories, used to group the help output.
const (
	CategoryMovement      = "Movement"
	CategoryItems         = "Items"
	CategoryNPCs          = "NPCs"
	CategoryCommunication = "Communication"
	CategorySystem        = "System"
)

// Command defines one recognized verb.
type Command struct {
	// Name is the canonical verb.
	Name string
	// Aliases are alternate verbs resolving to this command.
	Aliases []string
	// Handler selects the dispatcher routine.
	Handler Handler
	// Usage is shown when required arguments are missing. Empty = no args required.
	Usage string
	// Help is the one-line description for the help listing.
	Help string
	// Category groups the command in the help listing.
	Category string
}

// RequiresArgs reports whether the command needs at least one argument.
func (c *Command) RequiresArgs() bool {
	return c.Usage != ""
}

// BuiltinCommands returns the definitions of every recognized verb.
//
// Postcondition: Returns a slice with unique names and aliases (enforced by
// NewRegistry).
func BuiltinCommands() []Command {
	return []Command{
		{Name: "look", Aliases: []string{"l"}, Handler: HandlerLook,
			Help: "Show room description, exits, people, and items", Category: CategoryMovement},
		{Name: "go", Aliases: []string{"move"}, Handler: HandlerGo, Usage: "go <direction>",
			Help: "Move to another room", Category: CategoryMovement},
		{Name: "north", Aliases: []string{"n"}, Handler: HandlerMove,
			Help: "Go north", Category: CategoryMovement},
		{Name: "south", Aliases: []string{"s"}, Handler: HandlerMove,
			Help: "Go south", Category: CategoryMovement},
		{Name: "east", Aliases: []string{"e"}, Handler: HandlerMove,
			Help: "Go east", Category: CategoryMovement},
		{Name: "west", Aliases: []string{"w"}, Handler: HandlerMove,
			Help: "Go west", Category: CategoryMovement},
		{Name: "where", Handler: HandlerWhere,
			Help: "Show your current location", Category: CategoryMovement},

		{Name: "get", Aliases: []string{"take"}, Handler: HandlerGet, Usage: "get <item>",
			Help: "Pick up an item from the room", Category: CategoryItems},
		{Name: "drop", Handler: HandlerDrop, Usage: "drop <item>",
			Help: "Drop an item from your inventory", Category: CategoryItems},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Handler: HandlerInventory,
			Help: "Show what you're carrying", Category: CategoryItems},

		{Name: "talk", Handler: HandlerTalk, Usage: "talk <npc> [keyword]",
			Help: "Talk to NPCs (try: history, food, music)", Category: CategoryNPCs},

		{Name: "say", Handler: HandlerSay, Usage: "say <message>",
			Help: "Talk to people in the same room", Category: CategoryCommunication},
		{Name: "shout", Handler: HandlerShout, Usage: "shout <message>",
			Help: "Send a message to all players", Category: CategoryCommunication},
		{Name: "emote", Aliases: []string{"me"}, Handler: HandlerEmote, Usage: "emote <action>",
			Help: "Perform an action others can see", Category: CategoryCommunication},
		{Name: "whisper", Aliases: []string{"tell"}, Handler: HandlerWhisper, Usage: "whisper <player> <message>",
			Help: "Send a private message to one player", Category: CategoryCommunication},
		{Name: "who", Handler: HandlerWho,
			Help: "Show online players", Category: CategoryCommunication},

		{Name: "help", Handler: HandlerHelp,
			Help: "Show this help", Category: CategorySystem},
		{Name: "quit", Handler: HandlerQuit,
			Help: "Exit the MUD", Category: CategorySystem},
	}
}
