package dispatch

import (
	"fmt"
	"strings"

	"github.com/sa-mud/samud/internal/game/command"
	"github.com/sa-mud/samud/internal/game/state"
)

// crlf joins lines with the telnet line terminator.
func crlf(lines []string) string {
	return strings.Join(lines, "\r\n")
}

// RenderRoomView formats a room snapshot for display.
//
// Postcondition: Returns a multi-line string; slices in view are already
// sorted, so output is deterministic.
func RenderRoomView(view state.RoomView) string {
	lines := []string{
		"=== " + view.Name + " ===",
		view.Description,
		"",
	}

	if len(view.Exits) > 0 {
		lines = append(lines, "Exits: "+strings.Join(view.Exits, ", "))
	} else {
		lines = append(lines, "Exits: none")
	}

	if len(view.Players) > 0 {
		lines = append(lines, "Players here: "+strings.Join(view.Players, ", "))
	}

	if len(view.NPCs) > 0 {
		lines = append(lines, "NPCs here:")
		for _, n := range view.NPCs {
			lines = append(lines, fmt.Sprintf("  %s - %s", n.Name, n.Description))
		}
	}

	if len(view.Items) > 0 {
		lines = append(lines, "Items here:")
		for _, it := range view.Items {
			lines = append(lines, fmt.Sprintf("  %s - %s", it.Name, it.Description))
		}
	}

	return crlf(lines)
}

// RenderInventory formats the carried item list.
func RenderInventory(items []state.ItemInfo) string {
	if len(items) == 0 {
		return "You're not carrying anything."
	}
	lines := []string{"You are carrying:"}
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("  %s - %s", it.Name, it.Description))
	}
	return crlf(lines)
}

// helpCategoryOrder fixes the section order of the help listing.
var helpCategoryOrder = []string{
	command.CategoryMovement,
	command.CategoryItems,
	command.CategoryNPCs,
	command.CategoryCommunication,
	command.CategorySystem,
}

// RenderHelp formats the command listing grouped by category, preserving the
// definition order within each category.
func RenderHelp(registry *command.Registry) string {
	byCategory := make(map[string][]*command.Command)
	for _, cmd := range command.BuiltinCommands() {
		resolved, ok := registry.Resolve(cmd.Name)
		if !ok {
			continue
		}
		byCategory[resolved.Category] = append(byCategory[resolved.Category], resolved)
	}

	lines := []string{"=== Commands ==="}
	for _, category := range helpCategoryOrder {
		cmds := byCategory[category]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, "", category+":")
		for _, cmd := range cmds {
			label := cmd.Name
			if cmd.Usage != "" {
				label = cmd.Usage
			}
			if len(cmd.Aliases) > 0 {
				label += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			lines = append(lines, fmt.Sprintf("  %-32s %s", label, cmd.Help))
		}
	}
	return crlf(lines)
}
