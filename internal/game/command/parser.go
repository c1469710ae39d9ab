// Package command provides the text command parser and the registry of
// recognized verbs.
package command

import "strings"

// ParseResult holds the parsed verb and arguments from a text line.
type ParseResult struct {
	// Verb is the first word of the input, lowercased.
	Verb string
	// Args are the remaining words after the verb.
	Args []string
	// RawArgs is the raw text after the verb (preserving spacing for say/emote).
	RawArgs string
}

// Parse splits a text line into a verb and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Verb is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{Verb: strings.ToLower(line)}
	}

	verb := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Verb:    verb,
		Args:    args,
		RawArgs: rest,
	}
}
