package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ParseResult
	}{
		{
			name: "bare verb",
			line: "look",
			want: ParseResult{Verb: "look"},
		},
		{
			name: "verb lowercased",
			line: "LOOK",
			want: ParseResult{Verb: "look"},
		},
		{
			name: "verb with args",
			line: "get brass lantern",
			want: ParseResult{Verb: "get", Args: []string{"brass", "lantern"}, RawArgs: "brass lantern"},
		},
		{
			name: "raw args keep interior spacing",
			line: "say hello   there",
			want: ParseResult{Verb: "say", Args: []string{"hello", "there"}, RawArgs: "hello   there"},
		},
		{
			name: "surrounding whitespace trimmed",
			line: "  who  ",
			want: ParseResult{Verb: "who"},
		},
		{
			name: "blank line",
			line: "   ",
			want: ParseResult{},
		},
		{
			name: "args keep case",
			line: "whisper Bob hi",
			want: ParseResult{Verb: "whisper", Args: []string{"Bob", "hi"}, RawArgs: "Bob hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.line))
		})
	}
}
