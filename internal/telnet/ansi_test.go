package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", Colorize(Red, "danger"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mhi bob\033[0m", Colorf(Green, "hi %s", "bob"))
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{Colorize(Red, "plain"), "plain"},
		{"no codes here", "no codes here"},
		{Bold + BrightCyan + "title" + Reset, "title"},
		{"", ""},
		{"trailing\033[", "trailing\033["},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripANSI(tt.in))
	}
}
