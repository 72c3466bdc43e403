package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"group-chat/domain"
	"group-chat/errors"
)

func TestParseLine_Commands(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.Command
	}{
		{
			name:     "Create group",
			input:    "/create team",
			expected: domain.CreateGroupCommand{Group: "team"},
		},
		{
			name:     "Add member",
			input:    "/add team bob",
			expected: domain.AddMemberCommand{Group: "team", User: "bob"},
		},
		{
			name:     "Remove member",
			input:    "/remove team bob",
			expected: domain.RemoveMemberCommand{Group: "team", User: "bob"},
		},
		{
			name:     "Group message keeps inner spaces",
			input:    "/group team hello there friends",
			expected: domain.GroupMessageCommand{Group: "team", Text: "hello there friends"},
		},
		{
			name:     "Exit is case-insensitive",
			input:    "EXIT",
			expected: domain.ExitCommand{},
		},
		{
			name:     "Command prefixes are case-insensitive",
			input:    "/CREATE team",
			expected: domain.CreateGroupCommand{Group: "team"},
		},
		{
			name:     "Plain text is a broadcast",
			input:    "hello everyone",
			expected: domain.BroadcastCommand{Text: "hello everyone"},
		},
		{
			name:     "Unknown slash command is a broadcast",
			input:    "/shrug",
			expected: domain.BroadcastCommand{Text: "/shrug"},
		},
		{
			name:     "Word containing exit is a broadcast",
			input:    "exits are over there",
			expected: domain.BroadcastCommand{Text: "exits are over there"},
		},
		{
			name:     "Empty line is a broadcast",
			input:    "",
			expected: domain.BroadcastCommand{Text: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, err := ParseLine(tt.input)
			req.NoError(err)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestParseLine_Malformed_Commands(t *testing.T) {
	inputs := []string{
		"/create",
		"/create  ",
		"/create two words",
		"/add",
		"/add team",
		"/add team bob extra",
		"/remove",
		"/remove team",
		"/group",
		"/group team",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			req := require.New(t)
			cmd, err := ParseLine(input)
			req.ErrorIs(err, errors.ErrMalformedCommand)
			req.Nil(cmd)
		})
	}
}
