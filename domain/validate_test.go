package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"group-chat/errors"
)

func TestValidateName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateName("alice"))
	req.NoError(ValidateName("bob_42"))
	req.NoError(ValidateName("team-blue"))

	req.ErrorIs(ValidateName(""), errors.ErrInvalidName)
	req.ErrorIs(ValidateName("two words"), errors.ErrInvalidName)
	req.ErrorIs(ValidateName("tab\there"), errors.ErrInvalidName)
	req.ErrorIs(ValidateName(strings.Repeat("a", 33)), errors.ErrInvalidName)
}

func TestGroup_Membership(t *testing.T) {
	req := require.New(t)
	group := NewGroup("team", "alice")

	// The owner is a member from creation
	req.Equal("alice", group.Owner)
	req.True(group.IsMember("alice"))

	group.Add("bob")
	req.True(group.IsMember("bob"))

	req.True(group.Remove("bob"))
	req.False(group.IsMember("bob"))

	// Removing a non-member reports it
	req.False(group.Remove("bob"))
}
