package e2e

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type GroupChatSuite struct {
	BaseSuite
}

func TestGroupChatSuite(t *testing.T) {
	suite.Run(t, new(GroupChatSuite))
}

// TestScenario_GroupLifecycle walks two clients through registration, group
// creation, membership management, scoped broadcast, and authorization
// failures, asserting each session's exact line stream.
func (s *GroupChatSuite) TestScenario_GroupLifecycle() {
	t := s.T()

	s.Banner(t, "Registration")
	alice := s.Connect(t, "alice")
	defer alice.Close()
	alice.Expect("/users alice")

	bob := s.Connect(t, "bob")
	defer bob.Close()
	bob.Expect("/users alice bob")
	alice.Expect("/users alice bob")

	s.Banner(t, "Group creation")
	alice.Send("/create team")
	alice.Expect("/groupadded team")
	alice.Expect("Group 'team' created.")

	alice.Send("/create team")
	alice.Expect("Group 'team' already exists.")

	s.Banner(t, "Owner adds a member")
	alice.Send("/add team bob")
	alice.Expect("bob has been added to group 'team'.")
	bob.Expect("/groupadded team")
	bob.Expect("You have been added to group 'team' by alice.")

	s.Banner(t, "Group broadcast reaches the member set")
	alice.Send("/group team hello")
	alice.Expect("[team] alice: hello")
	bob.Expect("[team] alice: hello")

	s.Banner(t, "Non-owner cannot remove members")
	bob.Send("/remove team bob")
	bob.Expect("Only the group owner can remove members.")

	// Membership is unchanged and alice heard nothing: the next line on
	// both streams is the following broadcast.
	alice.Send("ping")
	alice.Expect("alice: ping")
	bob.Expect("alice: ping")

	s.Banner(t, "Non-member cannot use the group scope")
	bob.Send("/group war hi")
	bob.Expect("You are not part of this group.")

	s.Banner(t, "Moderation rewrites broadcast bodies")
	alice.Send("you scumbag")
	alice.Expect("alice: you *******")
	bob.Expect("alice: you *******")

	s.Banner(t, "Duplicate names are rejected")
	impostor := s.Connect(t, "alice")
	impostor.Expect("Name 'alice' is already in use.")
	impostor.ExpectClosed()
	impostor.Close()

	s.Banner(t, "Graceful exit")
	bob.Send("exit")
	bob.ExpectClosed()
	alice.Expect("/users alice")

	alice.Send("exit")
	alice.ExpectClosed()
}

// TestScenario_OwnerDisconnectDissolvesGroup exercises the documented
// owner-disconnect policy end to end.
func (s *GroupChatSuite) TestScenario_OwnerDisconnectDissolvesGroup() {
	t := s.T()

	s.Banner(t, "Setup owner and member")
	dana := s.Connect(t, "dana")
	dana.Expect("/users dana")

	erin := s.Connect(t, "erin")
	erin.Expect("/users dana erin")
	dana.Expect("/users dana erin")

	dana.Send("/create raid")
	dana.Expect("/groupadded raid")
	dana.Expect("Group 'raid' created.")

	dana.Send("/add raid erin")
	dana.Expect("erin has been added to group 'raid'.")
	erin.Expect("/groupadded raid")
	erin.Expect("You have been added to group 'raid' by dana.")

	s.Banner(t, "Owner drops the connection")
	dana.Close()

	erin.Expect("/groupremoved raid")
	erin.Expect("Group 'raid' has been dissolved because its owner left.")
	erin.Expect("/users erin")

	// The group is really gone: erin cannot address it anymore
	erin.Send("/group raid anyone")
	erin.Expect("You are not part of this group.")

	erin.Send("exit")
	erin.ExpectClosed()
	erin.Close()
}

// TestScenario_EmptyNameClosesSilently checks that a client that never
// completes the handshake triggers no user-list broadcast.
func (s *GroupChatSuite) TestScenario_EmptyNameClosesSilently() {
	t := s.T()

	s.Banner(t, "Witness client")
	frank := s.Connect(t, "frank")
	frank.Expect("/users frank")

	s.Banner(t, "Nameless client disconnects")
	ghost := s.Connect(t, "")
	ghost.ExpectClosed()
	ghost.Close()

	// frank hears nothing: the next thing on his stream is his own echo
	frank.Send("anyone here")
	frank.Expect("frank: anyone here")

	frank.Send("exit")
	frank.ExpectClosed()
	frank.Close()
}
