package domain

// Command is one parsed client line, ready for dispatch.
type Command interface {
	isCommand()
}

type CreateGroupCommand struct {
	Group string
}

type AddMemberCommand struct {
	Group string
	User  string
}

type RemoveMemberCommand struct {
	Group string
	User  string
}

type GroupMessageCommand struct {
	Group string
	Text  string
}

type BroadcastCommand struct {
	Text string
}

type ExitCommand struct{}

func (CreateGroupCommand) isCommand()  {}
func (AddMemberCommand) isCommand()    {}
func (RemoveMemberCommand) isCommand() {}
func (GroupMessageCommand) isCommand() {}
func (BroadcastCommand) isCommand()    {}
func (ExitCommand) isCommand()         {}
