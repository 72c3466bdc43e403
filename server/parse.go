// Package server implements the line-oriented protocol: one listener, one
// session per connection, one parsed command per received line.
package server

import (
	"fmt"
	"strings"

	"group-chat/domain"
	"group-chat/errors"
)

// ParseLine turns one raw client line into a command. A line that matches no
// command prefix is a plain broadcast, verbatim. Commands with missing
// arguments return ErrMalformedCommand wrapped with a usage hint; the
// session reports it and stays open.
func ParseLine(line string) (domain.Command, error) {
	if strings.EqualFold(line, "exit") {
		return domain.ExitCommand{}, nil
	}

	tokens := strings.SplitN(line, " ", 2)
	rest := ""
	if len(tokens) == 2 {
		rest = tokens[1]
	}

	switch strings.ToLower(tokens[0]) {
	case "/create":
		params := strings.Fields(rest)
		if len(params) != 1 {
			return nil, usageError("/create <group>")
		}
		return domain.CreateGroupCommand{Group: params[0]}, nil

	case "/add":
		params := strings.Fields(rest)
		if len(params) != 2 {
			return nil, usageError("/add <group> <user>")
		}
		return domain.AddMemberCommand{Group: params[0], User: params[1]}, nil

	case "/remove":
		params := strings.Fields(rest)
		if len(params) != 2 {
			return nil, usageError("/remove <group> <user>")
		}
		return domain.RemoveMemberCommand{Group: params[0], User: params[1]}, nil

	case "/group":
		params := strings.SplitN(rest, " ", 2)
		if len(params) != 2 || params[0] == "" {
			return nil, usageError("/group <group> <message>")
		}
		return domain.GroupMessageCommand{Group: params[0], Text: params[1]}, nil

	default:
		return domain.BroadcastCommand{Text: line}, nil
	}
}

func usageError(usage string) error {
	return fmt.Errorf("%w, usage: %s", errors.ErrMalformedCommand, usage)
}
