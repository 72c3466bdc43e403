package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrNameTaken        = fmt.Errorf("name already in use")
	ErrGroupExists      = fmt.Errorf("group already exists")
	ErrGroupNotFound    = fmt.Errorf("group not found")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrNotOwner         = fmt.Errorf("requester is not the group owner")
	ErrNotMember        = fmt.Errorf("user is not a group member")
	ErrMalformedCommand = fmt.Errorf("malformed command")
	ErrInvalidName      = fmt.Errorf("invalid name")
)
