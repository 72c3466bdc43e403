package domain

import (
	"group-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// The wire protocol is space-delimited, so a name containing a space or a
// tab would corrupt every line that embeds it.
type nameRules struct {
	Name string `validate:"required,max=32,excludesall=0x20,printascii"`
}

// ValidateName checks a display name or group name against the protocol
// constraints. The empty string is rejected by the caller before it gets
// here, but required keeps the rule self-contained.
func ValidateName(name string) error {
	if err := validate.Struct(nameRules{Name: name}); err != nil {
		return errors.ErrInvalidName
	}
	return nil
}
