package services

import (
	"errors"
	"fmt"
)

// ErrValidation marks a request rejected because a required field was
// missing. Controllers map it to 400; nothing is mutated when it fires.
var ErrValidation = errors.New("missing required field")

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrValidation, name)
}
