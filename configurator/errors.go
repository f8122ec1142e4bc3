package configurator

import "errors"

var (
	// ErrLogic marks a caller programming error: an unregistered class id,
	// a malformed root-key wrapper, or a constructor shape that doesn't
	// match the arguments Create was given.
	ErrLogic = errors.New("configurator: logic error")
	// ErrParameter marks a rejected configuration value: failed
	// validation, or an error/panic surfaced from the constructor itself.
	ErrParameter = errors.New("configurator: invalid parameter")
)
