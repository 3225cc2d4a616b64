package script

import "errors"

var (
	// ErrNoSteps is returned for scripts without steps.
	ErrNoSteps = errors.New("script has no steps")

	// ErrUnknownAction is returned for step keys that are not actions.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMultipleActions is returned when a step holds more than one action.
	ErrMultipleActions = errors.New("step must hold exactly one action")

	// ErrInvalidArgument is returned for malformed action arguments.
	ErrInvalidArgument = errors.New("invalid action argument")
)
