package engine

import "errors"

var (
	// ErrPoolExhausted means the requested band has no items at all, even
	// ignoring used ids. It signals a content authoring defect.
	ErrPoolExhausted = errors.New("engine: no items in difficulty band")

	// ErrInvalidInput means an answer does not name a valid selection for the current item(s)
	ErrInvalidInput = errors.New("engine: answer does not match the current item")

	// ErrStateMisuse means a transition was requested in an incompatible phase
	ErrStateMisuse = errors.New("engine: action not allowed in current phase")

	ErrInvalidConfig = errors.New("engine: invalid configuration")
)
