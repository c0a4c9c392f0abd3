// Package usecase implements the signal engine's operations: single-symbol
// analysis, bot runs and audience notification.
package usecase

import "errors"

var (
	// ErrMissingActor is returned when a bot run has no operator identity to
	// attribute persisted signals to.
	ErrMissingActor = errors.New("bot run has no actor identity")

	// ErrUnknownAction is returned for an operation name the engine does not support.
	ErrUnknownAction = errors.New("unknown action")

	// ErrEmptySymbol is returned when analysis is requested without a symbol.
	ErrEmptySymbol = errors.New("symbol is required")

	// ErrSignalNotFound is returned when a signal cannot be found by ID.
	ErrSignalNotFound = errors.New("signal not found")

	// ErrBotNotFound is returned when a bot definition cannot be found by ID.
	ErrBotNotFound = errors.New("bot not found")
)
