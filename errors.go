package worldgen

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters is returned for out-of-range inputs, before any
	// grid is allocated.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrTooLarge is returned when the requested base grid would exceed the
	// cell ceiling. Surfaced to the caller before allocation; no partial map.
	ErrTooLarge = errors.New("requested resolution too large")

	// ErrCancelled is returned when the caller cancels between stages.
	ErrCancelled = errors.New("generation cancelled")

	// ErrInternal marks an invariant violation inside a stage.
	ErrInternal = errors.New("internal error")
)

func paramErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameters, fmt.Sprintf(format, args...))
}

func internalErr(stage, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInternal, stage, fmt.Sprintf(format, args...))
}
