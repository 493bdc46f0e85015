package langmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCorpus is matched by InvalidCorpusError.
	ErrInvalidCorpus = errors.New("langmodel: corpus too short for window length")
	// ErrUnknownWindow is matched by UnknownWindowError.
	ErrUnknownWindow = errors.New("langmodel: window not found in model")
	// ErrInvalidWindowLength is returned by New for a non-positive window length.
	ErrInvalidWindowLength = errors.New("langmodel: window length must be positive")
	// ErrNegativeLength is returned by Generate for a negative character count.
	ErrNegativeLength = errors.New("langmodel: number of characters must not be negative")
)

// InvalidCorpusError reports a corpus that cannot form a single window.
type InvalidCorpusError struct {
	Length       int
	WindowLength int
}

func (e *InvalidCorpusError) Error() string {
	return fmt.Sprintf("langmodel: corpus of %d characters is too short for window length %d", e.Length, e.WindowLength)
}

// Is reports whether target is ErrInvalidCorpus.
func (e *InvalidCorpusError) Is(target error) bool {
	return target == ErrInvalidCorpus
}

// UnknownWindowError reports a generation step whose trailing window was never
// seen during training.
type UnknownWindowError struct {
	Window string
	// Step is the zero-based index of the character being generated.
	Step int
}

func (e *UnknownWindowError) Error() string {
	return fmt.Sprintf("langmodel: unknown window %q at step %d", e.Window, e.Step)
}

// Is reports whether target is ErrUnknownWindow.
func (e *UnknownWindowError) Is(target error) bool {
	return target == ErrUnknownWindow
}
