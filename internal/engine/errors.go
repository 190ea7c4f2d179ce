package engine

import (
	"errors"
	"fmt"
	"time"

	"tbc-warlock-sim/internal/spells"
)

// ErrAccumulatorOverflow reports a single contribution larger than the
// per-iteration accumulator can hold.
var ErrAccumulatorOverflow = errors.New("accumulator overflow")

// Runtime error codes.
const (
	CodeNegativeCooldown    = "negative_cooldown"
	CodeMissingSibling      = "missing_sibling"
	CodeAccumulatorOverflow = "accumulator_overflow"
	CodeInternal            = "internal"
)

// RuntimeError aborts a run when an engine invariant is violated. The
// buffered combat log has already been flushed when it is returned.
type RuntimeError struct {
	Code      string
	Iteration int
	FightTime time.Duration
	Err       error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s in iteration %d at %.2fs: %v", e.Code, e.Iteration, e.FightTime.Seconds(), e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func newRuntimeError(iteration int, at time.Duration, err error) *RuntimeError {
	return &RuntimeError{
		Code:      runtimeCode(err),
		Iteration: iteration,
		FightTime: at,
		Err:       err,
	}
}

func runtimeCode(err error) string {
	switch {
	case errors.Is(err, spells.ErrNegativeCooldown):
		return CodeNegativeCooldown
	case errors.Is(err, spells.ErrMissingSibling):
		return CodeMissingSibling
	case errors.Is(err, ErrAccumulatorOverflow):
		return CodeAccumulatorOverflow
	default:
		return CodeInternal
	}
}
