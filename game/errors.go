package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction marks a rejected declaration. The state is unchanged and the caller
	// may propose something else.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvariantViolation marks a broken game invariant, which is a bug in the core.
	ErrInvariantViolation = errors.New("invariant violation")
)

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonGameOver        Reason = "GAME_OVER"
	ReasonWrongPlayer     Reason = "WRONG_PLAYER"
	ReasonWrongPhase      Reason = "WRONG_PHASE"
	ReasonUnknownRegion   Reason = "UNKNOWN_REGION"
	ReasonNotOwner        Reason = "NOT_OWNER"
	ReasonOwnTarget       Reason = "OWN_TARGET"
	ReasonNotAdjacent     Reason = "NOT_ADJACENT"
	ReasonNotEnoughDice   Reason = "NOT_ENOUGH_DICE"
	ReasonAlreadyAttacked Reason = "ALREADY_ATTACKED"
	ReasonRegionFull      Reason = "REGION_FULL"
	ReasonUnknownAction   Reason = "UNKNOWN_ACTION"
)

type InvalidActionError struct {
	Reason Reason
	Detail string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action (%s): %s", e.Reason, e.Detail)
}

func (e *InvalidActionError) Unwrap() error {
	return ErrInvalidAction
}

func reject(reason Reason, format string, args ...any) error {
	return &InvalidActionError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection code from err, or "" when err is not a rejection.
func ReasonOf(err error) Reason {
	var invalid *InvalidActionError
	if errors.As(err, &invalid) {
		return invalid.Reason
	}
	return ""
}

type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Detail
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInvariantViolation
}
