package service

import (
	"errors"
	"fmt"

	reservationserrors "rentals/internal/reservations/errors"
)

// State is a step of the reservation workflow.
type State string

const (
	StateRequested    State = "REQUESTED"
	StateRejected     State = "REJECTED"
	StateLockConflict State = "LOCK_CONFLICT"
	StateLocked       State = "LOCKED"
	StateConfirmed    State = "CONFIRMED"
	StateReleased     State = "RELEASED"
)

var transitions = map[State][]State{
	StateRequested: {StateRejected, StateLockConflict, StateLocked},
	StateLocked:    {StateConfirmed, StateReleased},
}

func (s State) CanTransition(to State) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

func transition(from, to State) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", reservationserrors.ErrInvalidTransition, from, to)
	}
	return nil
}

// StateOf maps the result of Request to the state the workflow stopped in.
// Errors that are neither a rejection nor a lock conflict leave it REQUESTED.
func StateOf(err error) State {
	switch {
	case err == nil:
		return StateLocked
	case errors.Is(err, reservationserrors.ErrUnavailable):
		return StateRejected
	case errors.Is(err, reservationserrors.ErrLockConflict):
		return StateLockConflict
	default:
		return StateRequested
	}
}
