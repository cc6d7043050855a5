package fl

import (
	"fmt"
	"slices"
)

// State is the lifecycle state of a training as reported by the backend.
// The dashboard observes states, it never drives them.
type State uint8

const (
	Initial State = iota
	Ongoing
	SwagRound
	Completed
	Error
)

const (
	initial   = "INITIAL"
	ongoing   = "ONGOING"
	swagRound = "SWAG_ROUND"
	completed = "COMPLETED"
	errState  = "ERROR"
	unknown   = "UNKNOWN"
)

// Single-letter codes the backend uses on the wire.
const (
	initialCode   = "I"
	ongoingCode   = "O"
	swagRoundCode = "S"
	completedCode = "C"
	errorCode     = "E"
)

var validTransitions = map[State][]State{
	Initial:   {Ongoing, Error},
	Ongoing:   {SwagRound, Completed, Error},
	SwagRound: {Completed, Error},
	Completed: {},
	Error:     {},
}

func (s State) String() string {
	switch s {
	case Initial:
		return initial
	case Ongoing:
		return ongoing
	case SwagRound:
		return swagRound
	case Completed:
		return completed
	case Error:
		return errState
	default:
		return unknown
	}
}

// Code returns the backend code of the state.
func (s State) Code() string {
	switch s {
	case Initial:
		return initialCode
	case Ongoing:
		return ongoingCode
	case SwagRound:
		return swagRoundCode
	case Completed:
		return completedCode
	case Error:
		return errorCode
	default:
		return ""
	}
}

// ParseState accepts both state names and backend codes.
func ParseState(s string) (State, error) {
	switch s {
	case initial, initialCode:
		return Initial, nil
	case ongoing, ongoingCode:
		return Ongoing, nil
	case swagRound, swagRoundCode:
		return SwagRound, nil
	case completed, completedCode:
		return Completed, nil
	case errState, errorCode:
		return Error, nil
	default:
		return Initial, fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

func (s State) MarshalText() ([]byte, error) {
	if s > Error {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, s)
	}

	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(data []byte) error {
	st, err := ParseState(string(data))
	if err != nil {
		return err
	}
	*s = st

	return nil
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == Completed || s == Error
}

// ValidateTransition reports whether the backend may move a training from
// one state to another. Staying in the same state is always valid.
func ValidateTransition(from, to State) error {
	if from == to {
		return nil
	}
	allowed, ok := validTransitions[from]
	if !ok || !slices.Contains(allowed, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, from, to)
	}

	return nil
}
