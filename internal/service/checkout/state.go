package checkout

import "errors"

var (
	// ErrIllegalTransition means the orchestrator was asked to move between
	// two states the transition table does not connect.
	ErrIllegalTransition = errors.New("illegal transition of checkout state")
	// ErrInFlight is returned by Submit while a previous attempt is still
	// being processed.
	ErrInFlight = errors.New("checkout already in progress")
)

type State string

const (
	StateIdle                  State = "idle"
	StateValidating            State = "validating"
	StateSubmitting            State = "submitting"
	StateAwaitingHash          State = "awaiting_hash"
	StateAwaitingGatewayResult State = "awaiting_gateway_result"
	StateConfirming            State = "confirming"
	StateCompleted             State = "completed"
	StateAbandoned             State = "abandoned"
	StateFailed                State = "failed"
)

var transitions = map[State][]State{
	StateIdle:                  {StateValidating},
	StateValidating:            {StateIdle, StateSubmitting},
	StateSubmitting:            {StateCompleted, StateAwaitingHash, StateFailed},
	StateAwaitingHash:          {StateAwaitingGatewayResult, StateFailed},
	StateAwaitingGatewayResult: {StateConfirming, StateAbandoned, StateFailed},
	StateConfirming:            {StateCompleted, StateFailed},
	StateCompleted:             {StateIdle},
	StateAbandoned:             {StateIdle},
	StateFailed:                {StateIdle},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateAbandoned || s == StateFailed
}

// InFlight reports whether an attempt is waiting on the backend or the
// gateway. Submit is refused in these states.
func (s State) InFlight() bool {
	switch s {
	case StateValidating, StateSubmitting, StateAwaitingHash, StateAwaitingGatewayResult, StateConfirming:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}
