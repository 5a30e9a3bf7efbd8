package engine

import "errors"

// Contract violations. They are raised as panics wrapped in *ContractError;
// recover and use errors.Is to test for a specific one.
var (
	ErrNilState      = errors.New("nil state")
	ErrLocked        = errors.New("state stack is locked")
	ErrAlreadyLocked = errors.New("state stack already locked")
	ErrNotLocked     = errors.New("state stack not locked")
	ErrEmptyStack    = errors.New("state stack is empty")
	ErrAlreadyActive = errors.New("state is already active")
	ErrNotActive     = errors.New("state is not active")
	ErrIsSubstate    = errors.New("state is a substate")
	ErrHasParent     = errors.New("substate already has a parent")
	ErrNoSubstate    = errors.New("no substate to pop")
	ErrUnstableStack = errors.New("stack top did not settle within the pass limit")
)

// ContractError reports a misuse of the state stack.
type ContractError struct {
	Op    string
	State string
	Err   error
}

func (e *ContractError) Error() string {
	if e.State == "" {
		return "engine: " + e.Op + ": " + e.Err.Error()
	}
	return "engine: " + e.Op + " " + e.State + ": " + e.Err.Error()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func violate(op string, s *State, err error) {
	ce := &ContractError{Op: op, Err: err}
	if s != nil {
		ce.State = s.Name
	}
	panic(ce)
}
