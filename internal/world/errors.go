package world

import "errors"

// Contract violations. They are raised as panics wrapped in *ContractError;
// recover and use errors.Is to test for a specific one.
var (
	ErrNilEntity      = errors.New("nil entity")
	ErrNonFinite      = errors.New("non-finite coordinate")
	ErrAlreadyLive    = errors.New("entity already spawned")
	ErrNotLive        = errors.New("entity is not spawned")
	ErrSpawnPending   = errors.New("spawn still pending")
	ErrDespawnPending = errors.New("despawn already pending")
	ErrForeignIndex   = errors.New("entity belongs to another index")
	ErrCorruptRow     = errors.New("row list corrupted")
)

// ContractError reports a misuse of the index or an entity.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return "world: " + e.Op + ": " + e.Err.Error()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func violate(op string, err error) {
	panic(&ContractError{Op: op, Err: err})
}
