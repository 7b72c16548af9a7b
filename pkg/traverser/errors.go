package traverser

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a fact is not part of a group or the engine.
	ErrNotFound = errors.New("traverser: fact not found")

	// ErrDuplicatePK indicates an attempt to load a fact whose pk is already known.
	ErrDuplicatePK = errors.New("traverser: duplicate fact pk")

	// ErrNoFacts indicates there is nothing to traverse, neither in the working
	// set nor in the store.
	ErrNoFacts = errors.New("traverser: no facts")
)

// InvariantError reports corrupted traversal state. It is raised as a panic
// and is not meant to be recovered within the session.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "traverser: invariant violated: " + e.Msg
}

func affirm(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}
