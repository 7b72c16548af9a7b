package fact

import "fmt"

// LinkState distinguishes the three states of a neighbor link.
type LinkState int

const (
	// Unresolved means the neighbor in that direction has not been looked up.
	Unresolved LinkState = iota
	// Boundary means it was looked up and nothing further exists in that
	// direction, at least within everything loaded so far.
	Boundary
	// Linked means the neighbor is known and referenced by pk.
	Linked
)

// Link is a handle to a neighboring fact. Links never own the fact they
// point at; the traverser resolves the pk through its index.
type Link struct {
	State LinkState
	PK    int64
}

// BoundaryLink returns a resolved link with no neighbor.
func BoundaryLink() Link {
	return Link{State: Boundary}
}

// LinkTo returns a link to the fact with the given pk.
func LinkTo(pk int64) Link {
	return Link{State: Linked, PK: pk}
}

func (l Link) IsUnresolved() bool { return l.State == Unresolved }
func (l Link) IsBoundary() bool   { return l.State == Boundary }
func (l Link) IsLinked() bool     { return l.State == Linked }

func (l Link) String() string {
	switch l.State {
	case Boundary:
		return "boundary"
	case Linked:
		return fmt.Sprintf("#%d", l.PK)
	default:
		return "unresolved"
	}
}
