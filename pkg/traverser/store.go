package traverser

import (
	"context"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// Store is the backing store the engine lazily reads facts from. Calls are
// synchronous and are not retried; errors propagate to the caller.
type Store interface {
	// Antecedent returns the nearest stored fact strictly before f, or nil.
	Antecedent(ctx context.Context, f *fact.Fact) (*fact.Fact, error)
	// Subsequent returns the nearest stored fact strictly after f, or nil.
	Subsequent(ctx context.Context, f *fact.Fact) (*fact.Fact, error)
	// Surrounding returns the stored facts whose interval contains t.
	Surrounding(ctx context.Context, t time.Time, inclusive bool) ([]*fact.Fact, error)
	// GetAll runs a bounded range query.
	GetAll(ctx context.Context, q fact.Query) ([]*fact.Fact, error)
	// Now returns the store's notion of the current time.
	Now() time.Time
}
