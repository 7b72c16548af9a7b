package fact

import "time"

// Order is a sort direction for range queries.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// Query is a bounded range query over stored facts, sorted by start time.
// Since keeps facts that have not ended before it; Until keeps facts that
// started no later than it. Zero bounds and a zero Limit are unbounded.
type Query struct {
	Order Order
	Limit int
	Since time.Time
	Until time.Time
}

// Matches reports whether f falls within the query bounds.
func (q Query) Matches(f *Fact) bool {
	if !q.Since.IsZero() && !f.End.IsZero() && f.End.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !f.Start.IsZero() && f.Start.After(q.Until) {
		return false
	}
	return true
}
