package store

import (
	"slices"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// The lookups below work on a full snapshot of stored facts. Both Disk and
// Memory answer the traversal queries through them, so the two agree.

func live(facts []*fact.Fact) []*fact.Fact {
	return slices.DeleteFunc(slices.Clone(facts), func(f *fact.Fact) bool { return f == nil || f.Deleted })
}

// antecedent is the stored fact sorting right before ref, ref itself excluded.
func antecedent(facts []*fact.Fact, ref *fact.Fact) *fact.Fact {
	var best *fact.Fact
	for _, f := range live(facts) {
		if f.PK == ref.PK || fact.Compare(f, ref) >= 0 {
			continue
		}
		if best == nil || f.After(best) {
			best = f
		}
	}
	return best
}

// subsequent is the stored fact sorting right after ref, ref itself excluded.
func subsequent(facts []*fact.Fact, ref *fact.Fact) *fact.Fact {
	var best *fact.Fact
	for _, f := range live(facts) {
		if f.PK == ref.PK || fact.Compare(f, ref) <= 0 {
			continue
		}
		if best == nil || f.Before(best) {
			best = f
		}
	}
	return best
}

// surrounding lists the facts whose interval holds t, sorted. Exclusive
// lookups ignore facts that merely start or end at t.
func surrounding(facts []*fact.Fact, t time.Time, inclusive bool) []*fact.Fact {
	var out []*fact.Fact
	for _, f := range live(facts) {
		if !f.Contains(t) {
			continue
		}
		if !inclusive && (f.Start.Equal(t) || f.End.Equal(t)) {
			continue
		}
		out = append(out, f)
	}
	slices.SortFunc(out, fact.Compare)
	return out
}

// query applies a range query.
func query(facts []*fact.Fact, q fact.Query) []*fact.Fact {
	var out []*fact.Fact
	for _, f := range live(facts) {
		if q.Matches(f) {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, fact.Compare)
	if q.Order == fact.Descending {
		slices.Reverse(out)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
