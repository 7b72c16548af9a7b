package traverser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/store"
)

var day1 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day1.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func onDay(d, h, m int) time.Time {
	return day1.AddDate(0, 0, d).Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// stored returns a copy of f as if just read from the store.
func stored(f *fact.Fact) *fact.Fact {
	c := fact.New(f.PK, f.Start.Time, f.End.Time, f.Activity)
	c.Category = f.Category
	c.Tags = f.Tags
	c.Description = f.Description
	return c
}

// newSession builds a session over a memory store holding storeFacts, with
// working set copies of the working facts.
func newSession(t *testing.T, storeFacts, working []*fact.Fact, opts ...Option) (*EditSession, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(storeFacts, store.WithClock(func() time.Time { return onDay(2, 0, 0) }))
	var set []*fact.Fact
	for _, f := range working {
		set = append(set, stored(f))
	}
	s, err := NewEditSession(mem, set, nil, opts...)
	require.NoError(t, err)
	require.NoError(t, s.StandUp(context.Background()))
	return s, mem
}

// requireConsistent checks the structural invariants of the engine.
func requireConsistent(t *testing.T, e *Engine) {
	t.Helper()
	seen := make(map[int64]bool)
	for i, g := range e.Groups() {
		require.True(t, g.Contiguous(), "group %d not contiguous: %s", i, g)
		if i > 0 {
			require.LessOrEqual(t, e.Groups()[i-1].Key().Compare(g.Key()), 0, "groups out of order")
		}
		for _, f := range g.Facts() {
			require.False(t, seen[f.PK], "pk %d in two places", f.PK)
			seen[f.PK] = true
			require.Same(t, f, e.Lookup(f.PK))
		}
	}
	require.Len(t, seen, e.Len())
	if cur := e.CurrentFact(); cur != nil {
		require.Same(t, cur, e.Lookup(cur.PK))
	}
}

func pks(facts []*fact.Fact) []int64 {
	return pksOf(facts)
}

// abFacts returns A at 08:00-09:00 and B at 09:00-10:00.
func abFacts() []*fact.Fact {
	return []*fact.Fact{
		fact.New(1, at(8, 0), at(9, 0), "a"),
		fact.New(2, at(9, 0), at(10, 0), "b"),
	}
}
