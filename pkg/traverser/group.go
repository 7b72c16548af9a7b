package traverser

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// Group is a chronologically ordered run of facts with no internal time
// gaps: for every adjacent pair, the first ends where the second starts.
type Group struct {
	facts []*fact.Fact
}

// NewGroup returns a group holding facts, sorted.
func NewGroup(facts ...*fact.Fact) *Group {
	g := &Group{facts: slices.Clone(facts)}
	slices.SortFunc(g.facts, fact.Compare)
	return g
}

// Add inserts f, keeping the group sorted.
func (g *Group) Add(f *fact.Fact) {
	affirm(!g.Contains(f), "fact #%d already in group %s", f.PK, g)
	at, _ := slices.BinarySearchFunc(g.facts, f, fact.Compare)
	g.facts = slices.Insert(g.facts, at, f)
}

// IndexOf returns the position of the fact with the same pk as f.
func (g *Group) IndexOf(f *fact.Fact) (int, error) {
	for i, cand := range g.facts {
		if cand.PK == f.PK {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: #%d is not in group", ErrNotFound, f.PK)
}

// Contains reports whether a fact with the pk of f is in the group.
func (g *Group) Contains(f *fact.Fact) bool {
	_, err := g.IndexOf(f)
	return err == nil
}

// At returns the fact at position i.
func (g *Group) At(i int) *fact.Fact {
	return g.facts[i]
}

// Len returns the number of facts in the group.
func (g *Group) Len() int {
	return len(g.facts)
}

// First returns the earliest fact, or nil for an empty group.
func (g *Group) First() *fact.Fact {
	if len(g.facts) == 0 {
		return nil
	}
	return g.facts[0]
}

// Final returns the latest fact, or nil for an empty group.
func (g *Group) Final() *fact.Fact {
	if len(g.facts) == 0 {
		return nil
	}
	return g.facts[len(g.facts)-1]
}

// FirstTime is the start of the group's first fact.
func (g *Group) FirstTime() time.Time {
	if f := g.First(); f != nil {
		return f.Start.Time
	}
	return time.Time{}
}

// FinalTime is the end of the group's final fact.
func (g *Group) FinalTime() time.Time {
	if f := g.Final(); f != nil {
		return f.End.Time
	}
	return time.Time{}
}

// Key is the ordering key of the group's first fact.
func (g *Group) Key() fact.Key {
	if f := g.First(); f != nil {
		return f.Key()
	}
	return fact.Key{}
}

// Concat returns a new group with the facts of both groups. The result is
// sorted, so the order of the operands does not matter.
func (g *Group) Concat(other *Group) *Group {
	return NewGroup(append(slices.Clone(g.facts), other.facts...)...)
}

// Facts returns a copy of the group's fact list.
func (g *Group) Facts() []*fact.Fact {
	return slices.Clone(g.facts)
}

// ContainsTime reports whether the interval of f lies inside the group's span.
func (g *Group) ContainsTime(f *fact.Fact) bool {
	if g.Len() == 0 {
		return false
	}
	first, final := g.FirstTime(), g.FinalTime()
	if !first.IsZero() && (f.Start.IsZero() || f.Start.Before(first)) {
		return false
	}
	if !final.IsZero() && (f.End.IsZero() || f.End.After(final)) {
		return false
	}
	return true
}

// Contiguous reports whether every adjacent pair of facts touches.
func (g *Group) Contiguous() bool {
	for i := 1; i < len(g.facts); i++ {
		if !g.facts[i-1].End.Equal(g.facts[i].Start.Time) {
			return false
		}
	}
	return true
}

func (g *Group) remove(f *fact.Fact) {
	i, err := g.IndexOf(f)
	affirm(err == nil, "remove: %v", err)
	g.facts = slices.Delete(g.facts, i, i+1)
}

func (g *Group) set(i int, f *fact.Fact) {
	affirm(g.facts[i].PK == f.PK, "slot %d holds #%d, not #%d", i, g.facts[i].PK, f.PK)
	g.facts[i] = f
}

func (g *Group) String() string {
	pks := make([]string, len(g.facts))
	for i, f := range g.facts {
		pks[i] = fmt.Sprint(f.PK)
	}
	return fmt.Sprintf("%q to %q / No. Facts: %d / PK(s): %s",
		g.FirstTime().Format(time.RFC3339), g.FinalTime().Format(time.RFC3339),
		len(pks), strings.Join(pks, ", "))
}
