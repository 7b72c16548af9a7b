package traverser

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// Direction picks which side of a reference time a jump lands on.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) order() fact.Order {
	if d == Backward {
		return fact.Descending
	}
	return fact.Ascending
}

const day = 24 * time.Hour

// DecrementOneDay jumps to the fact nearest to one day before the last jump,
// or before the current fact's start if this is the first jump in a row.
func (e *Engine) DecrementOneDay(ctx context.Context) (*fact.Fact, error) {
	return e.JumpToFactNearest(ctx, e.jumpReference().Add(-day), Backward)
}

// IncrementOneDay is the forward twin of DecrementOneDay.
func (e *Engine) IncrementOneDay(ctx context.Context) (*fact.Fact, error) {
	return e.JumpToFactNearest(ctx, e.jumpReference().Add(day), Forward)
}

func (e *Engine) jumpReference() time.Time {
	if e.jumpRef.IsZero() {
		e.jumpRef = e.cur.Start.Time
		if e.jumpRef.IsZero() {
			e.jumpRef = e.cur.End.Time
		}
	}
	return e.jumpRef
}

// JumpToFactNearest moves the cursor to the fact, other than the current one,
// that contains ref or otherwise lies closest to it on the dir side. It
// returns nil, leaving the cursor in place, when there is no such fact.
func (e *Engine) JumpToFactNearest(ctx context.Context, ref time.Time, dir Direction) (*fact.Fact, error) {
	affirm(e.cur != nil, "jump without a current fact")
	fromStore, err := e.nearestStored(ctx, ref, dir)
	if err != nil {
		return nil, err
	}
	nearest := e.nearestLoaded(ref, dir)
	if fromStore != nil && (nearest == nil || nearer(fromStore, nearest, ref, dir)) {
		nearest = fromStore
	}
	if nearest == nil {
		return nil, nil
	}
	if _, known := e.byPK[nearest.PK]; !known {
		e.fold(nearest)
	}
	e.moveTo(nearest)

	adj := ref
	if dir == Backward {
		for !nearest.End.IsZero() && nearest.End.Before(adj) {
			adj = adj.Add(-day)
		}
	} else {
		for !nearest.Start.IsZero() && nearest.Start.After(adj) {
			adj = adj.Add(day)
		}
	}
	e.jumpRef = adj
	e.logState("jump")
	return nearest, nil
}

func (e *Engine) nearestStored(ctx context.Context, ref time.Time, dir Direction) (*fact.Fact, error) {
	around, err := e.store.Surrounding(ctx, ref, true)
	if err != nil {
		return nil, fmt.Errorf("traverser: facts around %s: %w", ref.Format(time.RFC3339), err)
	}
	var found *fact.Fact
	hasCur := false
	for _, f := range around {
		if f.PK == e.cur.PK {
			hasCur = true
		} else if found == nil {
			found = f
		}
	}
	switch {
	case found != nil:
	case hasCur && dir == Backward:
		found, err = e.store.Antecedent(ctx, e.cur)
	case hasCur:
		found, err = e.store.Subsequent(ctx, e.cur)
	default:
		q := fact.Query{Order: dir.order(), Limit: 1}
		if dir == Backward {
			q.Until = ref
		} else {
			q.Since = ref
		}
		var facts []*fact.Fact
		facts, err = e.store.GetAll(ctx, q)
		if len(facts) > 0 {
			found = facts[0]
		}
	}
	if err != nil {
		return nil, fmt.Errorf("traverser: nearest stored fact: %w", err)
	}
	if found == nil || found.PK == e.cur.PK {
		return nil, nil
	}
	if known, ok := e.byPK[found.PK]; ok {
		found = known
	}
	if _, ok := distance(found, ref, dir); !ok {
		return nil, nil
	}
	return found, nil
}

// nearestLoaded scans loaded facts, skipping the current one and untouched
// gap facts.
func (e *Engine) nearestLoaded(ref time.Time, dir Direction) *fact.Fact {
	var best *fact.Fact
	for _, g := range e.groups.groups {
		for _, f := range g.facts {
			if f == e.cur || (f.IsGap() && f.IsPristine()) {
				continue
			}
			if _, ok := distance(f, ref, dir); !ok {
				continue
			}
			if best == nil || nearer(f, best, ref, dir) {
				best = f
			}
		}
	}
	return best
}

// distance measures how far f lies from ref on the dir side, zero if f
// contains ref. Facts on the other side are not candidates.
func distance(f *fact.Fact, ref time.Time, dir Direction) (time.Duration, bool) {
	if f.Contains(ref) {
		return 0, true
	}
	if dir == Backward {
		if f.End.IsZero() || f.End.After(ref) {
			return 0, false
		}
		return ref.Sub(f.End.Time), true
	}
	if f.Start.IsZero() || f.Start.Before(ref) {
		return 0, false
	}
	return f.Start.Sub(ref), true
}

func nearer(a, b *fact.Fact, ref time.Time, dir Direction) bool {
	da, _ := distance(a, ref, dir)
	db, _ := distance(b, ref, dir)
	if da != db {
		return da < db
	}
	if dir == Backward {
		return a.After(b)
	}
	return a.Before(b)
}
