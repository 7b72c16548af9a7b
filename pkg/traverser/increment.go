package traverser

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// Increment moves the cursor to the fact after the current one and returns
// it. It returns nil, leaving the cursor in place, when the current fact is
// the latest there is.
func (e *Engine) Increment(ctx context.Context) (*fact.Fact, error) {
	affirm(e.cur != nil, "increment without a current fact")
	next, err := e.resolveNext(ctx, e.cur)
	if err != nil || next == nil {
		return nil, err
	}
	e.moveTo(next)
	e.jumpRef = time.Time{}
	e.logState("increment")
	return next, nil
}

// resolveNext finds, loading or synthesizing it if needed, the fact right
// after cur, and records the link between the two.
func (e *Engine) resolveNext(ctx context.Context, cur *fact.Fact) (*fact.Fact, error) {
	g, i := e.locate(cur)
	gi := e.groups.indexOf(g)
	last := i == g.Len()-1

	switch {
	case cur.Next.IsLinked():
		affirm(!last && g.At(i+1).PK == cur.Next.PK, "%s linked to #%d out of place", cur.Short(), cur.Next.PK)
		return g.At(i + 1), nil
	case cur.Next.IsBoundary():
		affirm(last, "%s has a boundary inside its group", cur.Short())
		if gi == e.groups.Len()-1 {
			return nil, nil
		}
		return e.groups.At(gi + 1).First(), nil
	}

	fromStore, err := e.store.Subsequent(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("traverser: subsequent of #%d: %w", cur.PK, err)
	}
	if fromStore != nil {
		if _, known := e.byPK[fromStore.PK]; known {
			fromStore = nil
		}
	}

	var fromMem *fact.Fact
	switch {
	case !last:
		fromMem = g.At(i + 1)
	case gi < e.groups.Len()-1:
		fromMem = e.groups.At(gi + 1).First()
	}

	if fromStore != nil && (fromMem == nil || fromStore.Before(fromMem)) {
		if !fromStore.Classified() {
			fromStore.MarkPristine()
		}
		if fitsAfter(fromStore, cur, fromMem) {
			return e.attachNext(cur, fromStore), nil
		}
		e.fold(fromStore)
		if fromMem == nil {
			separate(cur, fromStore)
			return fromStore, nil
		}
	} else if fromStore != nil {
		e.fold(fromStore)
	}

	if fromMem == nil {
		return e.openNextGap(cur), nil
	}
	if !last || fitsAfter(fromMem, cur, nil) && !fromMem.Prev.IsBoundary() {
		return e.attachNext(cur, fromMem), nil
	}
	separate(cur, fromMem)
	return fromMem, nil
}

// fitsAfter reports whether next can sit right after cur without overlap,
// and before ceil, the nearest fact already known after cur, if any.
func fitsAfter(next, cur, ceil *fact.Fact) bool {
	if cur.End.IsZero() || next.Start.IsZero() || next.Start.Before(cur.End.Time) {
		return false
	}
	if ceil != nil && (next.End.IsZero() || next.End.After(ceil.Start.Time)) {
		return false
	}
	return true
}

func (e *Engine) attachNext(cur, next *fact.Fact) *fact.Fact {
	if gap := e.join(cur, next); gap != nil {
		return gap
	}
	return next
}

// openNextGap covers the time after the latest fact there is with a gap open
// towards the future. An ongoing fact ends the timeline.
func (e *Engine) openNextGap(cur *fact.Fact) *fact.Fact {
	if cur.End.IsZero() {
		cur.Next = fact.BoundaryLink()
		return nil
	}
	gap := e.gapFact(cur.End.Time, time.Time{})
	gap.Next = fact.BoundaryLink()
	e.join(cur, gap)
	return gap
}
