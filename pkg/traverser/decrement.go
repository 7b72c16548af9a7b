package traverser

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// Decrement moves the cursor to the fact before the current one and returns
// it. It returns nil, leaving the cursor in place, when the current fact is
// the earliest there is.
func (e *Engine) Decrement(ctx context.Context) (*fact.Fact, error) {
	affirm(e.cur != nil, "decrement without a current fact")
	prev, err := e.resolvePrev(ctx, e.cur)
	if err != nil || prev == nil {
		return nil, err
	}
	e.moveTo(prev)
	e.jumpRef = time.Time{}
	e.logState("decrement")
	return prev, nil
}

// resolvePrev finds, loading or synthesizing it if needed, the fact right
// before cur, and records the link between the two.
func (e *Engine) resolvePrev(ctx context.Context, cur *fact.Fact) (*fact.Fact, error) {
	g, i := e.locate(cur)
	gi := e.groups.indexOf(g)

	switch {
	case cur.Prev.IsLinked():
		affirm(i > 0 && g.At(i-1).PK == cur.Prev.PK, "%s linked to #%d out of place", cur.Short(), cur.Prev.PK)
		return g.At(i - 1), nil
	case cur.Prev.IsBoundary():
		affirm(i == 0, "%s has a boundary inside its group", cur.Short())
		if gi == 0 {
			return nil, nil
		}
		return e.groups.At(gi - 1).Final(), nil
	}

	fromStore, err := e.store.Antecedent(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("traverser: antecedent of #%d: %w", cur.PK, err)
	}
	if fromStore != nil {
		if _, known := e.byPK[fromStore.PK]; known {
			fromStore = nil
		}
	}

	var fromMem *fact.Fact
	switch {
	case i > 0:
		fromMem = g.At(i - 1)
	case gi > 0:
		fromMem = e.groups.At(gi - 1).Final()
	}

	if fromStore != nil && (fromMem == nil || fromStore.After(fromMem)) {
		if !fromStore.Classified() {
			fromStore.MarkPristine()
		}
		if fitsBefore(fromStore, cur, fromMem) {
			return e.attachPrev(fromStore, cur), nil
		}
		e.fold(fromStore)
		if fromMem == nil {
			separate(fromStore, cur)
			return fromStore, nil
		}
	} else if fromStore != nil {
		e.fold(fromStore)
	}

	if fromMem == nil {
		return e.openPrevGap(cur), nil
	}
	if i > 0 || fitsBefore(fromMem, cur, nil) && !fromMem.Next.IsBoundary() {
		return e.attachPrev(fromMem, cur), nil
	}
	separate(fromMem, cur)
	return fromMem, nil
}

// fitsBefore reports whether prev can sit right before cur without overlap,
// and after floor, the nearest fact already known before cur, if any.
func fitsBefore(prev, cur, floor *fact.Fact) bool {
	if prev.End.IsZero() || cur.Start.IsZero() || prev.End.After(cur.Start.Time) {
		return false
	}
	if floor != nil && (floor.End.IsZero() || prev.Start.Before(floor.End.Time)) {
		return false
	}
	return true
}

func (e *Engine) attachPrev(prev, cur *fact.Fact) *fact.Fact {
	if gap := e.join(prev, cur); gap != nil {
		return gap
	}
	return prev
}

// openPrevGap covers the time before the earliest fact there is with a gap
// open towards the past. A fact already open at the start ends the timeline.
func (e *Engine) openPrevGap(cur *fact.Fact) *fact.Fact {
	if cur.Start.IsZero() {
		cur.Prev = fact.BoundaryLink()
		return nil
	}
	gap := e.gapFact(time.Time{}, cur.Start.Time)
	gap.Prev = fact.BoundaryLink()
	e.join(gap, cur)
	return gap
}
