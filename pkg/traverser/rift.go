package traverser

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// ScrollFactFirst moves the cursor to the earliest fact, in memory or in the
// store, and returns it. When new facts bracket the stored history, it stops
// first at the edge between the two.
func (e *Engine) ScrollFactFirst(ctx context.Context) (*fact.Fact, error) {
	affirm(e.groups.Len() > 0, "scroll without facts")
	stop, err := e.floorStop(ctx)
	if err != nil {
		return nil, err
	}
	if stop != nil {
		return e.stopAt(stop, "scroll-first-stop"), nil
	}
	first := e.groups.At(0).First()
	if !first.Prev.IsBoundary() {
		maiden, err := e.extreme(ctx, fact.Ascending)
		if err != nil {
			return nil, err
		}
		if maiden != nil && maiden.Before(first) {
			e.fold(maiden)
			first = maiden
		}
		first.Prev = fact.BoundaryLink()
	}
	if first.IsGap() && first.Start.IsZero() {
		if g := e.groups.At(0); g.Len() > 1 {
			first = g.At(1)
		}
	}
	e.moveTo(first)
	e.jumpRef = time.Time{}
	e.logState("scroll-first")
	return first, nil
}

// ScrollFactLast moves the cursor to the latest fact, in memory or in the
// store, and returns it, stopping on the way like ScrollFactFirst.
func (e *Engine) ScrollFactLast(ctx context.Context) (*fact.Fact, error) {
	affirm(e.groups.Len() > 0, "scroll without facts")
	stop, err := e.ceilStop(ctx)
	if err != nil {
		return nil, err
	}
	if stop != nil {
		return e.stopAt(stop, "scroll-last-stop"), nil
	}
	final := e.groups.Last().Final()
	if !final.Next.IsBoundary() {
		latest, err := e.extreme(ctx, fact.Descending)
		if err != nil {
			return nil, err
		}
		if latest != nil && latest.After(final) {
			e.fold(latest)
			final = latest
		}
		final.Next = fact.BoundaryLink()
	}
	if final.IsGap() && final.End.IsZero() {
		if g := e.groups.Last(); g.Len() > 1 {
			final = g.At(g.Len() - 2)
		}
	}
	e.moveTo(final)
	e.jumpRef = time.Time{}
	e.logState("scroll-last")
	return final, nil
}

// floorStop returns the fact a backward scroll stops at before the first one:
// the first of the new facts that follow the stored history, or the earliest
// stored fact when new facts precede it. It returns nil to scroll all the way.
func (e *Engine) floorStop(ctx context.Context) (*fact.Fact, error) {
	at, index, _ := e.Position()
	n := e.groups.Len()
	if e.ContainsNewNextFacts() && at == n-1 && index > 0 {
		return e.groups.Last().First(), nil
	}
	if !e.ContainsNewPrevFacts() || at <= 0 {
		return nil, nil
	}
	stop := e.groups.At(1).First()
	maiden, err := e.extreme(ctx, fact.Ascending)
	if err != nil {
		return nil, err
	}
	if maiden != nil && e.groups.At(0).First().Before(maiden) && maiden.Before(stop) {
		e.fold(maiden)
		stop = maiden
	}
	if stop == e.cur {
		return nil, nil
	}
	return stop, nil
}

// ceilStop mirrors floorStop for forward scrolls.
func (e *Engine) ceilStop(ctx context.Context) (*fact.Fact, error) {
	at, index, size := e.Position()
	n := e.groups.Len()
	if e.ContainsNewPrevFacts() && at == 0 && index < size-1 {
		return e.groups.At(0).Final(), nil
	}
	if !e.ContainsNewNextFacts() || n < 2 || at < 0 || at == n-1 {
		return nil, nil
	}
	stop := e.groups.At(n - 2).Final()
	latest, err := e.extreme(ctx, fact.Descending)
	if err != nil {
		return nil, err
	}
	if latest != nil && stop.Before(latest) && latest.Before(e.groups.Last().First()) {
		e.fold(latest)
		stop = latest
	}
	if stop == e.cur {
		return nil, nil
	}
	return stop, nil
}

func (e *Engine) stopAt(f *fact.Fact, state string) *fact.Fact {
	e.moveTo(f)
	e.jumpRef = time.Time{}
	e.logState(state)
	return f
}

// extreme fetches the earliest or latest stored fact that is not loaded yet.
func (e *Engine) extreme(ctx context.Context, order fact.Order) (*fact.Fact, error) {
	facts, err := e.store.GetAll(ctx, fact.Query{Order: order, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("traverser: fetch outermost fact (%s): %w", order, err)
	}
	if len(facts) == 0 {
		return nil, nil
	}
	if _, known := e.byPK[facts[0].PK]; known {
		return nil, nil
	}
	return facts[0], nil
}
