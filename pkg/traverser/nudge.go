package traverser

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/factlog/pkg/fact"
)

// Endpoint names an end of a fact's interval.
type Endpoint string

const (
	AdjustStart Endpoint = "start"
	AdjustEnd   Endpoint = "end"
)

// NeighborFunc returns an editable copy of the fact next to edit, or nil.
type NeighborFunc func(ctx context.Context, edit *fact.Fact) (*fact.Fact, error)

// TimeNudger moves a fact's start or end by a delta, dragging the touching
// neighbor along so the timeline stays gapless and free of overlap.
type TimeNudger struct {
	undo *UndoRedo
	prev NeighborFunc
	next NeighborFunc
	now  func() time.Time
	log  *zap.Logger
}

// NewTimeNudger returns a nudger recording into undo. now measures the end
// of ongoing facts.
func NewTimeNudger(undo *UndoRedo, prev, next NeighborFunc, now func() time.Time, log *zap.Logger) *TimeNudger {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimeNudger{undo: undo, prev: prev, next: next, now: now, log: log}
}

// EditTimeAdjust shifts the given endpoints of edit by delta and returns the
// neighbors it had to adjust as well, nil for those left alone. One undo
// entry covers all of them, coalesced with the previous entry when the same
// facts are nudged the same way in quick succession.
func (n *TimeNudger) EditTimeAdjust(ctx context.Context, edit *fact.Fact, delta time.Duration, endpoints ...Endpoint) (prev, next *fact.Fact, err error) {
	// An open start has nothing to nudge.
	doStart := slices.Contains(endpoints, AdjustStart) && !edit.Start.IsZero()
	doEnd := slices.Contains(endpoints, AdjustEnd)
	if !doStart && !doEnd {
		return nil, nil, nil
	}
	if doStart {
		if prev, err = n.prev(ctx, edit); err != nil {
			return nil, nil, err
		}
	}
	if doEnd {
		if next, err = n.next(ctx, edit); err != nil {
			return nil, nil, err
		}
	}

	what := "adjust-time-pos"
	if delta < 0 {
		what = "adjust-time-neg"
	}
	newest := n.undo.UndoableChanges(what, edit, prev, next)
	n.log.Debug("edit-time-begin", zap.String("edit", edit.Short()), zap.String("prev", prev.Short()), zap.String("next", next.Short()))

	if doStart {
		adjustStart(edit, prev, delta)
	}
	if doEnd {
		n.adjustEnd(edit, next, delta)
	}
	if prev != nil && !prev.End.IsZero() && prev.End.After(edit.Start.Time) {
		prev.End = edit.Start
	}
	if next != nil && !edit.End.IsZero() && next.Start.Before(edit.End.Time) {
		next.Start = edit.End
	}

	n.log.Debug("edit-time-final", zap.String("edit", edit.Short()), zap.String("prev", prev.Short()), zap.String("next", next.Short()))
	n.undo.Push(n.undo.RemoveUndoIfSameFactsEdited(newest))
	return prev, next, nil
}

func adjustStart(edit, prev *fact.Fact, delta time.Duration) {
	t := edit.Start.Add(delta)
	if !edit.End.IsZero() && t.After(edit.End.Time) {
		t = edit.End.Time
	}
	if prev != nil {
		if !prev.Start.IsZero() && t.Before(prev.Start.Time) {
			t = prev.Start.Time
		}
		prev.End = fact.At(t)
	}
	edit.Start = fact.At(t)
}

func (n *TimeNudger) adjustEnd(edit, next *fact.Fact, delta time.Duration) {
	end := edit.End.Time
	if end.IsZero() {
		end = n.now()
	}
	t := end.Add(delta)
	if !edit.Start.IsZero() && t.Before(edit.Start.Time) {
		t = edit.Start.Time
	}
	if next != nil {
		if !next.End.IsZero() && t.After(next.End.Time) {
			// Never push past the neighbor's end; it collapses to a moment
			// at its end instead.
			t = next.End.Time
		} else {
			next.Start = fact.At(t)
		}
	}
	edit.End = fact.At(t)
}
