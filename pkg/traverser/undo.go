package traverser

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/factlog/pkg/fact"
)

// DistinctChangesThreshold is how close together two edits of the same kind
// to the same facts must be to share one undo entry.
const DistinctChangesThreshold = 1333 * time.Millisecond

// Changes is one undo or redo entry: snapshots of facts as they were before
// an edit, when the edit happened, and what kind of edit it was.
type Changes struct {
	Facts []*fact.Fact
	Time  time.Time
	What  string
}

func (c Changes) pks() []int64 {
	pks := make([]int64, len(c.Facts))
	for i, f := range c.Facts {
		pks[i] = f.PK
	}
	slices.Sort(pks)
	return slices.Compact(pks)
}

// RestoreFunc puts snapshots back in place and returns snapshots of what
// they replaced.
type RestoreFunc func(snapshots []*fact.Fact) []*fact.Fact

// UndoRedo holds the undo and redo stacks of an edit session.
type UndoRedo struct {
	undo []Changes
	redo []Changes
	now  func() time.Time
	log  *zap.Logger
}

// NewUndoRedo returns empty stacks. WithClock and WithLogger apply.
func NewUndoRedo(opts ...Option) *UndoRedo {
	o := newOptions(opts)
	return &UndoRedo{now: o.now, log: o.log}
}

// UndoableChanges snapshots the non-nil facts under the label what.
func (u *UndoRedo) UndoableChanges(what string, facts ...*fact.Fact) Changes {
	c := Changes{Time: u.now(), What: what}
	for _, f := range facts {
		if f != nil {
			c.Facts = append(c.Facts, f.Copy())
		}
	}
	affirm(len(c.Facts) > 0, "undoable %q without facts", what)
	return c
}

// AddUndoable snapshots facts and pushes them onto the undo stack.
func (u *UndoRedo) AddUndoable(what string, facts ...*fact.Fact) {
	u.Push(u.UndoableChanges(what, facts...))
}

// Push puts c on top of the undo stack.
func (u *UndoRedo) Push(c Changes) {
	u.undo = append(u.undo, c)
	u.log.Debug("undoable", zap.String("what", c.What), zap.Int("facts", len(c.Facts)), zap.Int("depth", len(u.undo)))
}

// Peek returns the top of the undo stack.
func (u *UndoRedo) Peek() (Changes, bool) {
	if len(u.undo) == 0 {
		return Changes{}, false
	}
	return u.undo[len(u.undo)-1], true
}

// UndoLen is the depth of the undo stack.
func (u *UndoRedo) UndoLen() int { return len(u.undo) }

// RedoLen is the depth of the redo stack.
func (u *UndoRedo) RedoLen() int { return len(u.redo) }

// RemoveUndoIfNothingChanged drops the latest undo entry when facts are
// exactly what it recorded, since the edit left nothing to undo. Otherwise
// history has diverged and the redo stack is cleared.
func (u *UndoRedo) RemoveUndoIfNothingChanged(facts []*fact.Fact) bool {
	if latest, ok := u.Peek(); ok && fact.EqualAll(latest.Facts, facts) {
		u.undo = u.undo[:len(u.undo)-1]
		u.log.Debug("undo dropped, nothing changed", zap.String("what", latest.What))
		return true
	}
	u.redo = nil
	return false
}

// RemoveUndoIfSameFactsEdited coalesces bursts of edits. When newest is of
// the same kind, on the same facts, and soon enough after the latest undo
// entry, that entry is popped and returned so it can be pushed back in place
// of newest; one undo then reverts the whole burst. Otherwise newest is
// returned as is.
func (u *UndoRedo) RemoveUndoIfSameFactsEdited(newest Changes) Changes {
	latest, ok := u.Peek()
	if !ok || latest.What != newest.What {
		return newest
	}
	if u.now().Sub(latest.Time) > DistinctChangesThreshold {
		return newest
	}
	if !slices.Equal(latest.pks(), newest.pks()) {
		return newest
	}
	u.undo = u.undo[:len(u.undo)-1]
	u.log.Debug("undo coalesced", zap.String("what", newest.What))
	return latest
}

// UndoLastEdit restores the latest undo entry and moves what it replaced onto the
// redo stack. It reports false when there was nothing to undo.
func (u *UndoRedo) UndoLastEdit(restore RestoreFunc) bool {
	if len(u.undo) == 0 {
		return false
	}
	c := u.undo[len(u.undo)-1]
	u.undo = u.undo[:len(u.undo)-1]
	u.redo = append(u.redo, Changes{Facts: restore(c.Facts), Time: c.Time, What: c.What})
	return true
}

// RedoLastUndo is the inverse of UndoLastEdit.
func (u *UndoRedo) RedoLastUndo(restore RestoreFunc) bool {
	if len(u.redo) == 0 {
		return false
	}
	c := u.redo[len(u.redo)-1]
	u.redo = u.redo[:len(u.redo)-1]
	u.undo = append(u.undo, Changes{Facts: restore(c.Facts), Time: c.Time, What: c.What})
	return true
}
