// Package traverser maintains a partially loaded, always consistent view of
// the gapless timeline of facts, and the edit session that works on it.
//
// The Engine holds facts in contiguous groups, lazily extending them from a
// Store as the cursor moves, and filling uncovered time with gap facts. The
// EditSession layers dirty tracking, undo/redo and time nudging on top.
package traverser

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/factlog/pkg/fact"
)

// Engine owns the sorted groups of known facts, the pk index, and the cursor.
//
// Facts are referenced by pk everywhere except in the index, which is the
// single source of truth for whether a fact is already loaded.
type Engine struct {
	store Store
	log   *zap.Logger

	groups groupList
	byPK   map[int64]*fact.Fact

	// lastPK is the most recently issued session pk; new ones count down.
	lastPK int64

	cur      *fact.Fact
	curGroup *Group
	curIndex int

	// jumpRef is the reference time for day jumps; zero when unset.
	jumpRef time.Time
}

// NewEngine returns an empty engine reading from store.
func NewEngine(store Store, opts ...Option) *Engine {
	o := newOptions(opts)
	return &Engine{
		store: store,
		log:   o.log,
		byPK:  make(map[int64]*fact.Fact),
	}
}

// CurrentFact returns the fact under the cursor, or nil before any is set.
func (e *Engine) CurrentFact() *fact.Fact {
	return e.cur
}

// SetCurrentFact moves the cursor to the loaded fact with the same pk as f.
func (e *Engine) SetCurrentFact(f *fact.Fact) error {
	known, ok := e.byPK[f.PK]
	if !ok {
		return fmt.Errorf("%w: #%d is not loaded", ErrNotFound, f.PK)
	}
	if e.cur == known {
		return nil
	}
	e.moveTo(known)
	return nil
}

func (e *Engine) moveTo(f *fact.Fact) {
	group, index := e.locate(f)
	e.cur = f
	e.curGroup = group
	e.curIndex = index
	affirm(group.ContainsTime(f), "fact %s outside its group %s", f.Short(), group)
}

// locate finds the group holding f and its position in it.
func (e *Engine) locate(f *fact.Fact) (*Group, int) {
	for at := e.groups.bisectRight(f.Key()) - 1; at >= 0; at-- {
		group := e.groups.At(at)
		if index, err := group.IndexOf(f); err == nil {
			return group, index
		}
	}
	panic(&InvariantError{Msg: fmt.Sprintf("fact %s is indexed but in no group", f.Short())})
}

// Lookup returns the loaded fact with the given pk, or nil.
func (e *Engine) Lookup(pk int64) *fact.Fact {
	return e.byPK[pk]
}

// Len returns the number of loaded facts.
func (e *Engine) Len() int {
	return len(e.byPK)
}

// Facts returns every loaded fact in chronological order.
func (e *Engine) Facts() []*fact.Fact {
	out := make([]*fact.Fact, 0, len(e.byPK))
	for _, g := range e.groups.groups {
		out = append(out, g.facts...)
	}
	return out
}

// Groups returns a snapshot of the group list.
func (e *Engine) Groups() []*Group {
	return slices.Clone(e.groups.groups)
}

// First returns the earliest loaded fact.
func (e *Engine) First() *fact.Fact {
	if e.groups.Len() == 0 {
		return nil
	}
	return e.groups.At(0).First()
}

// Final returns the latest loaded fact.
func (e *Engine) Final() *fact.Fact {
	if e.groups.Len() == 0 {
		return nil
	}
	return e.groups.Last().Final()
}

// Position reports the cursor as the current group's index among all groups,
// the index within that group, and the group's length.
func (e *Engine) Position() (group, index, size int) {
	if e.curGroup == nil {
		return -1, -1, 0
	}
	return e.groups.indexOf(e.curGroup), e.curIndex, e.curGroup.Len()
}

// Now is the store's current time, which ongoing facts are measured to.
func (e *Engine) Now() time.Time {
	return e.store.Now()
}

// ContainsNewNextFacts reports whether the latest group starts with a new fact.
func (e *Engine) ContainsNewNextFacts() bool {
	if e.groups.Len() == 0 {
		return false
	}
	return isNew(e.groups.Last().First())
}

// ContainsNewPrevFacts reports whether new facts precede an older group.
func (e *Engine) ContainsNewPrevFacts() bool {
	if e.groups.Len() < 2 {
		return false
	}
	return isNew(e.groups.At(0).First())
}

func isNew(f *fact.Fact) bool {
	return f.Unstored() && !f.IsGap()
}

// AddFacts loads facts that are not yet known. Contiguous runs among them
// become groups of their own; merging with existing groups happens as the
// cursor walks across them.
func (e *Engine) AddFacts(facts []*fact.Fact) error {
	if len(facts) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(facts))
	for _, f := range facts {
		if _, ok := e.byPK[f.PK]; ok {
			return fmt.Errorf("%w: #%d", ErrDuplicatePK, f.PK)
		}
		if _, ok := seen[f.PK]; ok {
			return fmt.Errorf("%w: #%d given twice", ErrDuplicatePK, f.PK)
		}
		seen[f.PK] = struct{}{}
	}

	sorted := slices.Clone(facts)
	slices.SortFunc(sorted, fact.Compare)
	run := []*fact.Fact{sorted[0]}
	for _, f := range sorted[1:] {
		last := run[len(run)-1]
		if !last.End.IsZero() && last.End.Equal(f.Start.Time) {
			run = append(run, f)
			continue
		}
		e.addGroup(run)
		run = []*fact.Fact{f}
	}
	e.addGroup(run)
	return nil
}

func (e *Engine) addGroup(run []*fact.Fact) {
	for _, f := range run {
		e.byPK[f.PK] = f
		if f.Unstored() {
			e.lastPK = min(e.lastPK, f.PK)
		}
	}
	e.groups.insert(NewGroup(run...))
}

// UpdateFact swaps the loaded version of a fact for f, an edited copy with
// the same pk. Links carry over, and the owning group is re-keyed in case
// its first fact changed.
func (e *Engine) UpdateFact(f *fact.Fact) error {
	old, ok := e.byPK[f.PK]
	if !ok {
		return fmt.Errorf("%w: #%d is not loaded", ErrNotFound, f.PK)
	}
	group, index := e.locate(old)
	f.Prev = old.Prev
	f.Next = old.Next

	var dropped *fact.Fact
	switch {
	case old.End.IsZero() && !f.End.IsZero() && f.Next.IsBoundary():
		// The ongoing fact ended; the time after it is unexplored again.
		f.Next = fact.Link{}
	case f.End.IsZero() && !old.End.IsZero() && f.Next.IsLinked():
		// Ongoing again, so the untouched gap trailing it has no room left.
		if after := e.byPK[f.Next.PK]; after.IsGap() && after.IsPristine() && after.End.IsZero() {
			dropped = after
			f.Next = fact.BoundaryLink()
		}
	}

	e.groups.rekey(group, func() {
		group.set(index, f)
		if dropped != nil {
			group.remove(dropped)
		}
	})
	e.byPK[f.PK] = f
	if dropped != nil {
		delete(e.byPK, dropped.PK)
	}
	if e.cur == old || (dropped != nil && e.cur == dropped) {
		e.cur = f
		e.curGroup = group
		e.curIndex = index
	}
	return nil
}

// FactoryReset puts the pristine original of a loaded fact back in place.
func (e *Engine) FactoryReset(pk int64) error {
	live, ok := e.byPK[pk]
	if !ok {
		return fmt.Errorf("%w: #%d is not loaded", ErrNotFound, pk)
	}
	orig := live.Original()
	if orig == nil || orig == live {
		return nil
	}
	return e.UpdateFact(orig)
}

// nextPK issues a session pk, strictly below any seen so far.
func (e *Engine) nextPK() int64 {
	e.lastPK--
	return e.lastPK
}

func (e *Engine) logState(state string) {
	if ce := e.log.Check(zap.DebugLevel, "cursor"); ce != nil {
		group, index, size := e.Position()
		ce.Write(
			zap.String("state", state),
			zap.Int64("pk", e.cur.PK),
			zap.String("fact", e.cur.Short()),
			zap.Int("groups", e.groups.Len()),
			zap.Int("group", group),
			zap.Int("index", index),
			zap.Int("size", size),
		)
	}
}
