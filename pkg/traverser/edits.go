package traverser

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/factlog/pkg/fact"
)

// EditSession tracks what the user changed while walking the timeline.
//
// The engine always holds the latest version of every fact. Edited facts
// are working copies pointing at their pristine originals, and the session
// keeps them in edits until they are saved or reverted.
type EditSession struct {
	store  Store
	engine *Engine
	log    *zap.Logger

	edits  map[int64]*fact.Fact
	verify map[int64]struct{}
	viewed map[int64]struct{}

	undo      *UndoRedo
	nudger    *TimeNudger
	clipboard Clipboard
	onDirty   func(*EditSession)
}

// NewEditSession loads editFacts, the working set, into a fresh engine.
// origFacts are the pristine versions of working set facts that were edited
// before the session started; every other working set fact is its own
// original.
func NewEditSession(store Store, editFacts, origFacts []*fact.Fact, opts ...Option) (*EditSession, error) {
	o := newOptions(opts)
	origs := make(map[int64]*fact.Fact, len(origFacts))
	for _, orig := range origFacts {
		orig.MarkPristine()
		origs[orig.PK] = orig
	}
	for _, f := range editFacts {
		orig, ok := origs[f.PK]
		if !ok || orig == f {
			f.MarkPristine()
			continue
		}
		f.SetOriginal(orig)
		if !f.Equal(orig) {
			f.AddReason(fact.ReasonUnsaved)
		}
	}

	engine := NewEngine(store, opts...)
	if err := engine.AddFacts(editFacts); err != nil {
		return nil, fmt.Errorf("traverser: load working set: %w", err)
	}

	s := &EditSession{
		store:   store,
		engine:  engine,
		log:     o.log,
		edits:   make(map[int64]*fact.Fact),
		verify:  make(map[int64]struct{}),
		viewed:  make(map[int64]struct{}),
		undo:    NewUndoRedo(opts...),
		onDirty: o.onDirty,
	}
	for _, f := range editFacts {
		if f.Dirty() {
			s.edits[f.PK] = f
		}
	}
	for pk := range engine.byPK {
		s.verify[pk] = struct{}{}
	}
	s.nudger = NewTimeNudger(s.undo, s.editableFactPrev, s.editableFactNext, store.Now, o.log)
	return s, nil
}

// Engine exposes the underlying traversal engine.
func (s *EditSession) Engine() *Engine {
	return s.engine
}

// History exposes the undo and redo stacks.
func (s *EditSession) History() *UndoRedo {
	return s.undo
}

// StandUp picks the fact to start on: the first new fact when the working
// set ends with new facts, else the latest one. With an empty working set the
// latest stored fact is loaded.
func (s *EditSession) StandUp(ctx context.Context) error {
	if s.engine.Len() == 0 {
		latest, err := s.store.GetAll(ctx, fact.Query{Order: fact.Descending, Limit: 1, Until: s.store.Now()})
		if err != nil {
			return fmt.Errorf("traverser: fetch latest fact: %w", err)
		}
		if len(latest) == 0 {
			return ErrNoFacts
		}
		s.engine.fold(latest[0])
	}
	last := s.engine.groups.Last()
	start := last.Final()
	if first := last.First(); first.Unstored() {
		start = first
	}
	s.setCurrent(start)
	s.engine.logState("stand-up")
	return nil
}

// CurrentFact returns the fact under the cursor.
func (s *EditSession) CurrentFact() *fact.Fact {
	return s.engine.CurrentFact()
}

// SetCurrentFact moves the cursor to the loaded fact with the pk of f.
func (s *EditSession) SetCurrentFact(f *fact.Fact) error {
	known := s.engine.Lookup(f.PK)
	if known == nil {
		return fmt.Errorf("%w: #%d is not loaded", ErrNotFound, f.PK)
	}
	s.setCurrent(known)
	return nil
}

func (s *EditSession) setCurrent(f *fact.Fact) {
	if s.engine.CurrentFact() != f {
		s.clipboard.ResetPaste()
		s.engine.moveTo(f)
	}
	s.viewed[f.PK] = struct{}{}
}

// CurrentEdit returns the edited version of the current fact, which is the
// current fact itself when it was not edited. Callers must not modify it.
func (s *EditSession) CurrentEdit() *fact.Fact {
	cur := s.engine.CurrentFact()
	if edit, ok := s.edits[cur.PK]; ok {
		return edit
	}
	return cur
}

// CurrentOrig returns the pristine original of the current fact.
func (s *EditSession) CurrentOrig() *fact.Fact {
	cur := s.engine.CurrentFact()
	if orig := cur.Original(); orig != nil {
		return orig
	}
	return cur
}

// IsDirty reports whether anything would be written on save.
func (s *EditSession) IsDirty() bool {
	return len(s.edits) > 0
}

// UserViewedAllNewFacts reports whether the cursor has visited every fact
// of the working set, which is required before saving imported facts.
func (s *EditSession) UserViewedAllNewFacts() bool {
	for pk := range s.verify {
		if _, ok := s.viewed[pk]; !ok {
			return false
		}
	}
	return true
}

// Unviewed returns how many working set facts the cursor has not visited.
func (s *EditSession) Unviewed() int {
	n := 0
	for pk := range s.verify {
		if _, ok := s.viewed[pk]; !ok {
			n++
		}
	}
	return n
}

// PreparedFacts returns the facts to write on save, sorted by pk. It panics
// if the edit bookkeeping disagrees with what the engine holds.
func (s *EditSession) PreparedFacts() []*fact.Fact {
	fromEdits := make([]*fact.Fact, 0, len(s.edits))
	for _, f := range s.edits {
		fromEdits = append(fromEdits, f)
	}
	byPK := func(a, b *fact.Fact) int {
		return cmpPK(a.PK, b.PK)
	}
	slices.SortFunc(fromEdits, byPK)

	var fromView []*fact.Fact
	for _, f := range s.engine.Facts() {
		if (f.Unstored() || f.Dirty()) && !(f.IsGap() && f.IsPristine()) {
			fromView = append(fromView, f)
		}
	}
	slices.SortFunc(fromView, byPK)
	affirm(slices.Equal(fromEdits, fromView), "edits %v disagree with engine %v", pksOf(fromEdits), pksOf(fromView))
	return fromEdits
}

func cmpPK(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func pksOf(facts []*fact.Fact) []int64 {
	pks := make([]int64, len(facts))
	for i, f := range facts {
		pks[i] = f.PK
	}
	return pks
}

// EditableFact returns a fresh working copy of the latest version of ref,
// or of the current fact when ref is nil. Changes reach the session only
// through ApplyEdits.
func (s *EditSession) EditableFact(ref *fact.Fact) *fact.Fact {
	if ref == nil {
		ref = s.engine.CurrentFact()
	}
	var edit *fact.Fact
	if latest, ok := s.edits[ref.PK]; ok {
		edit = latest.Copy()
	} else {
		edit = ref.Copy()
	}
	affirm(edit.Original() != nil, "%s has no original", ref.Short())
	return edit
}

// UndoableEditableFact is EditableFact with an undo entry recorded for it.
// A nil edit is taken to mean the current fact.
func (s *EditSession) UndoableEditableFact(what string, edit *fact.Fact) *fact.Fact {
	if edit == nil {
		edit = s.EditableFact(nil)
	}
	s.undo.AddUndoable(what, edit)
	return edit
}

// ApplyEdits commits working copies to the session. The first fact is the
// one the user acted on; editing it turns a gap into a real fact.
func (s *EditSession) ApplyEdits(facts ...*fact.Fact) {
	s.applyEdits(true, facts...)
}

func (s *EditSession) applyEdits(undelete bool, facts ...*fact.Fact) {
	facts = slices.DeleteFunc(slices.Clone(facts), func(f *fact.Fact) bool { return f == nil })
	s.undo.RemoveUndoIfNothingChanged(facts)
	for i, f := range facts {
		f.AddReason(fact.ReasonUnsaved)
		if i == 0 && undelete {
			f.DropReason(fact.ReasonIntervalGap)
			f.Deleted = false
		}
		s.updateEditedFact(f, f.Original())
	}
	s.log.Debug("applied edits", zap.Int64s("pks", pksOf(facts)), zap.Int("dirty", len(s.edits)))
	s.dirtyCallback()
}

func (s *EditSession) updateEditedFact(edit, orig *fact.Fact) {
	affirm(orig != nil && edit != orig && edit.PK == orig.PK, "edit %s of %s", edit.Short(), orig.Short())
	if !edit.Equal(orig) {
		s.edits[edit.PK] = edit
		err := s.engine.UpdateFact(edit)
		affirm(err == nil, "update %s: %v", edit.Short(), err)
		return
	}
	if orig.Unstored() && !orig.IsGap() {
		s.edits[orig.PK] = orig
	} else {
		delete(s.edits, orig.PK)
	}
	err := s.engine.UpdateFact(orig)
	affirm(err == nil, "reset %s: %v", orig.Short(), err)
}

func (s *EditSession) dirtyCallback() {
	if s.onDirty != nil {
		s.onDirty(s)
	}
}

// EditContent applies fn to a working copy of the current fact as one
// undoable edit labeled what.
func (s *EditSession) EditContent(what string, fn func(edit *fact.Fact)) {
	edit := s.UndoableEditableFact(what, nil)
	fn(edit)
	s.ApplyEdits(edit)
}

// ToggleDeleted flips the deleted flag of the current fact. Undeleting a
// gap makes it a real fact.
func (s *EditSession) ToggleDeleted() {
	edit := s.UndoableEditableFact("toggle-deleted", nil)
	edit.Deleted = !edit.Deleted
	if !edit.Deleted {
		edit.DropReason(fact.ReasonIntervalGap)
	}
	s.applyEdits(false, edit)
}

// UndoLastEdit reverts the latest edit. It reports false with nothing to undo.
func (s *EditSession) UndoLastEdit() bool {
	return s.undo.UndoLastEdit(s.restoreFacts)
}

// RedoLastUndo reapplies the latest undone edit.
func (s *EditSession) RedoLastUndo() bool {
	return s.undo.RedoLastUndo(s.restoreFacts)
}

func (s *EditSession) restoreFacts(snapshots []*fact.Fact) []*fact.Fact {
	if len(snapshots) == 0 {
		return nil
	}
	if first := s.engine.Lookup(snapshots[0].PK); first != nil {
		s.setCurrent(first)
	}
	were := make([]*fact.Fact, 0, len(snapshots))
	for _, snap := range snapshots {
		live := s.engine.Lookup(snap.PK)
		affirm(live != nil, "restore of unloaded %s", snap.Short())
		edit := s.EditableFact(live)
		were = append(were, edit.Copy())
		edit.RestoreFrom(snap)
		orig := snap.Original()
		if orig == nil {
			orig = edit.Original()
		}
		s.updateEditedFact(edit, orig)
	}
	s.dirtyCallback()
	return were
}

// EditTimeAdjust nudges the current fact's endpoints by delta, along with
// the neighbors touching them.
func (s *EditSession) EditTimeAdjust(ctx context.Context, delta time.Duration, endpoints ...Endpoint) error {
	edit := s.EditableFact(nil)
	prev, next, err := s.nudger.EditTimeAdjust(ctx, edit, delta, endpoints...)
	if err != nil {
		return err
	}
	s.ApplyEdits(edit, prev, next)
	return nil
}

func (s *EditSession) editableFactPrev(ctx context.Context, edit *fact.Fact) (*fact.Fact, error) {
	prev, err := s.engine.Decrement(ctx)
	if err != nil || prev == nil {
		return nil, err
	}
	editPrev := s.EditableFact(nil)
	back, err := s.engine.Increment(ctx)
	if err != nil {
		return nil, err
	}
	affirm(back != nil && back.PK == edit.PK, "did not return to %s", edit.Short())
	return editPrev, nil
}

func (s *EditSession) editableFactNext(ctx context.Context, edit *fact.Fact) (*fact.Fact, error) {
	next, err := s.engine.Increment(ctx)
	if err != nil || next == nil {
		return nil, err
	}
	editNext := s.EditableFact(nil)
	back, err := s.engine.Decrement(ctx)
	if err != nil {
		return nil, err
	}
	affirm(back != nil && back.PK == edit.PK, "did not return to %s", edit.Short())
	return editNext, nil
}

// Cursor moves. Each marks the fact it lands on as viewed.

func (s *EditSession) moved(f *fact.Fact, err error) (*fact.Fact, error) {
	if err != nil || f == nil {
		return nil, err
	}
	s.clipboard.ResetPaste()
	s.viewed[f.PK] = struct{}{}
	return f, nil
}

// JumpFactDec moves to the previous fact.
func (s *EditSession) JumpFactDec(ctx context.Context) (*fact.Fact, error) {
	return s.moved(s.engine.Decrement(ctx))
}

// JumpFactInc moves to the next fact.
func (s *EditSession) JumpFactInc(ctx context.Context) (*fact.Fact, error) {
	return s.moved(s.engine.Increment(ctx))
}

// JumpDayDec moves about one day back.
func (s *EditSession) JumpDayDec(ctx context.Context) (*fact.Fact, error) {
	return s.moved(s.engine.DecrementOneDay(ctx))
}

// JumpDayInc moves about one day forward.
func (s *EditSession) JumpDayInc(ctx context.Context) (*fact.Fact, error) {
	return s.moved(s.engine.IncrementOneDay(ctx))
}

// JumpRiftDec moves to the very first fact.
func (s *EditSession) JumpRiftDec(ctx context.Context) (*fact.Fact, error) {
	return s.moved(s.engine.ScrollFactFirst(ctx))
}

// JumpRiftInc moves to the very last fact.
func (s *EditSession) JumpRiftInc(ctx context.Context) (*fact.Fact, error) {
	return s.moved(s.engine.ScrollFactLast(ctx))
}

// Clipboard.

// CopyActivity copies the current activity and category.
func (s *EditSession) CopyActivity() { s.clipboard.CopyActivity(s.CurrentEdit()) }

// CopyTags copies the current tags.
func (s *EditSession) CopyTags() { s.clipboard.CopyTags(s.CurrentEdit()) }

// CopyDescription copies the current description.
func (s *EditSession) CopyDescription() { s.clipboard.CopyDescription(s.CurrentEdit()) }

// CopyFact copies all the current metadata.
func (s *EditSession) CopyFact() { s.clipboard.CopyFact(s.CurrentEdit()) }

// PasteCopiedMeta pastes the clipboard onto the current fact and names what
// was pasted, or returns "" with an empty clipboard.
func (s *EditSession) PasteCopiedMeta() string {
	if s.clipboard.Empty() {
		return ""
	}
	edit := s.UndoableEditableFact("paste-copied", nil)
	what := s.clipboard.PasteInto(edit)
	s.ApplyEdits(edit)
	return what
}
