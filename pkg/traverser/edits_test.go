package traverser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/store"
)

func TestNudgeStartDragsPreviousFact(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, abFacts(), abFacts())
	require.EqualValues(t, 2, s.CurrentFact().PK)

	require.NoError(t, s.EditTimeAdjust(ctx, -15*time.Minute, AdjustStart))

	e := s.Engine()
	a, b := e.Lookup(1), e.Lookup(2)
	require.True(t, b.Start.Equal(at(8, 45)))
	require.True(t, a.End.Equal(at(8, 45)))
	require.True(t, a.Start.Equal(at(8, 0)))
	require.Same(t, b, s.CurrentFact())

	require.Equal(t, 1, s.History().UndoLen())
	top, ok := s.History().Peek()
	require.True(t, ok)
	require.Equal(t, "adjust-time-neg", top.What)
	require.ElementsMatch(t, []int64{1, 2}, pks(top.Facts))
	requireConsistent(t, e)

	require.Equal(t, []int64{1, 2}, pks(s.PreparedFacts()))
}

func TestNudgeEndDragsNextFact(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, abFacts(), abFacts())
	_, err := s.JumpFactDec(ctx)
	require.NoError(t, err)

	require.NoError(t, s.EditTimeAdjust(ctx, 10*time.Minute, AdjustEnd))
	a, b := s.Engine().Lookup(1), s.Engine().Lookup(2)
	require.True(t, a.End.Equal(at(9, 10)))
	require.True(t, b.Start.Equal(at(9, 10)))
	top, _ := s.History().Peek()
	require.Equal(t, "adjust-time-pos", top.What)
	requireConsistent(t, s.Engine())
}

func TestNudgeClampsAtNeighborEnd(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, abFacts(), abFacts())
	_, err := s.JumpFactDec(ctx)
	require.NoError(t, err)

	// Pushing A's end past B's end leaves B a moment at its own end.
	require.NoError(t, s.EditTimeAdjust(ctx, 2*time.Hour, AdjustEnd))
	a, b := s.Engine().Lookup(1), s.Engine().Lookup(2)
	require.True(t, a.End.Equal(at(10, 0)))
	require.True(t, b.Start.Equal(at(10, 0)))
	require.True(t, b.Momentaneous())
	requireConsistent(t, s.Engine())
}

func TestNudgeStartNeverPassesEnd(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, abFacts(), abFacts())
	require.NoError(t, s.EditTimeAdjust(ctx, 3*time.Hour, AdjustStart))
	b := s.Engine().Lookup(2)
	require.True(t, b.Start.Equal(at(10, 0)))
	require.True(t, s.Engine().Lookup(1).End.Equal(at(10, 0)))
}

func TestNudgeIntoGapEditsGap(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, abFacts(), abFacts())
	_, err := s.JumpFactDec(ctx)
	require.NoError(t, err)

	// A is the earliest fact; its start borders the open gap.
	require.NoError(t, s.EditTimeAdjust(ctx, -30*time.Minute, AdjustStart))
	a := s.Engine().Lookup(1)
	require.True(t, a.Start.Equal(at(7, 30)))
	gap := s.Engine().First()
	require.True(t, gap.IsGap())
	require.True(t, gap.Deleted, "neighbors stay deleted")
	require.True(t, gap.End.Equal(at(7, 30)))

	prepared := s.PreparedFacts()
	require.Equal(t, []int64{gap.PK, 1}, pks(prepared))
	requireConsistent(t, s.Engine())
}

func TestCoalescing(t *testing.T) {
	for _, tc := range []struct {
		name  string
		pause time.Duration
		want  int
	}{
		{"within threshold", time.Second, 1},
		{"past threshold", 2 * time.Second, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			clk := &clock{t: onDay(5, 0, 0)}
			s, _ := newSession(t, abFacts(), abFacts(), WithClock(clk.now))

			require.NoError(t, s.EditTimeAdjust(ctx, -time.Minute, AdjustStart))
			clk.advance(tc.pause)
			require.NoError(t, s.EditTimeAdjust(ctx, -time.Minute, AdjustStart))
			require.Equal(t, tc.want, s.History().UndoLen())

			// Undoing everything returns to the stored values.
			for s.UndoLastEdit() {
			}
			require.True(t, s.Engine().Lookup(2).Start.Equal(at(9, 0)))
			require.True(t, s.Engine().Lookup(1).End.Equal(at(9, 0)))
			require.False(t, s.IsDirty())
		})
	}
}

func TestUndoRedoInverse(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: onDay(5, 0, 0)}
	s, _ := newSession(t, abFacts(), abFacts(), WithClock(clk.now))

	edits := []func(){
		func() { require.NoError(t, s.EditTimeAdjust(ctx, -15*time.Minute, AdjustStart)) },
		func() { s.EditContent("edit-description", func(f *fact.Fact) { f.Description = "reviewed" }) },
		func() {
			_, err := s.JumpFactDec(ctx)
			require.NoError(t, err)
			s.EditContent("edit-tags", func(f *fact.Fact) { f.Tags = []string{"deep"} })
		},
		func() { require.NoError(t, s.EditTimeAdjust(ctx, 5*time.Minute, AdjustEnd)) },
	}
	for _, edit := range edits {
		edit()
		clk.advance(5 * time.Second)
	}

	snapshot := func() []*fact.Fact {
		var out []*fact.Fact
		for _, f := range s.Engine().Facts() {
			out = append(out, f.Copy())
		}
		return out
	}
	after := snapshot()
	n := s.History().UndoLen()
	require.Equal(t, len(edits), n)

	for i := 0; i < n; i++ {
		require.True(t, s.UndoLastEdit())
	}
	require.False(t, s.UndoLastEdit())
	require.False(t, s.IsDirty())
	require.True(t, s.Engine().Lookup(2).Start.Equal(at(9, 0)))

	for i := 0; i < n; i++ {
		require.True(t, s.RedoLastUndo())
	}
	require.False(t, s.RedoLastUndo())
	require.True(t, fact.EqualAll(after, snapshot()))
	requireConsistent(t, s.Engine())
}

func TestNewEditRemovesRedo(t *testing.T) {
	s, _ := newSession(t, abFacts(), abFacts())
	s.EditContent("edit-description", func(f *fact.Fact) { f.Description = "one" })
	require.True(t, s.UndoLastEdit())
	require.Equal(t, 1, s.History().RedoLen())

	s.EditContent("edit-description", func(f *fact.Fact) { f.Description = "two" })
	require.Equal(t, 0, s.History().RedoLen())
}

func TestNoopEditLeavesNoUndo(t *testing.T) {
	s, _ := newSession(t, abFacts(), abFacts())
	s.EditContent("edit-description", func(f *fact.Fact) {})
	require.Equal(t, 0, s.History().UndoLen())
	require.False(t, s.IsDirty())
}

func TestPreparedFacts(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory([]*fact.Fact{fact.New(5, at(8, 0), at(9, 0), "stored")})
	newFact := fact.New(-1, at(9, 0), at(10, 0), "new")
	s, err := NewEditSession(mem, []*fact.Fact{stored(fact.New(5, at(8, 0), at(9, 0), "stored")), newFact}, nil)
	require.NoError(t, err)
	require.NoError(t, s.StandUp(ctx))
	require.Same(t, newFact, s.CurrentFact(), "stand up starts on the new facts")
	require.True(t, s.IsDirty())

	require.NoError(t, s.SetCurrentFact(s.Engine().Lookup(5)))
	s.EditContent("edit-activity", func(f *fact.Fact) { f.Activity = "renamed" })

	prepared := s.PreparedFacts()
	require.Equal(t, []int64{-1, 5}, pks(prepared))
	require.Equal(t, "renamed", prepared[1].Activity)
	require.True(t, prepared[1].HasReason(fact.ReasonUnsaved))
}

func TestRevertedNewFactStaysPrepared(t *testing.T) {
	ctx := context.Background()
	newFact := fact.New(-1, at(9, 0), at(10, 0), "new")
	s, err := NewEditSession(store.NewMemory(nil), []*fact.Fact{newFact}, nil)
	require.NoError(t, err)
	require.NoError(t, s.StandUp(ctx))

	s.EditContent("edit-activity", func(f *fact.Fact) { f.Activity = "other" })
	require.True(t, s.UndoLastEdit())
	require.Equal(t, []int64{-1}, pks(s.PreparedFacts()))
	require.Same(t, newFact, s.CurrentFact())
}

func TestEditingGapMakesItReal(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, abFacts(), abFacts())
	_, err := s.JumpFactDec(ctx)
	require.NoError(t, err)
	gap, err := s.JumpFactDec(ctx)
	require.NoError(t, err)
	require.True(t, gap.IsGap())
	require.Empty(t, s.PreparedFacts(), "untouched gaps are never saved")

	s.EditContent("edit-activity", func(f *fact.Fact) { f.Activity = "sleep" })
	live := s.Engine().Lookup(gap.PK)
	require.False(t, live.Deleted)
	require.False(t, live.IsGap())
	require.Equal(t, []int64{gap.PK}, pks(s.PreparedFacts()))

	require.True(t, s.UndoLastEdit())
	require.Same(t, gap, s.Engine().Lookup(gap.PK))
	require.Empty(t, s.PreparedFacts())
}

func TestToggleDeleted(t *testing.T) {
	s, _ := newSession(t, abFacts(), abFacts())
	s.ToggleDeleted()
	require.True(t, s.CurrentFact().Deleted)
	require.Equal(t, []int64{2}, pks(s.PreparedFacts()))
	s.ToggleDeleted()
	require.False(t, s.CurrentFact().Deleted)
	require.False(t, s.IsDirty())
}

func TestCopyPaste(t *testing.T) {
	ctx := context.Background()
	facts := abFacts()
	facts[0].Category = "work"
	facts[0].Tags = []string{"deep"}
	s, _ := newSession(t, facts, facts)

	require.Equal(t, "", s.PasteCopiedMeta(), "nothing copied yet")

	_, err := s.JumpFactDec(ctx)
	require.NoError(t, err)
	s.CopyFact()
	_, err = s.JumpFactInc(ctx)
	require.NoError(t, err)

	require.Equal(t, "fact", s.PasteCopiedMeta())
	b := s.CurrentEdit()
	require.Equal(t, "a", b.Activity)
	require.Equal(t, "work", b.Category)
	require.Equal(t, []string{"deep"}, b.Tags)
	require.Equal(t, 1, s.History().UndoLen())
}

func TestUserViewedAllNewFacts(t *testing.T) {
	ctx := context.Background()
	working := []*fact.Fact{
		fact.New(-1, at(8, 0), at(9, 0), "a"),
		fact.New(-2, at(9, 0), at(10, 0), "b"),
		fact.New(-3, at(10, 0), at(11, 0), "c"),
	}
	s, err := NewEditSession(store.NewMemory(nil), working, nil)
	require.NoError(t, err)
	require.NoError(t, s.StandUp(ctx))
	require.False(t, s.UserViewedAllNewFacts())
	require.Equal(t, 2, s.Unviewed())

	for {
		f, err := s.JumpFactInc(ctx)
		require.NoError(t, err)
		if f == nil {
			break
		}
	}
	require.True(t, s.UserViewedAllNewFacts())
}

func TestEditableFactIsAlwaysACopy(t *testing.T) {
	s, _ := newSession(t, abFacts(), abFacts())
	cur := s.CurrentFact()
	edit := s.EditableFact(nil)
	require.NotSame(t, cur, edit)
	require.Same(t, cur, edit.Original())

	s.EditContent("edit-description", func(f *fact.Fact) { f.Description = "x" })
	again := s.EditableFact(nil)
	require.NotSame(t, s.CurrentEdit(), again)
	require.Equal(t, "x", again.Description)
	require.Same(t, cur, again.Original())
}

func TestDirtyCallback(t *testing.T) {
	calls := 0
	s, _ := newSession(t, abFacts(), abFacts(), WithDirtyCallback(func(*EditSession) { calls++ }))
	s.EditContent("edit-description", func(f *fact.Fact) { f.Description = "x" })
	s.UndoLastEdit()
	require.Equal(t, 2, calls)
}

func TestNudgeBothEnds(t *testing.T) {
	ctx := context.Background()
	facts := []*fact.Fact{
		fact.New(1, at(8, 0), at(9, 0), "a"),
		fact.New(2, at(9, 0), at(10, 0), "b"),
		fact.New(3, at(10, 0), at(11, 0), "c"),
	}
	s, _ := newSession(t, facts, facts)
	_, err := s.JumpFactDec(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, s.CurrentFact().PK)

	require.NoError(t, s.EditTimeAdjust(ctx, 15*time.Minute, AdjustStart, AdjustEnd))

	e := s.Engine()
	a, b, c := e.Lookup(1), e.Lookup(2), e.Lookup(3)
	require.True(t, a.End.Equal(at(9, 15)))
	require.True(t, b.Start.Equal(at(9, 15)))
	require.True(t, b.End.Equal(at(10, 15)))
	require.True(t, c.Start.Equal(at(10, 15)))
	require.True(t, c.End.Equal(at(11, 0)))
	require.Equal(t, 1, s.History().UndoLen())
	require.Equal(t, []int64{1, 2, 3}, pks(s.PreparedFacts()))
	requireConsistent(t, e)

	require.True(t, s.UndoLastEdit())
	require.False(t, s.IsDirty())
	require.True(t, fact.EqualAll(facts, e.Facts()))
	requireConsistent(t, e)
}

func TestEndingOngoingFactOpensGap(t *testing.T) {
	ctx := context.Background()
	facts := []*fact.Fact{
		fact.New(1, at(8, 0), at(9, 0), "a"),
		fact.New(2, at(9, 0), time.Time{}, "b"),
	}
	s, _ := newSession(t, facts, facts)
	require.EqualValues(t, 2, s.CurrentFact().PK)

	require.NoError(t, s.EditTimeAdjust(ctx, -15*time.Minute, AdjustEnd))
	e := s.Engine()
	require.True(t, e.Lookup(2).End.Equal(onDay(1, 23, 45)))

	gap, err := s.JumpFactInc(ctx)
	require.NoError(t, err)
	require.NotNil(t, gap)
	require.True(t, gap.IsGap())
	require.True(t, gap.Start.Equal(onDay(1, 23, 45)))
	require.True(t, gap.End.IsZero())
	requireConsistent(t, e)

	// Ongoing again, the trailing gap goes away.
	require.True(t, s.UndoLastEdit())
	require.False(t, s.IsDirty())
	require.Nil(t, e.Lookup(gap.PK))
	require.True(t, e.Lookup(2).End.IsZero())
	requireConsistent(t, e)
	next, err := s.JumpFactInc(ctx)
	require.NoError(t, err)
	require.Nil(t, next)

	require.True(t, s.RedoLastUndo())
	next, err = s.JumpFactInc(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.True(t, next.IsGap())
	requireConsistent(t, e)
}
