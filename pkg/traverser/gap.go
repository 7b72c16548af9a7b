package traverser

import (
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// gapFact synthesizes a placeholder for the untracked time between since and
// until, either of which may be zero for an open end. Gap facts are deleted
// until the user edits them, so saving never writes an untouched one.
func (e *Engine) gapFact(since, until time.Time) *fact.Fact {
	affirm(since.IsZero() || until.IsZero() || since.Before(until),
		"gap from %s to %s is empty", since, until)
	gap := fact.New(e.nextPK(), since, until, "")
	gap.AddReason(fact.ReasonIntervalGap)
	gap.Deleted = true
	gap.MarkPristine()
	return gap
}

// link records a and b as immediate neighbors.
func link(a, b *fact.Fact) {
	affirm(!a.Next.IsLinked() || a.Next.PK == b.PK, "%s already followed by #%d", a.Short(), a.Next.PK)
	affirm(!b.Prev.IsLinked() || b.Prev.PK == a.PK, "%s already preceded by #%d", b.Short(), b.Prev.PK)
	a.Next = fact.LinkTo(b.PK)
	b.Prev = fact.LinkTo(a.PK)
}

// absorb moves every fact of o into g. The caller rekeys g.
func (g *Group) absorb(o *Group) {
	for _, f := range o.facts {
		g.Add(f)
	}
	o.facts = nil
}

// join makes a and b, with a judged to end no later than b starts, immediate
// neighbors in one group. Whichever of them is already loaded anchors the
// group; the other one's group, if any, is merged in. Time between the two
// is filled with a gap fact, which is returned, or nil when they touch.
func (e *Engine) join(a, b *fact.Fact) *fact.Fact {
	ga, gb := e.groupOf(a), e.groupOf(b)
	affirm(ga != nil || gb != nil, "neither %s nor %s is loaded", a.Short(), b.Short())
	anchor := ga
	if anchor == nil {
		anchor = gb
	}
	var gap *fact.Fact
	if !a.End.Equal(b.Start.Time) {
		gap = e.gapFact(a.End.Time, b.Start.Time)
	}
	e.groups.rekey(anchor, func() {
		for _, other := range []*Group{ga, gb} {
			if other != nil && other != anchor {
				e.groups.removeAt(e.groups.indexOf(other))
				anchor.absorb(other)
			}
		}
		for _, f := range []*fact.Fact{a, b, gap} {
			if f == nil {
				continue
			}
			if _, ok := e.byPK[f.PK]; !ok {
				anchor.Add(f)
				e.byPK[f.PK] = f
			}
		}
	})
	if e.cur != nil {
		e.curGroup, e.curIndex = e.locate(e.cur)
	}
	affirm(anchor.Contiguous(), "group %s lost contiguity", anchor)
	if gap == nil {
		link(a, b)
		return nil
	}
	link(a, gap)
	link(gap, b)
	return gap
}

func (e *Engine) groupOf(f *fact.Fact) *Group {
	if _, ok := e.byPK[f.PK]; !ok {
		return nil
	}
	g, _ := e.locate(f)
	return g
}

// separate records that a and b, though adjacent in order, overlap and
// therefore live in different groups.
func separate(a, b *fact.Fact) {
	a.Next = fact.BoundaryLink()
	b.Prev = fact.BoundaryLink()
}

// fold loads a store fact that lost out to a nearer one as a group of its own.
func (e *Engine) fold(f *fact.Fact) {
	if !f.Classified() {
		f.MarkPristine()
	}
	err := e.AddFacts([]*fact.Fact{f})
	affirm(err == nil, "fold %s: %v", f.Short(), err)
}
