package traverser

import (
	"slices"

	"tableflip.dev/factlog/pkg/fact"
)

// groupList keeps groups sorted by their key. A group's key changes whenever
// its first fact changes, so every mutation that may touch the first fact
// goes through rekey, which takes the group out before the key goes stale.
type groupList struct {
	groups []*Group
}

func (l *groupList) Len() int {
	return len(l.groups)
}

func (l *groupList) At(i int) *Group {
	return l.groups[i]
}

func (l *groupList) Last() *Group {
	if len(l.groups) == 0 {
		return nil
	}
	return l.groups[len(l.groups)-1]
}

// bisectLeft returns the first position whose group key is not less than k.
func (l *groupList) bisectLeft(k fact.Key) int {
	at, _ := slices.BinarySearchFunc(l.groups, k, func(g *Group, k fact.Key) int {
		return g.Key().Compare(k)
	})
	return at
}

// bisectRight returns the first position whose group key is greater than k.
func (l *groupList) bisectRight(k fact.Key) int {
	at := l.bisectLeft(k)
	for at < len(l.groups) && l.groups[at].Key().Compare(k) == 0 {
		at++
	}
	return at
}

func (l *groupList) insert(g *Group) int {
	at := l.bisectRight(g.Key())
	l.groups = slices.Insert(l.groups, at, g)
	return at
}

// indexOf finds g by identity.
func (l *groupList) indexOf(g *Group) int {
	for at := l.bisectLeft(g.Key()); at < len(l.groups); at++ {
		if l.groups[at] == g {
			return at
		}
		if l.groups[at].Key().Compare(g.Key()) != 0 {
			break
		}
	}
	// The key was stale; fall back on a scan.
	for at, cand := range l.groups {
		if cand == g {
			return at
		}
	}
	return -1
}

func (l *groupList) removeAt(at int) *Group {
	g := l.groups[at]
	l.groups = slices.Delete(l.groups, at, at+1)
	return g
}

// rekey takes g out of the list, runs fn, and puts g back in key order.
// A group that was not yet in the list is simply inserted afterwards.
func (l *groupList) rekey(g *Group, fn func()) int {
	if at := l.indexOf(g); at >= 0 {
		l.removeAt(at)
	}
	fn()
	return l.insert(g)
}
