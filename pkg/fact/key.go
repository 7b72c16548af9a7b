package fact

import "time"

// Key orders facts chronologically: by start, then by end, where a zero
// start sorts before everything and a zero end sorts after everything.
type Key struct {
	Start time.Time
	End   time.Time
}

// Key returns the ordering key of f.
func (f *Fact) Key() Key {
	return Key{Start: f.Start.Time, End: f.End.Time}
}

// KeyAt returns the key of a zero-width interval at t.
func KeyAt(t time.Time) Key {
	return Key{Start: t, End: t}
}

// Compare returns -1, 0 or +1 as k sorts before, with or after o.
func (k Key) Compare(o Key) int {
	if c := compareStart(k.Start, o.Start); c != 0 {
		return c
	}
	return compareEnd(k.End, o.End)
}

// Compare orders facts by key, breaking ties by pk.
func Compare(a, b *Fact) int {
	if c := a.Key().Compare(b.Key()); c != 0 {
		return c
	}
	switch {
	case a.PK < b.PK:
		return -1
	case a.PK > b.PK:
		return 1
	}
	return 0
}

// Before reports whether f sorts before o.
func (f *Fact) Before(o *Fact) bool {
	return Compare(f, o) < 0
}

// After reports whether f sorts after o.
func (f *Fact) After(o *Fact) bool {
	return Compare(f, o) > 0
}

func compareStart(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return -1
	case b.IsZero():
		return 1
	}
	return a.Compare(b)
}

func compareEnd(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return a.Compare(b)
}
