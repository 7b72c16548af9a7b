// Package fact defines the time-tracked activity record that the traverser
// walks and edits, along with its ordering key and neighbor links.
package fact

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Dirty reasons attached to facts while they are being edited.
const (
	ReasonUnsaved     = "unsaved"
	ReasonIntervalGap = "interval-gap"
)

// Fact is a contiguous interval of time tagged with what was done during it.
//
// A zero Start means the interval is open towards the past (only synthesized
// gap facts are ever open at the start). A zero End means the fact is ongoing,
// or, for gap facts, open towards the future.
type Fact struct {
	PK          int64     `json:"pk"`
	Start       Timestamp `json:"start"`
	End         Timestamp `json:"end"`
	Activity    string    `json:"activity,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Description string    `json:"description,omitempty"`
	Deleted     bool      `json:"deleted,omitempty"`

	// Prev and Next are handles to the neighboring facts, by pk.
	Prev Link `json:"-"`
	Next Link `json:"-"`

	reasons  map[string]struct{}
	origin   *Fact
	pristine bool
}

// New returns an unclassified fact spanning start to end.
func New(pk int64, start, end time.Time, activity string) *Fact {
	return &Fact{
		PK:       pk,
		Start:    Timestamp{Time: start},
		End:      Timestamp{Time: end},
		Activity: activity,
	}
}

// Unstored reports whether the fact exists only in this session.
func (f *Fact) Unstored() bool {
	return f.PK <= 0
}

// Dirty reports whether the fact has to be written on save.
func (f *Fact) Dirty() bool {
	return f.Unstored() || len(f.reasons) > 0
}

// HasReason reports whether reason is among the fact's dirty reasons.
func (f *Fact) HasReason(reason string) bool {
	_, ok := f.reasons[reason]
	return ok
}

// AddReason marks the fact dirty for reason.
func (f *Fact) AddReason(reason string) {
	if f.reasons == nil {
		f.reasons = make(map[string]struct{})
	}
	f.reasons[reason] = struct{}{}
}

// DropReason clears reason, if set.
func (f *Fact) DropReason(reason string) {
	delete(f.reasons, reason)
}

// Reasons returns the dirty reasons, sorted.
func (f *Fact) Reasons() []string {
	out := make([]string, 0, len(f.reasons))
	for r := range f.reasons {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// IsGap reports whether the fact is a synthesized placeholder for untracked time.
func (f *Fact) IsGap() bool {
	return f.HasReason(ReasonIntervalGap)
}

// Momentaneous reports whether the fact has zero width.
func (f *Fact) Momentaneous() bool {
	return !f.Start.IsZero() && !f.End.IsZero() && f.Start.Equal(f.End.Time)
}

// Origin tracking. A fact is either unclassified, the pristine original of
// itself, or a working copy of some pristine original.

// MarkPristine classifies f as its own pristine original.
func (f *Fact) MarkPristine() {
	f.origin = nil
	f.pristine = true
}

// SetOriginal classifies f as a working copy of orig.
func (f *Fact) SetOriginal(orig *Fact) {
	if orig == f {
		f.MarkPristine()
		return
	}
	f.origin = orig
	f.pristine = false
}

// IsPristine reports whether f is the untouched original of itself.
func (f *Fact) IsPristine() bool {
	return f.pristine
}

// Classified reports whether the origin of f is known.
func (f *Fact) Classified() bool {
	return f.pristine || f.origin != nil
}

// Original returns the pristine fact f derives from, f itself if f is
// pristine, or nil if f is unclassified.
func (f *Fact) Original() *Fact {
	if f.pristine {
		return f
	}
	return f.origin
}

// Copy returns a working copy of f. The copy carries content, dirty reasons
// and origin, but no neighbor links. Copying a pristine fact yields a copy
// whose original is f.
func (f *Fact) Copy() *Fact {
	c := &Fact{
		PK:          f.PK,
		Start:       f.Start,
		End:         f.End,
		Activity:    f.Activity,
		Category:    f.Category,
		Tags:        slices.Clone(f.Tags),
		Description: f.Description,
		Deleted:     f.Deleted,
	}
	for r := range f.reasons {
		c.AddReason(r)
	}
	if orig := f.Original(); orig != nil {
		c.origin = orig
	}
	return c
}

// RestoreFrom overwrites the editable state of f with that of other.
func (f *Fact) RestoreFrom(other *Fact) {
	f.Start = other.Start
	f.End = other.End
	f.Activity = other.Activity
	f.Category = other.Category
	f.Tags = slices.Clone(other.Tags)
	f.Description = other.Description
	f.Deleted = other.Deleted
	f.reasons = nil
	for r := range other.reasons {
		f.AddReason(r)
	}
}

// Equal compares identity and content. Dirty reasons, origin and links are
// edit metadata and do not take part.
func (f *Fact) Equal(o *Fact) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.PK == o.PK &&
		f.Start.Equal(o.Start.Time) &&
		f.End.Equal(o.End.Time) &&
		f.Activity == o.Activity &&
		f.Category == o.Category &&
		slices.Equal(f.Tags, o.Tags) &&
		f.Description == o.Description &&
		f.Deleted == o.Deleted
}

// EqualAll compares two fact lists element by element.
func EqualAll(a, b []*Fact) bool {
	return slices.EqualFunc(a, b, func(x, y *Fact) bool { return x.Equal(y) })
}

// Contains reports whether t falls within the fact's interval, inclusive.
func (f *Fact) Contains(t time.Time) bool {
	if !f.Start.IsZero() && t.Before(f.Start.Time) {
		return false
	}
	if !f.End.IsZero() && t.After(f.End.Time) {
		return false
	}
	return true
}

// Duration returns the length of the fact, measuring an open end from now.
func (f *Fact) Duration(now time.Time) time.Duration {
	if f.Start.IsZero() {
		return 0
	}
	end := f.End.Time
	if end.IsZero() {
		end = now
	}
	return end.Sub(f.Start.Time)
}

// ActivityName renders "activity@category", or a placeholder for gap facts.
func (f *Fact) ActivityName() string {
	switch {
	case f.Activity == "" && f.Category == "":
		return "<gap>"
	case f.Category == "":
		return f.Activity
	default:
		return f.Activity + "@" + f.Category
	}
}

// Short is a compact one-line rendering, used in logs.
func (f *Fact) Short() string {
	if f == nil {
		return "<no fact>"
	}
	return fmt.Sprintf("#%d %s .. %s %s", f.PK, formatBound(f.Start), formatBound(f.End), f.ActivityName())
}

func (f *Fact) String() string {
	var b strings.Builder
	b.WriteString(f.Short())
	if len(f.Tags) > 0 {
		b.WriteString(" #")
		b.WriteString(strings.Join(f.Tags, " #"))
	}
	if f.Description != "" {
		b.WriteString(": ")
		b.WriteString(f.Description)
	}
	return b.String()
}

func formatBound(t Timestamp) string {
	if t.IsZero() {
		return "?"
	}
	return t.Local().Format("2006-01-02 15:04")
}
