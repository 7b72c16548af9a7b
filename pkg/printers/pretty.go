// Package printers renders facts for the terminal.
package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/factlog/pkg/fact"
)

// PrettyPrint writes colored fact listings to Out, color.Output by default.
type PrettyPrint struct {
	Out    io.Writer
	ShowPK bool
	// Now measures ongoing facts; time.Now when nil.
	Now func() time.Time
}

const layoutDay = "Monday, January 2, 2006"

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now == nil {
		return time.Now()
	}
	return pp.Now()
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " fact")
	default:
		_, _ = c.Fprintln(pp.out(), " facts")
	}
}

// Facts prints facts as one table per local day, in the order given.
func (pp *PrettyPrint) Facts(facts ...*fact.Fact) {
	if len(facts) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	var day []*fact.Fact
	flush := func() {
		if len(day) == 0 {
			return
		}
		var total time.Duration
		for _, f := range day {
			total += f.Duration(pp.now())
		}
		pp.TitleWithCount(day[0].Start.Local().Format(layoutDay), len(day))
		_, _ = fmt.Fprintln(pp.out(), pp.table(day...))
		_, _ = color.New(color.Faint).Fprintf(pp.out(), "total %s\n\n", FormatDuration(total))
		day = day[:0]
	}
	for _, f := range facts {
		if len(day) > 0 && !f.Start.SameDay(day[0].Start.Time) {
			flush()
		}
		day = append(day, f)
	}
	flush()
}

func (pp *PrettyPrint) table(facts ...*fact.Fact) *uitable.Table {
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	a := color.New(color.Bold)
	c := color.New(color.FgCyan)
	d := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	for _, f := range facts {
		var row []any
		if pp.ShowPK {
			row = append(row, y.Sprint(f.PK))
		}
		span := clock(f.Start) + " - " + clock(f.End)
		what := a.Sprint(f.Activity)
		if f.Category != "" {
			what += c.Sprint("@" + f.Category)
		}
		if len(f.Tags) > 0 {
			what += " " + c.Sprint("#"+strings.Join(f.Tags, " #"))
		}
		row = append(row, span, FormatDuration(f.Duration(pp.now())), what, d.Sprint(f.Description))
		tbl.AddRow(row...)
	}
	tbl.RightAlign(boolIndex(pp.ShowPK) + 1)
	return tbl
}

// Diff prints the fields that differ between orig and edit, one per line.
func (pp *PrettyPrint) Diff(orig, edit *fact.Fact) {
	was := color.New(color.FgRed)
	is := color.New(color.FgGreen)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, ch := range Changes(orig, edit) {
		tbl.AddRow(ch.Field, was.Sprint(ch.Was), "→", is.Sprint(ch.Is))
	}
	title := fmt.Sprintf("#%d", edit.PK)
	if edit.Unstored() {
		title = "new"
	}
	pp.Title(title + " " + edit.ActivityName())
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Change is one field that differs between two versions of a fact.
type Change struct {
	Field string
	Was   string
	Is    string
}

// Changes lists the fields of edit that differ from orig. A nil orig is
// treated as an empty fact.
func Changes(orig, edit *fact.Fact) []Change {
	if orig == nil {
		orig = &fact.Fact{}
	}
	var out []Change
	add := func(field, was, is string) {
		if was != is {
			out = append(out, Change{Field: field, Was: was, Is: is})
		}
	}
	add("start", stamp(orig.Start), stamp(edit.Start))
	add("end", stamp(orig.End), stamp(edit.End))
	add("activity", orig.Activity, edit.Activity)
	add("category", orig.Category, edit.Category)
	add("tags", strings.Join(orig.Tags, " "), strings.Join(edit.Tags, " "))
	add("description", orig.Description, edit.Description)
	if orig.Deleted != edit.Deleted {
		add("deleted", fmt.Sprint(orig.Deleted), fmt.Sprint(edit.Deleted))
	}
	return out
}

// FormatDuration renders d as hours and minutes, like "1h05m" or "25m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d - h*time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

func clock(t fact.Timestamp) string {
	if t.IsZero() {
		return "  ?  "
	}
	return t.Local().Format("15:04")
}

func stamp(t fact.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
