package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/factlog/pkg/fact"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Month prints a calendar of the month holding then, with days that have
// tracked time in bold.
func (pp *PrettyPrint) Month(then time.Time, facts ...*fact.Fact) {
	tracked := make([]time.Duration, DaysIn(then))
	for _, f := range facts {
		start := f.Start.Local()
		if f.Deleted || start.Year() != then.Year() || start.Month() != then.Month() {
			continue
		}
		tracked[start.Day()-1] += f.Duration(pp.now())
	}
	pp.MonthTracked(then, tracked)
}

// MonthTracked prints a calendar given the time tracked on each day.
func (pp *PrettyPrint) MonthTracked(then time.Time, tracked []time.Duration) {
	w := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)
	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	// Pad out the start of the month.
	_, _ = fmt.Fprint(w, strings.Repeat("   ", int(d-time.Sunday)))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)
	for i := 0; i < DaysIn(then); i++ {
		if i < len(tracked) && tracked[i] > 0 {
			_, _ = l2.Fprintf(w, "%2d ", i+1)
		} else {
			_, _ = l1.Fprintf(w, "%2d ", i+1)
		}
		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
