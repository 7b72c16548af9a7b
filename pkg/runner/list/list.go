// Package list prints stored facts from a window of time.
package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/printers"
	"tableflip.dev/factlog/pkg/store"
)

// List prints the facts that overlap [Until-Window, Until].
type List struct {
	Persistence store.Persistence
	Window      time.Duration
	// Until ends the window; the store's now when zero.
	Until    time.Time
	ShowPK   bool
	Calendar bool
	JSON     bool
	Out      io.Writer
}

// Do runs the listing.
func (l *List) Do(ctx context.Context) error {
	if l.Persistence == nil {
		return errors.New("list: no persistence")
	}
	if l.Out == nil {
		l.Out = color.Output
	}
	until := l.Until
	if until.IsZero() {
		until = l.Persistence.Now()
	}
	since := until.Add(-l.Window)
	facts, err := l.Persistence.GetAll(ctx, fact.Query{Order: fact.Ascending, Since: since, Until: until})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if l.JSON {
		enc := json.NewEncoder(l.Out)
		enc.SetIndent("", "  ")
		if facts == nil {
			facts = []*fact.Fact{}
		}
		return enc.Encode(facts)
	}

	pp := printers.PrettyPrint{Out: l.Out, ShowPK: l.ShowPK, Now: l.Persistence.Now}
	if l.Calendar {
		for m := monthOf(since); !m.After(until); m = m.AddDate(0, 1, 0) {
			pp.Month(m, facts...)
		}
		return nil
	}
	pp.Facts(facts...)
	return nil
}

func monthOf(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}
