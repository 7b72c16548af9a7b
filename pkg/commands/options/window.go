package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/factlog/pkg/timeutil"
)

// WindowOptions
type WindowOptions struct {
	Window   string
	Until    string
	Calendar bool
	ShowPK   bool
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions) {
	cmd.Flags().StringVarP(&o.Window, "window", "w", timeutil.DefaultWindow,
		"How far back to look, like 1d, 2w or 3h30m.")
	cmd.Flags().StringVar(&o.Until, "until", "",
		"End of the window as YYYY-MM-DD, defaults to now.")
	cmd.Flags().BoolVarP(&o.Calendar, "calendar", "c", false,
		"Show a month calendar of tracked days.")
	cmd.Flags().BoolVar(&o.ShowPK, "pk", false,
		"Show fact keys.")
}

// Span parses the window flag.
func (o *WindowOptions) Span() (time.Duration, error) {
	d, _, err := timeutil.ParseWindow(o.Window)
	return d, err
}

// End parses the until flag as the end of that local day. Zero means now.
func (o *WindowOptions) End() (time.Time, error) {
	if o.Until == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation("2006-01-02", o.Until, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
