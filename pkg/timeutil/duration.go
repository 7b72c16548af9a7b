// Package timeutil parses and formats the human-friendly spans used for
// nudge steps and report windows.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWindow is the fallback list window used when none is provided.
	DefaultWindow = "1w"

	day  = 24 * time.Hour
	week = 7 * day
)

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMap        = map[string]time.Duration{
		"s":       time.Second,
		"sec":     time.Second,
		"secs":    time.Second,
		"second":  time.Second,
		"seconds": time.Second,
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hrs":     time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
		"d":       day,
		"day":     day,
		"days":    day,
		"w":       week,
		"wk":      week,
		"wks":     week,
		"week":    week,
		"weeks":   week,
	}
)

// ParseSpan parses a signed span such as "15m", "-5m" or "1w2d6h" and returns
// it along with its canonical, compact rendering.
func ParseSpan(input string) (time.Duration, string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return 0, "", fmt.Errorf("timeutil: empty span")
	}
	sign := time.Duration(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}
	if strings.TrimSpace(trimmed) == "" {
		return 0, "", fmt.Errorf("timeutil: span %q has no value", input)
	}

	remaining := trimmed
	total := time.Duration(0)
	for len(strings.TrimSpace(remaining)) > 0 {
		matches := segmentPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("timeutil: invalid span segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("timeutil: invalid span value %q: %w", matches[1], err)
		}
		base, ok := unitMap[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("timeutil: unsupported span unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}

	total *= sign
	return total, FormatSpan(total), nil
}

// ParseWindow parses a strictly positive span, defaulting to one week.
func ParseWindow(input string) (time.Duration, string, error) {
	if strings.TrimSpace(input) == "" {
		input = DefaultWindow
	}
	d, label, err := ParseSpan(input)
	if err != nil {
		return 0, "", err
	}
	if d <= 0 {
		return 0, "", fmt.Errorf("timeutil: window must be greater than zero")
	}
	return d, label, nil
}

// FormatSpan renders a span using week/day/hour/minute/second tokens.
func FormatSpan(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	prefix := ""
	if d < 0 {
		prefix = "-"
		d = -d
	}

	units := []struct {
		label string
		value time.Duration
	}{
		{"w", week},
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}

	var b strings.Builder
	b.WriteString(prefix)
	remaining := d
	for _, u := range units {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
	}
	if b.Len() == len(prefix) {
		return "0s"
	}
	return b.String()
}
