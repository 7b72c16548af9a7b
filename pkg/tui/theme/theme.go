package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the fact carousel.
type Theme struct {
	Header HeaderTheme
	Fact   FactTheme
	Diff   DiffTheme
	Footer FooterTheme
	Help   lipgloss.Style
}

// HeaderTheme styles the position line above the current fact.
type HeaderTheme struct {
	Position lipgloss.Style
	Day      lipgloss.Style
	Dirty    lipgloss.Style
}

// FactTheme styles the current fact.
type FactTheme struct {
	Frame       lipgloss.Style
	Time        lipgloss.Style
	Duration    lipgloss.Style
	Activity    lipgloss.Style
	Category    lipgloss.Style
	Tags        lipgloss.Style
	Description lipgloss.Style
	Gap         lipgloss.Style
	Deleted     lipgloss.Style
	New         lipgloss.Style
}

// DiffTheme styles the changes against the stored version.
type DiffTheme struct {
	Field lipgloss.Style
	Was   lipgloss.Style
	Is    lipgloss.Style
}

// FooterTheme groups styles used by the bottom status and key bar.
type FooterTheme struct {
	Status lipgloss.Style
	Error  lipgloss.Style
	Keys   lipgloss.Style
}

// Default returns the built-in theme.
func Default() Theme {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Theme{
		Header: HeaderTheme{
			Position: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Day:      lipgloss.NewStyle().Bold(true).Underline(true),
			Dirty:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		},
		Fact: FactTheme{
			Frame:       frame,
			Time:        lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
			Duration:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Activity:    lipgloss.NewStyle().Bold(true),
			Category:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
			Tags:        lipgloss.NewStyle().Foreground(lipgloss.Color("80")),
			Description: lipgloss.NewStyle(),
			Gap:         frame.BorderForeground(lipgloss.Color("241")).Faint(true),
			Deleted:     frame.BorderForeground(lipgloss.Color("160")).Strikethrough(true),
			New:         frame.BorderForeground(lipgloss.Color("42")),
		},
		Diff: DiffTheme{
			Field: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Was:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
			Is:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		},
		Footer: FooterTheme{
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
			Keys:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
		Help: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Margin(0).
			Padding(0),
	}
}
