package carousel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/printers"
)

const layoutDay = "Monday, January 2, 2006"

func (m *Model) View() string {
	if m.overlay != nil {
		return m.overlay.view() + "\n" + m.footer()
	}
	cur := m.session.CurrentFact()
	if cur == nil {
		return "no facts\n\n" + m.footer()
	}

	var b strings.Builder
	b.WriteString(m.header(cur))
	b.WriteString("\n\n")
	b.WriteString(m.card(m.session.CurrentEdit()))
	if diff := m.diff(); diff != "" {
		b.WriteString("\n\n")
		b.WriteString(diff)
	}
	b.WriteString("\n\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m *Model) header(cur *fact.Fact) string {
	t := m.theme.Header
	day := "open ended"
	switch {
	case !cur.Start.IsZero():
		day = cur.Start.Local().Format(layoutDay)
	case !cur.End.IsZero():
		day = "until " + cur.End.Local().Format(layoutDay)
	}
	group, index, size := m.session.Engine().Position()
	pos := fmt.Sprintf("fact %d of %d in run %d of %d", index+1, size, group+1, len(m.session.Engine().Groups()))
	line := t.Day.Render(day) + "  " + t.Position.Render(pos)
	if m.session.IsDirty() {
		line += "  " + t.Dirty.Render(fmt.Sprintf("%d unsaved", len(m.session.PreparedFacts())))
	}
	return line
}

func (m *Model) card(f *fact.Fact) string {
	t := m.theme.Fact
	frame := t.Frame
	switch {
	case f.IsGap():
		frame = t.Gap
	case f.Deleted:
		frame = t.Deleted
	case f.Unstored():
		frame = t.New
	}
	inner := max(m.width-frame.GetHorizontalFrameSize(), 20)

	var lines []string
	span := fmt.Sprintf("%s → %s", clock(f.Start), clock(f.End))
	lines = append(lines, t.Time.Render(span)+"  "+
		t.Duration.Render(printers.FormatDuration(f.Duration(m.session.Engine().Now()))))

	switch {
	case f.IsGap():
		lines = append(lines, t.Activity.Render("<gap>")+"  "+t.Duration.Render("edit to track this time"))
	default:
		what := t.Activity.Render(f.Activity)
		if f.Category != "" {
			what += t.Category.Render("@" + f.Category)
		}
		lines = append(lines, what)
	}
	if len(f.Tags) > 0 {
		lines = append(lines, t.Tags.Render(wordwrap.String("#"+strings.Join(f.Tags, " #"), inner)))
	}
	if f.Description != "" {
		lines = append(lines, "", t.Description.Render(wordwrap.String(f.Description, inner)))
	}
	body := strings.Join(lines, "\n")
	return frame.Width(min(lineWidth(body), inner) + frame.GetHorizontalFrameSize()).Render(body)
}

func (m *Model) diff() string {
	edit := m.session.CurrentEdit()
	orig := m.session.CurrentOrig()
	if orig == edit || edit.IsGap() {
		return ""
	}
	if edit.Unstored() && orig.Equal(edit) {
		return ""
	}
	t := m.theme.Diff
	var rows []string
	for _, ch := range printers.Changes(orig, edit) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			t.Field.Width(12).Render(ch.Field),
			t.Was.Render(orDash(ch.Was)), " → ", t.Is.Render(orDash(ch.Is))))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) footer() string {
	t := m.theme.Footer
	var status string
	switch {
	case m.err != nil:
		status = t.Error.Render("error: " + m.err.Error())
	case m.status != "":
		status = t.Status.Render(m.status)
	}
	keys := t.Keys.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	if status == "" {
		return keys
	}
	return status + "\n" + keys
}

func clock(t fact.Timestamp) string {
	if t.IsZero() {
		return "…"
	}
	return t.Local().Format("15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
