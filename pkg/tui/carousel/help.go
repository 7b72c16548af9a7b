package carousel

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
)

//go:embed help.md
var helpMarkdown string

// helpOverlay renders the key reference as markdown inside a scrolling
// viewport.
type helpOverlay struct {
	viewport viewport.Model
	frame    lipgloss.Style
	width    int
	height   int
	err      error
}

func newHelpOverlay(frame lipgloss.Style, width, height int) *helpOverlay {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	vp.MouseWheelEnabled = true
	h := &helpOverlay{viewport: vp, frame: frame}
	h.setSize(width, height)
	return h
}

func (h *helpOverlay) update(msg tea.Msg) tea.Cmd {
	vp, cmd := h.viewport.Update(msg)
	h.viewport = vp
	return cmd
}

func (h *helpOverlay) view() string {
	body := h.viewport.View()
	if body == "" && h.err != nil {
		body = "help unavailable: " + h.err.Error()
	}
	return h.frame.Width(h.width).Height(h.height).Render(body)
}

// setSize re-renders the markdown to fit the new bounds.
func (h *helpOverlay) setSize(width, height int) {
	width, height = max(width, 32), max(height, 8)
	if h.width == width && h.height == height {
		return
	}
	h.width, h.height = width, height

	inner := max(width-h.frame.GetHorizontalFrameSize(), 1)
	h.viewport.SetWidth(inner)
	h.viewport.SetHeight(max(height-h.frame.GetVerticalFrameSize(), 1))
	h.render(inner)
}

func (h *helpOverlay) render(wrap int) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(wrap, 10)),
	)
	if err != nil {
		h.fail(err)
		return
	}
	content, err := renderer.Render(strings.TrimSpace(helpMarkdown))
	if err != nil {
		h.fail(err)
		return
	}
	h.err = nil
	h.viewport.SetContent(content)
	h.viewport.SetYOffset(0)
}

func (h *helpOverlay) fail(err error) {
	h.err = err
	h.viewport.SetContent("help unavailable: " + err.Error())
}

// lineWidth is the printable width of the widest line of s.
func lineWidth(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, ansi.PrintableRuneWidth(line))
	}
	return w
}
