// Package carousel is the terminal UI of an edit session: one fact at a time,
// with keys to walk the timeline, nudge times, and undo.
package carousel

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/traverser"
	"tableflip.dev/factlog/pkg/tui/theme"
)

// Outcome is how the user left the carousel.
type Outcome int

const (
	// Quit leaves without saving; the caller may still ask about changes.
	Quit Outcome = iota
	// Save asks the caller to write the prepared facts.
	Save
)

// ExternalChangeMsg tells the carousel the store was changed by someone
// else. PK is zero when the change could not be tied to one fact.
type ExternalChangeMsg struct {
	PK int64
}

type errMsg struct{ err error }

// Options tune the carousel.
type Options struct {
	// Nudge and NudgeBig are the steps of time adjustments.
	Nudge    time.Duration
	NudgeBig time.Duration
	Logger   *zap.Logger
}

// Model holds the UI state around an edit session.
type Model struct {
	session *traverser.EditSession
	ctx     context.Context
	log     *zap.Logger
	theme   theme.Theme
	keys    keyMap
	help    help.Model

	nudge    time.Duration
	nudgeBig time.Duration
	big      bool

	overlay *helpOverlay
	status  string
	err     error
	outcome Outcome

	width  int
	height int
}

// New returns a model driving session.
func New(ctx context.Context, session *traverser.EditSession, o Options) *Model {
	if o.Nudge <= 0 {
		o.Nudge = time.Minute
	}
	if o.NudgeBig <= 0 {
		o.NudgeBig = 15 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	m := &Model{
		session:  session,
		ctx:      ctx,
		log:      o.Logger,
		theme:    theme.Default(),
		keys:     defaultKeys(),
		help:     help.New(),
		nudge:    o.Nudge,
		nudgeBig: o.NudgeBig,
		width:    80,
		height:   24,
	}
	if n := session.Unviewed(); n > 0 {
		m.status = fmt.Sprintf("%d new facts to review", n)
	}
	return m
}

// Outcome reports how the user left.
func (m *Model) Outcome() Outcome {
	return m.outcome
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.overlay != nil {
			m.overlay.setSize(m.width, m.height-2)
		}
	case errMsg:
		m.err = msg.err
	case ExternalChangeMsg:
		if msg.PK == 0 {
			m.status = "the store changed on disk"
		} else {
			m.status = fmt.Sprintf("fact #%d changed on disk", msg.PK)
		}
	case tea.KeyPressMsg:
		if m.overlay != nil {
			return m, m.updateHelp(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) updateHelp(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "?", "esc", "q":
		m.overlay = nil
		return nil
	}
	return m.overlay.update(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	m.err = nil
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Prev):
		m.moved(s.JumpFactDec(m.ctx))
	case key.Matches(msg, m.keys.Next):
		m.moved(s.JumpFactInc(m.ctx))
	case key.Matches(msg, m.keys.First):
		m.moved(s.JumpRiftDec(m.ctx))
	case key.Matches(msg, m.keys.Last):
		m.moved(s.JumpRiftInc(m.ctx))
	case key.Matches(msg, m.keys.DayBack):
		m.moved(s.JumpDayDec(m.ctx))
	case key.Matches(msg, m.keys.DayForward):
		m.moved(s.JumpDayInc(m.ctx))
	case key.Matches(msg, m.keys.StartEarly):
		m.adjust(-m.step(), traverser.AdjustStart)
	case key.Matches(msg, m.keys.StartLate):
		m.adjust(m.step(), traverser.AdjustStart)
	case key.Matches(msg, m.keys.EndEarly):
		m.adjust(-m.step(), traverser.AdjustEnd)
	case key.Matches(msg, m.keys.EndLate):
		m.adjust(m.step(), traverser.AdjustEnd)
	case key.Matches(msg, m.keys.BothEarly):
		m.adjust(-m.step(), traverser.AdjustStart, traverser.AdjustEnd)
	case key.Matches(msg, m.keys.BothLate):
		m.adjust(m.step(), traverser.AdjustStart, traverser.AdjustEnd)
	case key.Matches(msg, m.keys.BigStep):
		m.big = !m.big
		m.status = "nudge step " + m.step().String()
	case key.Matches(msg, m.keys.Undo):
		if !s.UndoLastEdit() {
			m.status = "nothing to undo"
		} else {
			m.status = "undone"
		}
	case key.Matches(msg, m.keys.Redo):
		if !s.RedoLastUndo() {
			m.status = "nothing to redo"
		} else {
			m.status = "redone"
		}
	case key.Matches(msg, m.keys.Copy):
		s.CopyFact()
		m.status = "copied"
	case key.Matches(msg, m.keys.CopyAct):
		s.CopyActivity()
		m.status = "copied activity"
	case key.Matches(msg, m.keys.CopyTags):
		s.CopyTags()
		m.status = "copied tags"
	case key.Matches(msg, m.keys.CopyDesc):
		s.CopyDescription()
		m.status = "copied description"
	case key.Matches(msg, m.keys.Paste):
		if what := s.PasteCopiedMeta(); what == "" {
			m.status = "nothing copied"
		} else {
			m.status = "pasted " + what
		}
	case key.Matches(msg, m.keys.Delete):
		s.ToggleDeleted()
		if s.CurrentFact().Deleted {
			m.status = "deleted"
		} else {
			m.status = "restored"
		}
	case key.Matches(msg, m.keys.Save):
		if !s.UserViewedAllNewFacts() {
			m.status = fmt.Sprintf("review all new facts before saving, %d to go", s.Unviewed())
			return nil
		}
		m.outcome = Save
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = newHelpOverlay(m.theme.Help, m.width, m.height-2)
	case key.Matches(msg, m.keys.Quit):
		m.outcome = Quit
		return tea.Quit
	}
	return nil
}

func (m *Model) step() time.Duration {
	if m.big {
		return m.nudgeBig
	}
	return m.nudge
}

func (m *Model) moved(f *fact.Fact, err error) {
	switch {
	case err != nil:
		m.err = err
		m.log.Warn("move failed", zap.Error(err))
	case f == nil:
		m.status = "no more facts that way"
	default:
		m.status = ""
	}
}

func (m *Model) adjust(delta time.Duration, endpoints ...traverser.Endpoint) {
	if err := m.session.EditTimeAdjust(m.ctx, delta, endpoints...); err != nil {
		m.err = err
		m.log.Warn("time adjust failed", zap.Error(err))
		return
	}
	what := string(endpoints[0])
	if len(endpoints) > 1 {
		what = "fact"
	}
	m.status = fmt.Sprintf("%s %+v", what, delta)
}
