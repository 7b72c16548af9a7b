// Package edit runs an interactive edit session over the store.
package edit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/importer"
	"tableflip.dev/factlog/pkg/printers"
	"tableflip.dev/factlog/pkg/store"
	"tableflip.dev/factlog/pkg/traverser"
	"tableflip.dev/factlog/pkg/tui/carousel"
)

// ErrNotTerminal is returned when stdout cannot host the UI.
var ErrNotTerminal = errors.New("edit: stdout is not a terminal")

// Edit opens the fact carousel, optionally over a file of new facts, and
// saves what the user changed.
type Edit struct {
	Persistence store.Persistence
	Settings    store.Settings
	// ImportPath names a file of new facts to review and save.
	ImportPath string
	// DryRun prints the changes instead of saving them.
	DryRun bool
	Log    *zap.Logger
	Out    io.Writer

	isTerminal func() bool
	runUI      func(ctx context.Context, m *carousel.Model, events <-chan store.Event) error
	confirm    func(label string) (bool, error)
}

// Do runs the session to completion.
func (e *Edit) Do(ctx context.Context) error {
	if e.Persistence == nil {
		return errors.New("edit: no persistence")
	}
	e.defaults()
	if !e.isTerminal() {
		return ErrNotTerminal
	}

	log := e.Log.With(zap.String("session", uuid.NewString()))
	var working []*fact.Fact
	if e.ImportPath != "" {
		var err error
		if working, err = importer.Load(e.ImportPath); err != nil {
			return err
		}
		log.Info("imported facts", zap.String("path", e.ImportPath), zap.Int("facts", len(working)))
	}

	session, err := traverser.NewEditSession(e.Persistence, working, nil,
		traverser.WithLogger(log),
		traverser.WithDirtyCallback(func(s *traverser.EditSession) {
			log.Debug("dirty changed", zap.Bool("dirty", s.IsDirty()))
		}),
	)
	if err != nil {
		return err
	}
	if err := session.StandUp(ctx); err != nil {
		return err
	}

	model := carousel.New(ctx, session, carousel.Options{
		Nudge:    e.Settings.Nudge,
		NudgeBig: e.Settings.NudgeBig,
		Logger:   log,
	})
	if err := e.run(ctx, model, log); err != nil {
		return err
	}

	if !session.IsDirty() {
		return nil
	}
	prepared := session.PreparedFacts()
	pp := printers.PrettyPrint{Out: e.Out}
	for _, f := range prepared {
		orig := f.Original()
		if f.Unstored() {
			orig = nil
		}
		pp.Diff(orig, f)
	}
	if model.Outcome() != carousel.Save {
		ok, err := e.confirm(fmt.Sprintf("Save %d changed facts", len(prepared)))
		if err != nil || !ok {
			_, _ = fmt.Fprintln(e.Out, "changes discarded")
			return nil
		}
	}
	if e.DryRun {
		_, _ = fmt.Fprintln(e.Out, "dry run, nothing saved")
		return nil
	}
	saved, err := e.Persistence.Save(ctx, prepared)
	if err != nil {
		return err
	}
	log.Info("saved", zap.Int("facts", len(saved)))
	_, _ = fmt.Fprintf(e.Out, "saved %d facts\n", len(saved))
	return nil
}

// run drives the UI while forwarding store changes into it. Both stop as
// soon as the UI exits.
func (e *Edit) run(ctx context.Context, model *carousel.Model, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := e.Persistence.Watch(ctx)
	if err != nil {
		// The session works without change notices.
		log.Warn("store watch unavailable", zap.Error(err))
	}
	return e.runUI(ctx, model, events)
}

func (e *Edit) defaults() {
	if e.Log == nil {
		e.Log = zap.NewNop()
	}
	if e.Out == nil {
		e.Out = color.Output
	}
	if e.isTerminal == nil {
		e.isTerminal = func() bool {
			fd := os.Stdout.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		}
	}
	if e.runUI == nil {
		e.runUI = runProgram
	}
	if e.confirm == nil {
		e.confirm = confirm
	}
}

func runProgram(ctx context.Context, model *carousel.Model, events <-chan store.Event) error {
	ctx, cancel := context.WithCancel(ctx)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		forward(gctx, events, p.Send)
		return nil
	})
	return g.Wait()
}

// forward turns store events into carousel messages until ctx is done or
// events closes.
func forward(ctx context.Context, events <-chan store.Event, send func(tea.Msg)) {
	if events == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg := carousel.ExternalChangeMsg{}
			if ev.Type == store.EventFactChanged {
				msg.PK = ev.PK
			}
			send(msg)
		}
	}
}

func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
