package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/factlog/pkg/commands/options"
	"tableflip.dev/factlog/pkg/runner/edit"
	"tableflip.dev/factlog/pkg/store"
)

func addEdit(topLevel *cobra.Command) {
	eo := &options.EditOptions{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: base.Wrap80("Walk the stored facts and fix their times, meta and gaps."),
		Example: `
factlog edit
factlog edit --import today.yaml
factlog edit --dry-run
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), eo)
		},
	}

	options.AddEditArgs(cmd, eo)
	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command) {
	eo := &options.EditOptions{}

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: base.Wrap80("Review a file of new facts and save them."),
		Example: `
factlog import today.toml
factlog import week.json --dry-run
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eo.Import = args[0]
			return runEdit(cmd.Context(), eo)
		},
	}

	options.AddDryRunArg(cmd, eo)
	topLevel.AddCommand(cmd)
}

func runEdit(ctx context.Context, eo *options.EditOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := loadStore()
	if err != nil {
		return err
	}
	settings, err := store.LoadSettings()
	if err != nil {
		return err
	}
	log, err := lo.Logger(settings)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	e := edit.Edit{
		Persistence: p,
		Settings:    *settings,
		ImportPath:  eo.Import,
		DryRun:      eo.DryRun,
		Log:         log,
	}
	return e.Do(ctx)
}
