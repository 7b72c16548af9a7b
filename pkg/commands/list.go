package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/factlog/pkg/commands/options"
	"tableflip.dev/factlog/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   base.Wrap80("List stored facts from a window of time."),
		Example: `
factlog list
factlog list --window 2d --pk
factlog list --window 4w --calendar
factlog list --until 2024-03-01 --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			span, err := wo.Span()
			if err != nil {
				return oo.HandleError(err)
			}
			until, err := wo.End()
			if err != nil {
				return oo.HandleError(err)
			}
			p, err := loadStore()
			if err != nil {
				return oo.HandleError(err)
			}
			l := list.List{
				Persistence: p,
				Window:      span,
				Until:       until,
				ShowPK:      wo.ShowPK,
				Calendar:    wo.Calendar,
				JSON:        oo.JSON,
			}
			err = l.Do(context.Background())
			return oo.HandleError(err)
		},
	}

	options.AddWindowArgs(cmd, wo)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
