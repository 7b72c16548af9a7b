package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/factlog/pkg/commands/options"
	"tableflip.dev/factlog/pkg/store"
)

var (
	so = &options.StoreOptions{}
	lo = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "factlog",
		Short: base.Wrap80("Review and edit tracked time facts on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	options.AddStoreArgs(cmd, so)
	options.AddLogArgs(cmd, lo)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addEdit(topLevel)
	addImport(topLevel)
	addList(topLevel)
	addVersion(topLevel)
}

func loadStore() (store.Persistence, error) {
	cfg, err := so.Config()
	if err != nil {
		return nil, err
	}
	return store.Load(cfg)
}
