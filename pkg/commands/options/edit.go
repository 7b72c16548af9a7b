package options

import (
	"github.com/spf13/cobra"
)

// EditOptions
type EditOptions struct {
	Import string
	DryRun bool
}

func AddEditArgs(cmd *cobra.Command, o *EditOptions) {
	cmd.Flags().StringVarP(&o.Import, "import", "i", "",
		"File of new facts (toml, yaml or json) to review before saving.")
	AddDryRunArg(cmd, o)
}

func AddDryRunArg(cmd *cobra.Command, o *EditOptions) {
	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false,
		"Print the changes instead of saving them.")
}
