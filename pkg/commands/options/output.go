package options

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out receives rendered errors, color.Output when nil.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError renders err as {"error": ...} in JSON mode and swallows it so
// the command still exits cleanly for scripts.
func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		b, err := json.Marshal(map[string]string{
			"error": err.Error(),
		})
		if err != nil {
			return err
		}
		out := o.Out
		if out == nil {
			out = color.Output
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil
	}
	return err
}
