package options

import (
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"tableflip.dev/factlog/pkg/store"
)

// StoreOptions
type StoreOptions struct {
	Path string
}

func AddStoreArgs(cmd *cobra.Command, o *StoreOptions) {
	cmd.PersistentFlags().StringVar(&o.Path, "store", "",
		"Store directory, overrides path from config.")
}

// Config returns the flag's store location, or nil to read it from config.
func (o *StoreOptions) Config() (store.Config, error) {
	if o.Path == "" {
		return nil, nil
	}
	path, err := homedir.Expand(o.Path)
	if err != nil {
		return nil, err
	}
	return store.StaticConfig(path), nil
}
