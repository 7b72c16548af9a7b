package options

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tableflip.dev/factlog/pkg/store"
)

// LogOptions
type LogOptions struct {
	Level string
	File  string
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "",
		"Log level, overrides log.level from config.")
	cmd.PersistentFlags().StringVar(&o.File, "log-file", "",
		"Log file, overrides log.file from config.")
}

// Logger builds a logger writing JSON lines to the configured file. The UI
// owns the terminal, so without a file nothing is logged.
func (o *LogOptions) Logger(s *store.Settings) (*zap.Logger, error) {
	level, file := s.LogLevel, s.LogFile
	if o.Level != "" {
		level = o.Level
	}
	if o.File != "" {
		file = o.File
	}
	if file == "" {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{file}
	cfg.ErrorOutputPaths = []string{file}
	return cfg.Build()
}
