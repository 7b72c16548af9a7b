package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/factlog/pkg/timeutil"
)

// Config locates the store on disk.
type Config interface {
	BasePath() string
}

// Settings are the user preferences read alongside the store location.
type Settings struct {
	Nudge    time.Duration
	NudgeBig time.Duration
	LogLevel string
	LogFile  string
}

// LoadConfig reads .factlog.yaml from $FACTLOG_CONFIG_PATH, the working
// directory or the home directory, with FACTLOG_* environment overrides.
func LoadConfig() (Config, error) {
	if err := readConfig(); err != nil {
		return nil, err
	}
	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	return &fileConfig{Path: path}, nil
}

// LoadSettings reads the nudge steps and logging preferences.
func LoadSettings() (*Settings, error) {
	if err := readConfig(); err != nil {
		return nil, err
	}
	nudge, _, err := timeutil.ParseSpan(viper.GetString("nudge"))
	if err != nil {
		return nil, fmt.Errorf("store: nudge: %w", err)
	}
	nudgeBig, _, err := timeutil.ParseSpan(viper.GetString("nudge_big"))
	if err != nil {
		return nil, fmt.Errorf("store: nudge_big: %w", err)
	}
	logFile, err := homedir.Expand(viper.GetString("log.file"))
	if err != nil {
		return nil, fmt.Errorf("store: expand log.file: %w", err)
	}
	return &Settings{
		Nudge:    nudge,
		NudgeBig: nudgeBig,
		LogLevel: viper.GetString("log.level"),
		LogFile:  logFile,
	}, nil
}

func readConfig() error {
	viper.SetDefault("path", "~/.factlog.db")
	viper.SetDefault("nudge", "1m")
	viper.SetDefault("nudge_big", "15m")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")
	viper.SetConfigName(".factlog") // .yaml is implicit
	viper.SetEnvPrefix("FACTLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("FACTLOG_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("store: read config: %w", err)
		}
	}
	return nil
}

type fileConfig struct {
	Path string `json:"path"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}

// StaticConfig is a Config fixed in code, as used by tests and flags.
type StaticConfig string

func (c StaticConfig) BasePath() string {
	return string(c)
}
