// Package config loads engine configuration with viper, following the
// defaults-then-file-then-env layering pattern and optional fsnotify
// hot-reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EngineConfig is the full configuration surface for constructing a game
// engine: board dimensions, network-solver toggles, and per-turn budgets.
type EngineConfig struct {
	Board   BoardConfig   `mapstructure:"board"`
	Network NetworkConfig `mapstructure:"network"`
	Turn    TurnConfig    `mapstructure:"turn"`
}

// BoardConfig holds board dimensions.
type BoardConfig struct {
	Height int `mapstructure:"height"`
	Width  int `mapstructure:"width"`
}

// NetworkConfig holds line-of-communication solver toggles.
type NetworkConfig struct {
	Enabled                   bool `mapstructure:"enabled"`
	RelayAdjacencyRebroadcast bool `mapstructure:"relay_adjacency_rebroadcast"`
}

// TurnConfig holds per-turn budgets and the retreat-support open-question
// decision.
type TurnConfig struct {
	MaxMovesPerTurn           int  `mapstructure:"max_moves_per_turn"`
	MaxAttacksPerTurn         int  `mapstructure:"max_attacks_per_turn"`
	RetreatingUnitsCanSupport bool `mapstructure:"retreating_units_can_support"`
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("board.height", 20)
	v.SetDefault("board.width", 25)

	v.SetDefault("network.enabled", false)
	v.SetDefault("network.relay_adjacency_rebroadcast", true)

	v.SetDefault("turn.max_moves_per_turn", 5)
	v.SetDefault("turn.max_attacks_per_turn", 1)
	v.SetDefault("turn.retreating_units_can_support", true)
}

// Init loads defaults, then an optional config file at path, then
// KRIEGSPIEL_-prefixed environment overrides, and validates the result.
// An empty path falls back to searching "./config.yaml" and
// "/etc/kriegspiel/config.yaml"; a missing file at that point, or a
// non-existent explicit path, is not an error, since defaults alone are a
// valid configuration. Nested keys map to environment variables with "."
// replaced by "_" (board.height -> KRIEGSPIEL_BOARD_HEIGHT).
func Init(path string) (*EngineConfig, error) {
	v := viper.New()
	setViperDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/kriegspiel")
	}

	v.SetEnvPrefix("KRIEGSPIEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &EngineConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configuration values the engine cannot run with.
func Validate(c *EngineConfig) error {
	if c.Board.Height <= 0 || c.Board.Width <= 0 {
		return fmt.Errorf("board dimensions must be positive")
	}
	if c.Turn.MaxMovesPerTurn <= 0 {
		return fmt.Errorf("turn.max_moves_per_turn must be positive")
	}
	if c.Turn.MaxAttacksPerTurn <= 0 {
		return fmt.Errorf("turn.max_attacks_per_turn must be positive")
	}
	return nil
}

// Watcher wraps a viper instance so callers can hot-reload a config file
// and react to changes, mirroring the teacher's WatchConfig but scoped to
// one loaded instance instead of a package-global.
type Watcher struct {
	v        *viper.Viper
	path     string
	onChange func(*EngineConfig, error)
}

// NewWatcher loads path once and returns a Watcher that can start
// filesystem-notify based hot-reload for it. path must be non-empty since
// there is nothing to watch when configuration comes purely from
// defaults and environment variables.
func NewWatcher(path string) (*Watcher, *EngineConfig, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("config: watcher requires a file path")
	}
	v := viper.New()
	setViperDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("KRIEGSPIEL")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &EngineConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}
	return &Watcher{v: v, path: path}, cfg, nil
}

// Watch begins hot-reloading the underlying file; onChange fires with the
// freshly decoded config on every write, or with a non-nil error if the
// new file fails to decode or validate (the previously loaded config is
// left untouched by the caller in that case).
func (w *Watcher) Watch(onChange func(*EngineConfig, error)) {
	w.onChange = onChange
	w.v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := &EngineConfig{}
		err := w.v.Unmarshal(cfg)
		if err == nil {
			err = Validate(cfg)
		}
		if w.onChange != nil {
			if err != nil {
				w.onChange(nil, err)
				return
			}
			w.onChange(cfg, nil)
		}
	})
	w.v.WatchConfig()
}
