// Package config loads the service configuration from a TOML file with
// sensible defaults for everything omitted.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultStorePath       = "schiller.db"
	defaultLogLevel        = "info"
	defaultImportSeparator = "|"
	defaultUserEnv         = "SCHILLER_USER"
	defaultPasswordEnv     = "SCHILLER_PASSWORD"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Store     StoreConfig     `toml:"store"`
	Logging   LoggingConfig   `toml:"logging"`
	Bootstrap BootstrapConfig `toml:"bootstrap"`
	Import    ImportConfig    `toml:"import"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// BootstrapConfig names the environment variables holding the initial
// administrative credential. The values themselves never live in the
// config file.
type BootstrapConfig struct {
	UserEnv     string `toml:"user_env"`
	PasswordEnv string `toml:"password_env"`
}

type ImportConfig struct {
	Path      string `toml:"path"`
	Separator string `toml:"separator"`
}

func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Path: defaultStorePath,
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
			File:  "",
		},
		Bootstrap: BootstrapConfig{
			UserEnv:     defaultUserEnv,
			PasswordEnv: defaultPasswordEnv,
		},
		Import: ImportConfig{
			Path:      "",
			Separator: defaultImportSeparator,
		},
	}
}

// Load reads the config file at path, if present, over the defaults. A
// missing file is not an error; a malformed or invalid one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config file %q: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("%w: store.path must not be empty", ErrInvalidConfig)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level must be one of debug, info, warn, error", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Bootstrap.UserEnv) == "" || strings.TrimSpace(cfg.Bootstrap.PasswordEnv) == "" {
		return fmt.Errorf("%w: bootstrap env variable names must not be empty", ErrInvalidConfig)
	}
	if cfg.Import.Separator == "" {
		return fmt.Errorf("%w: import.separator must not be empty", ErrInvalidConfig)
	}
	return nil
}
