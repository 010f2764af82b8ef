package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CORTEX_*)
// 2. Config file (.cortex/config.yml or .cortex/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".cortex")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CORTEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("roots")
	v.BindEnv("scanner.max_file_size")
	v.BindEnv("scanner.follow_symlinks")
	v.BindEnv("embedding.provider")
	v.BindEnv("embedding.model")
	v.BindEnv("embedding.dimensions")
	v.BindEnv("export.chunk_words")
	v.BindEnv("export.output_dir")
	v.BindEnv("storage.db_path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("roots", defaults.Roots)

	v.SetDefault("scanner.max_file_size", defaults.Scanner.MaxFileSize)
	v.SetDefault("scanner.supported_extensions", defaults.Scanner.SupportedExtensions)
	v.SetDefault("scanner.ignore_dirs", defaults.Scanner.IgnoreDirs)
	v.SetDefault("scanner.follow_symlinks", defaults.Scanner.FollowSymlinks)

	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.model", defaults.Embedding.Model)
	v.SetDefault("embedding.dimensions", defaults.Embedding.Dimensions)

	v.SetDefault("export.chunk_words", defaults.Export.ChunkWords)
	v.SetDefault("export.output_dir", defaults.Export.OutputDir)

	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
}

// defaultDBPath returns ${HOME}/.cortex/db.sqlite, falling back to a relative
// path if the home directory cannot be resolved.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cortex", "db.sqlite")
	}
	return filepath.Join(home, ".cortex", "db.sqlite")
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
