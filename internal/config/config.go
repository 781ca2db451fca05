// Package config manages application configuration from files and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/acribbs/trnanalysis/internal/logging"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// EnvPrefix prefixes environment overrides, e.g. TRNANALYSIS_CATALOG_COLUMNS.
const EnvPrefix = "TRNANALYSIS"

// Config holds the application configuration.
type Config struct {
	// ExtraDirs are searched after the executable's directory and ../src.
	ExtraDirs []string `mapstructure:"search_path"`
	Catalog   struct {
		Columns     int  `mapstructure:"columns"`
		Dedupe      bool `mapstructure:"dedupe"`
		StripPrefix bool `mapstructure:"strip_prefix"`
	} `mapstructure:"catalog"`
	Runtimes []pipeline.Runtime `mapstructure:"runtimes"`
	LogLevel string             `mapstructure:"log_level"`
	Output   struct {
		Color bool `mapstructure:"color"`
	} `mapstructure:"output"`
}

// Load reads the configuration from ~/.trnanalysis/config.yaml and
// TRNANALYSIS_* environment variables. A missing file is not an error.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	for i, dir := range cfg.ExtraDirs {
		cfg.ExtraDirs[i] = expandHome(dir)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("search_path", []string{})
	viper.SetDefault("catalog.columns", pipeline.DefaultColumns)
	viper.SetDefault("catalog.dedupe", true)
	viper.SetDefault("catalog.strip_prefix", false)
	viper.SetDefault("runtimes", defaultRuntimes())
	viper.SetDefault("log_level", logging.DefaultLevel)
	viper.SetDefault("output.color", true)
}

func defaultRuntimes() []map[string]string {
	rts := make([]map[string]string, 0, len(pipeline.DefaultRuntimes))
	for _, rt := range pipeline.DefaultRuntimes {
		rts = append(rts, map[string]string{"ext": rt.Ext, "interpreter": rt.Interpreter})
	}
	return rts
}

// SearchPath returns the directories consulted for pipelines.
func (c *Config) SearchPath() pipeline.SearchPath {
	return pipeline.DefaultSearchPath(c.ExtraDirs...)
}

// Columns returns the catalog column count, never less than one.
func (c *Config) Columns() int {
	if c.Catalog.Columns < 1 {
		return pipeline.DefaultColumns
	}
	return c.Catalog.Columns
}

// DiscoverOptions returns the discovery settings for this configuration.
func (c *Config) DiscoverOptions(logger *log.Logger) pipeline.DiscoverOptions {
	return pipeline.DiscoverOptions{
		Runtimes:       c.Runtimes,
		KeepDuplicates: !c.Catalog.Dedupe,
		Logger:         logger,
	}
}

// Resolver returns a resolver over this configuration's search path.
func (c *Config) Resolver(stdio pipeline.Stdio, logger *log.Logger) *pipeline.DirResolver {
	return &pipeline.DirResolver{
		SearchPath: c.SearchPath(),
		Runtimes:   c.Runtimes,
		Stdio:      stdio,
		Logger:     logger,
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trnanalysis"
	}
	return filepath.Join(home, ".trnanalysis")
}

// Dir returns the configuration directory (~/.trnanalysis).
func Dir() string {
	return configDir()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
