// Package config loads the autoprice configuration from defaults, a YAML
// file, AUTOPRICE_ environment variables and command-line flags.
package config

import (
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/autoprice/pipeline"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// EnvPrefix is the prefix of environment variables read by Load.
// AUTOPRICE_N_ESTIMATORS sets n_estimators.
const EnvPrefix = "AUTOPRICE_"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "autoprice.yaml"

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the effective configuration of the CLI.
type Config struct {
	pipeline.Config `koanf:",squash" yaml:",inline"`

	// Data is the listings CSV. Empty with Synthetic > 0 generates data instead.
	Data      string `koanf:"data" yaml:"data"`
	Synthetic int    `koanf:"synthetic" yaml:"synthetic"`
	PlotsDir  string `koanf:"plots_dir" yaml:"plots_dir"`
	LogLevel  string `koanf:"log_level" yaml:"log_level"`
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// File is the config file that was read, if any.
	File string `koanf:"-" yaml:"-"`
}

func defaults() map[string]interface{} {
	d := pipeline.DefaultConfig()
	return map[string]interface{}{
		"sample_fraction":      d.SampleFraction,
		"price_min":            d.PriceMin,
		"price_max":            d.PriceMax,
		"impute_neighbors":     d.ImputeNeighbors,
		"outlier_threshold":    d.OutlierThreshold,
		"importance_threshold": d.ImportanceThreshold,
		"mi_neighbors":         d.MINeighbors,
		"test_fraction":        d.TestFraction,
		"n_estimators":         d.NEstimators,
		"max_depth":            d.MaxDepth,
		"learning_rate":        d.LearningRate,
		"loss":                 d.Loss,
		"seed":                 d.Seed,
		"current_year":         d.CurrentYear,
		"data":                 "",
		"synthetic":            0,
		"plots_dir":            "",
		"log_level":            "info",
		"log_format":           FormatConsole,
	}
}

// Load merges, lowest precedence first: defaults, the YAML file (cfgFile, or
// DefaultFile when present), AUTOPRICE_ environment variables, and the flags
// of flags that were set explicitly. Flag names are kebab-case versions of
// the keys. The result is not validated.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", cfgFile)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.File = cfgFile
	return &cfg, nil
}

// Validate checks the pipeline parameters and the logging settings.
func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return err
	}
	if !slices.Contains([]string{FormatJSON, FormatConsole}, c.LogFormat) {
		return errors.NewValidationError("log_format", "must be json or console", c.LogFormat)
	}
	if c.Synthetic < 0 {
		return errors.NewValidationError("synthetic", "must not be negative", c.Synthetic)
	}
	return nil
}

// ValidateSource checks that a data source is configured.
func (c *Config) ValidateSource() error {
	if c.Data == "" && c.Synthetic == 0 {
		return errors.NewValidationError("data", "a CSV path or a synthetic row count is required", c.Data)
	}
	return nil
}
