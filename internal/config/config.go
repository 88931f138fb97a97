// Package config loads runtime settings. Environment variables override the
// config file, which overrides the defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/agentic-research/bidsgraph/internal/codec"
)

// EnvPrefix prefixes environment overrides, e.g. BIDSGRAPH_CACHE_PINNED.
const EnvPrefix = "BIDSGRAPH"

type Config struct {
	// Schema is a schema description file; empty uses the embedded one.
	Schema string      `mapstructure:"schema"`
	Cache  CacheConfig `mapstructure:"cache"`
	Codec  CodecConfig `mapstructure:"codec"`
	Load   LoadConfig  `mapstructure:"load"`
}

type CacheConfig struct {
	// Pinned is the number of decoded file values kept alive regardless of
	// outside references. Zero leaves reclamation entirely to the collector.
	Pinned int `mapstructure:"pinned" validate:"gte=0,lte=1000000"`
}

type CodecConfig struct {
	// MmapThreshold is the JSON size in bytes from which files are memory-mapped.
	MmapThreshold int64 `mapstructure:"mmap_threshold" validate:"gte=0"`
}

type LoadConfig struct {
	IgnoreDerivatives bool     `mapstructure:"ignore_derivatives"`
	ExtraIgnore       []string `mapstructure:"extra_ignore" validate:"dive,required"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("cache.pinned", 0)
	v.SetDefault("codec.mmap_threshold", codec.DefaultMmapThreshold)
	v.SetDefault("load.ignore_derivatives", false)
	v.SetDefault("load.extra_ignore", []string{})
}

// Load reads the configuration into v. cfgFile, when set, must exist;
// otherwise bidsgraph.yaml is looked up in the working directory and in
// $HOME/.bidsgraph, and its absence is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bidsgraph"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("bidsgraph")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, errors.WithMessage(err, "failed to read config")
		}
		logrus.Debug("No config file found, using defaults and environment")
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Debug("Using config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithMessage(err, "failed to decode config")
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}
	return &cfg, nil
}
