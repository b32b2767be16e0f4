package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/paths"
)

const (
	// EnvPrefix prefixes every environment override
	EnvPrefix = "FSBRIDGE_"
)

// LoadOptions selects the sources Load reads
type LoadOptions struct {
	// File is an explicit config file. When empty the default XDG
	// location is used if it exists.
	File string

	// Overrides are flat koanf keys ("log.verbosity") applied last.
	Overrides map[string]interface{}
}

// DefaultFilePath returns $XDG_CONFIG_HOME/fsbridge/config.toml
func DefaultFilePath() string {
	return paths.ConfigFile()
}

// Load merges defaults, config file, environment and overrides
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	path := paths.ExpandHome(opts.File)
	required := path != ""
	if path == "" {
		path = DefaultFilePath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
	} else if required {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path).
			WithDetail("path", path)
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

func validate(cfg *Config) error {
	if cfg.Watch.Buffer <= 0 {
		return errors.Newf(errors.ErrConfigParse, "watch.buffer must be positive, got %d", cfg.Watch.Buffer)
	}
	if cfg.Bridge.Queue <= 0 {
		return errors.Newf(errors.ErrConfigParse, "bridge.queue must be positive, got %d", cfg.Bridge.Queue)
	}
	if cfg.Log.Verbosity < 0 {
		cfg.Log.Verbosity = 0
	}
	return nil
}
