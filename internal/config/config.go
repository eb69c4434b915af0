// Package config loads corpusprep settings from defaults, an optional YAML
// file, CORPUSPREP_* environment variables and command-line flags.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/feature"
	"github.com/ieee0824/corpusprep/normalize"
)

// EnvPrefix prefixes environment overrides, e.g. CORPUSPREP_OUT_PATH.
const EnvPrefix = "CORPUSPREP"

// Config is the decoded configuration of one run.
type Config struct {
	DataPath     string            `mapstructure:"data-path"`
	OutPath      string            `mapstructure:"out-path"`
	Tool         string            `mapstructure:"tool"`
	Normalize    string            `mapstructure:"normalize"`
	Feature      feature.Config    `mapstructure:"feature"`
	SilDuration  int               `mapstructure:"sil-duration"`
	MinFreq      int               `mapstructure:"min-freq"`
	PhoneMap     string            `mapstructure:"phone-map"`
	SpeakerLists map[string]string `mapstructure:"speaker-lists"`
	Overwrite    bool              `mapstructure:"overwrite"`
	Quiet        bool              `mapstructure:"quiet"`
	LogLevel     string            `mapstructure:"log-level"`
}

// SetDefaults registers every key with its default value so environment
// variables can override it.
func SetDefaults(v *viper.Viper) {
	fc := feature.DefaultConfig()
	v.SetDefault("data-path", "")
	v.SetDefault("out-path", "")
	v.SetDefault("tool", feature.ToolHTK)
	v.SetDefault("normalize", string(normalize.Global))
	v.SetDefault("feature.type", fc.Type)
	v.SetDefault("feature.channels", fc.Channels)
	v.SetDefault("feature.sample-rate", fc.SampleRate)
	v.SetDefault("feature.window", fc.WindowMs)
	v.SetDefault("feature.slide", fc.SlideMs)
	v.SetDefault("feature.energy", fc.Energy)
	v.SetDefault("feature.delta", fc.Delta)
	v.SetDefault("feature.deltadelta", fc.DeltaDelta)
	v.SetDefault("feature.preemph", fc.PreEmphCoeff)
	v.SetDefault("feature.cepstra", fc.NumCepstra)
	v.SetDefault("feature.lifter", fc.CepLifter)
	v.SetDefault("sil-duration", 50)
	v.SetDefault("min-freq", 1)
	v.SetDefault("phone-map", "")
	v.SetDefault("overwrite", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log-level", "info")
}

// New returns a viper instance with defaults and environment binding.
// A non-empty file is read as the YAML config layer.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, errors.Wrap(err, "decode config")
	}
	return c, c.Validate()
}

// Validate reports configuration errors before any stage runs.
func (c Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("config: data-path is required")
	}
	if c.OutPath == "" {
		return errors.New("config: out-path is required")
	}
	switch c.Tool {
	case feature.ToolHTK:
	case feature.ToolWAV:
		if err := c.Feature.Validate(); err != nil {
			return err
		}
	default:
		return errors.Wrapf(feature.ErrUnknownTool, "config: tool %q", c.Tool)
	}
	if _, err := normalize.ParseScheme(c.Normalize); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.SilDuration < 0 {
		return errors.Errorf("config: sil-duration %d is negative", c.SilDuration)
	}
	if c.MinFreq < 0 {
		return errors.Errorf("config: min-freq %d is negative", c.MinFreq)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// AudioExt is the extension of the feature source files for the tool.
func (c Config) AudioExt() string {
	if c.Tool == feature.ToolHTK {
		return ".htk"
	}
	return ".wav"
}

// Partitions converts the speaker-list keys to partitions.
func (c Config) Partitions() map[corpus.Partition]string {
	out := make(map[corpus.Partition]string, len(c.SpeakerLists))
	for p, path := range c.SpeakerLists {
		out[corpus.Partition(p)] = path
	}
	return out
}
