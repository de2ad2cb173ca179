// Package config loads encoder presets from YAML files.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/faiface/pim"
	"github.com/faiface/pim/symbols"
)

// Config holds every setting of an encoding run.
type Config struct {
	SampleRate int     `yaml:"sample_rate"`
	Carrier    float64 `yaml:"carrier"`
	Count      int     `yaml:"count"`
	Times      int     `yaml:"times"`
	Read       string  `yaml:"read"`
	Mode       string  `yaml:"mode"`
	OutputDir  string  `yaml:"output_dir"`
	WAV        bool    `yaml:"wav"`
	Plot       bool    `yaml:"plot"`
	LogLevel   string  `yaml:"log_level"`
}

// Default returns the settings used when neither a file nor a flag sets a value.
func Default() *Config {
	return &Config{
		SampleRate: 44000,
		Carrier:    2000,
		Count:      1,
		Times:      1,
		Read:       "double",
		Mode:       "int16",
		OutputDir:  "output",
		WAV:        true,
		Plot:       true,
		LogLevel:   "info",
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: open %q", path)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config: parse %q", path)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the result. Unknown keys
// are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "config: decode yaml")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and returns all failures combined.
func Validate(cfg *Config) error {
	var err error
	if cfg.SampleRate <= 0 {
		err = multierr.Append(err, errors.Errorf("sample_rate must be positive, got %d", cfg.SampleRate))
	}
	if cfg.Carrier <= 0 {
		err = multierr.Append(err, errors.Errorf("carrier must be positive, got %v", cfg.Carrier))
	}
	if cfg.Count < 1 {
		err = multierr.Append(err, errors.Errorf("count must be at least 1, got %d", cfg.Count))
	}
	if cfg.Times < 1 {
		err = multierr.Append(err, errors.Errorf("times must be at least 1, got %d", cfg.Times))
	}
	if _, perr := symbols.ParseKind(cfg.Read); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, perr := pim.ParseMode(cfg.Mode); perr != nil {
		err = multierr.Append(err, perr)
	}
	if strings.TrimSpace(cfg.OutputDir) == "" && (cfg.WAV || cfg.Plot) {
		err = multierr.Append(err, errors.New("output_dir must be set when wav or plot output is enabled"))
	}
	if _, perr := zapcore.ParseLevel(cfg.LogLevel); perr != nil {
		err = multierr.Append(err, errors.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// Kind returns the parsed record type. Call only on a validated Config.
func (c *Config) Kind() symbols.Kind {
	k, _ := symbols.ParseKind(c.Read)
	return k
}

// SampleMode returns the parsed sample mode. Call only on a validated Config.
func (c *Config) SampleMode() pim.Mode {
	m, _ := pim.ParseMode(c.Mode)
	return m
}

// Level returns the parsed log level. Call only on a validated Config.
func (c *Config) Level() zapcore.Level {
	l, _ := zapcore.ParseLevel(c.LogLevel)
	return l
}
