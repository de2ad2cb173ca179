package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/faiface/pim"
	"github.com/faiface/pim/config"
	"github.com/faiface/pim/symbols"
)

func TestDefaultIsValid(t *testing.T) {
	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(`
sample_rate: 80000
carrier: 501
count: 32
read: byte
mode: float
plot: false
log_level: debug
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SampleRate != 80000 || cfg.Carrier != 501 || cfg.Count != 32 || cfg.Plot {
		t.Fatalf("values not loaded: %+v", cfg)
	}
	if cfg.Times != 1 || cfg.OutputDir != "output" || !cfg.WAV {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if cfg.Kind() != symbols.Byte || cfg.SampleMode() != pim.Float || cfg.Level() != zapcore.DebugLevel {
		t.Fatalf("wrong parsed values: %v %v %v", cfg.Kind(), cfg.SampleMode(), cfg.Level())
	}
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != *config.Default() {
		t.Fatalf("empty file should yield defaults: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	if _, err := config.LoadFromReader(strings.NewReader("carier: 2000\n")); err == nil {
		t.Fatal("unknown key should be rejected")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := config.Default()
	cfg.SampleRate = 0
	cfg.Carrier = -1
	cfg.Count = 0
	cfg.Times = 0
	cfg.Read = "int"
	cfg.Mode = "int8"
	cfg.LogLevel = "loud"

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected an error")
	}
	if n := len(multierr.Errors(errors.Cause(err))); n != 7 {
		t.Fatalf("expected 7 errors, got %d: %v", n, err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, []byte("times: 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Times != 3 {
		t.Fatalf("wrong times: %v", cfg.Times)
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}
