package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoubles(t *testing.T, values ...float64) string {
	t.Helper()
	p := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(p[8*i:], math.Float64bits(v))
	}
	path := filepath.Join(t.TempDir(), "double.bin")
	if err := os.WriteFile(path, p, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunWritesWAV(t *testing.T) {
	in := writeDoubles(t, 100, 200)
	out := t.TempDir()
	var stderr bytes.Buffer

	// flags on both sides of the positional argument
	code := run([]string{"-s", "8000", in, "-f", "1000", "-c", "1", "-o", out, "-plot=false"}, &stderr)
	if code != 0 {
		t.Fatalf("wrong exit code: expected: 0, actual: %v\n%s", code, stderr.String())
	}

	info, err := os.Stat(filepath.Join(out, "pulse150_count1_carrier1000.wav"))
	if err != nil {
		t.Fatalf("wav not written: %v", err)
	}
	// 80 + 40 int16 samples after the header
	if info.Size() != 44+2*120 {
		t.Fatalf("wrong file size: expected: %v, actual: %v", 44+2*120, info.Size())
	}
	if _, err := os.Stat(filepath.Join(out, "pulse150_count1_carrier1000_waveform.png")); !os.IsNotExist(err) {
		t.Fatalf("plot should not be written, stat error: %v", err)
	}
}

func TestRunMissingPath(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"-f", "1000"}, &stderr); code != 1 {
		t.Fatalf("wrong exit code: expected: 1, actual: %v", code)
	}
	if !strings.Contains(stderr.String(), "usage:") {
		t.Fatalf("usage not printed:\n%s", stderr.String())
	}
}

func TestRunHelp(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"-h"}, &stderr); code != 0 {
		t.Fatalf("wrong exit code: expected: 0, actual: %v", code)
	}
}

func TestRunRejectsNegativeSilence(t *testing.T) {
	// 4000 Hz leaves a 20 sample slot for a 40 sample burst
	in := writeDoubles(t, 4000)
	var stderr bytes.Buffer
	code := run([]string{in, "-s", "80000", "-f", "2000", "-o", t.TempDir(), "-plot=false"}, &stderr)
	if code != 1 {
		t.Fatalf("wrong exit code: expected: 1, actual: %v", code)
	}
	if !strings.Contains(stderr.String(), "symbol 0") {
		t.Fatalf("error doesn't name the symbol:\n%s", stderr.String())
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	preset := filepath.Join(t.TempDir(), "preset.yaml")
	yaml := "sample_rate: 80000\ncarrier: 501\ncount: 32\nread: byte\n"
	if err := os.WriteFile(preset, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var (
		v      flagValues
		stderr bytes.Buffer
	)
	fs := newFlagSet(&stderr, &v)
	if _, err := parseArgs(fs, []string{"-config", preset, "-count", "4", "in.bin"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := resolveConfig(fs, &v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SampleRate != 80000 || cfg.Carrier != 501 || cfg.Read != "byte" {
		t.Fatalf("preset values lost: %+v", cfg)
	}
	if cfg.Count != 4 {
		t.Fatalf("explicit flag should override the preset: expected: 4, actual: %v", cfg.Count)
	}
	if cfg.Times != 1 || cfg.Mode != "int16" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestResolveConfigInvalid(t *testing.T) {
	var (
		v      flagValues
		stderr bytes.Buffer
	)
	fs := newFlagSet(&stderr, &v)
	if _, err := parseArgs(fs, []string{"-m", "int8", "-t", "0", "in.bin"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := resolveConfig(fs, &v); err == nil {
		t.Fatal("expected an error")
	}
}
