package encoder_test

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/faiface/pim"
	"github.com/faiface/pim/encoder"
	"github.com/faiface/pim/wav"
	"github.com/faiface/pim/waveform"
)

func TestAverageFrequency(t *testing.T) {
	cases := []struct {
		symbols []float64
		want    int
	}{
		{[]float64{500}, 500},
		{[]float64{500, 501}, 500}, // 500.5 rounds to even
		{[]float64{501, 502}, 502}, // 501.5 rounds to even
		{[]float64{100, 200, 400}, 233},
	}
	for _, c := range cases {
		got, err := encoder.AverageFrequency(c.symbols)
		if err != nil || got != c.want {
			t.Fatalf("AverageFrequency(%v) = %v, %v; expected %v", c.symbols, got, err, c.want)
		}
	}
	if _, err := encoder.AverageFrequency(nil); err == nil {
		t.Fatal("average of no symbols should fail")
	}
}

func TestAverageIgnoresRepeat(t *testing.T) {
	symbols := []float64{500, 250, 400}
	var names []string
	for repeat := 1; repeat <= 3; repeat++ {
		opts := encoder.DefaultOptions()
		opts.Repeat = repeat
		res, err := encoder.Encode(2000, symbols, 80000, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.AverageFrequency != 383 {
			t.Fatalf("wrong average with %d repeats: %v", repeat, res.AverageFrequency)
		}
		names = append(names, res.Name)
	}
	if names[0] != names[1] || names[1] != names[2] {
		t.Fatalf("name depends on repeat count: %v", names)
	}
}

func TestName(t *testing.T) {
	if got := encoder.Name(501, 32, 2000); got != "pulse501_count32_carrier2000" {
		t.Fatalf("wrong name: %v", got)
	}
	if got := encoder.Name(500, 1, 2000.5); got != "pulse500_count1_carrier2000.5" {
		t.Fatalf("wrong name: %v", got)
	}
}

func TestEncodeInt16(t *testing.T) {
	res, err := encoder.Encode(2000, []float64{500}, 80000, encoder.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != pim.Int16 || res.Float != nil {
		t.Fatalf("default mode should be int16: %v", res.Mode)
	}
	if len(res.PCM) != 160 || res.Len() != 160 {
		t.Fatalf("wrong length: %v", len(res.PCM))
	}
	if res.PCM[0] != 0 || res.PCM[20] != 32767 {
		t.Fatalf("wrong burst samples: %v, %v", res.PCM[0], res.PCM[20])
	}
	for i := 40; i < 160; i++ {
		if res.PCM[i] != 0 {
			t.Fatalf("silence sample %d isn't zero: %v", i, res.PCM[i])
		}
	}
	if res.WAVPath != "" || res.PlotPath != "" {
		t.Fatal("no files should be written by default")
	}
}

func TestEncodeMatchesBuilder(t *testing.T) {
	symbols := []float64{500, 320, 800}
	opts := encoder.DefaultOptions()
	opts.Mode = pim.Float
	opts.BurstCycles = 2
	opts.Repeat = 2

	res, err := encoder.Encode(2000, symbols, 80000, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := waveform.Build(waveform.Params{Carrier: 2000, SampleRate: 80000, BurstCycles: 2, Repeat: 2}, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.Float, w.Samples) || !reflect.DeepEqual(res.Time, w.Time) {
		t.Fatal("driver output differs from the builder's")
	}
	if res.PCM != nil {
		t.Fatal("float mode shouldn't produce PCM samples")
	}
}

func TestEncodePropagatesBuilderErrors(t *testing.T) {
	res, err := encoder.Encode(2000, []float64{4000}, 80000, encoder.DefaultOptions())
	if err == nil || res != nil {
		t.Fatal("expected an error")
	}
	var se *waveform.SilenceError
	if !errors.As(err, &se) || se.Index != 0 || se.Period != 20 || se.Burst != 40 {
		t.Fatalf("expected a silence error, got %v", err)
	}

	opts := encoder.DefaultOptions()
	opts.Repeat = 0
	if _, err := encoder.Encode(2000, []float64{500}, 80000, opts); !errors.Is(err, waveform.ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	if _, err := encoder.Encode(2000, nil, 80000, encoder.DefaultOptions()); !errors.Is(err, waveform.ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestEncodeWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	core, logs := observer.New(zapcore.InfoLevel)

	opts := encoder.DefaultOptions()
	opts.WriteWAV = true
	opts.Plot = true
	opts.OutputDir = dir
	opts.Repeat = 2
	opts.Logger = zap.New(core)

	symbols := []float64{500, 400, 250}
	res, err := encoder.Encode(2000, symbols, 8000, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(dir, "pulse383_count1_carrier2000.wav"); res.WAVPath != want {
		t.Fatalf("wrong wav path: expected: %v, actual: %v", want, res.WAVPath)
	}
	if want := filepath.Join(dir, "pulse383_count1_carrier2000_waveform.png"); res.PlotPath != want {
		t.Fatalf("wrong plot path: expected: %v, actual: %v", want, res.PlotPath)
	}
	if info, err := os.Stat(res.PlotPath); err != nil || info.Size() == 0 {
		t.Fatalf("plot not written: %v", err)
	}

	f, err := os.Open(res.WAVPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer s.Close()
	if format.SampleRate != 8000 || format.Precision != 2 || format.Float {
		t.Fatalf("wrong format: %+v", format)
	}
	buf := pim.NewBuffer(format.SampleRate, s.Len())
	if err := buf.Append(s); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got := pim.QuantizeAll(buf.Samples()); !reflect.DeepEqual(got, res.PCM) {
		t.Fatal("wav content differs from the returned samples")
	}

	for _, msg := range []string{"waveform rendered", "wav written", "plot written"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Fatalf("missing log message %q", msg)
		}
	}
}

func TestEncodeFloatWAV(t *testing.T) {
	opts := encoder.DefaultOptions()
	opts.Mode = pim.Float
	opts.WriteWAV = true
	opts.OutputDir = t.TempDir()

	res, err := encoder.Encode(1000, []float64{100, 50}, 8000, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(res.WAVPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer s.Close()
	if !format.Float || format.Precision != 8 {
		t.Fatalf("wrong format: %+v", format)
	}
	buf := pim.NewBuffer(format.SampleRate, s.Len())
	if err := buf.Append(s); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if !reflect.DeepEqual(buf.Samples(), res.Float) {
		t.Fatal("float wav content differs from the returned samples")
	}
	for _, v := range res.Float {
		if v < 0 || v > 1 || math.IsNaN(v) {
			t.Fatalf("amplitude out of range: %v", v)
		}
	}
}

func TestEncodeFailsOnUnwritableOutput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts := encoder.DefaultOptions()
	opts.WriteWAV = true
	opts.OutputDir = filepath.Join(file, "sub")
	if _, err := encoder.Encode(2000, []float64{500}, 80000, opts); err == nil {
		t.Fatal("expected an I/O error")
	}
}
