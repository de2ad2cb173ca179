// Command intervalcoding encodes the numbers stored in a binary file as pulse-interval
// modulated audio.
//
// Usage:
//
//	intervalcoding double.bin -f 501 -s 80000 -c 32 -t 1
//	intervalcoding byte.bin -f 501 -s 80000 -c 4 -t 1 -r byte
//
// The result is written to <output>/pulse<avg>_count<c>_carrier<f>.wav together with a plot of
// its first second.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/faiface/pim"
	"github.com/faiface/pim/config"
	"github.com/faiface/pim/encoder"
	"github.com/faiface/pim/symbols"
)

const version = "0.0.1"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

type flagValues struct {
	configPath string
	sampleRate int
	carrier    float64
	times      int
	count      int
	read       string
	mode       string
	output     string
	wav        bool
	plot       bool
	logLevel   string
}

func newFlagSet(stderr io.Writer, v *flagValues) *flag.FlagSet {
	d := config.Default()
	fs := flag.NewFlagSet("intervalcoding", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&v.configPath, "config", "", "YAML preset; explicit flags override its values")
	for _, name := range []string{"s", "sample_rate", "rate"} {
		fs.IntVar(&v.sampleRate, name, d.SampleRate, "sample rate")
	}
	for _, name := range []string{"f", "carrier"} {
		fs.Float64Var(&v.carrier, name, d.Carrier, "carrier frequency")
	}
	for _, name := range []string{"t", "times"} {
		fs.IntVar(&v.times, name, d.Times, "repeating times")
	}
	for _, name := range []string{"c", "count"} {
		fs.IntVar(&v.count, name, d.Count, "carrier cycles per burst")
	}
	for _, name := range []string{"r", "read"} {
		fs.StringVar(&v.read, name, d.Read, "record type [double, float, byte]")
	}
	for _, name := range []string{"m", "mode"} {
		fs.StringVar(&v.mode, name, d.Mode, "sample mode [int16, float]")
	}
	for _, name := range []string{"o", "output"} {
		fs.StringVar(&v.output, name, d.OutputDir, "output directory")
	}
	fs.BoolVar(&v.wav, "wav", d.WAV, "write the wav file")
	fs.BoolVar(&v.plot, "plot", d.Plot, "write the waveform plot")
	fs.StringVar(&v.logLevel, "log-level", d.LogLevel, "log level [debug, info, warn, error]")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "intervalcoding %s\n\nusage: intervalcoding [flags] <filepath>\n\n", version)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nexample: intervalcoding double.bin -f 501 -s 80000 -c 32 -t 1\n")
	}
	return fs
}

// parseArgs parses flags placed before and after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// resolveConfig layers the preset file and the explicitly set flags over the defaults.
func resolveConfig(fs *flag.FlagSet, v *flagValues) (*config.Config, error) {
	cfg := config.Default()
	if v.configPath != "" {
		loaded, err := config.Load(v.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	isSet := func(names ...string) bool {
		for _, n := range names {
			if set[n] {
				return true
			}
		}
		return false
	}

	if isSet("s", "sample_rate", "rate") {
		cfg.SampleRate = v.sampleRate
	}
	if isSet("f", "carrier") {
		cfg.Carrier = v.carrier
	}
	if isSet("t", "times") {
		cfg.Times = v.times
	}
	if isSet("c", "count") {
		cfg.Count = v.count
	}
	if isSet("r", "read") {
		cfg.Read = v.read
	}
	if isSet("m", "mode") {
		cfg.Mode = v.mode
	}
	if isSet("o", "output") {
		cfg.OutputDir = v.output
	}
	if isSet("wav") {
		cfg.WAV = v.wav
	}
	if isSet("plot") {
		cfg.Plot = v.plot
	}
	if isSet("log-level") {
		cfg.LogLevel = v.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level zapcore.Level, stderr io.Writer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(stderr), level)
	return zap.New(core)
}

func run(args []string, stderr io.Writer) int {
	var v flagValues
	fs := newFlagSet(stderr, &v)

	positional, err := parseArgs(fs, args)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		return 1
	}
	if len(positional) != 1 {
		fs.Usage()
		return 1
	}
	path := positional[0]

	cfg, err := resolveConfig(fs, &v)
	if err != nil {
		fmt.Fprintf(stderr, "intervalcoding: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Level(), stderr)
	defer logger.Sync()

	logger.Info("reading symbols", zap.String("path", path), zap.Stringer("read", cfg.Kind()))
	syms, err := symbols.ReadFile(path, cfg.Kind())
	if err != nil {
		logger.Error("failed to read symbols", zap.Error(err))
		return 1
	}
	logger.Info("symbols read", zap.Int("intervals", len(syms)))
	logger.Debug("symbol values", zap.Float64s("values", syms))

	opts := encoder.DefaultOptions()
	opts.BurstCycles = cfg.Count
	opts.Repeat = cfg.Times
	opts.Mode = cfg.SampleMode()
	opts.WriteWAV = cfg.WAV
	opts.Plot = cfg.Plot
	opts.OutputDir = cfg.OutputDir
	opts.Logger = logger

	logger.Info("generating",
		zap.Int("sample_rate", cfg.SampleRate),
		zap.Float64("carrier", cfg.Carrier),
		zap.Int("count", cfg.Count),
		zap.Int("times", cfg.Times),
		zap.Stringer("mode", opts.Mode),
	)
	res, err := encoder.Encode(cfg.Carrier, syms, pim.SampleRate(cfg.SampleRate), opts)
	if err != nil {
		logger.Error("encoding failed", zap.Error(err))
		return 1
	}
	logger.Info("done",
		zap.String("name", res.Name),
		zap.Int("samples", res.Len()),
		zap.String("wav", res.WAVPath),
		zap.String("plot", res.PlotPath),
	)
	return 0
}
