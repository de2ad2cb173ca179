// Package encoder drives a complete pulse-interval encoding run: it renders the waveform,
// optionally quantizes it, and writes the WAVE file and the diagnostic plot.
package encoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/faiface/pim"
	"github.com/faiface/pim/plot"
	"github.com/faiface/pim/wav"
	"github.com/faiface/pim/waveform"
)

// Options control an encoding run. Start from DefaultOptions.
type Options struct {
	// BurstCycles is the number of carrier cycles per burst.
	BurstCycles int
	// Repeat is the number of times the whole symbol sequence is rendered.
	Repeat int
	// Mode selects float or 16-bit integer output.
	Mode pim.Mode

	// WriteWAV saves the result to <OutputDir>/<name>.wav.
	WriteWAV bool
	// Plot saves the first PlotWindow of the result to <OutputDir>/<name>_waveform.png.
	Plot bool
	// OutputDir receives all files. Defaults to "output".
	OutputDir string
	// PlotWindow is the plotted time span. Defaults to one second.
	PlotWindow time.Duration

	// Logger receives progress messages. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns one burst cycle, a single pass and int16 output with no files written.
func DefaultOptions() Options {
	return Options{
		BurstCycles: 1,
		Repeat:      1,
		Mode:        pim.Int16,
		OutputDir:   "output",
		PlotWindow:  time.Second,
	}
}

// Result is the outcome of Encode. Exactly one of Float and PCM is set, according to Mode.
type Result struct {
	Mode       pim.Mode
	SampleRate pim.SampleRate
	Float      []float64
	PCM        []int16
	Time       []float64

	// AverageFrequency is the rounded mean symbol frequency used in Name.
	AverageFrequency int
	Name             string

	// WAVPath and PlotPath are set when the files were written.
	WAVPath  string
	PlotPath string
}

// Len returns the number of samples.
func (r *Result) Len() int {
	return len(r.Time)
}

// AverageFrequency returns the rounded arithmetic mean of symbols. It only names and titles
// outputs and never feeds back into rendering.
func AverageFrequency(symbols []float64) (int, error) {
	if len(symbols) == 0 {
		return 0, errors.New("encoder: average of an empty symbol sequence")
	}
	sum := 0.0
	for _, f := range symbols {
		sum += f
	}
	return int(pim.Round(sum / float64(len(symbols)))), nil
}

// Name returns the base file name of an encoding run.
func Name(avg, count int, carrier float64) string {
	return fmt.Sprintf("pulse%d_count%d_carrier%s", avg, count, strconv.FormatFloat(carrier, 'f', -1, 64))
}

// Encode renders symbols as pulse-interval modulation of a carrier at the given frequency.
//
// Errors from the waveform builder are returned unchanged, so errors.Is(err, waveform.ErrConfig)
// and errors.As(err, **waveform.SilenceError) work on them.
func Encode(carrier float64, symbols []float64, sr pim.SampleRate, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.PlotWindow <= 0 {
		opts.PlotWindow = time.Second
	}

	params := waveform.Params{
		Carrier:     carrier,
		SampleRate:  sr,
		BurstCycles: opts.BurstCycles,
		Repeat:      opts.Repeat,
	}
	w, err := waveform.Build(params, symbols)
	if err != nil {
		return nil, err
	}

	avg, err := AverageFrequency(symbols)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Mode:             opts.Mode,
		SampleRate:       sr,
		Time:             w.Time,
		AverageFrequency: avg,
		Name:             Name(avg, opts.BurstCycles, carrier),
	}
	log.Info("waveform rendered",
		zap.Int("symbols", len(symbols)),
		zap.Int("samples", w.Len()),
		zap.Duration("duration", w.Duration()),
		zap.Int("burst", params.BurstLen()),
		zap.Int("pulse_freq", avg),
	)

	var (
		stream pim.Streamer
		format = pim.Format{SampleRate: sr}
	)
	switch opts.Mode {
	case pim.Int16:
		q := w.Quantize()
		res.PCM = q.Samples
		stream = q.Streamer()
		format.Precision = 2
	case pim.Float:
		res.Float = w.Samples
		stream = w.Streamer()
		format.Precision, format.Float = 8, true
	default:
		return nil, errors.Errorf("encoder: unknown mode %v", opts.Mode)
	}

	if opts.WriteWAV {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "encoder")
		}
		path := filepath.Join(opts.OutputDir, res.Name+".wav")
		if err := wav.WriteFile(path, stream, format); err != nil {
			return nil, errors.Wrapf(err, "encoder: write %s", path)
		}
		res.WAVPath = path
		log.Info("wav written", zap.String("path", path), zap.Stringer("mode", opts.Mode))
	}

	if opts.Plot {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "encoder")
		}
		path := filepath.Join(opts.OutputDir, res.Name+"_waveform.png")
		if err := res.figure(carrier, sr.N(opts.PlotWindow)).Save(path); err != nil {
			return nil, errors.Wrapf(err, "encoder: plot %s", path)
		}
		res.PlotPath = path
		log.Info("plot written", zap.String("path", path))
	}

	return res, nil
}

// figure plots the first n samples as they are stored, so int16 results are drawn at their
// integer scale.
func (r *Result) figure(carrier float64, n int) *plot.Figure {
	if n > r.Len() {
		n = r.Len()
	}
	y := make([]float64, n)
	switch r.Mode {
	case pim.Int16:
		for i := range y {
			y[i] = float64(r.PCM[i])
		}
	default:
		copy(y, r.Float[:n])
	}

	return &plot.Figure{
		Title:   fmt.Sprintf("samp_rate=%d\npulse_freq=%.2f, carrier_freq=%.2f", r.SampleRate, float64(r.AverageFrequency), carrier),
		XLabel:  "time (sec)",
		YLabel:  "amplitude",
		DivLine: 1,
		Series: []plot.Series{{
			X:         r.Time[:n],
			Y:         y,
			Label:     "pulse",
			Color:     "green",
			LineStyle: "-",
		}},
	}
}
