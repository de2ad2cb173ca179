// Package waveform renders a symbol sequence into a pulse-interval modulated sample buffer.
//
// Every symbol frequency f becomes one slot of round(sampleRate / f) samples. The slot starts
// with a burst of BurstCycles carrier cycles and is padded with silence up to its full length,
// so the symbol is carried by the spacing between bursts, never by their shape.
package waveform

import (
	"math"
	"time"

	"github.com/faiface/pim"
	"github.com/faiface/pim/generators"
	"github.com/pkg/errors"
)

// MaxSamples bounds the length of a single slot and of the whole rendered waveform.
const MaxSamples = math.MaxInt32

// Params are the session-wide settings of a render.
type Params struct {
	// Carrier is the frequency of the tone every burst is cut from, in Hz.
	Carrier float64
	// SampleRate is the number of samples per second of the output.
	SampleRate pim.SampleRate
	// BurstCycles is the number of carrier cycles rendered at the start of every slot.
	BurstCycles int
	// Repeat is the number of times the whole sequence is rendered back to back.
	Repeat int
}

// Validate checks the parameters without looking at any symbols.
func (p Params) Validate() error {
	if !(p.Carrier > 0) || math.IsInf(p.Carrier, 0) {
		return configErrorf("carrier frequency must be positive and finite, got %v", p.Carrier)
	}
	if p.SampleRate <= 0 {
		return configErrorf("sample rate must be positive, got %d", p.SampleRate)
	}
	if p.BurstCycles < 1 {
		return configErrorf("burst cycles must be at least 1, got %d", p.BurstCycles)
	}
	if p.Repeat < 1 {
		return configErrorf("repeat count must be at least 1, got %d", p.Repeat)
	}
	if burst := float64(p.BurstCycles) * float64(p.SampleRate) / p.Carrier; burst > MaxSamples {
		return configErrorf("burst of %g samples is too long, raise the carrier frequency", burst)
	}
	return nil
}

// BurstLen returns the number of samples of every burst: BurstCycles * round(SampleRate / Carrier).
// It does not depend on any symbol.
func (p Params) BurstLen() int {
	return p.BurstCycles * p.SampleRate.Period(p.Carrier)
}

// Slot is the sample layout of one symbol.
type Slot struct {
	Frequency float64
	Burst     int
	Silence   int
}

// Len returns the total number of samples of the slot.
func (s Slot) Len() int {
	return s.Burst + s.Silence
}

// Plan validates p and symbols and lays out one slot per symbol, in input order.
//
// A symbol whose slot is shorter than the burst fails the whole plan with a *SilenceError.
// A slot exactly as long as the burst has no silence and is valid. Slots and passes longer than
// MaxSamples are rejected before anything is allocated.
func Plan(p Params, symbols []float64) ([]Slot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, configErrorf("symbol sequence is empty")
	}

	burst := p.BurstLen()
	slots := make([]Slot, len(symbols))
	total := 0
	for i, f := range symbols {
		if !(f > 0) || math.IsInf(f, 0) {
			return nil, configErrorf("symbol %d: frequency must be positive and finite, got %v", i, f)
		}
		if raw := float64(p.SampleRate) / f; raw > MaxSamples {
			return nil, configErrorf("symbol %d (%g Hz): slot of %g samples is too long", i, f, raw)
		}
		period := p.SampleRate.Period(f)
		if period < burst {
			return nil, &SilenceError{Index: i, Frequency: f, Period: period, Burst: burst}
		}
		slots[i] = Slot{Frequency: f, Burst: burst, Silence: period - burst}
		total += period
	}
	if float64(total)*float64(p.Repeat) > MaxSamples {
		return nil, configErrorf("%d passes of %d samples are too long", p.Repeat, total)
	}
	return slots, nil
}

// Waveform is a rendered float buffer with amplitudes in [0, 1] and its time axis.
type Waveform struct {
	SampleRate pim.SampleRate
	// Samples holds Repeat passes over Slots.
	Samples []float64
	// Time holds the timestamp of every sample in seconds, i / SampleRate.
	Time   []float64
	Slots  []Slot
	Repeat int
}

// Build renders symbols with the given parameters.
//
// The returned waveform has exactly Repeat * Σ round(SampleRate / f_i) samples. All errors
// match ErrConfig and are reported before any sample buffer is allocated.
func Build(p Params, symbols []float64) (*Waveform, error) {
	slots, err := Plan(p, symbols)
	if err != nil {
		return nil, err
	}

	passLen := 0
	for _, s := range slots {
		passLen += s.Len()
	}

	pass := pim.NewBuffer(p.SampleRate, passLen)
	for _, s := range slots {
		carrier, err := generators.Pulse(p.SampleRate, p.Carrier)
		if err != nil {
			return nil, errors.Wrap(ErrConfig, err.Error())
		}
		if err := pass.Append(pim.Seq(pim.Take(s.Burst, carrier), pim.Silence(s.Silence))); err != nil {
			return nil, errors.Wrap(err, "waveform")
		}
	}

	out := pim.NewBuffer(p.SampleRate, passLen*p.Repeat)
	if err := out.Append(pim.Loop(p.Repeat, pass.Streamer(0, pass.Len()))); err != nil {
		return nil, errors.Wrap(err, "waveform")
	}
	if out.Len() != passLen*p.Repeat {
		return nil, errors.Errorf("waveform: rendered %d samples, expected %d", out.Len(), passLen*p.Repeat)
	}

	return &Waveform{
		SampleRate: out.SampleRate(),
		Samples:    out.Samples(),
		Time:       timeAxis(p.SampleRate, out.Len()),
		Slots:      slots,
		Repeat:     p.Repeat,
	}, nil
}

func timeAxis(sr pim.SampleRate, n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = sr.Time(i)
	}
	return t
}

// Len returns the number of samples.
func (w *Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the playing time of the waveform.
func (w *Waveform) Duration() time.Duration {
	return w.SampleRate.D(len(w.Samples))
}

// Window returns at most the first n samples and their timestamps.
func (w *Waveform) Window(n int) (samples, t []float64) {
	n = clampLen(n, len(w.Samples))
	return w.Samples[:n], w.Time[:n]
}

// Quantize converts the waveform to signed 16-bit samples, round(32767 * amplitude). The
// receiver is left untouched.
func (w *Waveform) Quantize() *PCM {
	return &PCM{
		SampleRate: w.SampleRate,
		Samples:    pim.QuantizeAll(w.Samples),
		Time:       w.Time,
	}
}

// Streamer returns a StreamSeeker over the samples.
func (w *Waveform) Streamer() pim.StreamSeeker {
	return pim.StreamSamples(w.Samples)
}

// PCM is a quantized waveform.
type PCM struct {
	SampleRate pim.SampleRate
	Samples    []int16
	Time       []float64
}

// Len returns the number of samples.
func (q *PCM) Len() int {
	return len(q.Samples)
}

// Window returns at most the first n samples and their timestamps.
func (q *PCM) Window(n int) (samples []int16, t []float64) {
	n = clampLen(n, len(q.Samples))
	return q.Samples[:n], q.Time[:n]
}

// Quantize returns q itself. Samples are already integers and are never scaled again.
func (q *PCM) Quantize() *PCM {
	return q
}

// Streamer returns a Streamer of the samples mapped back to [-1, 1]. Encoding its output at 16
// bits reproduces Samples exactly.
func (q *PCM) Streamer() pim.Streamer {
	pos := 0
	return pim.StreamerFunc(func(samples []float64) (n int, ok bool) {
		if pos >= len(q.Samples) {
			return 0, false
		}
		for n < len(samples) && pos < len(q.Samples) {
			samples[n] = pim.Dequantize(q.Samples[pos])
			n++
			pos++
		}
		return n, true
	})
}

func clampLen(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
