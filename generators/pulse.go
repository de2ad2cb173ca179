package generators

import (
	"math"

	"github.com/faiface/pim"
	"github.com/pkg/errors"
)

type pulseGenerator struct {
	freq float64
	sr   float64
	k    int
}

// Pulse creates a streamer which will produce an infinite unipolar carrier wave with the given
// frequency: |sin(2π·freq·t − π/2) + 1| / 2, sampled at t = k/sr for k = 0, 1, 2, ...
//
// Every cycle rises smoothly from 0 to 1 and falls back to 0, so cutting the stream after a
// whole number of cycles yields a click-free burst. Frequencies at or above half the sample rate
// are sampled as they are, aliasing included.
func Pulse(sr pim.SampleRate, freq float64) (pim.Streamer, error) {
	if sr <= 0 {
		return nil, errors.Errorf("pulse generator: sample rate must be positive, got %d", sr)
	}
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return nil, errors.Errorf("pulse generator: frequency must be positive and finite, got %v", freq)
	}
	return &pulseGenerator{freq: freq, sr: float64(sr)}, nil
}

func (g *pulseGenerator) Stream(samples []float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.k) / g.sr
		samples[i] = math.Abs(math.Sin(2*math.Pi*g.freq*t-math.Pi/2)+1) / 2
		g.k++
	}

	return len(samples), true
}

func (*pulseGenerator) Err() error {
	return nil
}
