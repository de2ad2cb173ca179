package pim

import (
	"math"
	"time"
)

// SampleRate is the number of samples per second.
type SampleRate int

// D returns the duration of n samples.
func (sr SampleRate) D(n int) time.Duration {
	return time.Second * time.Duration(n) / time.Duration(sr)
}

// N returns the number of samples that last for d duration.
func (sr SampleRate) N(d time.Duration) int {
	return int(d * time.Duration(sr) / time.Second)
}

// Period returns the number of samples in one cycle of a tone with the given frequency,
// rounded half to even.
func (sr SampleRate) Period(freq float64) int {
	return int(Round(float64(sr) / freq))
}

// Time returns the timestamp of the i-th sample in seconds.
func (sr SampleRate) Time(i int) float64 {
	return float64(i) / float64(sr)
}

// Round rounds x to the nearest integer, rounding halves to even. All sample counts and the
// average symbol frequency are rounded this way.
func Round(x float64) float64 {
	return math.RoundToEven(x)
}
