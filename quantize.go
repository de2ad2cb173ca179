package pim

import (
	"fmt"
	"math"
	"strings"
)

// Mode is the sample representation a waveform is delivered in.
type Mode int

const (
	// Float keeps the rendered amplitudes as float64 values in [0, 1].
	Float Mode = iota
	// Int16 quantizes amplitudes to signed 16-bit integers.
	Int16
)

// ParseMode parses "float" or "int16", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float":
		return Float, nil
	case "int16":
		return Int16, nil
	}
	return 0, fmt.Errorf("mode: unknown mode %q, valid modes: float, int16", s)
}

func (m Mode) String() string {
	switch m {
	case Float:
		return "float"
	case Int16:
		return "int16"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MaxInt16 is the full-scale value amplitudes are multiplied by when quantized.
const MaxInt16 = math.MaxInt16

// Quantize converts an amplitude to a signed 16-bit sample, round(32767 * x). Amplitudes
// outside [-1, 1] are clipped first.
func Quantize(x float64) int16 {
	return int16(Round(MaxInt16 * norm(x)))
}

// QuantizeAll quantizes every sample of x into a newly allocated slice.
func QuantizeAll(x []float64) []int16 {
	q := make([]int16, len(x))
	for i, v := range x {
		q[i] = Quantize(v)
	}
	return q
}

// Dequantize maps a signed 16-bit sample back to the [-1, 1] range. Quantize(Dequantize(v))
// == v for every v in [-32767, 32767].
func Dequantize(v int16) float64 {
	return float64(v) / MaxInt16
}
