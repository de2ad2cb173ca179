package waveform

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfig is matched (errors.Is) by every error Build returns for parameters or symbols it
// cannot render.
var ErrConfig = errors.New("waveform: invalid configuration")

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfig, format, args...)
}

// SilenceError reports a symbol whose slot is shorter than the burst that has to fit in it.
// The whole run is rejected; no partial waveform is produced.
type SilenceError struct {
	// Index is the position of the offending symbol in the input sequence.
	Index int
	// Frequency is the symbol's value.
	Frequency float64
	// Period is the slot length round(sampleRate / Frequency) in samples.
	Period int
	// Burst is the burst length in samples.
	Burst int
}

func (e *SilenceError) Error() string {
	return fmt.Sprintf(
		"waveform: symbol %d (%v Hz): slot of %d samples is shorter than the %d sample burst (silence %d); lower the carrier cycles or raise the carrier frequency",
		e.Index, e.Frequency, e.Period, e.Burst, e.Silence(),
	)
}

// Silence returns the (negative) silence length that caused the error.
func (e *SilenceError) Silence() int {
	return e.Period - e.Burst
}

// Is reports SilenceError as a configuration error.
func (e *SilenceError) Is(target error) bool {
	return target == ErrConfig
}
