package pim

import (
	"fmt"
	"math"
)

// Format is the format of a Buffer or another audio source.
//
// All formats are mono.
type Format struct {
	// SampleRate is the number of samples per second.
	SampleRate SampleRate

	// Precision is the number of bytes used to encode a single sample.
	Precision int

	// Float selects IEEE floating point encoding. Only precisions of 4 and 8 bytes are valid
	// with Float set.
	Float bool
}

// Width returns the number of bytes per one sample.
func (f Format) Width() int {
	return f.Precision
}

// EncodeSigned encodes a single sample in f.Width() bytes to p in signed format.
func (f Format) EncodeSigned(p []byte, sample float64) (n int) {
	return f.encode(true, p, sample)
}

// EncodeUnsigned encodes a single sample in f.Width() bytes to p in unsigned format.
func (f Format) EncodeUnsigned(p []byte, sample float64) (n int) {
	return f.encode(false, p, sample)
}

// DecodeSigned decodes a single sample encoded in f.Width() bytes from p in signed format.
func (f Format) DecodeSigned(p []byte) (sample float64, n int) {
	return f.decode(true, p)
}

// DecodeUnsigned decodes a single sample encoded in f.Width() bytes from p in unsigned format.
func (f Format) DecodeUnsigned(p []byte) (sample float64, n int) {
	return f.decode(false, p)
}

func (f Format) encode(signed bool, p []byte, sample float64) (n int) {
	if f.Float {
		return encodeIEEE(p, f.Precision, sample)
	}
	return encodeFloat(signed, p, f.Precision, norm(sample))
}

func (f Format) decode(signed bool, p []byte) (sample float64, n int) {
	if f.Float {
		return decodeIEEE(p, f.Precision)
	}
	return decodeFloat(signed, p, f.Precision)
}

func encodeIEEE(p []byte, precision int, x float64) (n int) {
	var bits uint64
	switch precision {
	case 4:
		bits = uint64(math.Float32bits(float32(x)))
	case 8:
		bits = math.Float64bits(x)
	default:
		panic(fmt.Errorf("format: encode: invalid float precision: %d", precision))
	}
	for i := 0; i < precision; i++ {
		p[i] = byte(bits)
		bits >>= 8
	}
	return precision
}

func decodeIEEE(p []byte, precision int) (x float64, n int) {
	var bits uint64
	for i := precision - 1; i >= 0; i-- {
		bits <<= 8
		bits |= uint64(p[i])
	}
	switch precision {
	case 4:
		return float64(math.Float32frombits(uint32(bits))), precision
	case 8:
		return math.Float64frombits(bits), precision
	default:
		panic(fmt.Errorf("format: decode: invalid float precision: %d", precision))
	}
}

func encodeFloat(signed bool, p []byte, precision int, x float64) (n int) {
	var xUint64 uint64
	if signed {
		xUint64 = floatToSigned(precision, x)
	} else {
		xUint64 = floatToUnsigned(precision, x)
	}
	for i := 0; i < precision; i++ {
		p[i] = byte(xUint64)
		xUint64 >>= 8
	}
	return precision
}

func decodeFloat(signed bool, p []byte, precision int) (x float64, n int) {
	var xUint64 uint64
	for i := precision - 1; i >= 0; i-- {
		xUint64 <<= 8
		xUint64 += uint64(p[i])
	}
	if signed {
		return signedToFloat(precision, xUint64), precision
	}
	return unsignedToFloat(precision, xUint64), precision
}

func floatToSigned(precision int, x float64) uint64 {
	return uint64(int64(Round(x * float64(uint64(1)<<uint(precision*8-1)-1))))
}

func floatToUnsigned(precision int, x float64) uint64 {
	return uint64(Round((x + 1) / 2 * float64(uint64(1)<<uint(precision*8)-1)))
}

func signedToFloat(precision int, xUint64 uint64) float64 {
	// sign-extend from the top bit of the encoded width
	shift := uint(64 - precision*8)
	return float64(int64(xUint64<<shift)>>shift) / float64(uint64(1)<<uint(precision*8-1)-1)
}

func unsignedToFloat(precision int, xUint64 uint64) float64 {
	return float64(xUint64)/float64(uint64(1)<<uint(precision*8)-1)*2 - 1
}

func norm(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > +1 {
		return +1
	}
	return x
}

// Buffer is a growable in-memory store of mono samples. Samples are appended by draining
// Streamers into it and read back either directly or through seekable views.
type Buffer struct {
	sr      SampleRate
	samples []float64
}

// NewBuffer creates a new empty Buffer which stores samples at the provided sample rate. The
// capacity is a hint of the final number of samples; appending more is allowed.
func NewBuffer(sr SampleRate, capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{sr: sr, samples: make([]float64, 0, capacity)}
}

// SampleRate returns the sample rate of the Buffer.
func (b *Buffer) SampleRate() SampleRate {
	return b.sr
}

// Len returns the number of samples currently in the Buffer.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Samples returns the samples stored in the Buffer. The returned slice shares memory with the
// Buffer until the next Append.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Append drains s and appends all of its samples to the Buffer. It returns s's error, if any.
func (b *Buffer) Append(s Streamer) error {
	var tmp [512]float64
	for {
		n, ok := s.Stream(tmp[:])
		b.samples = append(b.samples, tmp[:n]...)
		if !ok {
			break
		}
	}
	return s.Err()
}

// Streamer returns a StreamSeeker which streams samples in range [from, to). Appending to the
// Buffer doesn't affect the returned StreamSeeker.
func (b *Buffer) Streamer(from, to int) StreamSeeker {
	return StreamSamples(b.samples[from:to:to])
}

// StreamSamples returns a StreamSeeker which streams the provided samples. The samples are not
// copied and must not be modified while streaming.
func StreamSamples(samples []float64) StreamSeeker {
	return &bufferStreamer{
		samples: samples,
		pos:     0,
	}
}

type bufferStreamer struct {
	samples []float64
	pos     int
}

func (bs *bufferStreamer) Stream(samples []float64) (n int, ok bool) {
	if bs.pos >= len(bs.samples) {
		return 0, false
	}
	n = copy(samples, bs.samples[bs.pos:])
	bs.pos += n
	return n, true
}

func (bs *bufferStreamer) Err() error {
	return nil
}

func (bs *bufferStreamer) Len() int {
	return len(bs.samples)
}

func (bs *bufferStreamer) Position() int {
	return bs.pos
}

func (bs *bufferStreamer) Seek(p int) error {
	if p < 0 || len(bs.samples) < p {
		return fmt.Errorf("buffer: seek position %v out of range [%v, %v]", p, 0, len(bs.samples))
	}
	bs.pos = p
	return nil
}
