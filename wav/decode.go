// Package wav reads and writes single channel audio in the WAVE container.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/faiface/pim"
	"github.com/pkg/errors"
)

// Decode takes a ReadCloser containing mono audio data in WAVE format and returns a
// StreamSeekCloser, which streams that audio. The Seek method will panic if rc is not io.Seeker.
//
// Do not close the supplied ReadCloser, instead, use the Close method of the returned
// StreamSeekCloser when you want to release the resources.
func Decode(rc io.ReadCloser) (s pim.StreamSeekCloser, format pim.Format, err error) {
	d := decoder{rc: rc}
	defer func() { // always close rc if an error occurred
		if err != nil {
			d.rc.Close()
		}
	}()
	if err := binary.Read(rc, binary.LittleEndian, &d.h); err != nil {
		return nil, pim.Format{}, errors.Wrap(err, "wav")
	}
	if string(d.h.RiffMark[:]) != "RIFF" {
		return nil, pim.Format{}, errors.New("wav: missing RIFF at the beginning")
	}
	if string(d.h.WaveMark[:]) != "WAVE" {
		return nil, pim.Format{}, errors.New("wav: unsupported file type")
	}
	if string(d.h.FmtMark[:]) != "fmt " {
		return nil, pim.Format{}, errors.New("wav: missing format chunk marker")
	}
	if string(d.h.DataMark[:]) != "data" {
		return nil, pim.Format{}, errors.New("wav: missing data chunk marker")
	}
	if d.h.NumChans != 1 {
		return nil, pim.Format{}, errors.Errorf("wav: unsupported number of channels %d, only mono is supported", d.h.NumChans)
	}
	switch d.h.FormatType {
	case formatPCM:
		if d.h.BitsPerSample != 8 && d.h.BitsPerSample != 16 && d.h.BitsPerSample != 24 {
			return nil, pim.Format{}, errors.New("wav: unsupported number of bits per sample, 8, 16 or 24 are supported")
		}
	case formatIEEEFloat:
		if d.h.BitsPerSample != 32 && d.h.BitsPerSample != 64 {
			return nil, pim.Format{}, errors.New("wav: unsupported float width, 32 or 64 bits are supported")
		}
	default:
		return nil, pim.Format{}, errors.New("wav: unsupported format type")
	}
	format = pim.Format{
		SampleRate: pim.SampleRate(d.h.SampleRate),
		Precision:  int(d.h.BitsPerSample / 8),
		Float:      d.h.FormatType == formatIEEEFloat,
	}
	d.f = format
	return &d, format, nil
}

type header struct {
	RiffMark      [4]byte
	FileSize      int32
	WaveMark      [4]byte
	FmtMark       [4]byte
	FormatSize    int32
	FormatType    int16
	NumChans      int16
	SampleRate    int32
	ByteRate      int32
	BytesPerFrame int16
	BitsPerSample int16
	DataMark      [4]byte
	DataSize      int32
}

type decoder struct {
	rc  io.ReadCloser
	h   header
	f   pim.Format
	pos int32
	err error
}

func (d *decoder) Stream(samples []float64) (n int, ok bool) {
	if d.err != nil || d.pos >= d.h.DataSize {
		return 0, false
	}
	width := d.f.Width()
	numBytes := int32(len(samples) * width)
	if numBytes > d.h.DataSize-d.pos {
		numBytes = d.h.DataSize - d.pos
	}
	p := make([]byte, numBytes)
	nb, err := io.ReadFull(d.rc, p)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		d.err = err
	}
	for i, j := 0, 0; i <= nb-width; i, j = i+width, j+1 {
		if d.f.Precision == 1 && !d.f.Float {
			samples[j], _ = d.f.DecodeUnsigned(p[i:])
		} else {
			samples[j], _ = d.f.DecodeSigned(p[i:])
		}
		n++
	}
	d.pos += int32(nb)
	if n == 0 {
		return 0, false
	}
	return n, true
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) Len() int {
	return int(d.h.DataSize / int32(d.h.BytesPerFrame))
}

func (d *decoder) Position() int {
	return int(d.pos / int32(d.h.BytesPerFrame))
}

func (d *decoder) Seek(p int) error {
	seeker, ok := d.rc.(io.Seeker)
	if !ok {
		panic(fmt.Errorf("wav: seek: resource is not io.Seeker"))
	}
	if p < 0 || d.Len() < p {
		return fmt.Errorf("wav: seek position %v out of range [%v, %v]", p, 0, d.Len())
	}
	pos := int32(p) * int32(d.h.BytesPerFrame)
	_, err := seeker.Seek(int64(pos)+headerSize, io.SeekStart)
	if err != nil {
		return errors.Wrap(err, "wav: seek error")
	}
	d.pos = pos
	return nil
}

func (d *decoder) Close() error {
	err := d.rc.Close()
	if err != nil {
		return errors.Wrap(err, "wav")
	}
	return nil
}
