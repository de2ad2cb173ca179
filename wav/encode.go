package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/faiface/pim"
	"github.com/pkg/errors"
)

const (
	formatPCM       = 1
	formatIEEEFloat = 3

	headerSize = 44
)

// Encode writes all audio streamed from s to w in WAVE format as a single channel.
//
// Format precision must be 1, 2 or 3 bytes for integer PCM, or 4 or 8 bytes with format.Float
// set for IEEE floating point samples.
func Encode(w io.WriteSeeker, s pim.Streamer, format pim.Format) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "wav")
		}
	}()

	if format.SampleRate <= 0 {
		return errors.New("wav: invalid sample rate (less than 1)")
	}
	formatType := int16(formatPCM)
	if format.Float {
		if format.Precision != 4 && format.Precision != 8 {
			return errors.New("wav: unsupported float precision, 4 or 8 is supported")
		}
		formatType = formatIEEEFloat
	} else if format.Precision != 1 && format.Precision != 2 && format.Precision != 3 {
		return errors.New("wav: unsupported precision, 1, 2 or 3 is supported")
	}

	h := header{
		RiffMark:      [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      -1, // finalization
		WaveMark:      [4]byte{'W', 'A', 'V', 'E'},
		FmtMark:       [4]byte{'f', 'm', 't', ' '},
		FormatSize:    16,
		FormatType:    formatType,
		NumChans:      1,
		SampleRate:    int32(format.SampleRate),
		ByteRate:      int32(int(format.SampleRate) * format.Precision),
		BytesPerFrame: int16(format.Precision),
		BitsPerSample: int16(format.Precision) * 8,
		DataMark:      [4]byte{'d', 'a', 't', 'a'},
		DataSize:      -1, // finalization
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}

	var (
		bw      = bufio.NewWriter(w)
		samples = make([]float64, 512)
		buffer  = make([]byte, len(samples)*format.Width())
		written int
	)
	for {
		n, ok := s.Stream(samples)
		if !ok {
			break
		}
		buf := buffer
		switch {
		case format.Precision == 1 && !format.Float:
			for _, sample := range samples[:n] {
				buf = buf[format.EncodeUnsigned(buf, sample):]
			}
		case format.Precision >= 2:
			for _, sample := range samples[:n] {
				buf = buf[format.EncodeSigned(buf, sample):]
			}
		default:
			panic(fmt.Errorf("wav: encode: invalid precision: %d", format.Precision))
		}
		nn, err := bw.Write(buffer[:n*format.Width()])
		if err != nil {
			return err
		}
		written += nn
	}
	if err := s.Err(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	// finalize header
	h.FileSize = int32(headerSize - 8 + written)
	h.DataSize = int32(written)
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	return nil
}

// WriteFile creates the file at path and encodes s into it. The file is closed whether encoding
// succeeds or not.
func WriteFile(path string, s pim.Streamer, format pim.Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "wav")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "wav")
		}
	}()
	return Encode(f, s, format)
}
