// Package symbols reads symbol sequences from binary files of fixed-width records.
package symbols

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the record type of a symbol file.
type Kind int

const (
	// Double records are 8-byte IEEE 754 floats.
	Double Kind = iota
	// Float records are 4-byte IEEE 754 floats.
	Float
	// Byte records are single unsigned bytes, taken as the symbol value directly.
	Byte
)

// ParseKind parses "double", "float" or "byte", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "double":
		return Double, nil
	case "float":
		return Float, nil
	case "byte":
		return Byte, nil
	}
	return 0, errors.Errorf("symbols: unknown record type %q, valid types: double, float, byte", s)
}

func (k Kind) String() string {
	switch k {
	case Double:
		return "double"
	case Float:
		return "float"
	case Byte:
		return "byte"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Width returns the number of bytes per record.
func (k Kind) Width() int {
	switch k {
	case Double:
		return 8
	case Float:
		return 4
	case Byte:
		return 1
	}
	return 0
}

// Decode reads fixed-width records of the given kind from r until EOF and returns them in file
// order. A trailing partial record is ignored. A nil order means little-endian.
func Decode(r io.Reader, kind Kind, order binary.ByteOrder) ([]float64, error) {
	width := kind.Width()
	if width == 0 {
		return nil, errors.Errorf("symbols: invalid record type %d", int(kind))
	}
	if order == nil {
		order = binary.LittleEndian
	}

	var (
		br      = bufio.NewReader(r)
		record  = make([]byte, width)
		symbols []float64
	)
	for {
		if _, err := io.ReadFull(br, record); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return symbols, nil
			}
			return nil, errors.Wrap(err, "symbols")
		}
		symbols = append(symbols, decodeRecord(kind, order, record))
	}
}

func decodeRecord(kind Kind, order binary.ByteOrder, p []byte) float64 {
	switch kind {
	case Double:
		return math.Float64frombits(order.Uint64(p))
	case Float:
		return float64(math.Float32frombits(order.Uint32(p)))
	default:
		return float64(p[0])
	}
}

// ReadFile decodes all little-endian records of the given kind from the file at path.
func ReadFile(path string, kind Kind) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "symbols")
	}
	defer f.Close()

	symbols, err := Decode(f, kind, binary.LittleEndian)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return symbols, nil
}
