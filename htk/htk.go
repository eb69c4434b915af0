// Package htk reads and writes HTK parameter files.
package htk

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrBadHeader is returned for headers that do not describe float32 frames.
var ErrBadHeader = errors.New("htk: bad header")

// Parameter kinds used by this package. Qualifier bits are OR-ed in.
const (
	KindMFCC   int16 = 6
	KindFBank  int16 = 7
	KindUser   int16 = 9
	QualEnergy int16 = 0o100
	QualDelta  int16 = 0o400
	QualAccel  int16 = 0o1000
)

// DefaultPeriod is a 10 ms frame shift in 100 ns units.
const DefaultPeriod = 100000

// HeaderSize is the size of the fixed header in bytes.
const HeaderSize = 12

// Header is the fixed HTK file header.
type Header struct {
	NumSamples int32
	SampPeriod int32 // 100 ns units
	SampSize   int16 // bytes per frame
	ParmKind   int16
}

// Dim returns the number of float32 values per frame.
func (h Header) Dim() int { return int(h.SampSize) / 4 }

// Read decodes an HTK file into a frames x dim matrix.
func Read(r io.Reader) (*mat.Dense, Header, error) {
	var h Header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, h, errors.Wrap(err, "read htk header")
	}
	if h.NumSamples < 0 || h.SampSize <= 0 || h.SampSize%4 != 0 {
		return nil, h, errors.Wrapf(ErrBadHeader, "nSamples=%d sampSize=%d", h.NumSamples, h.SampSize)
	}
	rows, cols := int(h.NumSamples), h.Dim()
	if rows == 0 {
		return &mat.Dense{}, h, nil
	}
	raw := make([]float32, rows*cols)
	if err := binary.Read(bufio.NewReader(r), binary.BigEndian, raw); err != nil {
		return nil, h, errors.Wrap(err, "read htk frames")
	}
	data := make([]float64, len(raw))
	for i, v := range raw {
		data[i] = float64(v)
	}
	return mat.NewDense(rows, cols, data), h, nil
}

// ReadFile is a convenience wrapper that opens a file path.
func ReadFile(path string) (*mat.Dense, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()
	m, h, err := Read(f)
	if err != nil {
		return nil, h, errors.Wrap(err, path)
	}
	return m, h, nil
}

// Write encodes m with the given period and parameter kind.
func Write(w io.Writer, m mat.Matrix, period int32, kind int16) error {
	rows, cols := m.Dims()
	if cols*4 > math.MaxInt16 {
		return errors.Wrapf(ErrBadHeader, "dim %d too large", cols)
	}
	h := Header{
		NumSamples: int32(rows),
		SampPeriod: period,
		SampSize:   int16(cols * 4),
		ParmKind:   kind,
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.BigEndian, h); err != nil {
		return err
	}
	row := make([]float32, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = float32(m.At(i, j))
		}
		if err := binary.Write(bw, binary.BigEndian, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes m to path.
func WriteFile(path string, m mat.Matrix, period int32, kind int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m, period, kind); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return f.Close()
}
