// Package normalize computes feature statistics and z-score normalises
// feature matrices per gender, speaker or utterance.
package normalize

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Stats are per-dimension mean and standard deviation.
type Stats struct {
	Mean []float64
	Std  []float64
}

// Accumulator collects two-pass statistics for one key. Pass one sums
// frames for the mean; pass two sums squared deviations from that mean.
type Accumulator struct {
	Sum   []float64
	SumSq []float64
	N     int
}

// AddFrames adds every row of m to the running sum (pass one).
func (a *Accumulator) AddFrames(m mat.Matrix) error {
	rows, cols := m.Dims()
	if err := a.checkDim(cols); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			a.Sum[j] += m.At(i, j)
		}
	}
	a.N += rows
	return nil
}

// Mean returns Sum / N.
func (a *Accumulator) Mean() []float64 {
	mean := make([]float64, len(a.Sum))
	if a.N == 0 {
		return mean
	}
	floats.ScaleTo(mean, 1/float64(a.N), a.Sum)
	return mean
}

// AddDeviation adds the squared deviation of every row of m from mean
// (pass two).
func (a *Accumulator) AddDeviation(m mat.Matrix, mean []float64) error {
	rows, cols := m.Dims()
	if cols != len(mean) {
		return errors.Errorf("normalize: frame dim %d, mean dim %d", cols, len(mean))
	}
	if a.SumSq == nil {
		a.SumSq = make([]float64, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := m.At(i, j) - mean[j]
			a.SumSq[j] += d * d
		}
	}
	return nil
}

// Stats returns the mean and the Bessel-corrected standard deviation.
func (a *Accumulator) Stats() Stats {
	mean := a.Mean()
	std := make([]float64, len(mean))
	if a.N > 1 && a.SumSq != nil {
		for j := range std {
			std[j] = math.Sqrt(a.SumSq[j] / float64(a.N-1))
		}
	}
	return Stats{Mean: mean, Std: std}
}

func (a *Accumulator) checkDim(cols int) error {
	if a.Sum == nil {
		a.Sum = make([]float64, cols)
		return nil
	}
	if len(a.Sum) != cols {
		return errors.Errorf("normalize: frame dim %d, accumulated dim %d", cols, len(a.Sum))
	}
	return nil
}

// Accumulators holds one accumulator per statistics key.
type Accumulators map[string]*Accumulator

// Get returns the accumulator for key, creating it on first use.
func (as Accumulators) Get(key string) *Accumulator {
	a, ok := as[key]
	if !ok {
		a = &Accumulator{}
		as[key] = a
	}
	return a
}

// Keys returns the keys in sorted order.
func (as Accumulators) Keys() []string {
	keys := make([]string, 0, len(as))
	for k := range as {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Means returns the pass-one mean of every key.
func (as Accumulators) Means() map[string][]float64 {
	out := make(map[string][]float64, len(as))
	for k, a := range as {
		out[k] = a.Mean()
	}
	return out
}

// Stats finalises every key.
func (as Accumulators) Stats() map[string]Stats {
	out := make(map[string]Stats, len(as))
	for k, a := range as {
		out[k] = a.Stats()
	}
	return out
}
