package feature

import (
	"gonum.org/v1/gonum/mat"
)

// DeltaWindow is the regression half-width used for delta coefficients.
const DeltaWindow = 2

// Delta computes regression coefficients over a window of +-n frames:
// d[t] = sum_{k=1}^{n} k*(c[t+k] - c[t-k]) / (2 * sum_{k=1}^{n} k^2).
// Frame indices are clamped at the edges.
func Delta(m mat.Matrix, n int) *mat.Dense {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(rows, cols, nil)
	var denom float64
	for k := 1; k <= n; k++ {
		denom += float64(k * k)
	}
	denom *= 2
	for t := 0; t < rows; t++ {
		for d := 0; d < cols; d++ {
			var num float64
			for k := 1; k <= n; k++ {
				tp, tn := t+k, t-k
				if tp >= rows {
					tp = rows - 1
				}
				if tn < 0 {
					tn = 0
				}
				num += float64(k) * (m.At(tp, d) - m.At(tn, d))
			}
			out.Set(t, d, num/denom)
		}
	}
	return out
}

// AppendDeltas returns [static | delta | delta-delta] as configured.
func AppendDeltas(static *mat.Dense, delta, deltaDelta bool) *mat.Dense {
	if !delta {
		return static
	}
	d1 := Delta(static, DeltaWindow)
	var out mat.Dense
	out.Augment(static, d1)
	if deltaDelta {
		var full mat.Dense
		full.Augment(&out, Delta(d1, DeltaWindow))
		return &full
	}
	return &out
}
