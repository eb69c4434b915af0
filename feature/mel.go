package feature

import "math"

// melFilter is the non-zero span of one triangular filter.
type melFilter struct {
	start   int
	weights []float64
}

// MelFilterbank is a bank of triangular filters equally spaced on the mel scale.
type MelFilterbank struct {
	filters []melFilter
	nBins   int
}

// NewMelFilterbank constructs numFilters filters over fftSize/2+1 bins
// between lowFreq and highFreq Hz.
func NewMelFilterbank(numFilters, fftSize, sampleRate int, lowFreq, highFreq float64) *MelFilterbank {
	nBins := fftSize/2 + 1
	lowMel, highMel := hzToMel(lowFreq), hzToMel(highFreq)
	step := (highMel - lowMel) / float64(numFilters+1)

	bins := make([]int, numFilters+2)
	for i := range bins {
		hz := melToHz(lowMel + float64(i)*step)
		bins[i] = int(math.Floor(hz * float64(fftSize+1) / float64(sampleRate)))
	}

	fb := &MelFilterbank{filters: make([]melFilter, numFilters), nBins: nBins}
	for i := 0; i < numFilters; i++ {
		left, center, right := bins[i], bins[i+1], bins[i+2]
		if right >= nBins {
			right = nBins - 1
		}
		if right < left {
			continue
		}
		w := make([]float64, right-left+1)
		for j := left; j <= right; j++ {
			switch {
			case j < center && center != left:
				w[j-left] = float64(j-left) / float64(center-left)
			case j >= center && right != center:
				w[j-left] = float64(bins[i+2]-j) / float64(bins[i+2]-center)
			}
		}
		fb.filters[i] = melFilter{start: left, weights: w}
	}
	return fb
}

// Len returns the number of filters.
func (fb *MelFilterbank) Len() int { return len(fb.filters) }

// Weights returns filter i expanded to the full bin range.
func (fb *MelFilterbank) Weights(i int) []float64 {
	out := make([]float64, fb.nBins)
	f := fb.filters[i]
	copy(out[f.start:], f.weights)
	return out
}

// Apply returns log mel energies of a power spectrum.
func (fb *MelFilterbank) Apply(power []float64) []float64 {
	dst := make([]float64, len(fb.filters))
	fb.applyInto(power, dst)
	return dst
}

func (fb *MelFilterbank) applyInto(power, dst []float64) {
	for i, f := range fb.filters {
		var sum float64
		for j, w := range f.weights {
			if k := f.start + j; k < len(power) {
				sum += power[k] * w
			}
		}
		if sum < 1e-30 {
			sum = 1e-30
		}
		dst[i] = math.Log(sum)
	}
}

// dct is a precomputed type-II DCT with sinusoidal liftering folded in.
type dct struct {
	cos [][]float64
}

func newDCT(numCepstra, numFilters, lifter int) *dct {
	t := &dct{cos: make([][]float64, numCepstra)}
	for k := range t.cos {
		// c0 is dropped; energy takes its place.
		q := k + 1
		lift := 1.0
		if lifter > 0 {
			lift = 1.0 + float64(lifter)/2.0*math.Sin(math.Pi*float64(q)/float64(lifter))
		}
		row := make([]float64, numFilters)
		for j := range row {
			row[j] = lift * math.Cos(math.Pi*float64(q)*(float64(j)+0.5)/float64(numFilters))
		}
		t.cos[k] = row
	}
	return t
}

func (t *dct) applyInto(logMel, dst []float64) {
	for k, row := range t.cos {
		var sum float64
		for j, c := range row {
			sum += logMel[j] * c
		}
		dst[k] = sum
	}
}

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10, mel/2595.0) - 1.0)
}
