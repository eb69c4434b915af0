package feature

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Extract computes a frames x FeatureDim matrix from raw samples.
func Extract(samples []float64, cfg Config) (*mat.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("feature: empty samples")
	}
	frameLen, frameShift := cfg.frameLen(), cfg.frameShift()
	frames := Frame(PreEmphasize(samples, cfg.PreEmphCoeff), frameLen, frameShift)
	if len(frames) == 0 {
		return nil, errors.Errorf("feature: %d samples too short for a %d-sample frame", len(samples), frameLen)
	}

	fftSize := cfg.fftSize()
	spec := newSpectrum(fftSize, frameLen)
	fb := NewMelFilterbank(cfg.Channels, fftSize, cfg.SampleRate, cfg.LowFreq, cfg.highFreq())
	var cep *dct
	if cfg.Type == TypeMFCC {
		cep = newDCT(cfg.NumCepstra, cfg.Channels, cfg.CepLifter)
	}

	dim := cfg.StaticDim()
	static := mat.NewDense(len(frames), dim, nil)
	logMel := make([]float64, cfg.Channels)
	row := make([]float64, dim)
	for i, frame := range frames {
		fb.applyInto(spec.compute(frame), logMel)
		n := copy(row, logMel)
		if cep != nil {
			cep.applyInto(logMel, row)
			n = cfg.NumCepstra
		}
		if cfg.Energy {
			row[n] = logEnergy(frame)
		}
		static.SetRow(i, row)
	}
	return AppendDeltas(static, cfg.Delta, cfg.DeltaDelta), nil
}
