// Package feature turns audio into frame-level acoustic feature matrices.
package feature

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ieee0824/corpusprep/corpus"
)

// ShiftMs is the only frame shift segment boundaries can be cut at.
const ShiftMs = 1000.0 / corpus.FramesPerSecond

// ErrFrameShift is returned when features would not line up with
// transcript frames.
var ErrFrameShift = errors.New("frame shift differs from transcript frame rate")

// Feature types.
const (
	TypeMFCC  = "mfcc"
	TypeFBank = "fbank"
)

// Config holds all feature extraction parameters.
type Config struct {
	Type       string  `mapstructure:"type" yaml:"type"`
	Channels   int     `mapstructure:"channels" yaml:"channels"` // mel filters
	SampleRate int     `mapstructure:"sample-rate" yaml:"sample_rate"`
	WindowMs   float64 `mapstructure:"window" yaml:"window_ms"`
	SlideMs    float64 `mapstructure:"slide" yaml:"slide_ms"`
	Energy     bool    `mapstructure:"energy" yaml:"energy"`
	Delta      bool    `mapstructure:"delta" yaml:"delta"`
	DeltaDelta bool    `mapstructure:"deltadelta" yaml:"deltadelta"`

	PreEmphCoeff float64 `mapstructure:"preemph" yaml:"preemph"`
	NumCepstra   int     `mapstructure:"cepstra" yaml:"cepstra"`
	CepLifter    int     `mapstructure:"lifter" yaml:"lifter"`
	LowFreq      float64 `mapstructure:"low-freq" yaml:"low_freq"`
	HighFreq     float64 `mapstructure:"high-freq" yaml:"high_freq"` // 0 means Nyquist
	FFTSize      int     `mapstructure:"fft-size" yaml:"fft_size"`   // 0 means next power of two
}

// DefaultConfig returns 40-channel log mel filterbank features with
// energy, delta and acceleration coefficients (123 dimensions).
func DefaultConfig() Config {
	return Config{
		Type:         TypeFBank,
		Channels:     40,
		SampleRate:   16000,
		WindowMs:     25.0,
		SlideMs:      10.0,
		Energy:       true,
		Delta:        true,
		DeltaDelta:   true,
		PreEmphCoeff: 0.97,
		NumCepstra:   12,
		CepLifter:    22,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Type {
	case TypeMFCC, TypeFBank:
	default:
		return errors.Errorf("feature: unknown type %q", c.Type)
	}
	if c.Channels <= 0 {
		return errors.Errorf("feature: channels must be positive, got %d", c.Channels)
	}
	if c.WindowMs <= 0 || c.SlideMs <= 0 {
		return errors.Errorf("feature: window %.1fms and slide %.1fms must be positive", c.WindowMs, c.SlideMs)
	}
	// Transcript times are converted at corpus.FramesPerSecond.
	if math.Abs(c.SlideMs-ShiftMs) > 1e-9 {
		return errors.Wrapf(ErrFrameShift, "slide %.1fms", c.SlideMs)
	}
	if c.Type == TypeMFCC && (c.NumCepstra <= 0 || c.NumCepstra > c.Channels) {
		return errors.Errorf("feature: cepstra %d out of range for %d channels", c.NumCepstra, c.Channels)
	}
	if c.DeltaDelta && !c.Delta {
		return errors.New("feature: deltadelta requires delta")
	}
	return nil
}

// StaticDim returns the per-frame dimension before deltas.
func (c Config) StaticDim() int {
	d := c.Channels
	if c.Type == TypeMFCC {
		d = c.NumCepstra
	}
	if c.Energy {
		d++
	}
	return d
}

// FeatureDim returns the total feature vector dimension.
func (c Config) FeatureDim() int {
	d := c.StaticDim()
	n := 1
	if c.Delta {
		n++
	}
	if c.DeltaDelta {
		n++
	}
	return d * n
}

func (c Config) frameLen() int {
	return int(c.WindowMs * float64(c.SampleRate) / 1000.0)
}

func (c Config) frameShift() int {
	return int(c.SlideMs * float64(c.SampleRate) / 1000.0)
}

func (c Config) fftSize() int {
	if c.FFTSize > 0 {
		return c.FFTSize
	}
	n := 1
	for n < c.frameLen() {
		n <<= 1
	}
	return n
}

func (c Config) highFreq() float64 {
	if c.HighFreq > 0 {
		return c.HighFreq
	}
	return float64(c.SampleRate) / 2
}
