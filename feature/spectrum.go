package feature

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// spectrum computes windowed power spectra with a reusable FFT plan.
type spectrum struct {
	fft    *fourier.FFT
	window []float64
	buf    []float64
	coeffs []complex128
	power  []float64
}

func newSpectrum(fftSize, frameLen int) *spectrum {
	return &spectrum{
		fft:    fourier.NewFFT(fftSize),
		window: hamming(frameLen),
		buf:    make([]float64, fftSize),
		coeffs: make([]complex128, fftSize/2+1),
		power:  make([]float64, fftSize/2+1),
	}
}

// compute writes |FFT(frame*window)|^2 / N into s.power.
func (s *spectrum) compute(frame []float64) []float64 {
	n := len(s.buf)
	for i := range s.buf {
		s.buf[i] = 0
	}
	for i := 0; i < len(frame) && i < n; i++ {
		s.buf[i] = frame[i] * s.window[i]
	}
	s.coeffs = s.fft.Coefficients(s.coeffs, s.buf)
	fn := float64(n)
	for i, c := range s.coeffs {
		s.power[i] = (real(c)*real(c) + imag(c)*imag(c)) / fn
	}
	return s.power
}

// PowerSpectrum computes |FFT(x)|^2 / N for a real-valued frame.
// The frame is zero-padded to fftSize and no window is applied.
// Returns the first fftSize/2+1 bins (positive frequencies).
func PowerSpectrum(frame []float64, fftSize int) []float64 {
	buf := make([]float64, fftSize)
	copy(buf, frame)
	coeffs := fourier.NewFFT(fftSize).Coefficients(nil, buf)
	power := make([]float64, len(coeffs))
	fn := float64(fftSize)
	for i, c := range coeffs {
		power[i] = (real(c)*real(c) + imag(c)*imag(c)) / fn
	}
	return power
}
