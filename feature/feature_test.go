package feature

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/htk"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func generateSine(n, rate int, freq float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return samples
}

func TestPreEmphasize(t *testing.T) {
	samples := []float64{1.0, 2.0, 3.0, 4.0}
	out := PreEmphasize(samples, 0.97)
	if out[0] != 1.0 {
		t.Errorf("out[0] = %f, want 1.0", out[0])
	}
	// out[1] = 2.0 - 0.97*1.0 = 1.03
	if math.Abs(out[1]-1.03) > 1e-10 {
		t.Errorf("out[1] = %f, want 1.03", out[1])
	}
}

func TestFrame(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i)
	}
	frames := Frame(samples, 25, 10)
	// numFrames = 1 + (100-25)/10 = 8
	if len(frames) != 8 {
		t.Fatalf("numFrames = %d, want 8", len(frames))
	}
	if len(frames[0]) != 25 {
		t.Fatalf("frameLen = %d, want 25", len(frames[0]))
	}
	if frames[1][0] != 10.0 {
		t.Errorf("frames[1][0] = %f, want 10.0", frames[1][0])
	}
	if Frame(samples[:10], 25, 10) != nil {
		t.Error("short input should produce no frames")
	}
}

func TestHamming(t *testing.T) {
	w := hamming(10)
	if math.Abs(w[0]-0.08) > 0.01 {
		t.Errorf("w[0] = %f, want ~0.08", w[0])
	}
	if w[5] < 0.9 {
		t.Errorf("w[5] = %f, want close to 1.0", w[5])
	}
}

func TestPowerSpectrum(t *testing.T) {
	frame := make([]float64, 16)
	frame[0] = 1.0 // impulse
	ps := PowerSpectrum(frame, 16)
	if len(ps) != 9 {
		t.Fatalf("len(ps) = %d, want 9", len(ps))
	}
	for i, v := range ps {
		if math.Abs(v-1.0/16.0) > 1e-10 {
			t.Errorf("ps[%d] = %f, want %f", i, v, 1.0/16.0)
		}
	}
}

func TestPowerSpectrum_Sinusoid(t *testing.T) {
	n := 8
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = math.Cos(2 * math.Pi * 2 * float64(i) / float64(n))
	}
	ps := PowerSpectrum(frame, n)
	for i, v := range ps {
		if i == 2 {
			// |X[2]| = N/2 = 4, power = 16/8 = 2
			if math.Abs(v-2) > 1e-9 {
				t.Errorf("ps[2] = %f, want 2", v)
			}
		} else if v > 1e-9 {
			t.Errorf("ps[%d] = %f, want ~0", i, v)
		}
	}
}

func TestMelFilterbank(t *testing.T) {
	fb := NewMelFilterbank(26, 512, 16000, 0, 8000)
	if fb.Len() != 26 {
		t.Fatalf("numFilters = %d, want 26", fb.Len())
	}
	for i := 0; i < fb.Len(); i++ {
		w := fb.Weights(i)
		if len(w) != 257 {
			t.Fatalf("filter[%d] len = %d, want 257", i, len(w))
		}
		peak := 0.0
		for j, v := range w {
			if v < 0 || v > 1 {
				t.Errorf("filter[%d][%d] = %f out of [0,1]", i, j, v)
			}
			peak = math.Max(peak, v)
		}
		if peak == 0 {
			t.Errorf("filter[%d] is empty", i)
		}
	}
}

func TestDelta(t *testing.T) {
	// Linear ramp: features[t] = [t]
	data := make([]float64, 10)
	for i := range data {
		data[i] = float64(i)
	}
	d := Delta(mat.NewDense(10, 1, data), DeltaWindow)
	if r, _ := d.Dims(); r != 10 {
		t.Fatalf("rows = %d, want 10", r)
	}
	for i := 2; i < 8; i++ {
		if math.Abs(d.At(i, 0)-1.0) > 1e-10 {
			t.Errorf("delta[%d] = %f, want 1.0", i, d.At(i, 0))
		}
	}
}

func TestExtract_Dimensions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantDim int
	}{
		{"fbank default", func(*Config) {}, 123},
		{"fbank static", func(c *Config) { c.Delta, c.DeltaDelta = false, false }, 41},
		{"fbank no energy", func(c *Config) { c.Energy = false; c.DeltaDelta = false }, 80},
		{"mfcc", func(c *Config) { c.Type = TypeMFCC }, 39},
	}
	samples := generateSine(16000, 16000, 440)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if cfg.FeatureDim() != tt.wantDim {
				t.Fatalf("FeatureDim = %d, want %d", cfg.FeatureDim(), tt.wantDim)
			}
			m, err := Extract(samples, cfg)
			if err != nil {
				t.Fatalf("Extract error: %v", err)
			}
			rows, cols := m.Dims()
			// 1 + (16000-400)/160 = 98
			if rows != 98 {
				t.Errorf("frames = %d, want 98", rows)
			}
			if cols != tt.wantDim {
				t.Errorf("dim = %d, want %d", cols, tt.wantDim)
			}
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("m[%d][%d] = %f (not finite)", i, j, v)
					}
				}
			}
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := Extract(nil, cfg); err == nil {
		t.Error("expected error for empty samples")
	}
	if _, err := Extract(make([]float64, 100), cfg); err == nil {
		t.Error("expected error for input shorter than a frame")
	}
	bad := cfg
	bad.Type = "plp"
	if _, err := Extract(make([]float64, 16000), bad); err == nil {
		t.Error("expected error for unknown feature type")
	}
}

func TestNewLoader_UnknownTool(t *testing.T) {
	_, err := NewLoader("python_speech_features", DefaultConfig())
	if errors.Cause(err) != ErrUnknownTool {
		t.Errorf("err = %v, want ErrUnknownTool", err)
	}
}

func TestValidate_FrameShift(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlideMs = 20
	if err := cfg.Validate(); errors.Cause(err) != ErrFrameShift {
		t.Errorf("slide 20ms: err = %v, want ErrFrameShift", err)
	}
	if _, err := NewLoader(ToolWAV, cfg); errors.Cause(err) != ErrFrameShift {
		t.Errorf("NewLoader: err = %v, want ErrFrameShift", err)
	}
}

func TestLoader_HTKPeriodMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.htk")
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := htk.WriteFile(path, m, 2*htk.DefaultPeriod, htk.KindFBank); err != nil {
		t.Fatal(err)
	}
	l, err := NewLoader(ToolHTK, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s := corpus.NewSession("s", "spk", corpus.Male)
	s.Audio = path
	if _, err := l.Load(s); errors.Cause(err) != ErrFrameShift {
		t.Errorf("err = %v, want ErrFrameShift", err)
	}
}

func TestLoader_HTK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.htk")
	want := mat.NewDense(4, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	if err := htk.WriteFile(path, want, htk.DefaultPeriod, htk.KindFBank); err != nil {
		t.Fatal(err)
	}
	l, err := NewLoader(ToolHTK, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s := corpus.NewSession("s", "spk", corpus.Male)
	s.Audio = path
	got, err := l.Load(s)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(got, want, 1e-6) {
		t.Errorf("loaded %v", mat.Formatted(got))
	}
}

func TestLoader_WAV(t *testing.T) {
	rate := 8000
	samples := generateSine(rate/2, rate, 300)
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v * 32767)
	}
	path := filepath.Join(t.TempDir(), "s.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	l, err := NewLoader(ToolWAV, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s := corpus.NewSession("s", "spk", corpus.Female)
	s.Audio = path
	m, err := l.Load(s)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := m.Dims()
	// 0.5 s at 8 kHz: 1 + (4000-200)/80 = 48 frames
	if rows != 48 || cols != 123 {
		t.Errorf("dims = %dx%d, want 48x123", rows, cols)
	}
}
