package normalize

import (
	"math"

	"github.com/ieee0824/corpusprep/corpus"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnknownScheme is returned by ParseScheme.
	ErrUnknownScheme = errors.New("unknown normalization scheme")
	// ErrMissingStats is returned when precomputed statistics are required
	// but absent.
	ErrMissingStats = errors.New("missing normalization statistics")
)

// Scheme selects the grouping frames are normalised over.
type Scheme string

const (
	Global    Scheme = "global"    // per gender, fitted on train
	Speaker   Scheme = "speaker"   // per speaker, fitted on each partition
	Utterance Scheme = "utterance" // per utterance, no stored stats
	None      Scheme = "no"
)

// ParseScheme validates a scheme name.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case Global, Speaker, Utterance, None:
		return Scheme(s), nil
	}
	return "", errors.Wrapf(ErrUnknownScheme, "%q", s)
}

// NeedsStats reports whether the scheme accumulates statistics over sessions.
func (s Scheme) NeedsStats() bool { return s == Global || s == Speaker }

// ByGender reports whether statistics are keyed by gender.
func (s Scheme) ByGender() bool { return s == Global }

// Fittable reports whether statistics may be computed on partition p.
// Global statistics come from train only; speaker statistics are computed
// on whatever partition the speaker appears in.
func (s Scheme) Fittable(p corpus.Partition) bool {
	switch s {
	case Global:
		return p.IsTrain()
	case Speaker:
		return true
	}
	return false
}

// Normalizer z-scores feature matrices.
type Normalizer struct {
	scheme Scheme
	stats  map[string]Stats
}

// New builds a normalizer for partition. Schemes that need statistics
// fail with ErrMissingStats when stats is empty.
func New(scheme Scheme, partition corpus.Partition, stats map[string]Stats) (*Normalizer, error) {
	if _, err := ParseScheme(string(scheme)); err != nil {
		return nil, err
	}
	if scheme.NeedsStats() && len(stats) == 0 {
		return nil, errors.Wrapf(ErrMissingStats, "%s normalization of %s", scheme, partition)
	}
	return &Normalizer{scheme: scheme, stats: stats}, nil
}

// Scheme returns the normalizer's scheme.
func (n *Normalizer) Scheme() Scheme { return n.scheme }

// Apply normalises m in place. key selects the gender or speaker
// statistics and is ignored by the utterance and no schemes.
func (n *Normalizer) Apply(key string, m *mat.Dense) error {
	switch n.scheme {
	case None:
		return nil
	case Utterance:
		zscore(m, columnStats(m))
		return nil
	}
	st, ok := n.stats[key]
	if !ok {
		return errors.Wrapf(ErrMissingStats, "%s statistics for %q", n.scheme, key)
	}
	if _, cols := m.Dims(); cols != len(st.Mean) || cols != len(st.Std) {
		return errors.Errorf("normalize: frame dim %d, stats dim %d", cols, len(st.Mean))
	}
	zscore(m, st)
	return nil
}

func columnStats(m *mat.Dense) Stats {
	rows, cols := m.Dims()
	st := Stats{Mean: make([]float64, cols), Std: make([]float64, cols)}
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		st.Mean[j], st.Std[j] = stat.MeanStdDev(col, nil)
	}
	return st
}

// zscore applies (x - mean) / std; zero or undefined std divides by 1.
func zscore(m *mat.Dense, st Stats) {
	rows, cols := m.Dims()
	for j := 0; j < cols; j++ {
		sd := st.Std[j]
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		for i := 0; i < rows; i++ {
			m.Set(i, j, (m.At(i, j)-st.Mean[j])/sd)
		}
	}
}
