package feature

import (
	"github.com/ieee0824/corpusprep/audio"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/htk"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknownTool is returned by NewLoader for an unsupported tool name.
var ErrUnknownTool = errors.New("unknown feature tool")

// Tool names accepted by NewLoader.
const (
	ToolHTK = "htk"
	ToolWAV = "wav"
)

// Loader produces the whole-session feature matrix of a session.
type Loader interface {
	Load(s *corpus.Session) (*mat.Dense, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(s *corpus.Session) (*mat.Dense, error)

// Load calls f(s).
func (f LoaderFunc) Load(s *corpus.Session) (*mat.Dense, error) { return f(s) }

// NewLoader returns the loader for a tool: "htk" reads precomputed HTK
// files, "wav" decodes PCM audio and extracts features with cfg.
func NewLoader(tool string, cfg Config) (Loader, error) {
	switch tool {
	case ToolHTK:
		return LoaderFunc(loadHTK), nil
	case ToolWAV:
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return wavLoader{cfg: cfg}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownTool, "%q (want %s or %s)", tool, ToolHTK, ToolWAV)
	}
}

func loadHTK(s *corpus.Session) (*mat.Dense, error) {
	m, h, err := htk.ReadFile(s.Audio)
	if err != nil {
		return nil, err
	}
	if h.SampPeriod != htk.DefaultPeriod {
		return nil, errors.Wrapf(ErrFrameShift, "%s: sample period %d", s.Audio, h.SampPeriod)
	}
	return m, nil
}

type wavLoader struct {
	cfg Config
}

// Load decodes the session audio at its native sample rate.
func (l wavLoader) Load(s *corpus.Session) (*mat.Dense, error) {
	samples, h, err := audio.ReadWAVFile(s.Audio, s.Channel)
	if err != nil {
		return nil, err
	}
	cfg := l.cfg
	cfg.SampleRate = int(h.SampleRate)
	m, err := Extract(samples, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "session %s", s.ID)
	}
	return m, nil
}
