// Package prepare runs the preparation stages of a corpus: labels
// (vocabularies and encoded transcripts) and inputs (segmented,
// normalised feature arrays).
package prepare

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/ieee0824/corpusprep/artifact"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/feature"
	"github.com/ieee0824/corpusprep/normalize"
	"github.com/ieee0824/corpusprep/reader"
)

// Options control a pipeline run.
type Options struct {
	OutPath string
	Scheme  normalize.Scheme
	// SilDuration is the silence margin in frames added around utterances.
	SilDuration int
	// MinFreq is the word-vocabulary frequency threshold.
	MinFreq   int
	Overwrite bool
	Quiet     bool
	// Progress receives progress bars; nil means stderr.
	Progress io.Writer
}

// Sessions are the parsed sessions of every partition.
type Sessions map[corpus.Partition][]*corpus.Session

// Pipeline prepares one corpus.
type Pipeline struct {
	opts   Options
	reader reader.Reader
	loader feature.Loader
	log    logrus.FieldLogger
	runID  string
}

// New builds a pipeline. The loader is only used by Inputs.
func New(opts Options, r reader.Reader, l feature.Loader, log logrus.FieldLogger) (*Pipeline, error) {
	if opts.OutPath == "" {
		return nil, errors.New("prepare: output path is required")
	}
	if _, err := normalize.ParseScheme(string(opts.Scheme)); err != nil {
		return nil, err
	}
	if opts.SilDuration < 0 {
		return nil, errors.Errorf("prepare: negative silence duration %d", opts.SilDuration)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	runID := artifact.NewRunID()
	return &Pipeline{
		opts:   opts,
		reader: r,
		loader: l,
		log:    log.WithFields(logrus.Fields{"corpus": r.Kind().String(), "run": runID}),
		runID:  runID,
	}, nil
}

// Run reads labels and then prepares inputs from the same sessions.
func (p *Pipeline) Run(ctx context.Context) error {
	sessions, err := p.Labels(ctx)
	if err != nil {
		return err
	}
	return p.Inputs(ctx, sessions)
}

func (p *Pipeline) dir(parts ...string) string {
	return filepath.Join(append([]string{p.opts.OutPath, p.reader.Kind().String()}, parts...)...)
}

// begin decides whether a stage runs: finished stages are skipped unless
// overwriting, anything else is reset.
func (p *Pipeline) begin(s artifact.Stage, log logrus.FieldLogger) (bool, error) {
	if s.Done() && !p.opts.Overwrite {
		log.Info("stage already complete, skipping")
		return false, nil
	}
	if err := s.Reset(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pipeline) manifest(stage string, part corpus.Partition) *artifact.Manifest {
	return &artifact.Manifest{
		RunID:     p.runID,
		Corpus:    p.reader.Kind().String(),
		Stage:     stage,
		Partition: string(part),
		Started:   time.Now().UTC(),
	}
}

func (p *Pipeline) bar(n int, desc string) *progressbar.ProgressBar {
	if p.opts.Quiet {
		return progressbar.DefaultSilent(int64(n), desc)
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(p.opts.Progress),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
