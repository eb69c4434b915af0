package prepare

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/ieee0824/corpusprep/artifact"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/normalize"
	"github.com/ieee0824/corpusprep/segment"
)

// segmented is one utterance cut from its session.
type segmented struct {
	id     string
	frames *mat.Dense
}

// Inputs writes normalised per-utterance feature arrays and a frame-count
// index for every partition. Global statistics are fitted on the training
// partitions; speaker statistics on each partition.
func (p *Pipeline) Inputs(ctx context.Context, sessions Sessions) error {
	if p.loader == nil {
		return errors.New("prepare: no feature loader")
	}
	scheme := p.opts.Scheme

	var global map[string]normalize.Stats
	if scheme == normalize.Global {
		var train []*corpus.Session
		for _, part := range p.reader.Partitions() {
			if part.IsTrain() {
				train = append(train, sessions[part]...)
			}
		}
		if len(train) > 0 {
			var err error
			if global, err = p.stats(ctx, corpus.Train, train); err != nil {
				return err
			}
		}
	}

	for _, part := range p.reader.Partitions() {
		stats := global
		if scheme == normalize.Speaker {
			var err error
			if stats, err = p.stats(ctx, part, sessions[part]); err != nil {
				return err
			}
		}
		norm, err := normalize.New(scheme, part, stats)
		if err != nil {
			return err
		}
		if err := p.writeInputs(ctx, part, sessions[part], norm); err != nil {
			return err
		}
	}
	return nil
}

// stats returns the statistics of one scheme and partition, computing
// them in two passes unless a finished stats stage exists.
func (p *Pipeline) stats(ctx context.Context, part corpus.Partition, ss []*corpus.Session) (map[string]normalize.Stats, error) {
	scheme := p.opts.Scheme
	if !scheme.Fittable(part) {
		return nil, errors.Wrapf(normalize.ErrMissingStats, "%s statistics cannot be fitted on %s", scheme, part)
	}
	log := p.log.WithFields(logrus.Fields{"stage": "stats", "normalize": scheme, "partition": part})
	stage := artifact.Stage{Dir: p.dir("stats", string(scheme), string(part))}
	if stage.Done() && !p.opts.Overwrite {
		log.Info("loading saved statistics")
		return loadStats(stage.Dir)
	}
	if err := stage.Reset(); err != nil {
		return nil, err
	}

	accs := normalize.Accumulators{}
	byGender := scheme.ByGender()
	err := p.eachUtterance(ctx, ss, "mean "+string(part), func(s *corpus.Session, u segmented) error {
		return accs.Get(s.StatsKey(byGender)).AddFrames(u.frames)
	})
	if err != nil {
		return nil, err
	}
	means := accs.Means()
	err = p.eachUtterance(ctx, ss, "std "+string(part), func(s *corpus.Session, u segmented) error {
		key := s.StatsKey(byGender)
		return accs.Get(key).AddDeviation(u.frames, means[key])
	})
	if err != nil {
		return nil, err
	}

	stats := accs.Stats()
	m := p.manifest("stats", part)
	m.Normalize = string(scheme)
	for _, key := range accs.Keys() {
		a := accs[key]
		m.Frames += a.N
		if err := artifact.SaveStats(stage.Dir, key, stats[key].Mean, stats[key].Std); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"key": key, "frames": a.N}).Debug("saved statistics")
	}
	if err := stage.Finish(m); err != nil {
		return nil, err
	}
	return stats, nil
}

func loadStats(dir string) (map[string]normalize.Stats, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_mean.npy"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]normalize.Stats, len(matches))
	for _, path := range matches {
		key := strings.TrimSuffix(filepath.Base(path), "_mean.npy")
		mean, std, err := artifact.LoadStats(dir, key)
		if err != nil {
			return nil, err
		}
		out[key] = normalize.Stats{Mean: mean, Std: std}
	}
	return out, nil
}

func (p *Pipeline) writeInputs(ctx context.Context, part corpus.Partition, ss []*corpus.Session, norm *normalize.Normalizer) error {
	log := p.log.WithFields(logrus.Fields{"stage": "inputs", "partition": part})
	stage := artifact.Stage{Dir: p.dir("inputs", string(part))}
	run, err := p.begin(stage, log)
	if err != nil || !run {
		return err
	}
	m := p.manifest("inputs", part)
	m.Normalize = string(norm.Scheme())
	byGender := norm.Scheme().ByGender()
	frames := make(map[string]int)
	err = p.eachUtterance(ctx, ss, "inputs "+string(part), func(s *corpus.Session, u segmented) error {
		if err := norm.Apply(s.StatsKey(byGender), u.frames); err != nil {
			return errors.Wrapf(err, "utterance %s", u.id)
		}
		if err := artifact.WriteMatrix(filepath.Join(stage.Dir, s.Speaker, u.id+".npy"), u.frames); err != nil {
			return err
		}
		n, _ := u.frames.Dims()
		frames[u.id] = n
		m.Frames += n
		m.Utterances++
		return nil
	})
	if err != nil {
		return err
	}
	if err := artifact.WriteFrameIndex(filepath.Join(stage.Dir, artifact.FrameIndexFile), frames); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"utterances": m.Utterances, "frames": m.Frames}).Info("wrote inputs")
	return stage.Finish(m)
}

// eachUtterance loads every session once and calls fn for each of its
// segmented utterances. Cancellation is checked between sessions.
func (p *Pipeline) eachUtterance(ctx context.Context, ss []*corpus.Session, desc string, fn func(*corpus.Session, segmented) error) error {
	bar := p.bar(len(ss), desc)
	defer bar.Finish()
	for _, s := range ss {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Len() == 0 {
			bar.Add(1)
			continue
		}
		utts, err := p.segment(s)
		if err != nil {
			return err
		}
		for _, u := range utts {
			if err := fn(s, u); err != nil {
				return err
			}
		}
		bar.Add(1)
	}
	return nil
}

// segment loads a session and cuts it into utterances extended with
// silence. Whole-file sessions use the full matrix.
func (p *Pipeline) segment(s *corpus.Session) ([]segmented, error) {
	log := p.log.WithField("session", s.ID)
	if s.Audio == "" {
		return nil, errors.Errorf("session %s: no audio file found", s.ID)
	}
	m, err := p.loader.Load(s)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", s.Audio)
	}
	total, _ := m.Dims()
	extended := make([]segment.Span, s.Len())
	if s.Whole {
		for i := range extended {
			extended[i] = segment.Span{Start: 0, End: total}
		}
	} else {
		for i, u := range s.Utterances {
			extended[i] = segment.Span{Start: u.Start, End: u.End}
		}
		var issues []segment.Issue
		extended, issues = segment.Extend(extended, total, p.opts.SilDuration)
		for _, is := range issues {
			log.WithField("utterance", s.Utterances[is.Index].ID).Warn(is.String())
		}
	}
	out := make([]segmented, 0, len(extended))
	for i, span := range extended {
		frames := segment.Slice(m, span)
		if frames == nil {
			log.WithFields(logrus.Fields{"utterance": s.Utterances[i].ID, "span": span, "frames": total}).Warn("utterance outside feature matrix, skipped")
			continue
		}
		out = append(out, segmented{id: s.Utterances[i].ID, frames: frames})
	}
	return out, nil
}
