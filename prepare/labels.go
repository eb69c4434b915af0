package prepare

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ieee0824/corpusprep/artifact"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/lexicon"
	"github.com/ieee0824/corpusprep/vocab"
)

// vocabulary returns how a label type is split and built. Index 0 is the
// space or silence symbol of every symbol-level label; word vocabularies
// are plain sorted words followed by OOV.
func vocabulary(label corpus.LabelType, minFreq int) (vocab.Scheme, vocab.Options) {
	space := vocab.Options{Reserved: []string{vocab.Space}}
	switch label {
	case corpus.LabelCharacter, corpus.LabelKanji:
		return vocab.Character, space
	case corpus.LabelCharacterDouble, corpus.LabelKana:
		return vocab.Digraph, space
	case corpus.LabelWord:
		return vocab.Word, vocab.Options{MinFreq: minFreq, OOV: vocab.DefaultOOV}
	case corpus.LabelPhone39:
		return vocab.Token, vocab.Options{Reserved: []string{"sil"}}
	case corpus.LabelPhone61:
		return vocab.Token, vocab.Options{Reserved: []string{"h#"}}
	case corpus.LabelPhone:
		// The built-in inventory keeps phone indices stable across
		// corpora; phones from a custom map follow it.
		return vocab.Token, vocab.Options{Reserved: lexicon.Symbols(lexicon.AllPhonemes())}
	}
	return vocab.Character, space
}

// Labels reads every partition, builds one vocabulary per label type from
// the training partitions and writes encoded labels. Evaluation
// partitions keep their cleaned text instead of indices.
func (p *Pipeline) Labels(ctx context.Context) (Sessions, error) {
	sessions := make(Sessions)
	for _, part := range p.reader.Partitions() {
		ss, err := p.reader.Sessions(part)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", part)
		}
		sessions[part] = ss
		p.log.WithFields(logrus.Fields{"partition": part, "sessions": len(ss)}).Info("read transcripts")
	}

	for _, label := range p.reader.Labels() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scheme, opts := vocabulary(label, p.opts.MinFreq)
		train := vocab.NewBuilder()
		for part, ss := range sessions {
			if part.IsTrain() {
				count(train, ss, label, scheme)
			}
		}
		if train.Total() == 0 {
			return nil, errors.Errorf("no %s training transcripts", label)
		}
		table := train.Build(opts)
		if err := table.Save(p.dir("vocab", string(label)+".txt")); err != nil {
			return nil, err
		}
		log := p.log.WithField("label", label)
		log.WithField("size", table.Len()).Info("built vocabulary")

		enc := vocab.Encoder{Table: table, Scheme: scheme}
		for _, part := range p.reader.Partitions() {
			if err := p.writeLabels(ctx, part, label, sessions[part], enc); err != nil {
				return nil, err
			}
		}
	}
	return sessions, nil
}

func count(b *vocab.Builder, ss []*corpus.Session, label corpus.LabelType, scheme vocab.Scheme) {
	for _, s := range ss {
		for _, u := range s.Utterances {
			b.Add(vocab.Split(scheme, u.Text[label], nil)...)
		}
	}
}

func (p *Pipeline) writeLabels(ctx context.Context, part corpus.Partition, label corpus.LabelType, ss []*corpus.Session, enc vocab.Encoder) error {
	log := p.log.WithFields(logrus.Fields{"stage": "labels", "label": label, "partition": part})
	stage := artifact.Stage{Dir: p.dir("labels", string(label), string(part))}
	run, err := p.begin(stage, log)
	if err != nil || !run {
		return err
	}
	m := p.manifest("labels", part)
	m.Label = string(label)
	m.Vocabulary = enc.Table.Len()

	seen := vocab.NewBuilder()
	count(seen, ss, label, enc.Scheme)
	m.OOVRate = vocab.OOVRate(seen, enc.Table)
	if enc.Table.OOV() >= 0 {
		log.Infof("OOV rate %.3f%%", m.OOVRate)
	}

	bar := p.bar(len(ss), string(part)+" "+string(label))
	for _, s := range ss {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, u := range s.Utterances {
			text := u.Text[label]
			if text == "" {
				log.WithFields(logrus.Fields{"session": s.ID, "utterance": u.ID}).Warn("empty transcript")
				m.Skipped++
				continue
			}
			base := filepath.Join(stage.Dir, s.Speaker, u.ID)
			if part.IsEval() {
				err = artifact.WriteText(base+".txt", text)
			} else {
				var ids []int
				if ids, err = enc.Encode(text); err != nil {
					return errors.Wrapf(err, "%s utterance %s", part, u.ID)
				}
				err = artifact.WriteLabels(base+".npy", ids)
			}
			if err != nil {
				return err
			}
			m.Utterances++
		}
		bar.Add(1)
	}
	bar.Finish()
	return stage.Finish(m)
}
