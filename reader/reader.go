// Package reader discovers the transcript and audio files of a corpus,
// assigns sessions to partitions, and parses each corpus's native
// transcript format into cleaned utterance records.
package reader

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ieee0824/corpusprep/cleaner"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/lexicon"
)

// Reader yields the sessions of one corpus.
type Reader interface {
	Kind() corpus.Kind
	// Partitions lists the discovered partitions, training partitions first.
	Partitions() []corpus.Partition
	// Labels lists the label types the corpus provides.
	Labels() []corpus.LabelType
	// Sessions parses every session of partition p in a stable order.
	Sessions(p corpus.Partition) ([]*corpus.Session, error)
}

// Options configure discovery.
type Options struct {
	Root string
	// SpeakerLists maps a partition to a file listing its speaker or
	// session IDs, one per line.
	SpeakerLists map[corpus.Partition]string
	// AudioExt is the extension of the feature source files (".wav" or ".htk").
	AudioExt string
	// PhoneMap converts CSJ kana to phones; nil uses the built-in table.
	PhoneMap *lexicon.PhoneMap
	Log      logrus.FieldLogger
}

func (o *Options) defaults() {
	if o.AudioExt == "" {
		o.AudioExt = ".wav"
	}
	if o.PhoneMap == nil {
		o.PhoneMap = lexicon.DefaultPhoneMap()
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
}

// New discovers the files of a corpus under opts.Root.
func New(kind corpus.Kind, opts Options) (Reader, error) {
	opts.defaults()
	if fi, err := os.Stat(opts.Root); err != nil {
		return nil, errors.Wrap(err, "corpus root")
	} else if !fi.IsDir() {
		return nil, errors.Errorf("corpus root %s is not a directory", opts.Root)
	}
	members, err := loadMembership(opts.SpeakerLists)
	if err != nil {
		return nil, err
	}
	audio, err := indexFiles(opts.Root, opts.AudioExt)
	if err != nil {
		return nil, err
	}
	b := base{opts: opts, members: members, audio: audio, files: make(map[corpus.Partition][]string)}
	switch kind {
	case corpus.CSJ:
		return newCSJ(b)
	case corpus.Librispeech:
		return newLibrispeech(b)
	case corpus.Switchboard:
		return newSwitchboard(b)
	case corpus.TIMIT:
		return newTIMIT(b)
	}
	return nil, errors.Wrapf(corpus.ErrUnknownKind, "%v", kind)
}

// LabelTypes returns the label types a corpus reader emits.
func LabelTypes(kind corpus.Kind) []corpus.LabelType {
	var ls []corpus.LabelType
	switch kind {
	case corpus.CSJ:
		ls = csjLabels
	case corpus.Librispeech, corpus.Switchboard:
		ls = textLabels
	case corpus.TIMIT:
		ls = timitLabels
	}
	return append([]corpus.LabelType(nil), ls...)
}

// base holds what every reader shares: options, partition membership,
// the audio index and the transcript files found per partition.
type base struct {
	opts    Options
	members membership
	audio   map[string]string
	files   map[corpus.Partition][]string
}

func (b *base) add(p corpus.Partition, path string) {
	b.files[p] = append(b.files[p], path)
}

// Partitions implements Reader.
func (b *base) Partitions() []corpus.Partition {
	ps := make([]corpus.Partition, 0, len(b.files))
	for p := range b.files {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if ti, tj := ps[i].IsTrain(), ps[j].IsTrain(); ti != tj {
			return ti
		}
		return ps[i] < ps[j]
	})
	return ps
}

func (b *base) sorted(p corpus.Partition) []string {
	files := append([]string(nil), b.files[p]...)
	sort.Strings(files)
	return files
}

// audioFor looks up the feature source of a session by base name.
func (b *base) audioFor(names ...string) string {
	for _, n := range names {
		if path, ok := b.audio[strings.ToLower(n)]; ok {
			return path
		}
	}
	return ""
}

func cleaners(kind corpus.Kind, labels []corpus.LabelType) (map[corpus.LabelType]cleaner.Cleaner, error) {
	out := make(map[corpus.LabelType]cleaner.Cleaner, len(labels))
	for _, l := range labels {
		c, err := cleaner.For(kind, l)
		if err != nil {
			return nil, err
		}
		out[l] = c
	}
	return out, nil
}

// membership maps speaker or session IDs to the partition whose list
// names them.
type membership map[string]corpus.Partition

func loadMembership(lists map[corpus.Partition]string) (membership, error) {
	m := make(membership)
	for p, path := range lists {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "speaker list for %s", p)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			if prev, dup := m[fields[0]]; dup && prev != p {
				f.Close()
				return nil, errors.Errorf("%s listed in both %s and %s", fields[0], prev, p)
			}
			m[fields[0]] = p
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
	}
	return m, nil
}

// assign returns the listed partition of the first matching ID, or fallback.
func (m membership) assign(fallback corpus.Partition, ids ...string) corpus.Partition {
	for _, id := range ids {
		if p, ok := m[id]; ok {
			return p
		}
	}
	return fallback
}

// indexFiles maps lower-cased base names (without extension) to paths of
// files with the given extension, matched case-insensitively.
func indexFiles(root, ext string) (map[string]string, error) {
	idx := make(map[string]string)
	ext = strings.ToLower(ext)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != ext {
			return nil
		}
		name := strings.ToLower(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
		idx[name] = path
		return nil
	})
	return idx, errors.Wrapf(err, "index %s files", ext)
}

// walkSuffix calls fn for every regular file whose lower-cased name ends
// with suffix.
func walkSuffix(root, suffix string, fn func(path string) error) error {
	suffix = strings.ToLower(suffix)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), suffix) {
			return nil
		}
		return fn(path)
	})
}
