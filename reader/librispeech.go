package reader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ieee0824/corpusprep/cleaner"
	"github.com/ieee0824/corpusprep/corpus"
)

var textLabels = []corpus.LabelType{corpus.LabelCharacter, corpus.LabelCharacterDouble, corpus.LabelWord}

// librispeechReader reads <split>/<speaker>/<chapter>/*.trans.txt; the
// split directory name is the partition.
type librispeechReader struct {
	base
	clean   cleaner.Cleaner
	genders map[string]corpus.Gender
}

func newLibrispeech(b base) (*librispeechReader, error) {
	r := &librispeechReader{base: b, clean: cleaner.Func(cleaner.Librispeech)}
	err := walkSuffix(b.opts.Root, ".trans.txt", func(path string) error {
		rel, err := filepath.Rel(b.opts.Root, path)
		if err != nil {
			return err
		}
		split := strings.Split(filepath.ToSlash(rel), "/")[0]
		if split == filepath.Base(path) {
			split = string(corpus.Train)
		}
		spk := strings.SplitN(filepath.Base(path), "-", 2)[0]
		r.add(r.members.assign(corpus.Partition(split), spk), path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover Librispeech transcripts")
	}
	r.genders, err = readSpeakersTxt(filepath.Join(b.opts.Root, "SPEAKERS.TXT"))
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *librispeechReader) Kind() corpus.Kind { return corpus.Librispeech }
func (r *librispeechReader) Labels() []corpus.LabelType { return LabelTypes(corpus.Librispeech) }

// Sessions returns one session per audio file.
func (r *librispeechReader) Sessions(p corpus.Partition) ([]*corpus.Session, error) {
	var out []*corpus.Session
	for _, path := range r.sorted(p) {
		ss, err := r.readTrans(path)
		if err != nil {
			return nil, err
		}
		out = append(out, ss...)
	}
	return out, nil
}

func (r *librispeechReader) readTrans(path string) ([]*corpus.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []*corpus.Session
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id, words, ok := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		if id == "" {
			continue
		}
		if !ok {
			return nil, errors.Errorf("%s: utterance %s has no text", path, id)
		}
		spk := strings.SplitN(id, "-", 2)[0]
		text := r.clean.Clean(words)
		s := corpus.NewSession(id, spk, r.genders[spk])
		if s.Gender == "" {
			s.Gender = corpus.Unknown
		}
		s.Audio = r.audioFor(id)
		s.Whole = true
		if err := s.Add(corpus.Utterance{
			ID:   id,
			Text: textMap(text),
		}); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, errors.Wrapf(scanner.Err(), "read %s", path)
}

// readSpeakersTxt parses "ID | SEX | SUBSET | MINUTES | NAME" lines.
// A missing file yields an empty table.
func readSpeakersTxt(path string) (map[string]corpus.Gender, error) {
	out := make(map[string]corpus.Gender)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		cols := strings.Split(line, "|")
		if len(cols) < 2 {
			continue
		}
		out[strings.TrimSpace(cols[0])] = corpus.ParseGender(cols[1])
	}
	return out, errors.Wrapf(scanner.Err(), "read %s", path)
}

// textMap gives every English text label the same cleaned transcript.
func textMap(text string) map[corpus.LabelType]string {
	m := make(map[corpus.LabelType]string, len(textLabels))
	for _, l := range textLabels {
		m[l] = text
	}
	return m
}
