package reader

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ieee0824/corpusprep/cleaner"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/lexicon"
)

// timitRate is the sample rate TIMIT time stamps are counted in.
const timitRate = 16000

var timitLabels = []corpus.LabelType{corpus.LabelCharacter, corpus.LabelCharacterDouble, corpus.LabelPhone61, corpus.LabelPhone39}

// timitReader reads <TRAIN|TEST>/<DR>/<SPEAKER>/<SENTENCE>.{TXT,PHN}.
// The dialect sentences (SA*) are skipped. Speaker lists may move TEST
// speakers to other partitions (dev, core test).
type timitReader struct {
	base
	clean cleaner.Cleaner
}

func newTIMIT(b base) (*timitReader, error) {
	r := &timitReader{base: b, clean: cleaner.Func(cleaner.TIMIT)}
	err := walkSuffix(b.opts.Root, ".txt", func(path string) error {
		sent := strings.ToUpper(sessionName(path))
		if strings.HasPrefix(sent, "SA") {
			return nil
		}
		set := timitSet(b.opts.Root, path)
		if set == "" {
			return nil
		}
		spk := strings.ToUpper(filepath.Base(filepath.Dir(path)))
		r.add(r.members.assign(set, spk), path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover TIMIT prompts")
	}
	return r, nil
}

// timitSet returns train or test from the top-level directory of path.
func timitSet(root, path string) corpus.Partition {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		switch strings.ToLower(part) {
		case "train":
			return corpus.Train
		case "test":
			return corpus.Test
		}
	}
	return ""
}

func (r *timitReader) Kind() corpus.Kind { return corpus.TIMIT }
func (r *timitReader) Labels() []corpus.LabelType { return LabelTypes(corpus.TIMIT) }

// Sessions returns one session per sentence recording.
func (r *timitReader) Sessions(p corpus.Partition) ([]*corpus.Session, error) {
	var out []*corpus.Session
	for _, path := range r.sorted(p) {
		s, err := r.readSentence(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *timitReader) readSentence(txtPath string) (*corpus.Session, error) {
	dir := filepath.Dir(txtPath)
	spk := strings.ToUpper(filepath.Base(dir))
	sent := strings.ToUpper(sessionName(txtPath))
	id := spk + "_" + sent

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return nil, errors.Errorf("%s: want \"start end text\"", txtPath)
	}
	start, end, err := sampleSpan(fields[0], fields[1])
	if err != nil {
		return nil, errors.Wrap(err, txtPath)
	}

	phnPath, err := sibling(txtPath, ".phn")
	if err != nil {
		return nil, err
	}
	phones, err := readPHN(phnPath)
	if err != nil {
		return nil, err
	}

	s := corpus.NewSession(id, spk, corpus.ParseGender(spk[:1]))
	s.Audio = r.audioFor(id)
	if s.Audio == "" {
		if p, err := sibling(txtPath, r.opts.AudioExt); err == nil {
			s.Audio = p
		}
	}
	s.Whole = true
	text := r.clean.Clean(strings.Join(fields[2:], " "))
	err = s.Add(corpus.Utterance{
		ID:    id,
		Start: start,
		End:   end,
		Text: map[corpus.LabelType]string{
			corpus.LabelCharacter:       text,
			corpus.LabelCharacterDouble: text,
			corpus.LabelPhone61:         strings.Join(phones, " "),
			corpus.LabelPhone39:         strings.Join(lexicon.FoldTIMITSequence(phones), " "),
		},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// readPHN reads "start end phone" lines.
func readPHN(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var phones []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.Errorf("%s:%d: want \"start end phone\"", path, lineNum)
		}
		phones = append(phones, strings.ToLower(fields[2]))
	}
	return phones, errors.Wrapf(scanner.Err(), "read %s", path)
}

func sampleSpan(a, b string) (start, end int, err error) {
	s, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "start %q", a)
	}
	e, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "end %q", b)
	}
	return corpus.SecondsToFrame(float64(s) / timitRate), corpus.SecondsToFrame(float64(e) / timitRate), nil
}

// sibling finds the file next to path with the same base name and the
// given extension in either case.
func sibling(path, ext string) (string, error) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, e := range []string{strings.ToLower(ext), strings.ToUpper(ext)} {
		if _, err := os.Stat(stem + e); err == nil {
			return stem + e, nil
		}
	}
	return "", errors.Errorf("%s: no %s file", path, ext)
}
