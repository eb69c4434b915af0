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

// SDB column indices.
const (
	sdbTiming = 0  // "NNNN SSSSS.SSS-EEEEE.EEE ..."
	sdbKanji  = 5  // orthographic form
	sdbKana   = 11 // pronunciation
)

var csjLabels = []corpus.LabelType{corpus.LabelKanji, corpus.LabelKana, corpus.LabelPhone}

type csjReader struct {
	base
	clean map[corpus.LabelType]cleaner.Cleaner
}

func newCSJ(b base) (*csjReader, error) {
	clean, err := cleaners(corpus.CSJ, csjLabels)
	if err != nil {
		return nil, err
	}
	r := &csjReader{base: b, clean: clean}
	err = walkSuffix(b.opts.Root, ".sdb", func(path string) error {
		id := sessionName(path)
		r.add(r.members.assign(corpus.Train, id), path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover CSJ SDB files")
	}
	return r, nil
}

func (r *csjReader) Kind() corpus.Kind { return corpus.CSJ }
func (r *csjReader) Labels() []corpus.LabelType { return LabelTypes(corpus.CSJ) }

func (r *csjReader) Sessions(p corpus.Partition) ([]*corpus.Session, error) {
	var out []*corpus.Session
	for _, path := range r.sorted(p) {
		s, err := r.readSDB(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// csjGender reads the gender letter of lecture IDs such as A01F0055.
func csjGender(id string) corpus.Gender {
	if len(id) < 4 {
		return corpus.Unknown
	}
	return corpus.ParseGender(id[3:4])
}

type sdbUtterance struct {
	num        int
	start, end float64
	kanji      []string
	kana       []string
}

func (r *csjReader) readSDB(path string) (*corpus.Session, error) {
	id := sessionName(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var utts []*sdbUtterance
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) <= sdbKana {
			return nil, errors.Errorf("%s:%d: %d fields, want at least %d", path, lineNum, len(fields), sdbKana+1)
		}
		num, start, end, err := parseSDBTiming(fields[sdbTiming])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNum)
		}
		if len(utts) == 0 || utts[len(utts)-1].num != num {
			utts = append(utts, &sdbUtterance{num: num, start: start, end: end})
		}
		u := utts[len(utts)-1]
		u.kanji = append(u.kanji, fields[sdbKanji])
		u.kana = append(u.kana, fields[sdbKana])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	s := corpus.NewSession(id, id, csjGender(id))
	s.Audio = r.audioFor(id)
	for _, u := range utts {
		kana := r.clean[corpus.LabelKana].Clean(strings.Join(u.kana, " "))
		if kana == "" {
			r.opts.Log.WithField("session", id).Debugf("utterance %d discarded", u.num)
			continue
		}
		phones, err := r.opts.PhoneMap.Phones(kana)
		if err != nil {
			return nil, errors.Wrapf(err, "%s utterance %d", path, u.num)
		}
		err = s.Add(corpus.Utterance{
			ID:    corpus.UtteranceID(id, u.num),
			Start: corpus.SecondsToFrame(u.start),
			End:   corpus.SecondsToFrame(u.end),
			Text: map[corpus.LabelType]string{
				corpus.LabelKanji: r.clean[corpus.LabelKanji].Clean(strings.Join(u.kanji, " ")),
				corpus.LabelKana:  kana,
				corpus.LabelPhone: lexicon.PhoneString(phones),
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parseSDBTiming splits "0001 00051.280-00052.149 L:..." into the
// utterance number and its start and end seconds.
func parseSDBTiming(field string) (num int, start, end float64, err error) {
	parts := strings.Fields(field)
	if len(parts) < 2 {
		return 0, 0, 0, errors.Errorf("timing field %q", field)
	}
	if num, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, errors.Wrapf(err, "utterance number %q", parts[0])
	}
	se := strings.SplitN(parts[1], "-", 2)
	if len(se) != 2 {
		return 0, 0, 0, errors.Errorf("time range %q", parts[1])
	}
	if start, err = strconv.ParseFloat(se[0], 64); err != nil {
		return 0, 0, 0, errors.Wrapf(err, "start %q", se[0])
	}
	if end, err = strconv.ParseFloat(se[1], 64); err != nil {
		return 0, 0, 0, errors.Wrapf(err, "end %q", se[1])
	}
	return num, start, end, nil
}

// sessionName is the file's base name without extension.
func sessionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
