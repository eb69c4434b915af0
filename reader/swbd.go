package reader

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ieee0824/corpusprep/cleaner"
	"github.com/ieee0824/corpusprep/corpus"
)

// Partition of the Hub5 2000 evaluation set read from STM files.
const Eval2000 corpus.Partition = "eval2000"

const (
	ms98Suffix = "-trans.text"
	stmSuffix  = ".stm"
)

// switchboardReader reads ms98 word transcripts (training) and STM
// references (evaluation). A session is one side of a conversation.
type switchboardReader struct {
	base
	clean   cleaner.Cleaner
	callers map[string]caller // "2001A" -> caller
}

type caller struct {
	id     string
	gender corpus.Gender
}

func newSwitchboard(b base) (*switchboardReader, error) {
	r := &switchboardReader{base: b, clean: cleaner.Func(cleaner.Switchboard)}
	err := walkSuffix(b.opts.Root, ms98Suffix, func(path string) error {
		side := strings.SplitN(filepath.Base(path), "-", 2)[0] // sw2001A
		r.add(r.members.assign(corpus.Train, side), path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover ms98 transcripts")
	}
	err = walkSuffix(b.opts.Root, stmSuffix, func(path string) error {
		r.add(r.members.assign(Eval2000, sessionName(path)), path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover STM files")
	}
	if r.callers, err = readCallerTables(b.opts.Root); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *switchboardReader) Kind() corpus.Kind { return corpus.Switchboard }
func (r *switchboardReader) Labels() []corpus.LabelType { return LabelTypes(corpus.Switchboard) }

func (r *switchboardReader) Sessions(p corpus.Partition) ([]*corpus.Session, error) {
	var out []*corpus.Session
	for _, path := range r.sorted(p) {
		var (
			ss  []*corpus.Session
			err error
		)
		if strings.HasSuffix(strings.ToLower(path), stmSuffix) {
			ss, err = r.readSTM(path)
		} else {
			ss, err = r.readMS98(path)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ss...)
	}
	return out, nil
}

// sideChannel maps a side letter to the audio channel.
func sideChannel(side string) int {
	if strings.EqualFold(side, "B") || side == "2" {
		return 1
	}
	return 0
}

// readMS98 parses "sw2001A-ms98-a-0001 0.000000 0.977625 words..." lines.
func (r *switchboardReader) readMS98(path string) ([]*corpus.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.SplitN(filepath.Base(path), "-", 2)[0] // sw2001A
	if len(name) < 4 {
		return nil, errors.Errorf("%s: unexpected file name", path)
	}
	conv, side := name[2:len(name)-1], name[len(name)-1:]
	c, ok := r.callers[conv+side]
	if !ok {
		c = caller{id: name, gender: corpus.Unknown}
	}
	s := corpus.NewSession(name, c.id, c.gender)
	if s.Audio = r.audioFor(name); s.Audio == "" {
		s.Audio = r.audioFor("sw0"+conv, "sw"+conv)
		s.Channel = sideChannel(side)
	}

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, errors.Errorf("%s:%d: want \"id start end words\"", path, lineNum)
		}
		start, end, err := parseSpan(fields[1], fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNum)
		}
		text := r.clean.Clean(strings.Join(fields[3:], " "))
		if text == "" {
			continue
		}
		err = s.Add(corpus.Utterance{
			ID:    fields[0],
			Start: start,
			End:   end,
			Text:  textMap(text),
		})
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return []*corpus.Session{s}, nil
}

// readSTM parses "file chan speaker start end <tag> text" lines. Sessions
// are keyed by file and channel in first-seen order.
func (r *switchboardReader) readSTM(path string) ([]*corpus.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []*corpus.Session
	byID := make(map[string]*corpus.Session)
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, errors.Errorf("%s:%d: want at least 5 fields", path, lineNum)
		}
		file, side, spk := fields[0], fields[1], fields[2]
		start, end, err := parseSpan(fields[3], fields[4])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNum)
		}
		rest := fields[5:]
		gender := corpus.Unknown
		if len(rest) > 0 && strings.HasPrefix(rest[0], "<") {
			gender = stmGender(rest[0])
			rest = rest[1:]
		}

		id := file + "_" + side
		s, ok := byID[id]
		if !ok {
			s = corpus.NewSession(id, spk, gender)
			if s.Audio = r.audioFor(id); s.Audio == "" {
				s.Audio = r.audioFor(file)
				s.Channel = sideChannel(side)
			}
			byID[id] = s
			out = append(out, s)
		}
		text := r.clean.Clean(strings.Join(rest, " "))
		if text == "" {
			continue
		}
		err = s.Add(corpus.Utterance{
			ID:    corpus.UtteranceID(id, s.Len()),
			Start: start,
			End:   end,
			Text:  textMap(text),
		})
		if err != nil {
			return nil, err
		}
	}
	return out, errors.Wrapf(scanner.Err(), "read %s", path)
}

// stmGender reads the gender of an STM tag such as <O,en,F,en-F>.
func stmGender(tag string) corpus.Gender {
	parts := strings.Split(strings.Trim(tag, "<>"), ",")
	if len(parts) >= 3 {
		return corpus.ParseGender(parts[2])
	}
	return corpus.Unknown
}

func parseSpan(a, b string) (start, end int, err error) {
	s, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "start %q", a)
	}
	e, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "end %q", b)
	}
	return corpus.SecondsToFrame(s), corpus.SecondsToFrame(e), nil
}

// readCallerTables joins call_con_tab.csv (conversation, side, caller)
// with caller_tab.csv (caller, ..., sex) when both are present.
func readCallerTables(root string) (map[string]caller, error) {
	out := make(map[string]caller)
	var conPath, callerPath string
	err := walkSuffix(root, ".csv", func(path string) error {
		switch strings.ToLower(filepath.Base(path)) {
		case "call_con_tab.csv":
			conPath = path
		case "caller_tab.csv":
			callerPath = path
		}
		return nil
	})
	if err != nil || conPath == "" || callerPath == "" {
		return out, err
	}
	callerRows, err := readCSV(callerPath)
	if err != nil {
		return nil, err
	}
	genders := make(map[string]corpus.Gender, len(callerRows))
	for _, row := range callerRows {
		if len(row) >= 3 {
			genders[row[0]] = corpus.ParseGender(row[2])
		}
	}
	conRows, err := readCSV(conPath)
	if err != nil {
		return nil, err
	}
	for _, row := range conRows {
		if len(row) < 3 {
			continue
		}
		g, ok := genders[row[2]]
		if !ok {
			g = corpus.Unknown
		}
		out[row[0]+row[1]] = caller{id: row[2], gender: g}
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		rows = append(rows, row)
	}
}
