package reader

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ieee0824/corpusprep/corpus"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// sdbLine builds one SDB row with the timing, orthographic and
// pronunciation columns filled.
func sdbLine(timing, kanji, kana string) string {
	fields := make([]string, 12)
	for i := range fields {
		fields[i] = "x"
	}
	fields[sdbTiming] = timing
	fields[sdbKanji] = kanji
	fields[sdbKana] = kana
	return strings.Join(fields, "\t") + "\n"
}

func partitions(r Reader) []string {
	var out []string
	for _, p := range r.Partitions() {
		out = append(out, string(p))
	}
	return out
}

func TestCSJ(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "MORPH", "SDB", "core", "A01F0055.sdb"),
		sdbLine("0001 00001.000-00002.500 L:-001-001", "(F えー)", "(F エー)")+
			sdbLine("0001 00001.000-00002.500 L:-001-001", "今日", "キョー")+
			sdbLine("0001 00001.000-00002.500 L:-001-001", "は", "ワ")+
			sdbLine("0001 00001.000-00002.500 L:-001-001", "雨", "アメ")+
			sdbLine("0002 00003.000-00004.000 L:-001-001", "(R ×)", "(R ×)")+
			sdbLine("0003 00005.000-00006.004 L:-001-001", "ＡＢＣ", "アメ"))
	writeFile(t, filepath.Join(root, "MORPH", "SDB", "core", "A01M0097.sdb"),
		sdbLine("0001 00000.500-00001.000 L:-001-001", "雨", "アメ"))
	writeFile(t, filepath.Join(root, "WAV", "core", "A01F0055.wav"), "")
	list := filepath.Join(root, "eval1.txt")
	writeFile(t, list, "# eval1 lectures\nA01M0097\n")

	r, err := New(corpus.CSJ, Options{Root: root, SpeakerLists: map[corpus.Partition]string{"eval1": list}})
	if err != nil {
		t.Fatal(err)
	}
	if got := partitions(r); !reflect.DeepEqual(got, []string{"train", "eval1"}) {
		t.Fatalf("partitions = %v", got)
	}
	ss, err := r.Sessions(corpus.Train)
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 1 {
		t.Fatalf("train sessions = %d, want 1", len(ss))
	}
	s := ss[0]
	if s.ID != "A01F0055" || s.Gender != corpus.Female || !strings.HasSuffix(s.Audio, "A01F0055.wav") {
		t.Errorf("session = %+v", s)
	}
	if s.Len() != 2 {
		t.Fatalf("utterances = %d, want 2 (R discarded)", s.Len())
	}
	u, ok := s.Lookup("A01F0055_00001")
	if !ok {
		t.Fatal("utterance 1 missing")
	}
	if u.Start != 100 || u.End != 250 {
		t.Errorf("span = [%d,%d], want [100,250]", u.Start, u.End)
	}
	want := map[corpus.LabelType]string{
		corpus.LabelKanji: "えー今日は雨",
		corpus.LabelKana:  "エーキョーワアメ",
		corpus.LabelPhone: "e long k y o long w a a m e",
	}
	if !reflect.DeepEqual(u.Text, want) {
		t.Errorf("text = %v, want %v", u.Text, want)
	}
	u3, _ := s.Lookup("A01F0055_00003")
	if u3.Text[corpus.LabelKanji] != "ABC" || u3.End != 600 {
		t.Errorf("utterance 3 = %+v", u3)
	}

	eval, err := r.Sessions("eval1")
	if err != nil {
		t.Fatal(err)
	}
	if len(eval) != 1 || eval[0].Gender != corpus.Male || eval[0].Audio != "" {
		t.Errorf("eval1 sessions = %+v", eval)
	}
}

func TestCSJMalformed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A01F0001.sdb"), "0001 00001.000-00002.500\tonly two fields\n")
	r, err := New(corpus.CSJ, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Sessions(corpus.Train); err == nil {
		t.Error("expected error for short SDB row")
	}
}

func TestLibrispeech(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "train-clean-100", "19", "198", "19-198.trans.txt"),
		"19-198-0000 NORTHANGER ABBEY\n19-198-0001 THIS  LITTLE WORK\n")
	writeFile(t, filepath.Join(root, "train-clean-100", "19", "198", "19-198-0000.wav"), "")
	writeFile(t, filepath.Join(root, "dev-clean", "84", "121123", "84-121123.trans.txt"),
		"84-121123-0000 GO DO YOU HEAR\n")
	writeFile(t, filepath.Join(root, "SPEAKERS.TXT"),
		"; ID | SEX | SUBSET | MINUTES | NAME\n19   | F | train-clean-100 | 25.19 | Kara\n84   | M | dev-clean | 8.02 | Somebody\n")

	r, err := New(corpus.Librispeech, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if got := partitions(r); !reflect.DeepEqual(got, []string{"train-clean-100", "dev-clean"}) {
		t.Fatalf("partitions = %v", got)
	}
	ss, err := r.Sessions("train-clean-100")
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 2 {
		t.Fatalf("sessions = %d, want 2", len(ss))
	}
	if !ss[0].Whole || ss[0].Speaker != "19" || ss[0].Gender != corpus.Female || ss[0].Audio == "" {
		t.Errorf("session 0 = %+v", ss[0])
	}
	u := ss[1].Utterances[0]
	if u.ID != "19-198-0001" || u.Text[corpus.LabelWord] != "this little work" {
		t.Errorf("utterance = %+v", u)
	}
	for _, l := range r.Labels() {
		if u.Text[l] != "this little work" {
			t.Errorf("%s text = %q", l, u.Text[l])
		}
	}
	dev, err := r.Sessions("dev-clean")
	if err != nil {
		t.Fatal(err)
	}
	if len(dev) != 1 || dev[0].Gender != corpus.Male {
		t.Errorf("dev = %+v", dev)
	}
}

func TestSwitchboard(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "swb_ms98_transcriptions", "20", "2001", "sw2001A-ms98-a-trans.text"),
		"sw2001A-ms98-a-0001 0.000000 0.977625 [silence]\n"+
			"sw2001A-ms98-a-0002 0.977625 11.561375 hi um yeah [laughter] i'd like to talk\n")
	writeFile(t, filepath.Join(root, "swb1", "sw02001.wav"), "")
	writeFile(t, filepath.Join(root, "tables", "call_con_tab.csv"), "2001,A,1039\n2001,B,1005\n")
	writeFile(t, filepath.Join(root, "tables", "caller_tab.csv"), "1039, 32, \"FEMALE\"\n1005, 40, \"MALE\"\n")
	writeFile(t, filepath.Join(root, "hub5e_00", "en_4156.stm"),
		";; comment\n"+
			"en_4156 A en_4156_A 301.85 302.48 <O,en,F,en-F> oh yeah\n"+
			"en_4156 B en_4156_B 303.00 304.00 <O,en,M,en-M> right\n"+
			"en_4156 A en_4156_A 305.00 306.00 <O,en,F,en-F> sure\n")

	r, err := New(corpus.Switchboard, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if got := partitions(r); !reflect.DeepEqual(got, []string{"train", "eval2000"}) {
		t.Fatalf("partitions = %v", got)
	}
	train, err := r.Sessions(corpus.Train)
	if err != nil {
		t.Fatal(err)
	}
	s := train[0]
	if s.ID != "sw2001A" || s.Speaker != "1039" || s.Gender != corpus.Female || s.Channel != 0 {
		t.Errorf("session = %+v", s)
	}
	if !strings.HasSuffix(s.Audio, "sw02001.wav") {
		t.Errorf("audio = %q", s.Audio)
	}
	if s.Len() != 1 {
		t.Fatalf("utterances = %d, want 1 (silence dropped)", s.Len())
	}
	u := s.Utterances[0]
	if u.Start != 98 || u.End != 1156 || u.Text[corpus.LabelWord] != "hi um yeah i'd like to talk" {
		t.Errorf("utterance = %+v", u)
	}

	eval, err := r.Sessions(Eval2000)
	if err != nil {
		t.Fatal(err)
	}
	if len(eval) != 2 {
		t.Fatalf("eval sessions = %d, want 2", len(eval))
	}
	if eval[0].ID != "en_4156_A" || eval[0].Len() != 2 || eval[0].Gender != corpus.Female {
		t.Errorf("side A = %+v", eval[0])
	}
	if eval[1].Gender != corpus.Male || eval[1].Utterances[0].ID != "en_4156_B_00000" {
		t.Errorf("side B = %+v", eval[1])
	}
}

func TestTIMIT(t *testing.T) {
	root := t.TempDir()
	spk := filepath.Join(root, "TRAIN", "DR1", "FCJF0")
	writeFile(t, filepath.Join(spk, "SI1027.TXT"), "0 46797 Even then, if she took one step forward he could catch her.\n")
	writeFile(t, filepath.Join(spk, "SI1027.PHN"), "0 3050 h#\n3050 4559 iy\n4559 5723 v\n5723 6642 q\n6642 8772 ix\n8772 9190 pcl\n")
	writeFile(t, filepath.Join(spk, "SI1027.WAV"), "")
	writeFile(t, filepath.Join(spk, "SA1.TXT"), "0 100 She had your dark suit.\n")
	test := filepath.Join(root, "TEST", "DR1", "MDAB0")
	writeFile(t, filepath.Join(test, "SX319.TXT"), "0 1600 Go.\n")
	writeFile(t, filepath.Join(test, "SX319.PHN"), "0 1600 h#\n")
	list := filepath.Join(root, "dev_speakers")
	writeFile(t, list, "MDAB0\n")

	r, err := New(corpus.TIMIT, Options{Root: root, SpeakerLists: map[corpus.Partition]string{corpus.Dev: list}})
	if err != nil {
		t.Fatal(err)
	}
	if got := partitions(r); !reflect.DeepEqual(got, []string{"train", "dev"}) {
		t.Fatalf("partitions = %v", got)
	}
	ss, err := r.Sessions(corpus.Train)
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 1 {
		t.Fatalf("sessions = %d, want 1 (SA skipped)", len(ss))
	}
	s := ss[0]
	if s.ID != "FCJF0_SI1027" || s.Gender != corpus.Female || !s.Whole || !strings.HasSuffix(s.Audio, "SI1027.WAV") {
		t.Errorf("session = %+v", s)
	}
	u := s.Utterances[0]
	want := map[corpus.LabelType]string{
		corpus.LabelCharacter:       "even then if she took one step forward he could catch her",
		corpus.LabelCharacterDouble: "even then if she took one step forward he could catch her",
		corpus.LabelPhone61:         "h# iy v q ix pcl",
		corpus.LabelPhone39:         "sil iy v ih sil",
	}
	if !reflect.DeepEqual(u.Text, want) {
		t.Errorf("text = %v, want %v", u.Text, want)
	}
	if u.Start != 0 || u.End != 292 {
		t.Errorf("span = [%d,%d], want [0,292]", u.Start, u.End)
	}
}

func TestSpeakerListConflict(t *testing.T) {
	root := t.TempDir()
	a, b := filepath.Join(root, "a"), filepath.Join(root, "b")
	writeFile(t, a, "S1\n")
	writeFile(t, b, "S1\n")
	_, err := New(corpus.CSJ, Options{Root: root, SpeakerLists: map[corpus.Partition]string{"dev": a, "eval1": b}})
	if err == nil {
		t.Error("expected error for speaker listed in two partitions")
	}
}
