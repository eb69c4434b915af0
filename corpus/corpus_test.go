package corpus

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"csj", CSJ},
		{"Librispeech", Librispeech},
		{"swbd", Switchboard},
		{"switchboard", Switchboard},
		{" timit ", TIMIT},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	_, err := ParseKind("wsj")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(wsj) error = %v, want ErrUnknownKind", err)
	}
}

func TestPartitionIsTrain(t *testing.T) {
	tests := []struct {
		p    Partition
		want bool
	}{
		{Train, true},
		{"train_clean100", true},
		{Dev, false},
		{"eval1", false},
		{Test, false},
	}
	for _, tt := range tests {
		if got := tt.p.IsTrain(); got != tt.want {
			t.Errorf("%q.IsTrain() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPartitionIsEval(t *testing.T) {
	for p, want := range map[Partition]bool{
		Train:         false,
		"train-other": false,
		Dev:           false,
		"dev-clean":   false,
		"eval2000":    true,
		"test-clean":  true,
	} {
		if got := p.IsEval(); got != want {
			t.Errorf("%q.IsEval() = %v, want %v", p, got, want)
		}
	}
}

func TestSecondsToFrame(t *testing.T) {
	tests := []struct {
		sec  float64
		want int
	}{
		{0, 0},
		{1.234, 123},
		{1.236, 124},
		{12.999, 1300},
	}
	for _, tt := range tests {
		if got := SecondsToFrame(tt.sec); got != tt.want {
			t.Errorf("SecondsToFrame(%v) = %d, want %d", tt.sec, got, tt.want)
		}
	}
}

func TestSessionOrder(t *testing.T) {
	s := NewSession("A01M0097", "A01M0097", Male)
	for i := 0; i < 3; i++ {
		if err := s.Add(Utterance{ID: UtteranceID(s.ID, i), Start: i * 100, End: i*100 + 50}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := s.Add(Utterance{ID: UtteranceID(s.ID, 1)}); err == nil {
		t.Error("expected duplicate ID error")
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	u, ok := s.Lookup("A01M0097_00002")
	if !ok || u.Start != 200 {
		t.Errorf("Lookup = %+v, %v", u, ok)
	}
	for i, u := range s.Utterances {
		if u.ID != UtteranceID(s.ID, i) {
			t.Errorf("Utterances[%d].ID = %s", i, u.ID)
		}
	}
	if got := s.StatsKey(true); got != "male" {
		t.Errorf("StatsKey(true) = %s", got)
	}
	if got := s.StatsKey(false); got != "A01M0097" {
		t.Errorf("StatsKey(false) = %s", got)
	}
}
