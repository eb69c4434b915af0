package corpus

import (
	"fmt"

	"github.com/pkg/errors"
)

// Utterance is one transcribed region of a session.
// Start and End are frame indices; End is exclusive when slicing.
type Utterance struct {
	ID    string
	Start int
	End   int
	Text  map[LabelType]string
}

// Session is the ordered transcript map of one speaker or audio side.
type Session struct {
	ID      string
	Speaker string
	Gender  Gender
	Audio   string // feature source (.wav or .htk)
	Channel int    // audio channel to decode, -1 mixes all channels
	// Whole marks sessions whose audio file is a single utterance
	// (Librispeech, TIMIT); their End is taken from the feature matrix.
	Whole bool

	Utterances []Utterance
	index      map[string]int
}

// NewSession creates an empty session.
func NewSession(id, speaker string, gender Gender) *Session {
	return &Session{
		ID:      id,
		Speaker: speaker,
		Gender:  gender,
		Channel: -1,
		index:   make(map[string]int),
	}
}

// UtteranceID builds the zero-padded ID of the n-th utterance of a session.
func UtteranceID(session string, n int) string {
	return fmt.Sprintf("%s_%05d", session, n)
}

// Add appends u, keeping insertion order. Duplicate IDs are rejected.
func (s *Session) Add(u Utterance) error {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, dup := s.index[u.ID]; dup {
		return errors.Errorf("session %s: duplicate utterance %s", s.ID, u.ID)
	}
	s.index[u.ID] = len(s.Utterances)
	s.Utterances = append(s.Utterances, u)
	return nil
}

// Lookup returns the utterance with the given ID.
func (s *Session) Lookup(id string) (Utterance, bool) {
	i, ok := s.index[id]
	if !ok {
		return Utterance{}, false
	}
	return s.Utterances[i], true
}

// Len returns the number of utterances.
func (s *Session) Len() int { return len(s.Utterances) }

// StatsKey returns the key this session's frames are accumulated under:
// the gender for global statistics, the speaker otherwise.
func (s *Session) StatsKey(byGender bool) string {
	if byGender {
		return string(s.Gender)
	}
	return s.Speaker
}
