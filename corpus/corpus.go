// Package corpus holds the data model shared by every preparation stage:
// corpus kinds, partitions, label types, utterance records and the
// per-session transcript map.
package corpus

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// FramesPerSecond is the frame rate of every feature matrix (10 ms shift).
const FramesPerSecond = 100

var (
	ErrUnknownKind  = errors.New("unknown corpus")
	ErrUnknownLabel = errors.New("unknown label type")
)

// Kind selects the corpus-specific strategies (reader, cleaner, labels).
type Kind int

const (
	CSJ Kind = iota
	Librispeech
	Switchboard
	TIMIT
)

var kindNames = map[Kind]string{
	CSJ:         "csj",
	Librispeech: "librispeech",
	Switchboard: "swbd",
	TIMIT:       "timit",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns all supported corpora in a stable order.
func Kinds() []Kind {
	return []Kind{CSJ, Librispeech, Switchboard, TIMIT}
}

// ParseKind maps a corpus name ("csj", "librispeech", "swbd", "timit") to its Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "switchboard" {
		name = "swbd"
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Partition names a corpus split such as "train", "dev" or "eval1".
type Partition string

const (
	Train Partition = "train"
	Dev   Partition = "dev"
	Test  Partition = "test"
)

// IsTrain reports whether statistics and vocabularies may be fitted on p.
func (p Partition) IsTrain() bool {
	return strings.HasPrefix(string(p), string(Train))
}

// IsEval reports whether p is an evaluation partition, whose labels are
// kept as raw text for scoring.
func (p Partition) IsEval() bool {
	return !p.IsTrain() && !strings.HasPrefix(string(p), string(Dev))
}

// LabelType names one transcript representation of an utterance.
type LabelType string

const (
	LabelKana      LabelType = "kana"
	LabelKanji     LabelType = "kanji"
	LabelPhone     LabelType = "phone"
	LabelCharacter LabelType = "character"
	LabelWord      LabelType = "word"
	LabelPhone61   LabelType = "phone61"
	LabelPhone39   LabelType = "phone39"

	// LabelCharacterDouble is character labels with doubled letters
	// ("oo", "ee") kept as one symbol.
	LabelCharacterDouble LabelType = "character_double"
)

// IsText reports whether the label is derived from the orthographic
// transcript of an English corpus.
func (l LabelType) IsText() bool {
	return l == LabelCharacter || l == LabelCharacterDouble || l == LabelWord
}

// ParseLabel validates a label type name.
func ParseLabel(s string) (LabelType, error) {
	switch l := LabelType(strings.ToLower(s)); l {
	case LabelKana, LabelKanji, LabelPhone, LabelCharacter, LabelCharacterDouble, LabelWord, LabelPhone61, LabelPhone39:
		return l, nil
	}
	return "", errors.Wrapf(ErrUnknownLabel, "%q", s)
}

// Gender of a speaker; the global normalisation scheme keeps one set of
// statistics per gender.
type Gender string

const (
	Male    Gender = "male"
	Female  Gender = "female"
	Unknown Gender = "unknown"
)

// ParseGender accepts the usual corpus spellings (M/F, male/female).
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return Male
	case "f", "female":
		return Female
	}
	return Unknown
}

// SecondsToFrame converts a timestamp in seconds to a frame index.
func SecondsToFrame(sec float64) int {
	return int(math.Floor(sec*FramesPerSecond + 0.5))
}
