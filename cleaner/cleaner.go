// Package cleaner turns raw annotated corpus transcripts into flat symbol
// strings. CSJ transcripts are parsed into a tag tree and resolved by a
// per-label policy; the other corpora use small substitution chains.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/width"

	"github.com/ieee0824/corpusprep/corpus"
)

// Cleaner converts one raw transcript fragment to clean text.
// An empty result means the utterance should be discarded.
type Cleaner interface {
	Clean(raw string) string
}

// Func adapts a plain function to Cleaner.
type Func func(string) string

// Clean implements Cleaner.
func (f Func) Clean(raw string) string { return f(raw) }

// For returns the cleaner for a corpus and label type.
func For(kind corpus.Kind, label corpus.LabelType) (Cleaner, error) {
	switch kind {
	case corpus.CSJ:
		switch label {
		case corpus.LabelKana, corpus.LabelPhone:
			return &CSJ{Policy: kanaPolicy}, nil
		case corpus.LabelKanji:
			return &CSJ{Policy: kanjiPolicy, FoldWidth: true}, nil
		}
	case corpus.Librispeech:
		if label.IsText() {
			return Func(Librispeech), nil
		}
	case corpus.Switchboard:
		if label.IsText() {
			return Func(Switchboard), nil
		}
	case corpus.TIMIT:
		switch label {
		case corpus.LabelCharacter, corpus.LabelCharacterDouble, corpus.LabelWord:
			return Func(TIMIT), nil
		case corpus.LabelPhone61, corpus.LabelPhone39:
			return Func(collapseSpaces), nil
		}
	default:
		return nil, errors.Wrapf(corpus.ErrUnknownKind, "%v", kind)
	}
	return nil, errors.Wrapf(corpus.ErrUnknownLabel, "%s has no %s labels", kind, label)
}

// CSJ cleans Corpus of Spontaneous Japanese transcripts.
type CSJ struct {
	Policy Policy
	// FoldWidth maps full-width alphanumerics to ASCII (kanji labels).
	FoldWidth bool
}

// Clean implements Cleaner. Malformed brackets never cause an error; the
// markers are stripped and the content kept.
func (c *CSJ) Clean(raw string) string {
	text, discard := resolve(parse(raw), c.Policy)
	if discard {
		return ""
	}
	if c.FoldWidth {
		text = width.Fold.String(text)
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '　' || r == '\t' || r == '_' {
			return -1
		}
		return r
	}, text)
}

var (
	swbdAside     = regexp.MustCompile(`<[^>]*>`)
	swbdNoise     = regexp.MustCompile(`\[(noise|vocalized-noise|silence|laughter)\]`)
	swbdLaughWord = regexp.MustCompile(`\[laughter-([^\]]+)\]`)
	swbdMispron   = regexp.MustCompile(`\[([^\]/]+)/([^\]]+)\]`)
	swbdBracket   = regexp.MustCompile(`\[[^\]]*\]`)
	swbdBrace     = regexp.MustCompile(`\{([^}]*)\}`)
	swbdSuffix    = regexp.MustCompile(`_1\b`)
	timitDrop     = regexp.MustCompile(`[^a-z' ]+`)
)

// Switchboard cleans ms98 / eval2000 word transcripts.
func Switchboard(raw string) string {
	s := strings.ToLower(raw)
	s = swbdAside.ReplaceAllString(s, " ")
	s = swbdNoise.ReplaceAllString(s, " ")
	s = swbdLaughWord.ReplaceAllString(s, "$1")
	s = swbdMispron.ReplaceAllString(s, "$2")
	// Partial words: th[e]- keeps its spoken part.
	s = swbdBracket.ReplaceAllString(s, "")
	s = swbdBrace.ReplaceAllString(s, "$1")
	s = swbdSuffix.ReplaceAllString(s, "")
	s = strings.NewReplacer("[", "", "]", "", "{", "", "}", "", "<", "", ">", "", "_", " ").Replace(s)
	return collapseSpaces(s)
}

// Librispeech lower-cases the upper-case reference text.
func Librispeech(raw string) string {
	return collapseSpaces(strings.ToLower(raw))
}

// TIMIT cleans prompt sentences: lower-case, punctuation dropped except
// apostrophes.
func TIMIT(raw string) string {
	s := strings.ToLower(raw)
	s = timitDrop.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
