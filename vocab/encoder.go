package vocab

import (
	"strings"

	"github.com/pkg/errors"
)

// Scheme selects how a transcript is split into symbols.
type Scheme string

const (
	// Character splits into runes and maps spaces to "_".
	Character Scheme = "character"
	// Word splits on whitespace.
	Word Scheme = "word"
	// Token splits space-separated phone strings.
	Token Scheme = "token"
	// Digraph takes two-rune symbols when the table has them, else one.
	// Spaces map to "_" as in Character.
	Digraph Scheme = "digraph"
)

// Space is the symbol written for a word boundary in character labels.
const Space = "_"

// ErrSpaceSymbol is returned by Encode when character text already contains
// Space, which would decode as a word boundary.
var ErrSpaceSymbol = errors.New("text contains the space symbol")

// Split breaks a cleaned transcript into symbols. Digraph splitting takes
// the two-rune candidates present in t; with a nil table it pairs kana
// with a following small kana and repeated letters, which is how
// vocabularies are counted.
func Split(s Scheme, text string, t *Table) []string {
	switch s {
	case Word, Token:
		return strings.Fields(text)
	case Digraph:
		return splitDigraph(text, t)
	default:
		rs := []rune(text)
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			if r == ' ' {
				out = append(out, Space)
				continue
			}
			out = append(out, string(r))
		}
		return out
	}
}

func splitDigraph(text string, t *Table) []string {
	rs := []rune(text)
	var out []string
	for i := 0; i < len(rs); {
		if rs[i] == ' ' {
			out = append(out, Space)
			i++
			continue
		}
		if i+1 < len(rs) && rs[i+1] != ' ' {
			pair := string(rs[i : i+2])
			ok := false
			if t != nil {
				_, ok = t.Index(pair)
			} else {
				ok = isDigraph(rs[i], rs[i+1])
			}
			if ok {
				out = append(out, pair)
				i += 2
				continue
			}
		}
		out = append(out, string(rs[i]))
		i++
	}
	return out
}

// smallKana are the glides and vowels written small after a kana.
const smallKana = "ぁぃぅぇぉゃゅょゎァィゥェォャュョヮ"

func isDigraph(a, b rune) bool {
	if strings.ContainsRune(smallKana, b) {
		return !strings.ContainsRune(smallKana, a)
	}
	return a == b && a >= 'a' && a <= 'z'
}

// Encoder maps transcripts to index sequences.
type Encoder struct {
	Table  *Table
	Scheme Scheme
}

// Encode converts text to indices. Symbols missing from the table map to
// the OOV index, or fail with ErrUnknownSymbol when the table has none.
// Character and digraph text must not contain the space symbol itself.
func (e Encoder) Encode(text string) ([]int, error) {
	if (e.Scheme == Character || e.Scheme == Digraph) && strings.Contains(text, Space) {
		return nil, errors.Wrapf(ErrSpaceSymbol, "%q", text)
	}
	syms := Split(e.Scheme, text, e.Table)
	out := make([]int, len(syms))
	oov := e.Table.OOV()
	for i, s := range syms {
		idx, ok := e.Table.Index(s)
		if !ok {
			if oov < 0 {
				return nil, errors.Wrapf(ErrUnknownSymbol, "%q in %q", s, text)
			}
			idx = oov
		}
		out[i] = idx
	}
	return out, nil
}

// Decode converts indices back to text. Character labels join runes and
// restore spaces; word and token labels join with a space.
func (e Encoder) Decode(ids []int) (string, error) {
	syms := make([]string, len(ids))
	for i, id := range ids {
		s, ok := e.Table.Symbol(id)
		if !ok {
			return "", errors.Wrapf(ErrUnknownSymbol, "index %d", id)
		}
		syms[i] = s
	}
	switch e.Scheme {
	case Word, Token:
		return strings.Join(syms, " "), nil
	default:
		return strings.ReplaceAll(strings.Join(syms, ""), Space, " "), nil
	}
}
