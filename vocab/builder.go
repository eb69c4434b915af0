// Package vocab builds symbol vocabularies from training transcripts and
// encodes transcripts as index sequences.
package vocab

import (
	"sort"
)

// DefaultOOV is the out-of-vocabulary placeholder of word vocabularies.
const DefaultOOV = "OOV"

// Builder accumulates symbol frequencies.
type Builder struct {
	counts map[string]int
	total  int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{counts: make(map[string]int)}
}

// Add counts each symbol once.
func (b *Builder) Add(symbols ...string) {
	for _, s := range symbols {
		b.counts[s]++
		b.total++
	}
}

// AddCount adds n occurrences of a symbol.
func (b *Builder) AddCount(symbol string, n int) {
	b.counts[symbol] += n
	b.total += n
}

// Count returns the frequency of a symbol.
func (b *Builder) Count(symbol string) int { return b.counts[symbol] }

// Total returns the number of tokens seen.
func (b *Builder) Total() int { return b.total }

// Options controls Build.
type Options struct {
	// Reserved symbols take the lowest indices in the given order;
	// index 0 is conventionally silence or space.
	Reserved []string
	// MinFreq drops symbols seen fewer times than this into OOV.
	MinFreq int
	// OOV, when non-empty, is appended as the final symbol. It is added
	// automatically when MinFreq drops anything.
	OOV string
}

// Build produces the vocabulary table: reserved symbols first, then the
// remaining symbols in lexicographic order, then OOV. A counted symbol
// spelled like the OOV entry is folded into it, so every symbol appears
// once.
func (b *Builder) Build(opt Options) *Table {
	reserved := make(map[string]bool, len(opt.Reserved))
	for _, r := range opt.Reserved {
		reserved[r] = true
	}
	oov := opt.OOV
	if oov == "" {
		oov = DefaultOOV
	}
	var rest []string
	dropped, counted := false, false
	for s, c := range b.counts {
		if reserved[s] {
			continue
		}
		if s == oov {
			counted = true
			continue
		}
		if c < opt.MinFreq {
			dropped = true
			continue
		}
		rest = append(rest, s)
	}
	sort.Strings(rest)

	symbols := make([]string, 0, len(opt.Reserved)+len(rest)+1)
	for _, r := range opt.Reserved {
		if !contains(symbols, r) {
			symbols = append(symbols, r)
		}
	}
	symbols = append(symbols, rest...)
	withOOV := opt.OOV != "" || dropped || counted
	if withOOV && !reserved[oov] {
		symbols = append(symbols, oov)
	}
	t := newTable(symbols)
	if withOOV {
		t.oov = oov
	}
	return t
}

// OOVRate returns the percentage of counted tokens that table maps to OOV.
func OOVRate(b *Builder, t *Table) float64 {
	if b.total == 0 {
		return 0
	}
	oovTokens := 0
	for s, c := range b.counts {
		if _, ok := t.Index(s); !ok || s == t.oov {
			oovTokens += c
		}
	}
	return float64(oovTokens) / float64(b.total) * 100
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
