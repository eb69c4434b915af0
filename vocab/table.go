package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownSymbol is returned when a symbol is missing from a closed vocabulary.
var ErrUnknownSymbol = errors.New("symbol not in vocabulary")

// Table is a bijective symbol <-> index mapping.
type Table struct {
	symbols []string
	index   map[string]int
	oov     string
}

func newTable(symbols []string) *Table {
	t := &Table{symbols: symbols, index: make(map[string]int, len(symbols))}
	for i, s := range symbols {
		t.index[s] = i
	}
	return t
}

// Len returns the vocabulary size.
func (t *Table) Len() int { return len(t.symbols) }

// Symbols returns the symbols in index order.
func (t *Table) Symbols() []string { return append([]string(nil), t.symbols...) }

// Index returns the index of a symbol.
func (t *Table) Index(symbol string) (int, bool) {
	i, ok := t.index[symbol]
	return i, ok
}

// Symbol returns the symbol at index i.
func (t *Table) Symbol(i int) (string, bool) {
	if i < 0 || i >= len(t.symbols) {
		return "", false
	}
	return t.symbols[i], true
}

// OOV returns the out-of-vocabulary index, or -1 for closed vocabularies.
func (t *Table) OOV() int {
	if t.oov == "" {
		return -1
	}
	return t.index[t.oov]
}

// WriteTo writes one "symbol  index" line per entry.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for i, s := range t.symbols {
		m, err := fmt.Fprintf(bw, "%s  %d\n", s, i)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Save writes the table to path, creating its directory.
func (t *Table) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create vocabulary %s", path)
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write vocabulary %s", path)
	}
	return f.Close()
}

// Load reads a table written by WriteTo. Indices must be dense and unique.
// If a DefaultOOV entry is present it becomes the OOV fallback.
func Load(r io.Reader) (*Table, error) {
	var symbols []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cut := strings.LastIndex(line, "  ")
		if cut < 0 {
			return nil, errors.Errorf("line %d: expected \"symbol  index\"", lineNum)
		}
		sym := line[:cut]
		idx, err := strconv.Atoi(strings.TrimSpace(line[cut+2:]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		if idx != len(symbols) {
			return nil, errors.Errorf("line %d: index %d out of order, want %d", lineNum, idx, len(symbols))
		}
		if seen[sym] {
			return nil, errors.Errorf("line %d: duplicate symbol %q", lineNum, sym)
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	t := newTable(symbols)
	if seen[DefaultOOV] {
		t.oov = DefaultOOV
	}
	return t, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
