// Package segment cuts whole-session feature matrices into utterances,
// widening each utterance with surrounding silence.
package segment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Span is a half-open frame range [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of frames in the span.
func (s Span) Len() int { return s.End - s.Start }

// IssueKind classifies a boundary inconsistency.
type IssueKind int

const (
	// Reversed marks an utterance whose start is after its end.
	Reversed IssueKind = iota
	// Overlap marks an utterance ending after the next one starts.
	Overlap
)

func (k IssueKind) String() string {
	switch k {
	case Reversed:
		return "reversed"
	case Overlap:
		return "overlap"
	}
	return fmt.Sprintf("IssueKind(%d)", int(k))
}

// Issue reports an inconsistent input boundary. Index refers to the
// input slice.
type Issue struct {
	Kind  IssueKind
	Index int
	Span  Span
	Next  Span // the following span, for Overlap
}

func (i Issue) String() string {
	if i.Kind == Overlap {
		return fmt.Sprintf("%s: utterance %d %v ends after next %v starts", i.Kind, i.Index, i.Span, i.Next)
	}
	return fmt.Sprintf("%s: utterance %d %v", i.Kind, i.Index, i.Span)
}

// Extend widens ordered utterance spans with up to sil frames of context
// on each side without crossing into a neighbour's share of a gap.
//
// The first utterance starts sil frames early (not before 0). The last
// ends sil frames late if that many frames remain, otherwise at total.
// Between two utterances a gap of at least 2*sil frames gives each side
// sil frames; a shorter gap is split in half, truncated toward zero.
// Extended ends never exceed total. Inconsistent boundaries are reported
// and extended as given.
func Extend(spans []Span, total, sil int) ([]Span, []Issue) {
	var issues []Issue
	out := make([]Span, len(spans))
	last := len(spans) - 1
	for i, s := range spans {
		if s.Start > s.End {
			issues = append(issues, Issue{Kind: Reversed, Index: i, Span: s})
		}
		if i < last && s.End > spans[i+1].Start {
			issues = append(issues, Issue{Kind: Overlap, Index: i, Span: s, Next: spans[i+1]})
		}

		start := s.Start - sil
		if i > 0 {
			start = s.Start - share(s.Start-spans[i-1].End, sil)
		}
		if start < 0 {
			start = 0
		}

		var end int
		if i < last {
			end = s.End + share(spans[i+1].Start-s.End, sil)
		} else if total-s.End >= sil {
			end = s.End + sil
		} else {
			end = total
		}
		if end > total {
			end = total
		}
		out[i] = Span{Start: start, End: end}
	}
	return out, issues
}

// share is the context one side of a gap receives.
func share(gap, sil int) int {
	if gap >= 2*sil {
		return sil
	}
	return gap / 2
}

// Slice copies rows [span.Start, span.End) of m. The span is clipped to
// the matrix; an empty result is returned as a nil matrix.
func Slice(m *mat.Dense, span Span) *mat.Dense {
	rows, cols := m.Dims()
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > rows {
		end = rows
	}
	if end <= start {
		return nil
	}
	out := mat.NewDense(end-start, cols, nil)
	out.Copy(m.Slice(start, end, 0, cols))
	return out
}
