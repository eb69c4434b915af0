package cleaner

import "strings"

// Action tells the resolver what to do with a tag.
type Action int

const (
	// Keep resolves the tag to its first alternative.
	Keep Action = iota
	// KeepLast resolves the tag to its last alternative, e.g. the true
	// form b of "(W a;b)".
	KeepLast
	// Drop removes the tag and its content.
	Drop
	// Discard marks the whole utterance as unusable.
	Discard
)

// Policy maps tag names to actions. Tags not listed are kept.
type Policy map[string]Action

// discardMark anywhere in the text flags an unreadable utterance.
const discardMark = "×"

// kanaPolicy resolves CSJ pronunciation (kana) transcripts.
var kanaPolicy = Policy{
	"?":  Keep,
	"W":  KeepLast,
	"D":  Keep,
	"D2": Keep,
	"F":  Keep,
	"M":  Keep,
	"O":  Keep,
	"X":  Keep,
	"L":  Keep,
	"笑":  Keep,
	"泣":  Keep,
	"咳":  Keep,
	"A":  KeepLast,
	"R":  Discard,
}

// kanjiPolicy resolves CSJ orthographic (kanji) transcripts; it differs from
// kanaPolicy only in keeping the observed form of "(W a;b)".
var kanjiPolicy = func() Policy {
	p := make(Policy, len(kanaPolicy))
	for k, v := range kanaPolicy {
		p[k] = v
	}
	p["W"] = Keep
	return p
}()

// resolve walks the tag tree once and flattens it to text.
// It reports discard when the utterance must be thrown away.
func resolve(nodes []node, policy Policy) (string, bool) {
	var sb strings.Builder
	discard := resolveInto(&sb, nodes, policy)
	return sb.String(), discard
}

func resolveInto(sb *strings.Builder, nodes []node, policy Policy) bool {
	discard := false
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			if strings.Contains(string(n), discardMark) {
				discard = true
			}
			sb.WriteString(string(n))
		case angleNode:
		case tagNode:
			if resolveTag(sb, n, policy) {
				discard = true
			}
		}
	}
	return discard
}

func resolveTag(sb *strings.Builder, t tagNode, policy Policy) bool {
	action, known := policy[t.name]
	if action == Discard {
		return true
	}
	if t.open {
		// Unterminated: strip the markers, keep everything.
		if !known {
			sb.WriteString(t.name)
		}
		discard := false
		for _, alt := range t.alts {
			if resolveInto(sb, alt, policy) {
				discard = true
			}
		}
		return discard
	}
	switch action {
	case Drop:
		return false
	case KeepLast:
		return resolveInto(sb, t.alts[len(t.alts)-1], policy)
	default:
		if !known && len(t.alts) == 1 && len(t.alts[0]) == 0 {
			// "(えー)": no tag, only content.
			sb.WriteString(t.name)
			return false
		}
		return resolveInto(sb, t.alts[0], policy)
	}
}
