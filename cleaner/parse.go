package cleaner

import "strings"

// node is one element of a parsed CSJ transcript fragment.
type node interface{}

// textNode is literal transcript text.
type textNode string

// angleNode is a <...> marker (pause, breath, timing); always removed.
type angleNode string

// tagNode is a bracket tag "(NAME alt1;alt2)". open is set when the closing
// parenthesis was never found.
type tagNode struct {
	name string
	alts [][]node
	open bool
}

// nameStop lists runes that terminate a tag name.
const nameStop = " 　();,<>"

type parser struct {
	src []rune
	pos int
}

// parse builds the tag tree of raw. It never fails: stray closing markers
// are dropped and unterminated tags are returned with open set.
func parse(raw string) []node {
	p := &parser{src: []rune(raw)}
	nodes, _ := p.seq("", false)
	return nodes
}

// seq parses a run of text and tags. Inside a tag (nested) it stops at ')'
// or at one of seps and returns the rune it stopped at; 0 means end of input.
func (p *parser) seq(seps string, nested bool) ([]node, rune) {
	var out []node
	var buf []rune
	flush := func() {
		if len(buf) > 0 {
			out = append(out, textNode(buf))
			buf = nil
		}
	}
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case r == '(':
			flush()
			out = append(out, p.tag())
		case r == '<':
			end := p.index('>')
			if end < 0 {
				p.pos++
				continue
			}
			flush()
			out = append(out, angleNode(p.src[p.pos+1:end]))
			p.pos = end + 1
		case nested && (r == ')' || strings.ContainsRune(seps, r)):
			flush()
			return out, r
		case r == ')' || r == '>':
			p.pos++
		default:
			buf = append(buf, r)
			p.pos++
		}
	}
	flush()
	return out, 0
}

func (p *parser) tag() node {
	p.pos++ // '('
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(nameStop, p.src[p.pos]) {
		p.pos++
	}
	t := tagNode{name: string(p.src[start:p.pos])}
	if p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '　') {
		p.pos++
	}

	seps := ";"
	if t.name == "?" {
		seps = ";,"
	}
	for {
		alt, term := p.seq(seps, true)
		t.alts = append(t.alts, alt)
		switch term {
		case ')':
			p.pos++
			return t
		case 0:
			t.open = true
			return t
		default:
			p.pos++
		}
	}
}

// index returns the position of the next r at or after p.pos, or -1.
func (p *parser) index(r rune) int {
	for i := p.pos; i < len(p.src); i++ {
		if p.src[i] == r {
			return i
		}
	}
	return -1
}
