// Package citation turns raw model deltas into text and citation chunks.
package citation

import (
	"regexp"
	"strings"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

// DefaultPattern matches a complete citation marker such as [AXIOM-001].
// The first capture group is the axiom id.
var DefaultPattern = regexp.MustCompile(`^\[(AXIOM-\d+)\]$`)

// maxMarkerLen bounds how much text an unclosed bracket may hold back.
const maxMarkerLen = 64

// Segment is a piece of parsed output: plain text or a citation candidate.
type Segment struct {
	Text string

	// Citation reports whether Text is a marker matching the pattern.
	// ID is only set for citations; it may not exist in any store.
	Citation bool
	ID       domain.AxiomID
}

// Parser splits a delta stream into segments. A bracketed run is held back
// across deltas until it closes, so markers split over several deltas are
// still recognised. Not safe for concurrent use.
type Parser struct {
	pattern *regexp.Regexp
	text    strings.Builder
	bracket strings.Builder
	open    bool
}

// NewParser returns a parser using pattern, or DefaultPattern when nil.
func NewParser(pattern *regexp.Regexp) *Parser {
	if pattern == nil {
		pattern = DefaultPattern
	}
	return &Parser{pattern: pattern}
}

// Feed consumes one delta and returns the segments completed by it.
func (p *Parser) Feed(delta string) []Segment {
	var out []Segment

	// '[' and ']' are ASCII, so walking bytes never splits a UTF-8 sequence.
	for i := 0; i < len(delta); i++ {
		c := delta[i]
		switch {
		case c == '[':
			if p.open {
				// The previous bracket never closed; it is plain text.
				p.text.WriteString(p.bracket.String())
				p.bracket.Reset()
			}
			out = p.flushText(out)
			p.open = true
			p.bracket.WriteByte(c)

		case p.open && c == ']':
			p.bracket.WriteByte(c)
			marker := p.bracket.String()
			p.bracket.Reset()
			p.open = false

			if id, ok := p.match(marker); ok {
				out = append(out, Segment{Text: marker, Citation: true, ID: id})
			} else {
				p.text.WriteString(marker)
			}

		case p.open:
			p.bracket.WriteByte(c)
			if p.bracket.Len() > maxMarkerLen {
				p.text.WriteString(p.bracket.String())
				p.bracket.Reset()
				p.open = false
			}

		default:
			p.text.WriteByte(c)
		}
	}

	if !p.open {
		out = p.flushText(out)
	}
	return out
}

// Flush returns whatever is still held back at the end of the stream.
func (p *Parser) Flush() []Segment {
	if p.open {
		p.text.WriteString(p.bracket.String())
		p.bracket.Reset()
		p.open = false
	}
	return p.flushText(nil)
}

func (p *Parser) flushText(out []Segment) []Segment {
	if p.text.Len() == 0 {
		return out
	}
	out = append(out, Segment{Text: p.text.String()})
	p.text.Reset()
	return out
}

func (p *Parser) match(marker string) (domain.AxiomID, bool) {
	m := p.pattern.FindStringSubmatch(marker)
	if m == nil {
		return "", false
	}
	if len(m) > 1 && m[1] != "" {
		return domain.AxiomID(m[1]), true
	}
	return domain.AxiomID(strings.TrimSuffix(strings.TrimPrefix(marker, "["), "]")), true
}
