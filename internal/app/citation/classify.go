package citation

import (
	"iter"
	"regexp"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

type options struct {
	pattern  *regexp.Regexp
	disabled bool
}

// Option configures Classify.
type Option func(*options)

// WithPattern sets the citation marker pattern. Its first capture group,
// when present, is the axiom id.
func WithPattern(re *regexp.Regexp) Option {
	return func(o *options) {
		if re != nil {
			o.pattern = re
		}
	}
}

// WithoutCitations turns every non-empty delta into one TextContent.
func WithoutCitations() Option {
	return func(o *options) {
		o.disabled = true
	}
}

// Resolve converts a segment into a chunk. Citations of ids missing from
// store are returned as text carrying the original marker.
func Resolve(seg Segment, store domain.AxiomStore) domain.ResponseChunk {
	if seg.Citation {
		if a, ok := store.Get(seg.ID); ok {
			return domain.CitationContent{Axiom: a}
		}
	}
	return domain.TextContent{Content: seg.Text}
}

// Classify re-emits deltas as text and citation chunks in arrival order.
// An error from deltas is yielded once and ends the sequence. Stopping the
// iteration early stops deltas as well.
func Classify(
	deltas iter.Seq2[string, error],
	store domain.AxiomStore,
	opts ...Option,
) iter.Seq2[domain.ResponseChunk, error] {
	o := options{pattern: DefaultPattern}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(domain.ResponseChunk, error) bool) {
		if o.disabled {
			for d, err := range deltas {
				if err != nil {
					yield(nil, err)
					return
				}
				if d == "" {
					continue
				}
				if !yield(domain.TextContent{Content: d}, nil) {
					return
				}
			}
			return
		}

		p := NewParser(o.pattern)
		emit := func(segs []Segment) bool {
			for _, seg := range segs {
				if !yield(Resolve(seg, store), nil) {
					return false
				}
			}
			return true
		}

		for d, err := range deltas {
			if err != nil {
				yield(nil, err)
				return
			}
			if !emit(p.Feed(d)) {
				return
			}
		}
		emit(p.Flush())
	}
}
