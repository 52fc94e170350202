package citation

import "github.com/PabloGalante/axiomqa/internal/domain"

// References collects cited axioms for a references section.
// Each axiom is kept once, in first-citation order; the inline stream is not
// affected. The zero value is ready to use.
type References struct {
	seen   map[domain.AxiomID]struct{}
	axioms []domain.Axiom
}

// Observe records chunk if it is a citation of an axiom not seen before and
// reports whether it was added.
func (r *References) Observe(chunk domain.ResponseChunk) bool {
	c, ok := chunk.(domain.CitationContent)
	if !ok {
		return false
	}
	if r.seen == nil {
		r.seen = make(map[domain.AxiomID]struct{})
	}
	if _, dup := r.seen[c.Axiom.ID]; dup {
		return false
	}
	r.seen[c.Axiom.ID] = struct{}{}
	r.axioms = append(r.axioms, c.Axiom)
	return true
}

// Axioms returns the collected axioms in first-seen order.
func (r *References) Axioms() []domain.Axiom {
	out := make([]domain.Axiom, len(r.axioms))
	copy(out, r.axioms)
	return out
}

func (r *References) Len() int {
	return len(r.axioms)
}
