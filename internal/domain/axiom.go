package domain

// Axiom represents one policy rule of the constitution.
// It is created by a bulk load and never mutated afterwards.
type Axiom struct {
	ID          AxiomID `json:"id"`
	Subject     string  `json:"subject"`
	Entity      string  `json:"entity"`
	Trigger     string  `json:"trigger"`
	Conditions  string  `json:"conditions"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// CitationMarker returns the inline marker a model uses to cite the axiom.
func (a Axiom) CitationMarker() string {
	return "[" + string(a.ID) + "]"
}
