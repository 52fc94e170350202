package memory

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

// AxiomStore is the in-memory implementation of domain.AxiomStore.
// It is immutable after construction and safe for concurrent use.
type AxiomStore struct {
	axioms []domain.Axiom
	byID   map[domain.AxiomID]int
}

// NewAxiomStore validates axioms and builds a store preserving their order.
// Loading is all-or-nothing: one invalid record fails the whole store.
func NewAxiomStore(axioms []domain.Axiom) (*AxiomStore, error) {
	s := &AxiomStore{
		axioms: make([]domain.Axiom, 0, len(axioms)),
		byID:   make(map[domain.AxiomID]int, len(axioms)),
	}

	for i, a := range axioms {
		if missing := missingFields(a); len(missing) > 0 {
			return nil, errors.Mark(
				errors.Newf("axiom[%d] (id %q): missing required fields: %s", i, a.ID, strings.Join(missing, ", ")),
				domain.ErrMalformedData,
			)
		}
		if strings.TrimSpace(string(a.ID)) != string(a.ID) {
			// Markers carry the bare id, so a padded id could never be cited.
			return nil, errors.Mark(
				errors.Newf("axiom[%d]: id %q has surrounding whitespace", i, a.ID),
				domain.ErrMalformedData,
			)
		}
		if _, exists := s.byID[a.ID]; exists {
			return nil, errors.Mark(
				errors.Newf("axiom[%d]: duplicate id %q", i, a.ID),
				domain.ErrMalformedData,
			)
		}

		s.byID[a.ID] = len(s.axioms)
		s.axioms = append(s.axioms, a)
	}

	return s, nil
}

// LoadAxioms parses a JSON array of axiom objects.
// Unknown fields are ignored; every required field must be a non-empty string.
func LoadAxioms(doc []byte) (*AxiomStore, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, domain.MalformedData(err, "axiom document must be a JSON array of objects")
	}
	// A bare null decodes to a nil slice; only [] is an empty document.
	if raw == nil {
		return nil, errors.Mark(errors.New("axiom document must be a JSON array of objects, got null"), domain.ErrMalformedData)
	}

	axioms := make([]domain.Axiom, 0, len(raw))
	for i, obj := range raw {
		if obj == nil {
			return nil, errors.Mark(errors.Newf("axiom[%d]: expected an object, got null", i), domain.ErrMalformedData)
		}

		var a domain.Axiom
		var id string
		fields := []struct {
			name string
			dst  *string
		}{
			{"id", &id},
			{"subject", &a.Subject},
			{"entity", &a.Entity},
			{"trigger", &a.Trigger},
			{"conditions", &a.Conditions},
			{"description", &a.Description},
			{"category", &a.Category},
		}
		for _, f := range fields {
			if err := stringField(obj, f.name, f.dst); err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "axiom[%d]", i), domain.ErrMalformedData)
			}
		}
		a.ID = domain.AxiomID(id)

		axioms = append(axioms, a)
	}

	return NewAxiomStore(axioms)
}

// LoadAxiomsFile reads and parses the axiom document at path.
func LoadAxiomsFile(path string) (*AxiomStore, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithHint(
			domain.Configuration(err, "reading axiom document"),
			"set AXIOMQA_AXIOMS_PATH to a readable JSON file",
		)
	}
	return LoadAxioms(doc)
}

// List returns a copy of the axioms in document order.
func (s *AxiomStore) List() []domain.Axiom {
	out := make([]domain.Axiom, len(s.axioms))
	copy(out, s.axioms)
	return out
}

func (s *AxiomStore) Get(id domain.AxiomID) (domain.Axiom, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Axiom{}, false
	}
	return s.axioms[i], true
}

func (s *AxiomStore) Len() int {
	return len(s.axioms)
}

// stringField decodes obj[name] into dst. Absent keys are left empty and
// reported later by missingFields; present keys must hold a JSON string.
func stringField(obj map[string]json.RawMessage, name string, dst *string) error {
	v, ok := obj[name]
	if !ok {
		return nil
	}
	if string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return errors.Wrapf(err, "field %q must be a string", name)
	}
	return nil
}

func missingFields(a domain.Axiom) []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("id", string(a.ID))
	check("subject", a.Subject)
	check("entity", a.Entity)
	check("trigger", a.Trigger)
	check("conditions", a.Conditions)
	check("description", a.Description)
	check("category", a.Category)
	return missing
}
