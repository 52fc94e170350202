package citation_test

import (
	"iter"

	"github.com/PabloGalante/axiomqa/internal/adapters/storage/memory"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

func domainID(id string) domain.AxiomID {
	return domain.AxiomID(id)
}

func axiom(id string) domain.Axiom {
	return domain.Axiom{
		ID:          domain.AxiomID(id),
		Subject:     "subject",
		Entity:      "entity",
		Trigger:     "trigger",
		Conditions:  "conditions",
		Description: "description",
		Category:    "category",
	}
}

func storeOf(ids ...string) domain.AxiomStore {
	axioms := make([]domain.Axiom, 0, len(ids))
	for _, id := range ids {
		axioms = append(axioms, axiom(id))
	}
	s, err := memory.NewAxiomStore(axioms)
	if err != nil {
		panic(err)
	}
	return s
}

func deltasOf(items ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, s := range items {
			if !yield(s, nil) {
				return
			}
		}
	}
}
