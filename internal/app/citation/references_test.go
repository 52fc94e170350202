package citation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/axiomqa/internal/app/citation"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

func TestReferencesFirstSeenOrder(t *testing.T) {
	var refs citation.References

	stream := []domain.ResponseChunk{
		domain.TextContent{Content: "intro "},
		domain.CitationContent{Axiom: axiom("A")},
		domain.CitationContent{Axiom: axiom("B")},
		domain.TextContent{Content: " more "},
		domain.CitationContent{Axiom: axiom("A")},
		domain.CitationContent{Axiom: axiom("C")},
	}

	var added []bool
	for _, c := range stream {
		added = append(added, refs.Observe(c))
	}

	assert.Equal(t, []bool{false, true, true, false, false, true}, added)
	assert.Equal(t, []domain.Axiom{axiom("A"), axiom("B"), axiom("C")}, refs.Axioms())
	assert.Equal(t, 3, refs.Len())
}

func TestReferencesZeroValue(t *testing.T) {
	var refs citation.References
	assert.Empty(t, refs.Axioms())
	assert.Zero(t, refs.Len())
}
