package prompt

import (
	"strings"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

// AxiomBindings maps an axiom onto the placeholders of the section template.
func AxiomBindings(a domain.Axiom) map[string]string {
	return map[string]string{
		"id":          string(a.ID),
		"subject":     a.Subject,
		"object":      a.Entity,
		"link":        a.Trigger,
		"conditions":  a.Conditions,
		"description": a.Description,
		"amendments":  "Category: " + a.Category,
	}
}

// RenderConstitution renders one section per axiom in store order, each
// followed by a newline. An empty store renders as the empty string.
func RenderConstitution(store domain.AxiomStore, sectionTemplate string) string {
	var b strings.Builder
	for _, a := range store.List() {
		b.WriteString(Render(sectionTemplate, AxiomBindings(a)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderUserPrompt embeds the rendered constitution and the question into
// the user prompt template. The question is inserted verbatim.
func RenderUserPrompt(userTemplate, constitution, question string) string {
	return Render(userTemplate, map[string]string{
		"constitution": constitution,
		"question":     question,
	})
}
