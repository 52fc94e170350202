package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/axiomqa/internal/app/prompt"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		bindings map[string]string
		want     string
	}{
		{
			name:     "substitutes every occurrence",
			template: "{{ a }} and {{ a }} and {{ b }}",
			bindings: map[string]string{"a": "1", "b": "2"},
			want:     "1 and 1 and 2",
		},
		{
			name:     "unknown placeholders stay verbatim",
			template: "{{ a }} {{ unknown }}",
			bindings: map[string]string{"a": "1"},
			want:     "1 {{ unknown }}",
		},
		{
			name:     "unused bindings are ignored",
			template: "plain",
			bindings: map[string]string{"a": "1"},
			want:     "plain",
		},
		{
			name:     "empty bindings return template",
			template: "{{ a }}",
			bindings: nil,
			want:     "{{ a }}",
		},
		{
			name:     "marker spacing must match exactly",
			template: "{{a}} {{ a }}",
			bindings: map[string]string{"a": "1"},
			want:     "{{a}} 1",
		},
		{
			name:     "values are not expanded again",
			template: "{{ a }}|{{ b }}",
			bindings: map[string]string{"a": "{{ b }}", "b": "{{ a }}"},
			want:     "{{ b }}|{{ a }}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prompt.Render(tt.template, tt.bindings))
		})
	}
}

func TestRenderIsPure(t *testing.T) {
	template := "[{{ id }}] {{ subject }}"
	bindings := map[string]string{"id": "AX1", "subject": "s"}

	first := prompt.Render(template, bindings)
	second := prompt.Render(template, bindings)

	assert.Equal(t, first, second)
	assert.Equal(t, "[{{ id }}] {{ subject }}", template)
	assert.Equal(t, map[string]string{"id": "AX1", "subject": "s"}, bindings)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "{{ question }}", prompt.Placeholder("question"))
}
