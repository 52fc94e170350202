// Package prompt renders the constitution and the per-request user prompt
// from plain-text templates with {{ name }} placeholders.
package prompt

import (
	"sort"
	"strings"
)

// Placeholder returns the marker substituted for name.
func Placeholder(name string) string {
	return "{{ " + name + " }}"
}

// Render substitutes {{ key }} with bindings[key] for every binding.
//
// Substitution is literal and single pass: placeholders without a binding
// are left verbatim, unused bindings are ignored and substituted values are
// never expanded again. All bindings are applied in one scan, so the result
// does not depend on the iteration order of bindings.
func Render(template string, bindings map[string]string) string {
	if len(bindings) == 0 {
		return template
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, Placeholder(k), bindings[k])
	}

	return strings.NewReplacer(pairs...).Replace(template)
}
