package prompt

import (
	"embed"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

//go:embed templates/*.md
var embedded embed.FS

// Templates holds the three documents a QA engine needs.
type Templates struct {
	// System instructions, used as-is.
	System string
	// Section is rendered once per axiom.
	Section string
	// User embeds the constitution and the question.
	User string
}

// TemplatePaths names the template documents inside a file system.
type TemplatePaths struct {
	System  string
	Section string
	User    string
}

// DefaultTemplatePaths returns the file names used by the embedded templates
// and expected by LoadTemplatesDir.
func DefaultTemplatePaths() TemplatePaths {
	return TemplatePaths{
		System:  "system_prompt.md",
		Section: "constitution.md",
		User:    "user_prompt.md",
	}
}

// LoadTemplates reads the three documents from fsys. Any read failure is a
// configuration error.
func LoadTemplates(fsys fs.FS, paths TemplatePaths) (Templates, error) {
	var t Templates
	docs := []struct {
		path string
		dst  *string
	}{
		{paths.System, &t.System},
		{paths.Section, &t.Section},
		{paths.User, &t.User},
	}

	for _, d := range docs {
		if d.path == "" {
			return Templates{}, errors.Mark(errors.New("template path is empty"), domain.ErrConfiguration)
		}
		b, err := fs.ReadFile(fsys, d.path)
		if err != nil {
			return Templates{}, domain.Configuration(err, "reading template "+d.path)
		}
		*d.dst = string(b)
	}

	return t, nil
}

// LoadTemplatesDir reads the templates from dir using DefaultTemplatePaths.
func LoadTemplatesDir(dir string) (Templates, error) {
	t, err := LoadTemplates(os.DirFS(dir), DefaultTemplatePaths())
	if err != nil {
		return Templates{}, errors.WithHint(err, "AXIOMQA_TEMPLATES_DIR must contain system_prompt.md, constitution.md and user_prompt.md")
	}
	return t, nil
}

// DefaultTemplates returns the templates compiled into the binary.
func DefaultTemplates() Templates {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	t, err := LoadTemplates(sub, DefaultTemplatePaths())
	if err != nil {
		panic(err)
	}
	return t
}
