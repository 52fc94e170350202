package prompt_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/axiomqa/internal/app/prompt"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

func TestDefaultTemplates(t *testing.T) {
	tpl := prompt.DefaultTemplates()

	assert.NotEmpty(t, tpl.System)
	assert.Contains(t, tpl.Section, prompt.Placeholder("id"))
	assert.Contains(t, tpl.Section, prompt.Placeholder("amendments"))
	assert.Contains(t, tpl.User, prompt.Placeholder("constitution"))
	assert.Contains(t, tpl.User, prompt.Placeholder("question"))
}

func TestLoadTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"sys.md":  {Data: []byte("system")},
		"sec.md":  {Data: []byte("section")},
		"user.md": {Data: []byte("user")},
	}

	tpl, err := prompt.LoadTemplates(fsys, prompt.TemplatePaths{System: "sys.md", Section: "sec.md", User: "user.md"})
	require.NoError(t, err)
	assert.Equal(t, prompt.Templates{System: "system", Section: "section", User: "user"}, tpl)
}

func TestLoadTemplatesMissingDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"sys.md": {Data: []byte("system")},
	}

	_, err := prompt.LoadTemplates(fsys, prompt.TemplatePaths{System: "sys.md", Section: "sec.md", User: "user.md"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
	assert.Contains(t, err.Error(), "sec.md")
}

func TestLoadTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	paths := prompt.DefaultTemplatePaths()
	for _, name := range []string{paths.System, paths.Section, paths.User} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}

	tpl, err := prompt.LoadTemplatesDir(dir)
	require.NoError(t, err)
	assert.Equal(t, paths.User, tpl.User)

	_, err = prompt.LoadTemplatesDir(filepath.Join(dir, "nope"))
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
