package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/axiomqa/internal/adapters/llm"
	"github.com/PabloGalante/axiomqa/internal/bootstrap"
	"github.com/PabloGalante/axiomqa/internal/config"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

const sampleAxioms = "../../data/constitution.json"

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.AxiomsPath = sampleAxioms
	return cfg
}

func TestBuildWithMock(t *testing.T) {
	app, err := bootstrap.Build(context.Background(), mockConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, app.Store.Len())
	assert.IsType(t, &llm.MockLLM{}, app.Chat)

	answer, err := app.Engine.Invoke(context.Background(), "When are premiums due?")
	require.NoError(t, err)
	assert.Contains(t, answer, "[AXIOM-001]")
}

func TestBuildTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"system_prompt.md": "custom system",
		"constitution.md":  "<{{ id }}>",
		"user_prompt.md":   "{{ constitution }}## {{ question }}",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	cfg := mockConfig()
	cfg.TemplatesDir = dir

	app, err := bootstrap.Build(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "custom system", app.Templates.System)
	assert.Equal(t, "<AXIOM-001>\n<AXIOM-002>\n<AXIOM-003>\n<AXIOM-004>\n## Why?", app.Engine.Prompt("Why?"))
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		class  error
	}{
		{"missing axioms", func(c *config.Config) { c.AxiomsPath = filepath.Join(t.TempDir(), "none.json") }, domain.ErrConfiguration},
		{"missing templates", func(c *config.Config) { c.TemplatesDir = t.TempDir() }, domain.ErrConfiguration},
		{"unknown provider", func(c *config.Config) { c.Provider = "openai" }, domain.ErrConfiguration},
		{"incomplete azure", func(c *config.Config) { c.Provider = config.ProviderAzure }, domain.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mockConfig()
			tt.mutate(cfg)

			_, err := bootstrap.Build(context.Background(), cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.class))
		})
	}
}

func TestNewChatCapabilityAzure(t *testing.T) {
	cfg := mockConfig()
	cfg.Provider = config.ProviderAzure
	cfg.Azure.Endpoint = "https://example.openai.azure.com"
	cfg.Azure.Deployment = "gpt-4o"
	cfg.Azure.TenantID, cfg.Azure.ClientID, cfg.Azure.ClientSecret = "tenant", "client", "secret"

	chat, err := bootstrap.NewChatCapability(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &llm.AzureOpenAIClient{}, chat)
}
