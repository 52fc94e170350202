package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/axiomqa/internal/app/citation"
	"github.com/PabloGalante/axiomqa/internal/config"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

var envKeys = []string{
	"AXIOMQA_CONFIG", "AXIOMQA_PROVIDER", "PORT", "AXIOMQA_PORT", "AXIOMQA_MODEL_NAME",
	"AXIOMQA_GCP_PROJECT", "AXIOMQA_GCP_LOCATION", "AXIOMQA_GEMINI_API_KEY",
	"AXIOMQA_AZURE_ENDPOINT", "AXIOMQA_AZURE_DEPLOYMENT", "AXIOMQA_AZURE_API_VERSION",
	"AXIOMQA_AZURE_API_KEY", "AXIOMQA_AZURE_TENANT_ID", "AXIOMQA_AZURE_CLIENT_ID",
	"AXIOMQA_AZURE_CLIENT_SECRET", "AXIOMQA_REQUESTS_PER_SECOND", "AXIOMQA_AXIOMS_PATH",
	"AXIOMQA_TEMPLATES_DIR", "AXIOMQA_CITATIONS", "AXIOMQA_CITATION_PATTERN", "AXIOMQA_LOG_LEVEL",
}

// clearEnv blanks every variable the loader reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "axiomqa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderMock, cfg.Provider)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/constitution.json", cfg.AxiomsPath)
	assert.Empty(t, cfg.TemplatesDir)
	assert.True(t, cfg.Citations)
	assert.Equal(t, config.DefaultCitationPattern, cfg.CitationPattern)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadLayering(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
provider: gemini
port: "9000"
gemini_api_key: from-file
model_name: gemini-file
citations: false
log_level: debug
azure:
  deployment: ignored-here
`)
	t.Setenv("AXIOMQA_CONFIG", path)
	t.Setenv("AXIOMQA_MODEL_NAME", "gemini-env")
	t.Setenv("PORT", "7000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderGemini, cfg.Provider)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-env", cfg.ModelName, "env overrides file")
	assert.Equal(t, "7000", cfg.Port, "PORT overrides file")
	assert.False(t, cfg.Citations)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ignored-here", cfg.Azure.Deployment)
	assert.Equal(t, "2024-06-01", cfg.Azure.APIVersion, "defaults survive a partial file")
}

func TestLoadFromOverridesEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("AXIOMQA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.LoadFrom(writeFile(t, "axioms_path: other.json\n"))
	require.NoError(t, err)
	assert.Equal(t, "other.json", cfg.AxiomsPath)
}

func TestLoadFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = config.LoadFrom(writeFile(t, "provider: [unclosed\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestLoadBadRequestsPerSecond(t *testing.T) {
	clearEnv(t)
	t.Setenv("AXIOMQA_REQUESTS_PER_SECOND", "fast")

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(*config.Config) {}, false},
		{"unknown provider", func(c *config.Config) { c.Provider = "openai" }, true},
		{"vertex without project", func(c *config.Config) { c.Provider = config.ProviderVertex }, true},
		{"vertex with project", func(c *config.Config) {
			c.Provider = config.ProviderVertex
			c.GCPProjectID = "proj"
		}, false},
		{"gemini without key", func(c *config.Config) { c.Provider = config.ProviderGemini }, true},
		{"azure relative endpoint", func(c *config.Config) {
			c.Provider = config.ProviderAzure
			c.Azure.Endpoint = "myresource.openai.azure.com"
			c.Azure.Deployment = "gpt"
			c.Azure.APIKey = "k"
		}, true},
		{"azure without deployment", func(c *config.Config) {
			c.Provider = config.ProviderAzure
			c.Azure.Endpoint = "https://myresource.openai.azure.com"
			c.Azure.APIKey = "k"
		}, true},
		{"azure without credentials", func(c *config.Config) {
			c.Provider = config.ProviderAzure
			c.Azure.Endpoint = "https://myresource.openai.azure.com"
			c.Azure.Deployment = "gpt"
			c.Azure.TenantID = "tenant"
		}, true},
		{"azure with api key", func(c *config.Config) {
			c.Provider = config.ProviderAzure
			c.Azure.Endpoint = "https://myresource.openai.azure.com"
			c.Azure.Deployment = "gpt"
			c.Azure.APIKey = "k"
		}, false},
		{"azure with service principal", func(c *config.Config) {
			c.Provider = config.ProviderAzure
			c.Azure.Endpoint = "https://myresource.openai.azure.com"
			c.Azure.Deployment = "gpt"
			c.Azure.TenantID, c.Azure.ClientID, c.Azure.ClientSecret = "t", "c", "s"
		}, false},
		{"bad citation pattern", func(c *config.Config) { c.CitationPattern = `^\[(AXIOM` }, true},
		{"negative rate", func(c *config.Config) { c.RequestsPerSecond = -1 }, true},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "trace" }, true},
		{"empty axioms path", func(c *config.Config) { c.AxiomsPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
		})
	}
}

func TestDefaultCitationPatternMatchesParser(t *testing.T) {
	assert.Equal(t, citation.DefaultPattern.String(), config.Default().CitationPattern)
}

func TestCitationRegexp(t *testing.T) {
	re, err := config.Default().CitationRegexp()
	require.NoError(t, err)
	assert.Equal(t, []string{"[AXIOM-12]", "AXIOM-12"}, re.FindStringSubmatch("[AXIOM-12]"))
}
