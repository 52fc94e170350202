// Package config loads the service configuration: defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/axiomqa/internal/app/citation"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

type Provider string

const (
	ProviderMock   Provider = "mock"
	ProviderVertex Provider = "vertex"
	ProviderGemini Provider = "gemini"
	ProviderAzure  Provider = "azure"
)

// DefaultCitationPattern is the marker pattern the citation parser uses by default.
var DefaultCitationPattern = citation.DefaultPattern.String()

type Config struct {
	Provider Provider `yaml:"provider"`

	Port string `yaml:"port"`

	// Gemini, through Vertex AI or the Gemini API.
	ModelName    string `yaml:"model_name"`
	GCPProjectID string `yaml:"gcp_project"`
	GCPLocation  string `yaml:"gcp_location"`
	GeminiAPIKey string `yaml:"gemini_api_key"`

	Azure AzureConfig `yaml:"azure"`

	// RequestsPerSecond paces calls to hosted providers; 0 = unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	AxiomsPath   string `yaml:"axioms_path"`
	TemplatesDir string `yaml:"templates_dir"` // "" = embedded templates

	Citations       bool   `yaml:"citations"`
	CitationPattern string `yaml:"citation_pattern"`

	LogLevel string `yaml:"log_level"`
}

type AzureConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
	APIKey     string `yaml:"api_key"`

	// Service principal used when no API key is set.
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Default returns the configuration used for local development: mock model,
// sample axiom document, embedded templates.
func Default() *Config {
	return &Config{
		Provider:        ProviderMock,
		Port:            "8080",
		ModelName:       "gemini-2.5-flash",
		GCPLocation:     "us-central1",
		Azure:           AzureConfig{APIVersion: "2024-06-01"},
		AxiomsPath:      "data/constitution.json",
		Citations:       true,
		CitationPattern: DefaultCitationPattern,
		LogLevel:        "info",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getFloatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "%s", key), domain.ErrConfiguration)
	}
	return f, nil
}

// Load reads the file named by AXIOMQA_CONFIG (if any), applies environment
// overrides and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("AXIOMQA_CONFIG"))
}

// LoadFrom is Load with an explicit config file; an empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithHint(
				errors.Mark(errors.Wrap(err, "reading config file"), domain.ErrConfiguration),
				"AXIOMQA_CONFIG or --config must name a readable YAML file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "parsing config file %s", path), domain.ErrConfiguration)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Provider = Provider(strings.ToLower(getEnv("AXIOMQA_PROVIDER", string(c.Provider))))

	// PORT is what Cloud Run injects.
	c.Port = getEnv("PORT", getEnv("AXIOMQA_PORT", c.Port))

	c.ModelName = getEnv("AXIOMQA_MODEL_NAME", c.ModelName)
	c.GCPProjectID = getEnv("AXIOMQA_GCP_PROJECT", c.GCPProjectID)
	c.GCPLocation = getEnv("AXIOMQA_GCP_LOCATION", c.GCPLocation)
	c.GeminiAPIKey = getEnv("AXIOMQA_GEMINI_API_KEY", c.GeminiAPIKey)

	c.Azure.Endpoint = getEnv("AXIOMQA_AZURE_ENDPOINT", c.Azure.Endpoint)
	c.Azure.Deployment = getEnv("AXIOMQA_AZURE_DEPLOYMENT", c.Azure.Deployment)
	c.Azure.APIVersion = getEnv("AXIOMQA_AZURE_API_VERSION", c.Azure.APIVersion)
	c.Azure.APIKey = getEnv("AXIOMQA_AZURE_API_KEY", c.Azure.APIKey)
	c.Azure.TenantID = getEnv("AXIOMQA_AZURE_TENANT_ID", c.Azure.TenantID)
	c.Azure.ClientID = getEnv("AXIOMQA_AZURE_CLIENT_ID", c.Azure.ClientID)
	c.Azure.ClientSecret = getEnv("AXIOMQA_AZURE_CLIENT_SECRET", c.Azure.ClientSecret)

	rps, err := getFloatEnv("AXIOMQA_REQUESTS_PER_SECOND", c.RequestsPerSecond)
	if err != nil {
		return err
	}
	c.RequestsPerSecond = rps

	c.AxiomsPath = getEnv("AXIOMQA_AXIOMS_PATH", c.AxiomsPath)
	c.TemplatesDir = getEnv("AXIOMQA_TEMPLATES_DIR", c.TemplatesDir)
	c.Citations = getBoolEnv("AXIOMQA_CITATIONS", c.Citations)
	c.CitationPattern = getEnv("AXIOMQA_CITATION_PATTERN", c.CitationPattern)
	c.LogLevel = strings.ToLower(getEnv("AXIOMQA_LOG_LEVEL", c.LogLevel))
	return nil
}

func invalid(hint, format string, args ...any) error {
	return errors.WithHint(errors.Mark(errors.Newf(format, args...), domain.ErrConfiguration), hint)
}

// Validate checks the provider-specific requirements.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
	case ProviderVertex:
		if c.GCPProjectID == "" {
			return invalid("set AXIOMQA_GCP_PROJECT", "gcp project is required for provider %q", c.Provider)
		}
		if c.GCPLocation == "" {
			return invalid("set AXIOMQA_GCP_LOCATION", "gcp location is required for provider %q", c.Provider)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return invalid("set AXIOMQA_GEMINI_API_KEY", "gemini api key is required for provider %q", c.Provider)
		}
	case ProviderAzure:
		if err := c.Azure.validate(); err != nil {
			return err
		}
	default:
		return invalid("AXIOMQA_PROVIDER must be one of mock, vertex, gemini, azure", "unknown provider %q", c.Provider)
	}

	if c.Port == "" {
		return invalid("set AXIOMQA_PORT or PORT", "port is required")
	}
	if c.AxiomsPath == "" {
		return invalid("set AXIOMQA_AXIOMS_PATH", "axioms path is required")
	}
	if c.RequestsPerSecond < 0 {
		return invalid("AXIOMQA_REQUESTS_PER_SECOND must be >= 0", "requests per second is negative: %v", c.RequestsPerSecond)
	}
	if _, err := c.CitationRegexp(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("AXIOMQA_LOG_LEVEL must be one of debug, info, warn, error", "unknown log level %q", c.LogLevel)
	}
	return nil
}

func (a AzureConfig) validate() error {
	u, err := url.Parse(a.Endpoint)
	if a.Endpoint == "" || err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("set AXIOMQA_AZURE_ENDPOINT to https://<resource>.openai.azure.com", "azure endpoint %q is not an absolute http(s) URL", a.Endpoint)
	}
	if a.Deployment == "" {
		return invalid("set AXIOMQA_AZURE_DEPLOYMENT", "azure deployment is required")
	}
	if a.APIKey == "" && !a.HasServicePrincipal() {
		return invalid("set AXIOMQA_AZURE_API_KEY or AXIOMQA_AZURE_TENANT_ID, AXIOMQA_AZURE_CLIENT_ID and AXIOMQA_AZURE_CLIENT_SECRET",
			"azure credentials are required")
	}
	return nil
}

// HasServicePrincipal reports whether the full client-credentials triple is set.
func (a AzureConfig) HasServicePrincipal() bool {
	return a.TenantID != "" && a.ClientID != "" && a.ClientSecret != ""
}

// CitationRegexp compiles CitationPattern.
func (c *Config) CitationRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.CitationPattern)
	if err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "compiling citation pattern"), domain.ErrConfiguration),
			"AXIOMQA_CITATION_PATTERN must be a valid regular expression")
	}
	return re, nil
}
