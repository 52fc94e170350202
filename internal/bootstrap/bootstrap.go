// Package bootstrap wires the configured collaborators into a QA engine.
// Both binaries call Build once and pass the result down.
package bootstrap

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/PabloGalante/axiomqa/internal/adapters/llm"
	"github.com/PabloGalante/axiomqa/internal/adapters/storage/memory"
	"github.com/PabloGalante/axiomqa/internal/app/prompt"
	"github.com/PabloGalante/axiomqa/internal/app/qa"
	"github.com/PabloGalante/axiomqa/internal/config"
	"github.com/PabloGalante/axiomqa/internal/domain"
	"github.com/PabloGalante/axiomqa/internal/observability"
)

type App struct {
	Config    *config.Config
	Store     *memory.AxiomStore
	Templates prompt.Templates
	Chat      domain.ChatCapability
	Engine    *qa.Engine
}

// NewChatCapability picks the chat provider named by cfg.Provider.
func NewChatCapability(ctx context.Context, cfg *config.Config) (domain.ChatCapability, error) {
	log := observability.WithFields("provider", string(cfg.Provider))

	switch cfg.Provider {
	case config.ProviderMock:
		log.Info("using mock chat model")
		return llm.NewMockLLM(), nil

	case config.ProviderVertex, config.ProviderGemini:
		vc := llm.VertexConfig{ModelName: cfg.ModelName}
		if cfg.Provider == config.ProviderVertex {
			vc.Project, vc.Location = cfg.GCPProjectID, cfg.GCPLocation
		} else {
			vc.APIKey = cfg.GeminiAPIKey
		}
		log.Info("using gemini chat model", "model", cfg.ModelName, "project", cfg.GCPProjectID)
		return llm.NewVertexClient(ctx, vc)

	case config.ProviderAzure:
		ac := llm.AzureConfig{
			Endpoint:          cfg.Azure.Endpoint,
			Deployment:        cfg.Azure.Deployment,
			APIVersion:        cfg.Azure.APIVersion,
			APIKey:            cfg.Azure.APIKey,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            log,
		}
		if ac.APIKey == "" && cfg.Azure.HasServicePrincipal() {
			// The token source outlives ctx; it refreshes on its own schedule.
			ac.TokenSource = llm.AzureClientCredentials(context.WithoutCancel(ctx),
				cfg.Azure.TenantID, cfg.Azure.ClientID, cfg.Azure.ClientSecret)
		}
		log.Info("using azure openai chat model", "deployment", cfg.Azure.Deployment)
		return llm.NewAzureOpenAIClient(ac)

	default:
		return nil, errors.Mark(errors.Newf("unknown provider %q", cfg.Provider), domain.ErrConfiguration)
	}
}

// Build loads the axiom document and the templates and constructs the engine.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := memory.LoadAxiomsFile(cfg.AxiomsPath)
	if err != nil {
		return nil, err
	}

	templates := prompt.DefaultTemplates()
	if cfg.TemplatesDir != "" {
		templates, err = prompt.LoadTemplatesDir(cfg.TemplatesDir)
		if err != nil {
			return nil, err
		}
	}

	pattern, err := cfg.CitationRegexp()
	if err != nil {
		return nil, err
	}

	chat, err := NewChatCapability(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating chat capability")
	}

	engine, err := qa.NewEngine(chat, store, templates,
		qa.WithCitations(cfg.Citations),
		qa.WithCitationPattern(pattern),
	)
	if err != nil {
		return nil, err
	}

	observability.Logger().Info("axiomqa ready",
		"axioms", store.Len(),
		"provider", string(cfg.Provider),
		"citations", cfg.Citations)

	return &App{
		Config:    cfg,
		Store:     store,
		Templates: templates,
		Chat:      chat,
		Engine:    engine,
	}, nil
}
