package llm

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

// contentGenerator is the part of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// VertexConfig selects the Gemini backend. With Project set the client uses
// Vertex AI (application default credentials); otherwise APIKey is required
// and the Gemini API is used.
type VertexConfig struct {
	Project   string
	Location  string
	APIKey    string
	ModelName string

	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

type VertexClient struct {
	models    contentGenerator
	modelName string

	temperature     float32
	topP            float32
	maxOutputTokens int32
}

// NewVertexClient creates a domain.ChatCapability backed by Gemini.
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.Project != "":
		if cfg.Location == "" {
			return nil, errors.Mark(errors.New("vertex: location is required with a project"), domain.ErrConfiguration)
		}
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	case cfg.APIKey != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	default:
		return nil, errors.Mark(errors.New("vertex: either a GCP project or a Gemini API key is required"), domain.ErrConfiguration)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}

	return newVertexClient(client.Models, cfg), nil
}

func newVertexClient(models contentGenerator, cfg VertexConfig) *VertexClient {
	v := &VertexClient{
		models:          models,
		modelName:       cfg.ModelName,
		temperature:     cfg.Temperature,
		topP:            cfg.TopP,
		maxOutputTokens: cfg.MaxOutputTokens,
	}
	if v.modelName == "" {
		v.modelName = "gemini-2.5-flash"
	}
	if v.temperature == 0 {
		v.temperature = 0.2
	}
	if v.topP == 0 {
		v.topP = 0.9
	}
	if v.maxOutputTokens == 0 {
		v.maxOutputTokens = 8192
	}
	return v
}

// CreateAgent binds instructions as the system instruction of every call.
// Agents keep no history: each run is a single-turn request.
func (v *VertexClient) CreateAgent(_ context.Context, instructions string) (domain.Agent, error) {
	temp := v.temperature
	topP := v.topP

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: v.maxOutputTokens,
	}
	if instructions != "" {
		// According to official examples, the role here is usually RoleUser, not "system"
		cfg.SystemInstruction = genai.NewContentFromText(instructions, genai.RoleUser)
	}

	return &vertexAgent{client: v, config: cfg}, nil
}

type vertexAgent struct {
	client *VertexClient
	config *genai.GenerateContentConfig
}

func (a *vertexAgent) contents(prompt string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
}

func (a *vertexAgent) Run(ctx context.Context, prompt string) (*domain.AgentResponse, error) {
	res, err := a.client.models.GenerateContent(ctx, a.client.modelName, a.contents(prompt), a.config)
	if err != nil {
		return nil, errors.Wrap(err, "vertex generate content")
	}

	// Only the text parts; thoughts and function calls are dropped.
	text := res.Text()
	if text == "" {
		return nil, errors.New("vertex returned empty text")
	}

	return &domain.AgentResponse{Text: text}, nil
}

func (a *vertexAgent) RunStream(ctx context.Context, prompt string) iter.Seq2[domain.Delta, error] {
	return func(yield func(domain.Delta, error) bool) {
		stream := a.client.models.GenerateContentStream(ctx, a.client.modelName, a.contents(prompt), a.config)
		for res, err := range stream {
			if err != nil {
				yield(domain.Delta{}, errors.Wrap(err, "vertex stream"))
				return
			}
			if !yield(domain.Delta{Text: res.Text()}, nil) {
				return
			}
		}
	}
}
