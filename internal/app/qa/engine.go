// Package qa answers questions from the axiom constitution through a chat model.
package qa

import (
	"context"
	"iter"
	"regexp"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/PabloGalante/axiomqa/internal/app/citation"
	"github.com/PabloGalante/axiomqa/internal/app/prompt"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

// Engine composes the constitution prompt for a question, sends it to the
// chat model and classifies the answer into text and citation chunks.
//
// The chat capability and the axiom store are shared; the agent bound to the
// system instructions is owned by the engine and created on first use.
type Engine struct {
	chat         domain.ChatCapability
	store        domain.AxiomStore
	templates    prompt.Templates
	constitution string

	citations bool
	pattern   *regexp.Regexp

	mu    sync.Mutex
	agent domain.Agent
}

// Option configures an Engine.
type Option func(*Engine)

// WithCitations enables or disables citation detection in streamed answers.
// When disabled every non-empty delta becomes one TextContent.
func WithCitations(enabled bool) Option {
	return func(e *Engine) {
		e.citations = enabled
	}
}

// WithCitationPattern overrides citation.DefaultPattern.
func WithCitationPattern(re *regexp.Regexp) Option {
	return func(e *Engine) {
		if re != nil {
			e.pattern = re
		}
	}
}

// NewEngine renders the constitution once; the store must not change afterwards.
func NewEngine(
	chat domain.ChatCapability,
	store domain.AxiomStore,
	templates prompt.Templates,
	opts ...Option,
) (*Engine, error) {
	if chat == nil {
		return nil, errors.Mark(errors.New("qa engine: chat capability is required"), domain.ErrConfiguration)
	}
	if store == nil {
		return nil, errors.Mark(errors.New("qa engine: axiom store is required"), domain.ErrConfiguration)
	}

	e := &Engine{
		chat:         chat,
		store:        store,
		templates:    templates,
		constitution: prompt.RenderConstitution(store, templates.Section),
		citations:    true,
		pattern:      citation.DefaultPattern,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Prompt returns the user prompt sent to the model for question.
func (e *Engine) Prompt(question string) string {
	return prompt.RenderUserPrompt(e.templates.User, e.constitution, question)
}

// Constitution returns the rendered constitution document.
func (e *Engine) Constitution() string {
	return e.constitution
}

// Invoke returns the complete answer to question.
//
// The answer equals the concatenated Text of every chunk InvokeStreaming
// yields for the same model output; it is fetched with a single
// non-streaming call.
func (e *Engine) Invoke(ctx context.Context, question string) (string, error) {
	if err := validateQuestion(question); err != nil {
		return "", err
	}

	agent, err := e.getAgent(ctx)
	if err != nil {
		return "", err
	}

	resp, err := agent.Run(ctx, e.Prompt(question))
	if err != nil {
		return "", domain.Upstream(err, "running chat agent")
	}
	if resp == nil || resp.Text == "" {
		return "", errors.Mark(errors.New("chat agent returned no content"), domain.ErrUpstream)
	}

	return resp.Text, nil
}

// InvokeStreaming answers question as a lazy sequence of TextContent and
// CitationContent chunks, in the order the model produced them.
//
// The model is called when iteration starts, so every range over the
// returned sequence issues a new request. Leaving the loop early cancels the
// request and releases its connection. A failure ends the sequence with one
// error marked domain.ErrUpstream.
func (e *Engine) InvokeStreaming(ctx context.Context, question string) iter.Seq2[domain.ResponseChunk, error] {
	return func(yield func(domain.ResponseChunk, error) bool) {
		if err := validateQuestion(question); err != nil {
			yield(nil, err)
			return
		}

		agent, err := e.getAgent(ctx)
		if err != nil {
			yield(nil, err)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		userPrompt := e.Prompt(question)
		deltas := func(yield func(string, error) bool) {
			for d, err := range agent.RunStream(ctx, userPrompt) {
				if err != nil {
					yield("", domain.Upstream(err, "streaming chat agent"))
					return
				}
				if !yield(d.Text, nil) {
					return
				}
			}
		}

		for chunk, err := range citation.Classify(deltas, e.store, e.classifyOptions()...) {
			if !yield(chunk, err) {
				return
			}
		}
	}
}

func (e *Engine) classifyOptions() []citation.Option {
	if !e.citations {
		return []citation.Option{citation.WithoutCitations()}
	}
	return []citation.Option{citation.WithPattern(e.pattern)}
}

// getAgent returns the cached agent, creating it at most once. A failed
// creation is not cached.
func (e *Engine) getAgent(ctx context.Context) (domain.Agent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.agent != nil {
		return e.agent, nil
	}

	agent, err := e.chat.CreateAgent(ctx, e.templates.System)
	if err != nil {
		return nil, domain.Upstream(err, "creating chat agent")
	}
	if agent == nil {
		return nil, errors.Mark(errors.New("chat capability returned no agent"), domain.ErrUpstream)
	}

	e.agent = agent
	return agent, nil
}

func validateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return errors.Mark(errors.New("question must not be empty"), domain.ErrInvalidArgument)
	}
	return nil
}
