package domain

import (
	"context"
	"iter"
)

// AxiomStore is the read-only view every consumer of loaded axioms receives.
type AxiomStore interface {
	// List returns the axioms in document order. Every call returns a fresh
	// slice, so the sequence can be iterated any number of times.
	List() []Axiom
	Get(id AxiomID) (Axiom, bool)
}

// ChatCapability is the upstream chat model as seen by the core.
// Transport, authentication, timeouts and retries belong to the implementation.
type ChatCapability interface {
	CreateAgent(ctx context.Context, instructions string) (Agent, error)
}

// Agent is a conversational session bound to fixed system instructions.
type Agent interface {
	Run(ctx context.Context, prompt string) (*AgentResponse, error)

	// RunStream returns the answer as text deltas. Stopping the iteration
	// early must release the underlying connection.
	RunStream(ctx context.Context, prompt string) iter.Seq2[Delta, error]
}

// AgentResponse is the complete answer of a non-streaming run.
type AgentResponse struct {
	Text string
}

// Delta is one increment of streamed text. Text may be empty.
type Delta struct {
	Text string
}
