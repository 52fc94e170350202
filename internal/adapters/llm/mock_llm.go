package llm

import (
	"context"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

// defaultMockReply exercises both plain text and a split citation marker.
var defaultMockReply = []string{
	"This answer comes from the local mock model",
	" and cites ",
	"[AXIOM",
	"-001]",
	" to exercise citation handling.",
}

// MockLLM is a scripted domain.ChatCapability for local mode and tests.
// Every agent it creates replies with Deltas.
type MockLLM struct {
	// Deltas is the reply, streamed one element per delta.
	Deltas []string

	// CreateErr fails CreateAgent, RunErr fails Run and StreamErr is yielded
	// by RunStream after all Deltas.
	CreateErr error
	RunErr    error
	StreamErr error

	agents      atomic.Int32
	openStreams atomic.Int32

	mu           sync.Mutex
	prompts      []string
	instructions []string
}

// NewMockLLM returns a mock replying with deltas, or a canned reply when
// none are given.
func NewMockLLM(deltas ...string) *MockLLM {
	if len(deltas) == 0 {
		deltas = defaultMockReply
	}
	return &MockLLM{Deltas: deltas}
}

func (m *MockLLM) CreateAgent(_ context.Context, instructions string) (domain.Agent, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.agents.Add(1)
	m.mu.Lock()
	m.instructions = append(m.instructions, instructions)
	m.mu.Unlock()

	return &mockAgent{llm: m}, nil
}

// AgentsCreated returns how many agents were created.
func (m *MockLLM) AgentsCreated() int {
	return int(m.agents.Load())
}

// OpenStreams returns the number of streams that have started and not yet
// been released.
func (m *MockLLM) OpenStreams() int {
	return int(m.openStreams.Load())
}

// Prompts returns every prompt received, in order.
func (m *MockLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Instructions returns the system instructions of every created agent.
func (m *MockLLM) Instructions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.instructions...)
}

func (m *MockLLM) record(prompt string) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}

type mockAgent struct {
	llm *MockLLM
}

func (a *mockAgent) Run(ctx context.Context, prompt string) (*domain.AgentResponse, error) {
	a.llm.record(prompt)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.llm.RunErr != nil {
		return nil, a.llm.RunErr
	}
	return &domain.AgentResponse{Text: strings.Join(a.llm.Deltas, "")}, nil
}

func (a *mockAgent) RunStream(ctx context.Context, prompt string) iter.Seq2[domain.Delta, error] {
	return func(yield func(domain.Delta, error) bool) {
		a.llm.record(prompt)

		a.llm.openStreams.Add(1)
		defer a.llm.openStreams.Add(-1)

		for _, d := range a.llm.Deltas {
			if err := ctx.Err(); err != nil {
				yield(domain.Delta{}, err)
				return
			}
			if !yield(domain.Delta{Text: d}, nil) {
				return
			}
		}

		if a.llm.StreamErr != nil {
			yield(domain.Delta{}, a.llm.StreamErr)
		}
	}
}
