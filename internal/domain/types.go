package domain

// AxiomID is the stable identifier of an axiom, used as the citation key.
type AxiomID string

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ChatMessage is one role-tagged message sent to a message-based chat transport.
type ChatMessage struct {
	Role    Role
	Content string
}
