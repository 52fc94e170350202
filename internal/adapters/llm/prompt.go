package llm

import (
	"github.com/PabloGalante/axiomqa/internal/domain"
)

// Prompt represents the system instructions + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// Messages converts the prompt into role-tagged chat messages. The system
// message is omitted when there are no instructions.
func (p Prompt) Messages() []domain.ChatMessage {
	msgs := make([]domain.ChatMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: p.System})
	}
	return append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: p.User})
}
