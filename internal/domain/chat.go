package domain

// Roles and display names sent with every outbound completion request.
const (
	RoleSystem = "system"
	RoleUser   = "user"

	NameAssistant = "Assistant"
	NameUser      = "User"
)

// ChatMessage is a single message of the outbound completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}
