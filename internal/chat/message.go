package chat

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn fragment in a conversation. Ordering is significant:
// insertion order is conversation order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
