package perplexity

import (
	"github.com/tom-doerr/perplexity-search/internal/chat"
)

// systemPrompt is the fixed instruction prepended to every conversation that
// does not already carry its own system message.
const systemPrompt = "You are a technical assistant focused on providing accurate, practical " +
	"information. Follow these guidelines:\n" +
	"1. Include code examples when relevant to explain concepts\n" +
	"2. Include measurements and numbers when relevant\n" +
	"3. Keep explanations concise and direct\n" +
	"4. Focus on facts, technical details and real-world usage\n" +
	"5. Show basic and advanced usage patterns when relevant\n" +
	"6. Use tables or lists to organize information when appropriate\n" +
	"7. If show_citations is True, add numbered citations at the bottom in " +
	"[1], [2] format"

// Payload is the provider-ready request body. Built fresh per request and
// never retained.
type Payload struct {
	Model         string         `json:"model"`
	Messages      []chat.Message `json:"messages"`
	Stream        bool           `json:"stream"`
	ShowCitations bool           `json:"show_citations"`
}

// BuildPayload assembles the request body for one query. A supplied context
// is inserted between the system message and the new query, preserving its
// order. If the context itself starts with a system message, that message is
// used instead of the default prompt. The context is validated before any
// network I/O; a malformed history returns *chat.InvalidContextError.
func BuildPayload(query, model string, stream, showCitations bool, context []chat.Message) (Payload, error) {
	if err := chat.ValidateMessages(context); err != nil {
		return Payload{}, err
	}
	// The query becomes the final user message, so a history ending on a
	// user turn would put two user messages back to back.
	if n := len(context); n > 0 && context[n-1].Role == chat.RoleUser {
		return Payload{}, &chat.InvalidContextError{Index: n - 1, Role: chat.RoleUser, Want: chat.RoleAssistant}
	}

	messages := make([]chat.Message, 0, len(context)+2)
	if len(context) == 0 || context[0].Role != chat.RoleSystem {
		messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, context...)
	messages = append(messages, chat.Message{Role: chat.RoleUser, Content: query})

	return Payload{
		Model:         model,
		Messages:      messages,
		Stream:        stream,
		ShowCitations: showCitations,
	}, nil
}
