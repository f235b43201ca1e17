package chat

import "fmt"

// InvalidContextError reports a conversation history that violates the
// alternation invariant: an optional leading block of system messages, then
// user/assistant strictly alternating, starting with user.
type InvalidContextError struct {
	Index int  // position of the offending message
	Role  Role // role found at Index
	Want  Role // role required at Index
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("invalid conversation context: message %d has role %q, want %q", e.Index, e.Role, e.Want)
}

// ValidateMessages checks the alternation invariant on a message sequence.
// System messages are only permitted as a prefix; the first non-system
// message must be from the user.
func ValidateMessages(msgs []Message) error {
	want := RoleUser
	inPrefix := true
	for i, m := range msgs {
		if m.Role == RoleSystem {
			if !inPrefix {
				return &InvalidContextError{Index: i, Role: m.Role, Want: want}
			}
			continue
		}
		inPrefix = false
		if m.Role != want {
			return &InvalidContextError{Index: i, Role: m.Role, Want: want}
		}
		if want == RoleUser {
			want = RoleAssistant
		} else {
			want = RoleUser
		}
	}
	return nil
}

// Context is the ordered multi-turn message history carried across queries.
// It is mutated by exactly one user message followed by one assistant
// message per successful turn, and never concurrently.
type Context struct {
	messages []Message
}

// NewContext returns an empty conversation context.
func NewContext() *Context {
	return &Context{}
}

// NewContextWith seeds a context from previously persisted messages. The
// slice is copied; the seed must satisfy the alternation invariant.
func NewContextWith(msgs []Message) (*Context, error) {
	if err := ValidateMessages(msgs); err != nil {
		return nil, err
	}
	c := &Context{messages: make([]Message, len(msgs))}
	copy(c.messages, msgs)
	return c, nil
}

// AddUserMessage appends a user message to the context.
func (c *Context) AddUserMessage(content string) {
	c.messages = append(c.messages, Message{Role: RoleUser, Content: content})
}

// AddAssistantMessage appends an assistant message to the context.
func (c *Context) AddAssistantMessage(content string) {
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: content})
}

// AppendTurn records one completed exchange.
func (c *Context) AppendTurn(userText, assistantText string) {
	c.AddUserMessage(userText)
	c.AddAssistantMessage(assistantText)
}

// Messages returns a copy of the current history. Callers may hold or
// mutate the returned slice without affecting the context.
func (c *Context) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len reports the number of messages in the context.
func (c *Context) Len() int {
	return len(c.messages)
}
