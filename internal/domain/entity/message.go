package entity

import "strings"

// Role tags a ChatMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Reserved delimiters around user-supplied text. Extracted declaration
// fields derive from the query, so they get their own pair.
const (
	QueryOpenTag      = "<incoming-message>"
	QueryCloseTag     = "</incoming-message>"
	ExtractedOpenTag  = "<extracted-fields>"
	ExtractedCloseTag = "</extracted-fields>"
)

// ChatMessage is a single role-tagged turn sent to the completion service.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered list of messages.
type Conversation []ChatMessage

// NewConversation builds the standard two-message conversation: the system
// instructions followed by the query wrapped in the reserved delimiters.
func NewConversation(system, query string) Conversation {
	return Conversation{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: WrapQuery(query)},
	}
}

var delimiterEscaper = strings.NewReplacer(
	QueryOpenTag, "&lt;incoming-message&gt;",
	QueryCloseTag, "&lt;/incoming-message&gt;",
	ExtractedOpenTag, "&lt;extracted-fields&gt;",
	ExtractedCloseTag, "&lt;/extracted-fields&gt;",
)

// WrapQuery encloses query in the reserved delimiter pair. Delimiter tokens
// already present in the query are escaped so the envelope cannot be closed
// from inside.
func WrapQuery(query string) string {
	return QueryOpenTag + delimiterEscaper.Replace(query) + QueryCloseTag
}

// NewDeclarationConversation is NewConversation with the extracted
// declaration fields appended to the user turn in their own envelope. Field
// values come from the query and never enter the system message.
func NewDeclarationConversation(system, query, fields string) Conversation {
	return Conversation{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: WrapQuery(query) + "\n" + WrapExtracted(fields)},
	}
}

// WrapExtracted encloses derived field text in the extracted-fields pair,
// escaping every reserved delimiter inside it.
func WrapExtracted(fields string) string {
	return ExtractedOpenTag + delimiterEscaper.Replace(fields) + ExtractedCloseTag
}

// System returns the concatenated content of the system messages.
func (c Conversation) System() string {
	var parts []string
	for _, m := range c {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// LastUser returns the content of the last user message, or "".
func (c Conversation) LastUser() string {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == RoleUser {
			return c[i].Content
		}
	}
	return ""
}
