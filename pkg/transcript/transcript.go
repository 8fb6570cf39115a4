// Package transcript reads and mutates the plain-text chat file that is the
// tool's entire user interface. Turn boundaries are lines exactly matching one
// of the two marker tokens; everything between boundaries is a message body.
package transcript

// Marker lines. A line equal to one of these (after trailing-\r trimming)
// opens a new section of the corresponding role.
const (
	UserMarker      = "USER PROMPT:"
	AssistantMarker = "GROK RESPONSE:"

	// FileRequestHeader labels the block of @f: directives appended when the
	// model asks for local files mid-turn. It is ordinary user-section text as
	// far as parsing is concerned.
	FileRequestHeader = "GROK REQUESTED FILES:"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of the conversation, in transcript order.
type Message struct {
	Role    Role
	Content string
}
