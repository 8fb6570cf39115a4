package transcript

import "strings"

// Parse scans the raw chat file text into an ordered message list.
//
// A line exactly equal to a marker closes the currently accumulating section
// (emitting a message if its trimmed content is non-empty) and opens a new
// section with the role the marker implies. All other lines belong to the open
// section verbatim. Text before any marker is an implicit user section, so a
// file with no markers at all parses as a single user message.
//
// Parse is a pure function of its input: identical bytes always yield an
// identical message list.
func Parse(raw string) []Message {
	var (
		messages []Message
		buf      strings.Builder
		role     = RoleUser
	)

	flush := func() {
		content := strings.TrimSpace(buf.String())
		if content != "" {
			messages = append(messages, Message{Role: role, Content: content})
		}
		buf.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		switch strings.TrimSuffix(line, "\r") {
		case UserMarker:
			flush()
			role = RoleUser
		case AssistantMarker:
			flush()
			role = RoleAssistant
		default:
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	flush()

	return messages
}

// HasPendingPrompt reports whether the transcript ends with a user message
// that has content, i.e. whether there is an unanswered prompt to process.
func HasPendingPrompt(messages []Message) bool {
	if len(messages) == 0 {
		return false
	}
	last := messages[len(messages)-1]
	return last.Role == RoleUser && strings.TrimSpace(last.Content) != ""
}
