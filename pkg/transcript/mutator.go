package transcript

import (
	"fmt"
	"os"
	"strings"
)

// All writes here are append-only. Prior file content is never rewritten, so a
// failed turn leaves the file exactly as the user saved it.

// AppendReply appends an assistant reply under the assistant marker followed
// by a fresh empty user marker, ready for the next prompt.
func AppendReply(path, reply string) error {
	block := fmt.Sprintf("\n%s\n%s\n\n%s\n", AssistantMarker, reply, UserMarker)
	return appendString(path, block)
}

// AppendFileRequest appends the file-request artifact: a labelled block of one
// @f: directive per requested path. The block extends the transcript's current
// user section, so the next parse pass feeds it straight back through the
// directive expander.
func AppendFileRequest(path string, requested []string) error {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(FileRequestHeader)
	sb.WriteString("\n")
	for _, p := range requested {
		sb.WriteString("@f:")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return appendString(path, sb.String())
}

// EnsureFile creates the chat file with a single empty user marker if it does
// not exist. It reports whether the file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.WriteFile(path, []byte(UserMarker+"\n\n"), 0644); err != nil {
		return false, fmt.Errorf("creating chat file: %w", err)
	}
	return true, nil
}

func appendString(path, s string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening chat file for append: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		return fmt.Errorf("appending to chat file: %w", err)
	}
	return nil
}
