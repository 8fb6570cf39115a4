package transcript_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gchat/pkg/transcript"
)

func chatFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gchat.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAppendReply(t *testing.T) {
	path := chatFile(t, "USER PROMPT:\nHello")

	if err := transcript.AppendReply(path, "Hi there"); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "USER PROMPT:\nHello\nGROK RESPONSE:\nHi there\n\nUSER PROMPT:\n"
	if string(got) != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestAppendReplyRoundTrip(t *testing.T) {
	path := chatFile(t, "USER PROMPT:\nHello")
	if err := transcript.AppendReply(path, "Hi there"); err != nil {
		t.Fatal(err)
	}

	raw, _ := os.ReadFile(path)
	messages := transcript.Parse(string(raw))

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2: %+v", len(messages), messages)
	}
	if messages[0].Role != transcript.RoleUser || messages[0].Content != "Hello" {
		t.Errorf("message 0 = %+v", messages[0])
	}
	if messages[1].Role != transcript.RoleAssistant || messages[1].Content != "Hi there" {
		t.Errorf("message 1 = %+v", messages[1])
	}
	if transcript.HasPendingPrompt(messages) {
		t.Error("fresh empty user marker should not count as a pending prompt")
	}
}

func TestAppendFileRequest(t *testing.T) {
	path := chatFile(t, "USER PROMPT:\nshow me the config")

	if err := transcript.AppendFileRequest(path, []string{"a.go", "sub/b.go"}); err != nil {
		t.Fatal(err)
	}

	raw, _ := os.ReadFile(path)
	messages := transcript.Parse(string(raw))
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1: %+v", len(messages), messages)
	}
	last := messages[0]
	if last.Role != transcript.RoleUser {
		t.Errorf("artifact should extend the user section, got role %q", last.Role)
	}
	for _, want := range []string{transcript.FileRequestHeader, "@f:a.go", "@f:sub/b.go"} {
		if !strings.Contains(last.Content, want) {
			t.Errorf("artifact missing %q in %q", want, last.Content)
		}
	}
	if !transcript.HasPendingPrompt(messages) {
		t.Error("transcript with artifact should still have a pending prompt")
	}
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gchat.md")

	created, err := transcript.EnsureFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected creation of a missing file")
	}

	raw, _ := os.ReadFile(path)
	if transcript.HasPendingPrompt(transcript.Parse(string(raw))) {
		t.Error("bootstrapped file should have no pending prompt")
	}

	created, err = transcript.EnsureFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second EnsureFile should not recreate the file")
	}
}
