package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nixlim/chatprint/internal/codeblock"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		cfgPath = ""
		renderFlags = renderOptions{}
		historyFlags.limit = 20
		historyFlags.pager = false
		historyFlags.archive = ""
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	transcriptPath := writeFile(t, "chat.jsonl",
		`{"kind":"received","sender":{"name":"alice"},"recipient":{"name":"bob"},"message":{"content":"hello"}}`+"\n"+
			`{"kind":"usage_summary_no_cost","recipient":{"name":"bob"}}`+"\n")
	missingConfig := filepath.Join(t.TempDir(), "none.toml")

	out, err := execute(t, "render", "--config", missingConfig, transcriptPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Message from alice:\n\nhello\nNo cost incurred from agent 'bob'.\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRenderCommand_YAMLAndDebugLog(t *testing.T) {
	transcriptPath := writeFile(t, "chat.yaml", `
- kind: received
  sender: {name: alice}
  message: {content: hi}
- kind: nonsense
`)
	logPath := filepath.Join(t.TempDir(), "debug.jsonl")

	_, err := execute(t, "render", "--config", filepath.Join(t.TempDir(), "none.toml"), "--debug-log", logPath, transcriptPath)
	if err == nil || !strings.Contains(err.Error(), "record 2") {
		t.Fatalf("expected error for record 2, got %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading debug log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), data)
	}
	if !strings.Contains(lines[0], `"type":"message"`) || !strings.Contains(lines[1], `"type":"error"`) {
		t.Errorf("unexpected log lines: %s", data)
	}
}

func TestExtractCommand(t *testing.T) {
	path := writeFile(t, "msg.md", "Run:\n```sh\nls\n```\n")

	out, err := execute(t, "extract", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var blocks []codeblock.Block
	if err := json.Unmarshal([]byte(out), &blocks); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(blocks) != 1 || blocks[0].Language != "sh" || blocks[0].Code != "ls" {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestExtractCommand_NoBlocks(t *testing.T) {
	path := writeFile(t, "msg.txt", "nothing to see")
	out, err := execute(t, "extract", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected empty JSON array, got %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	cfgFile := writeFile(t, "config.toml", "[display]\ndefault_color = \"cyan\"\n")
	out, err := execute(t, "config", "--config", cfgFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `default_color = "cyan"`) {
		t.Errorf("expected effective default_color in output:\n%s", out)
	}
}

func TestRenderArchiveAndHistory(t *testing.T) {
	transcriptPath := writeFile(t, "chat.jsonl",
		`{"kind":"received","sender":{"name":"alice"},"message":{"content":"hello"}}`+"\n")
	missingConfig := filepath.Join(t.TempDir(), "none.toml")
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	if _, err := execute(t, "render", "--config", missingConfig, "--archive-db", dbPath, transcriptPath); err != nil {
		t.Fatalf("render: %v", err)
	}

	out, err := execute(t, "history", "--config", missingConfig, "--archive-db", dbPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "1 message") || !strings.Contains(out, transcriptPath) {
		t.Errorf("unexpected run listing:\n%s", out)
	}

	out, err = execute(t, "history", "--config", missingConfig, "--archive-db", dbPath, "1")
	if err != nil {
		t.Fatalf("history 1: %v", err)
	}
	if want := "Message from alice:\n\nhello\n"; out != want {
		t.Errorf("replayed output = %q, want %q", out, want)
	}
}

func TestRenderArchiveKeepsRecordsBeyondHistorySize(t *testing.T) {
	cfgFile := writeFile(t, "config.toml", "[display]\nhistory_size = 2\n")
	line := `{"kind":"usage_summary_no_cost","recipient":{"name":"bob"}}` + "\n"
	transcriptPath := writeFile(t, "chat.jsonl", strings.Repeat(line, 5))
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	out, err := execute(t, "render", "--config", cfgFile, "--archive-db", dbPath, transcriptPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := strings.Count(out, "No cost incurred"); n != 5 {
		t.Fatalf("rendered %d messages, want 5", n)
	}

	listing, err := execute(t, "history", "--config", cfgFile, "--archive-db", dbPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(listing, "5 messages") {
		t.Errorf("archived run should record 5 messages:\n%s", listing)
	}

	replay, err := execute(t, "history", "--config", cfgFile, "--archive-db", dbPath, "1")
	if err != nil {
		t.Fatalf("history 1: %v", err)
	}
	if replay != out {
		t.Errorf("replayed output = %q, want %q", replay, out)
	}
}

func TestHistoryCommand_NoArchive(t *testing.T) {
	_, err := execute(t, "history", "--config", filepath.Join(t.TempDir(), "none.toml"))
	if err == nil || !strings.Contains(err.Error(), "no archive configured") {
		t.Fatalf("expected no-archive error, got %v", err)
	}
}
