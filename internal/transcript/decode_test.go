package transcript

import (
	"strings"
	"testing"
)

func TestDecode_JSONL(t *testing.T) {
	input := `{"kind":"received","sender":{"name":"alice"},"recipient":{"name":"bob"},"message":{"content":"hello"}}

{"kind":"clear_agents_history","agent":{"name":"alice"},"preserve":2}
`
	records, err := Decode(strings.NewReader(input), FormatJSONL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Sender.Name != "alice" || records[0].Recipient.Name != "bob" {
		t.Errorf("first record agents: %+v / %+v", records[0].Sender, records[0].Recipient)
	}
	payload, ok := records[0].Message.(map[string]any)
	if !ok || payload["content"] != "hello" {
		t.Errorf("first record message: %#v", records[0].Message)
	}
	if records[1].Agent.Name != "alice" || records[1].Preserve != 2 {
		t.Errorf("second record: %+v", records[1])
	}
}

func TestDecode_JSONLBadLine(t *testing.T) {
	input := "{\"kind\":\"received\"}\n{not json}\n"
	_, err := Decode(strings.NewReader(input), FormatJSONL)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "line 2:") {
		t.Errorf("error should name the line, got: %v", err)
	}
}

func TestDecode_YAML(t *testing.T) {
	input := `
- kind: received
  sender: {name: planner}
  recipient: {name: engineer}
  message:
    content: "Plan: {task}"
    context: {task: plot}
- kind: select_speaker
  agents:
    - name: planner
    - name: engineer
- kind: executed_function
  func_name: plot
  arguments: {n: 3}
  content: done
`
	records, err := Decode(strings.NewReader(input), FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	payload, ok := records[0].Message.(map[string]any)
	if !ok {
		t.Fatalf("expected map message, got %T", records[0].Message)
	}
	if _, ok := payload["context"].(map[string]any); !ok {
		t.Errorf("expected nested map context, got %T", payload["context"])
	}
	if len(records[1].Agents) != 2 || records[1].Agents[1].Name != "engineer" {
		t.Errorf("agents: %+v", records[1].Agents)
	}
	if records[2].Arguments["n"] != 3 {
		t.Errorf("arguments: %#v", records[2].Arguments)
	}
}

func TestDecode_YAMLEmpty(t *testing.T) {
	records, err := Decode(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestDecode_YAMLMalformed(t *testing.T) {
	if _, err := Decode(strings.NewReader("kind: [unclosed"), FormatYAML); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	if _, err := Decode(strings.NewReader(""), Format("xml")); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"jsonl", FormatJSONL, false},
		{"JSON", FormatJSONL, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"chat.yaml":       FormatYAML,
		"chat.YML":        FormatYAML,
		"chat.jsonl":      FormatJSONL,
		"chat":            FormatJSONL,
		"/tmp/run.ndjson": FormatJSONL,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
