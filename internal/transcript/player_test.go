package transcript

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nixlim/chatprint/internal/messages"
	"github.com/nixlim/chatprint/internal/render"
)

type recordingLogger struct {
	messages []int
	errors   []int
}

func (l *recordingLogger) LogMessage(seq int, _ Record, _ messages.Message) {
	l.messages = append(l.messages, seq)
}

func (l *recordingLogger) LogError(seq int, _ Record, _ error) {
	l.errors = append(l.errors, seq)
}

func TestPlayer_Play(t *testing.T) {
	records := []Record{
		{Kind: KindReceived, Sender: &Agent{Name: "alice"}, Recipient: &Agent{Name: "bob"}, Message: map[string]any{"content": "hello"}},
		{Kind: "bogus"},
		{Kind: "clear_agents_history", Agent: &Agent{Name: "alice"}},
	}
	logger := &recordingLogger{}
	history := NewRingBuffer(10)
	p := NewPlayer(render.Policy{DefaultColor: "yellow"}, WithLogger(logger), WithHistory(history))

	var out bytes.Buffer
	err := p.Play(records, &out)
	if err == nil {
		t.Fatal("expected an error for the bogus record")
	}
	if !strings.Contains(err.Error(), "record 2:") {
		t.Errorf("error should name the record, got: %v", err)
	}

	want := "Message from alice:\n\nhello\nClearing history for alice.\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	if len(logger.messages) != 2 || logger.messages[0] != 1 || logger.messages[1] != 3 {
		t.Errorf("logged messages = %v, want [1 3]", logger.messages)
	}
	if len(logger.errors) != 1 || logger.errors[0] != 2 {
		t.Errorf("logged errors = %v, want [2]", logger.errors)
	}

	entries := history.ListAll()
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].Seq != 1 || entries[0].Sender != "alice" || entries[0].Kind != messages.KindText {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Output != "Clearing history for alice.\n" {
		t.Errorf("second entry output = %q", entries[1].Output)
	}
}

func TestPlayer_NilWriterKeepsHistory(t *testing.T) {
	p := NewPlayer(render.Policy{})
	records := []Record{{Kind: "usage_summary_no_cost", Recipient: &Agent{Name: "bob"}}}
	if err := p.Play(records, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.History().Cap() != DefaultHistorySize {
		t.Errorf("default history cap = %d, want %d", p.History().Cap(), DefaultHistorySize)
	}
	if got := p.History().ListAll(); len(got) != 1 || got[0].Output != "No cost incurred from agent 'bob'.\n" {
		t.Errorf("history = %+v", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPlayer_WriteError(t *testing.T) {
	p := NewPlayer(render.Policy{})
	err := p.Play([]Record{{Kind: "select_speaker_try_count_exceeded", TryCount: 2}}, failingWriter{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestPlayer_EntriesNotBoundedByHistory(t *testing.T) {
	p := NewPlayer(render.Policy{}, WithHistory(NewRingBuffer(2)))
	var records []Record
	for i := 0; i < 5; i++ {
		records = append(records, Record{Kind: "usage_summary_no_cost", Recipient: &Agent{Name: "bob"}})
	}
	if err := p.Play(records, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := p.History().Len(); got != 2 {
		t.Errorf("history len = %d, want 2", got)
	}
	entries := p.Entries()
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}
	for i, e := range entries {
		if e.Seq != i+1 {
			t.Errorf("entry %d seq = %d", i, e.Seq)
		}
	}

	if err := p.Play(records[:1], nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(p.Entries()); got != 1 {
		t.Errorf("entries after second play = %d, want 1", got)
	}
}
