package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nixlim/chatprint/internal/messages"
)

// Logger records what happened while replaying a transcript.
// Implementations must be safe for concurrent use.
type Logger interface {
	// LogMessage logs a message built from the record at index seq.
	LogMessage(seq int, rec Record, m messages.Message)

	// LogError logs a record that could not be turned into a message.
	LogError(seq int, rec Record, err error)
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) LogMessage(int, Record, messages.Message) {}

func (NopLogger) LogError(int, Record, error) {}

// logEntry is the JSON structure written by FileLogger.
type logEntry struct {
	Timestamp string `json:"ts"`
	Type      string `json:"type"`
	Seq       int    `json:"seq"`
	Kind      string `json:"kind"`
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FileLogger writes one JSON object per line to an io.Writer.
type FileLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewFileLogger creates a FileLogger that writes to w.
func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w, now: time.Now}
}

// LogMessage writes a "message" line.
func (l *FileLogger) LogMessage(seq int, rec Record, m messages.Message) {
	l.write(logEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Type:      "message",
		Seq:       seq,
		Kind:      string(m.Kind()),
		ID:        m.MessageID().String(),
		Sender:    rec.SenderName(),
	})
}

// LogError writes an "error" line.
func (l *FileLogger) LogError(seq int, rec Record, err error) {
	l.write(logEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Type:      "error",
		Seq:       seq,
		Kind:      rec.Kind,
		ID:        rec.ID,
		Sender:    rec.SenderName(),
		Error:     err.Error(),
	})
}

// write serialises entry as a single line. Serialisation errors are
// dropped so logging never interrupts a replay.
func (l *FileLogger) write(entry logEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
