package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/nixlim/chatprint/internal/render"
)

// Player replays records through a renderer, keeping each rendered entry
// in a history buffer.
type Player struct {
	policy  render.Policy
	history *RingBuffer
	entries []Entry
	logger  Logger
	profile *termenv.Profile
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLogger sets the replay logger. The default discards everything.
func WithLogger(l Logger) PlayerOption {
	return func(p *Player) { p.logger = l }
}

// WithHistory sets the buffer receiving rendered entries.
func WithHistory(rb *RingBuffer) PlayerOption {
	return func(p *Player) { p.history = rb }
}

// WithColorProfile sets the colour profile used for rendering. Without it
// output is rendered as plain text.
func WithColorProfile(profile termenv.Profile) PlayerOption {
	return func(p *Player) { p.profile = &profile }
}

// NewPlayer creates a Player for the given policy.
func NewPlayer(policy render.Policy, opts ...PlayerOption) *Player {
	p := &Player{
		policy: policy,
		logger: NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.history == nil {
		p.history = NewRingBuffer(DefaultHistorySize)
	}
	return p
}

// DefaultHistorySize is the history capacity used when none is given.
const DefaultHistorySize = 1000

// History returns the buffer of rendered entries.
func (p *Player) History() *RingBuffer { return p.history }

// Entries returns every entry rendered by the last Play call. Unlike
// History it is not bounded by the buffer capacity.
func (p *Player) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Play renders every record in order, writing the output to w when w is
// not nil. Records that cannot be built are logged and skipped; their
// errors are returned joined once all records have been played.
func (p *Player) Play(records []Record, w io.Writer) error {
	var buf bytes.Buffer
	var opts []render.Option
	if p.profile != nil {
		opts = append(opts, render.WithColorProfile(*p.profile))
	}
	r := render.New(&buf, p.policy, opts...)

	p.entries = p.entries[:0]
	var errs []error
	for i, rec := range records {
		seq := i + 1
		m, err := rec.ToMessage()
		if err != nil {
			p.logger.LogError(seq, rec, err)
			errs = append(errs, fmt.Errorf("record %d: %w", seq, err))
			continue
		}
		p.logger.LogMessage(seq, rec, m)

		buf.Reset()
		r.Render(m)
		out := buf.String()
		e := Entry{Seq: seq, Kind: m.Kind(), Sender: rec.SenderName(), Output: out}
		p.entries = append(p.entries, e)
		p.history.Add(e)

		if w != nil && out != "" {
			if _, err := io.WriteString(w, out); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
	}
	return errors.Join(errs...)
}
