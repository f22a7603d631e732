package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nixlim/chatprint/internal/messages"
)

func drawPayload(rt *rapid.T) messages.Payload {
	p := messages.Payload{}
	if rapid.Bool().Draw(rt, "hasContent") {
		p["content"] = rapid.StringMatching(`[a-zA-Z #*_\n]{0,40}`).Draw(rt, "content")
	}
	p["role"] = rapid.SampledFrom([]string{"", "assistant", "user", "tool", "function"}).Draw(rt, "role")
	if rapid.Bool().Draw(rt, "hasFunctionCall") {
		p["function_call"] = map[string]any{"name": rapid.StringMatching(`[a-z_]{0,8}`).Draw(rt, "fn")}
	}
	if rapid.Bool().Draw(rt, "hasToolCalls") {
		p["tool_calls"] = []any{map[string]any{"id": rapid.StringMatching(`call_[0-9]{1,3}`).Draw(rt, "callID")}}
	}
	return p
}

// Property: a payload with role "tool" always becomes ToolResponses, no
// matter which call fields are present.
func TestProperty_ToolRoleAlwaysToolResponses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := drawPayload(rt)
		p["role"] = "tool"
		m := messages.NewReceived(uuid.Nil, p, &messages.Agent{Name: "a"}, &messages.Agent{Name: "b"})
		require.Equal(rt, messages.KindToolResponse, m.Kind())
	})
}

// Property: senders without a colour entry get the default colour.
func TestProperty_DefaultColorForUnknownSender(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sender := rapid.StringMatching(`[a-z]{1,12}`).Filter(func(s string) bool {
			return s != "admin" && s != "control"
		}).Draw(rt, "sender")
		assert.Equal(rt, "yellow", testPolicy().ColorFor(sender))
	})
}

// Property: rendering the same message twice yields identical output.
func TestProperty_RenderIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := testPolicy()
		p.Debug = rapid.Bool().Draw(rt, "debug")
		sender := rapid.SampledFrom([]string{"alice", "formatter", "engineer", "coder", "_Swarm_Tool_Executor"}).Draw(rt, "sender")
		m := messages.NewReceived(uuid.Nil, drawPayload(rt), &messages.Agent{Name: sender}, &messages.Agent{Name: "b"})

		var buf bytes.Buffer
		r := New(&buf, p, WithColorProfile(termenv.ANSI256))
		r.Render(m)
		first := buf.String()
		buf.Reset()
		r.Render(m)
		require.Equal(rt, first, buf.String())
	})
}

// Property: suppressed rich display never emits escape sequences, even on a
// colour-capable profile.
func TestProperty_SuppressedOutputIsPlain(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := testPolicy()
		p.SuppressRichDisplay = true
		p.Debug = rapid.Bool().Draw(rt, "debug")
		sender := rapid.SampledFrom([]string{"alice", "admin", "formatter", "engineer"}).Draw(rt, "sender")
		m := messages.NewReceived(uuid.Nil, drawPayload(rt), &messages.Agent{Name: sender}, &messages.Agent{Name: "b"})

		var buf bytes.Buffer
		New(&buf, p, WithColorProfile(termenv.TrueColor)).Render(m)
		assert.False(rt, strings.Contains(buf.String(), "\x1b"), "output %q", buf.String())
	})
}
