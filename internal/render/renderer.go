// Package render turns conversation messages into console output.
//
// Rendering follows a Policy: debug mode adds banners, separators and
// diagnostic lines; a colour table picks the header colour per sender; a
// mode table routes each sender's content to Markdown, a forwarding notice,
// or plain text. Suppressing rich display removes all escape sequences and
// prints Markdown content as plain text.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"

	"github.com/nixlim/chatprint/internal/messages"
)

const (
	forwardingNotice = "Forwarding content for formatting..."
	executorNotice   = "Forwarding to executor..."
	separatorWidth   = 80
	bannerWidth      = 80
)

// Renderer writes messages to an output under a fixed Policy. A Renderer
// holds no per-message state, so rendering the same message twice yields
// identical output. Calls are not synchronised; callers sharing a writer
// across goroutines must serialise Render themselves.
type Renderer struct {
	w      io.Writer
	policy Policy
	lg     *lipgloss.Renderer
	md     goldmark.Markdown
	styles mdStyles
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColorProfile overrides the colour profile detected from the writer.
// Suppressed rich display always wins over this option.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Renderer) { r.lg.SetColorProfile(p) }
}

// New creates a Renderer writing to w, or to stdout when w is nil.
func New(w io.Writer, p Policy, opts ...Option) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	r := &Renderer{
		w:      w,
		policy: p,
		lg:     lipgloss.NewRenderer(w),
		md:     goldmark.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if p.SuppressRichDisplay {
		r.lg.SetColorProfile(termenv.Ascii)
	}
	r.styles = newMDStyles(r.lg)
	return r
}

// Render writes m. Unknown message types produce no output.
func (r *Renderer) Render(m messages.Message) {
	switch m := m.(type) {
	case messages.Text:
		r.renderText(m)
	case messages.FunctionResponse:
		r.renderFunctionResponse(m)
	case messages.ToolResponses:
		r.renderToolResponses(m)
	case messages.FunctionCallRequest:
		r.renderFunctionCall(m)
	case messages.ToolCallRequest:
		r.renderToolCall(m)
	case messages.PostCarryover:
		r.renderPostCarryover(m)
	case messages.ClearAgentsHistory:
		r.renderClearAgentsHistory(m)
	case messages.SpeakerAttempt:
		r.renderSpeakerAttempt(m)
	case messages.GroupChatResume:
		r.println(fmt.Sprintf("Prepared group chat with %d messages, the last speaker is", m.MessageCount),
			r.paint("yellow", m.LastSpeakerName))
	case messages.GroupChatRunChat:
		r.renderRunChat(m)
	case messages.TerminationAndHumanReply:
		r.println(r.paint("red", "\n>>>>>>>> "+m.NoHumanInputMsg))
	case messages.UsingAutoReply:
		if r.policy.Debug {
			r.println(r.paint("red", "\n>>>>>>>> USING AUTO REPLY..."))
		}
	case messages.ExecuteCodeBlock:
		if r.policy.Debug {
			r.println(r.paint("red", fmt.Sprintf(
				"\n>>>>>>>> EXECUTING CODE BLOCK %d (inferred language is %s)...", m.BlockCount, m.Language)))
		}
	case messages.ExecuteFunction:
		if r.policy.Debug {
			r.println(r.paint("magenta", fmt.Sprintf(
				"\n>>>>>>>> EXECUTING FUNCTION %s...\nCall ID: %s\nInput arguments: %s",
				m.FuncName, callID(m.CallID), formatArguments(m.Arguments))))
		}
	case messages.ExecutedFunction:
		r.println(r.paint("magenta", fmt.Sprintf(
			"\n>>>>>>>> EXECUTED FUNCTION %s...\nCall ID: %s\nInput arguments: %s\nOutput:\n%s",
			m.FuncName, callID(m.CallID), formatArguments(m.Arguments), m.Content)))
	case messages.SelectSpeaker:
		r.println("Please select the next speaker from the following list:")
		for i, name := range m.AgentNames {
			r.println(fmt.Sprintf("%d: %s", i+1, name))
		}
	case messages.SelectSpeakerTryCountExceeded:
		r.println(fmt.Sprintf("You have tried %d times. The next speaker will be selected automatically.", m.TryCount))
	case messages.SelectSpeakerInvalidInput:
		r.println(fmt.Sprintf("Invalid input. Please enter a number between 1 and %d.", len(m.AgentNames)))
	case messages.ClearConversableAgentHistory:
		for i := 0; i < m.Preserved; i++ {
			r.println(fmt.Sprintf("Preserving one more message for %s to not divide history between tool call and tool response.", m.AgentName))
		}
	case messages.ClearConversableAgentHistoryWarning:
		r.println(r.paint("yellow", "WARNING: `nr_preserved_messages` is ignored when clearing chat history with a specific agent."))
	case messages.GenerateCodeExecutionReply:
		r.renderCodeExecutionReply(m)
	case messages.UsageSummary:
		if m.NoCost {
			r.println(fmt.Sprintf("No cost incurred from agent '%s'.", m.RecipientName))
		} else {
			r.println(fmt.Sprintf("Agent '%s':", m.RecipientName))
		}
	}
}

// header prints "Message from {sender}:". The tool executor is silent
// unless debugging.
func (r *Renderer) header(sender string) {
	if !r.policy.Debug && r.policy.isToolExecutor(sender) {
		return
	}
	r.println(r.paint(r.policy.ColorFor(sender), "Message from "+sender+":\n"))
}

func (r *Renderer) separator() {
	if r.policy.Debug {
		r.write("\n" + strings.Repeat("-", separatorWidth) + "\n")
	}
}

func (r *Renderer) renderText(m messages.Text) {
	r.header(m.SenderName)
	if m.HasContent {
		switch r.policy.ModeFor(m.SenderName) {
		case ModeRich:
			r.markdown(m.Content)
		case ModePlaceholder:
			r.markdown(forwardingNotice)
			if r.policy.Debug {
				r.println(m.Content)
			}
		case ModeExecutor:
			r.markdown(executorNotice)
			r.println(m.Content)
		default:
			r.println(m.Content)
		}
	}
	r.separator()
}

func (r *Renderer) renderFunctionResponse(m messages.FunctionResponse) {
	r.header(m.SenderName)
	id := m.Name
	if id == "" {
		id = messages.NoIDFound
	}
	r.response(m.Role, id, m.Content, "blue")
	r.separator()
}

func (r *Renderer) renderToolResponses(m messages.ToolResponses) {
	r.header(m.SenderName)
	for _, tr := range m.Responses {
		id := tr.ToolCallID
		if id == "" {
			id = messages.NoIDFound
		}
		r.response(tr.Role, id, tr.Content, "green")
		r.separator()
	}
}

// response prints a call result as Markdown, framed by a banner in debug
// mode.
func (r *Renderer) response(role, id, content, color string) {
	if !r.policy.Debug {
		r.markdown(content)
		return
	}
	banner := fmt.Sprintf("***** Response from calling %s (%s) *****", role, id)
	r.println(r.paint(color, banner))
	r.markdown(content)
	r.println(r.paint(color, stars(banner)))
}

func (r *Renderer) renderFunctionCall(m messages.FunctionCallRequest) {
	r.header(m.SenderName)
	if m.HasContent {
		r.println(m.Content)
	}
	if r.policy.Debug {
		r.suggestion("***** Suggested function call: "+orDefault(m.Call.Name, messages.NoFunctionNameFound)+" *****",
			m.Call.Arguments)
	}
	r.separator()
}

func (r *Renderer) renderToolCall(m messages.ToolCallRequest) {
	r.header(m.SenderName)
	if m.HasContent {
		if r.policy.ToolCallMarkdownFor(m.SenderName) {
			r.markdown(m.Content)
		} else {
			r.println(m.Content)
		}
	}
	if r.policy.Debug {
		for _, tc := range m.Calls {
			id := orDefault(tc.ID, messages.NoToolCallIDFound)
			name := orDefault(tc.Function.Name, messages.NoFunctionNameFound)
			r.suggestion(fmt.Sprintf("***** Suggested tool call (%s): %s *****", id, name), tc.Function.Arguments)
		}
	}
	r.separator()
}

func (r *Renderer) suggestion(banner, arguments string) {
	r.println(r.paint("green", banner))
	r.println("Arguments: \n" + orDefault(arguments, messages.NoArgumentsFound))
	r.println(r.paint("green", stars(banner)))
}

func (r *Renderer) renderPostCarryover(m messages.PostCarryover) {
	rule := "\n" + strings.Repeat("*", bannerWidth)
	r.println(r.paint("blue", rule))
	r.println(r.paint("blue", "Starting a new chat...."))
	if m.Verbose {
		r.println(r.paint("blue", "Message:\n"+m.Message))
		r.println(r.paint("blue", "Carryover:\n"+m.Carryover))
	}
	r.println(r.paint("blue", rule))
}

func (r *Renderer) renderClearAgentsHistory(m messages.ClearAgentsHistory) {
	switch {
	case m.AgentName != "" && m.Preserve > 0:
		r.println(fmt.Sprintf("Clearing history for %s except last %d messages.", m.AgentName, m.Preserve))
	case m.AgentName != "":
		r.println(fmt.Sprintf("Clearing history for %s.", m.AgentName))
	case m.Preserve > 0:
		r.println(fmt.Sprintf("Clearing history for all agents except last %d messages.", m.Preserve))
	default:
		r.println("Clearing history for all agents.")
	}
}

func (r *Renderer) renderSpeakerAttempt(m messages.SpeakerAttempt) {
	total := m.Attempt + m.AttemptsLeft
	switch m.Outcome {
	case messages.KindSpeakerAttemptSuccessful:
		r.println(r.paint("green", fmt.Sprintf(
			">>>>>>>> Select speaker attempt %d of %d successfully selected: %s", m.Attempt, total, m.Selected())))
	case messages.KindSpeakerAttemptFailedMultiple:
		r.println(r.paint("red", fmt.Sprintf(
			">>>>>>>> Select speaker attempt %d of %d failed as it included multiple agent names.", m.Attempt, total)))
	case messages.KindSpeakerAttemptFailedNone:
		r.println(r.paint("red", fmt.Sprintf(
			">>>>>>>> Select speaker attempt #%d failed as it did not include any agent names.", m.Attempt)))
	}
}

func (r *Renderer) renderRunChat(m messages.GroupChatRunChat) {
	if r.policy.Debug {
		r.println(r.paint("green", "\nCalling: "+m.SpeakerName+"...\n"))
		return
	}
	if r.policy.isToolExecutor(m.SpeakerName) {
		return
	}
	r.println(r.paint(r.policy.ColorFor(m.SpeakerName), "\nCalling "+m.SpeakerName+"...\n"))
}

func (r *Renderer) renderCodeExecutionReply(m messages.GenerateCodeExecutionReply) {
	if !r.policy.Debug {
		return
	}
	if len(m.Languages) == 1 {
		r.println(r.paint("red", fmt.Sprintf(
			"\n>>>>>>>> EXECUTING CODE BLOCK (inferred language is %s)...", m.Languages[0])))
		return
	}
	r.println(r.paint("red", fmt.Sprintf(
		"\n>>>>>>>> EXECUTING %d CODE BLOCKS (inferred languages are [%s])...",
		len(m.Languages), strings.Join(m.Languages, ", "))))
}

// markdown renders content as Markdown, or prints it verbatim when rich
// display is suppressed.
func (r *Renderer) markdown(content string) {
	if r.policy.SuppressRichDisplay {
		r.println(content)
		return
	}
	r.println(r.renderMarkdown(content))
}

// paint colours each line of s separately so multi-line strings keep their
// exact layout. Plain profiles return s unchanged.
func (r *Renderer) paint(color, s string) string {
	if r.lg.ColorProfile() == termenv.Ascii {
		return s
	}
	return styleLines(r.lg.NewStyle().Foreground(resolveColor(color)), s)
}

func styleLines(st lipgloss.Style, s string) string {
	st = st.TabWidth(lipgloss.NoTabConversion)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = st.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

// println writes its arguments separated by spaces and ends the line.
func (r *Renderer) println(parts ...string) {
	r.write(strings.Join(parts, " ") + "\n")
}

func (r *Renderer) write(s string) {
	_, _ = io.WriteString(r.w, s)
}

func stars(banner string) string {
	return strings.Repeat("*", utf8.RuneCountInString(banner))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func callID(id string) string {
	if id == "" {
		return "None"
	}
	return id
}

func formatArguments(args map[string]any) string {
	if args == nil {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}
