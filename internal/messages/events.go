package messages

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ChatInfo describes a chat about to start. Sender and Recipient are
// required; the remaining fields are only consulted for display.
type ChatInfo struct {
	Sender        *Agent
	Recipient     *Agent
	Message       any
	Carryover     any
	Verbose       bool
	SummaryMethod any
	SummaryArgs   map[string]any
	MaxTurns      *int
}

// PostCarryover announces the start of a new chat.
type PostCarryover struct {
	Base
	SenderName    string
	RecipientName string
	Message       string
	Carryover     string
	Verbose       bool
	SummaryMethod string
	SummaryArgs   map[string]any
	MaxTurns      *int
}

func (PostCarryover) Kind() Kind { return KindPostCarryover }

// NewPostCarryover normalises chat info into printable strings.
func NewPostCarryover(id uuid.UUID, info ChatInfo) PostCarryover {
	m := PostCarryover{
		Base:          Base{ID: orNew(id)},
		SenderName:    agentName(info.Sender),
		RecipientName: agentName(info.Recipient),
		Message:       describeChatMessage(info.Message),
		Carryover:     joinCarryover(info.Carryover),
		Verbose:       info.Verbose,
		SummaryArgs:   copyMap(info.SummaryArgs),
	}
	switch sm := info.SummaryMethod.(type) {
	case nil:
	case string:
		m.SummaryMethod = sm
	default:
		if name, ok := funcName(sm); ok {
			m.SummaryMethod = name
		} else {
			m.SummaryMethod = fmt.Sprint(sm)
		}
	}
	if info.MaxTurns != nil {
		n := *info.MaxTurns
		m.MaxTurns = &n
	}
	return m
}

func describeChatMessage(v any) string {
	switch msg := v.(type) {
	case nil:
		return "None"
	case string:
		return msg
	case map[string]any:
		return "Dict: " + formatMap(msg)
	}
	if name, ok := funcName(v); ok {
		return "Callable: " + name
	}
	return ""
}

func joinCarryover(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []string:
		return strings.Join(c, "\n")
	case []any:
		parts := make([]string, 0, len(c))
		for _, item := range c {
			switch it := item.(type) {
			case string:
				parts = append(parts, it)
			case map[string]any:
				if content, ok := it["content"]; ok {
					parts = append(parts, fmt.Sprint(content))
				} else {
					parts = append(parts, formatMap(it))
				}
			default:
				parts = append(parts, fmt.Sprint(it))
			}
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(c)
	}
}

// funcName returns the short name of a function value.
func funcName(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return "", false
	}
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return "", false
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name, true
}

// formatMap prints a map with sorted keys so output is deterministic.
func formatMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, m[k])
	}
	b.WriteByte('}')
	return b.String()
}

// ClearAgentsHistory announces that agent histories are being cleared.
// An empty AgentName means all agents; zero Preserve means nothing is kept.
type ClearAgentsHistory struct {
	Base
	AgentName string
	Preserve  int
}

func (ClearAgentsHistory) Kind() Kind { return KindClearAgentsHistory }

// NewClearAgentsHistory builds a ClearAgentsHistory for agent, or for all
// agents when agent is nil.
func NewClearAgentsHistory(id uuid.UUID, agent *Agent, preserve int) ClearAgentsHistory {
	return ClearAgentsHistory{Base: Base{ID: orNew(id)}, AgentName: agentName(agent), Preserve: preserve}
}

// SpeakerAttempt is the outcome of one automatic speaker-selection attempt.
// The three outcome kinds share this shape.
type SpeakerAttempt struct {
	Base
	Outcome      Kind
	Mentions     []Mention
	Attempt      int
	AttemptsLeft int
	Verbose      bool
}

func (s SpeakerAttempt) Kind() Kind { return s.Outcome }

// Selected returns the first mentioned agent name, or "" when there is none.
func (s SpeakerAttempt) Selected() string {
	if len(s.Mentions) == 0 {
		return ""
	}
	return s.Mentions[0].Name
}

func newSpeakerAttempt(id uuid.UUID, outcome Kind, mentions []Mention, attempt, left int, verbose bool) SpeakerAttempt {
	return SpeakerAttempt{
		Base:         Base{ID: orNew(id)},
		Outcome:      outcome,
		Mentions:     append([]Mention(nil), mentions...),
		Attempt:      attempt,
		AttemptsLeft: left,
		Verbose:      verbose,
	}
}

// NewSpeakerAttemptSuccessful records a successful selection attempt.
func NewSpeakerAttemptSuccessful(id uuid.UUID, mentions []Mention, attempt, left int, verbose bool) SpeakerAttempt {
	return newSpeakerAttempt(id, KindSpeakerAttemptSuccessful, mentions, attempt, left, verbose)
}

// NewSpeakerAttemptFailedMultiple records an attempt that named several agents.
func NewSpeakerAttemptFailedMultiple(id uuid.UUID, mentions []Mention, attempt, left int, verbose bool) SpeakerAttempt {
	return newSpeakerAttempt(id, KindSpeakerAttemptFailedMultiple, mentions, attempt, left, verbose)
}

// NewSpeakerAttemptFailedNone records an attempt that named no agent.
func NewSpeakerAttemptFailedNone(id uuid.UUID, mentions []Mention, attempt, left int, verbose bool) SpeakerAttempt {
	return newSpeakerAttempt(id, KindSpeakerAttemptFailedNone, mentions, attempt, left, verbose)
}

// GroupChatResume announces a group chat resumed from prior messages.
type GroupChatResume struct {
	Base
	LastSpeakerName string
	MessageCount    int
	Verbose         bool
}

func (GroupChatResume) Kind() Kind { return KindGroupChatResume }

// NewGroupChatResume records a group chat resumed from earlier messages.
func NewGroupChatResume(id uuid.UUID, lastSpeaker string, history []Payload, silent bool) GroupChatResume {
	return GroupChatResume{
		Base:            Base{ID: orNew(id)},
		LastSpeakerName: lastSpeaker,
		MessageCount:    len(history),
		Verbose:         !silent,
	}
}

// GroupChatRunChat announces the speaker about to take a turn.
type GroupChatRunChat struct {
	Base
	SpeakerName string
	Verbose     bool
}

func (GroupChatRunChat) Kind() Kind { return KindGroupChatRunChat }

// NewGroupChatRunChat records the next speaker being called.
func NewGroupChatRunChat(id uuid.UUID, speaker *Agent, silent bool) GroupChatRunChat {
	return GroupChatRunChat{Base: Base{ID: orNew(id)}, SpeakerName: agentName(speaker), Verbose: !silent}
}

// TerminationAndHumanReply is shown when a chat ends without human input.
type TerminationAndHumanReply struct {
	Base
	NoHumanInputMsg string
	SenderName      string
	RecipientName   string
}

func (TerminationAndHumanReply) Kind() Kind { return KindTerminationAndHumanReply }

// NewTerminationAndHumanReply records a chat ended without human input.
func NewTerminationAndHumanReply(id uuid.UUID, msg string, sender, recipient *Agent) TerminationAndHumanReply {
	return TerminationAndHumanReply{
		Base:            Base{ID: orNew(id)},
		NoHumanInputMsg: msg,
		SenderName:      senderOrDefault(sender),
		RecipientName:   agentName(recipient),
	}
}

// UsingAutoReply is shown when an agent falls back to its auto reply.
type UsingAutoReply struct {
	Base
	HumanInputMode string
	SenderName     string
	RecipientName  string
}

func (UsingAutoReply) Kind() Kind { return KindUsingAutoReply }

// NewUsingAutoReply records an agent replying automatically.
func NewUsingAutoReply(id uuid.UUID, mode string, sender, recipient *Agent) UsingAutoReply {
	return UsingAutoReply{
		Base:           Base{ID: orNew(id)},
		HumanInputMode: mode,
		SenderName:     senderOrDefault(sender),
		RecipientName:  agentName(recipient),
	}
}

// ExecuteCodeBlock announces execution of one extracted code block.
type ExecuteCodeBlock struct {
	Base
	Code          string
	Language      string
	BlockCount    int
	RecipientName string
}

func (ExecuteCodeBlock) Kind() Kind { return KindExecuteCodeBlock }

// NewExecuteCodeBlock records one code block about to run.
func NewExecuteCodeBlock(id uuid.UUID, code, language string, count int, recipient *Agent) ExecuteCodeBlock {
	return ExecuteCodeBlock{
		Base:          Base{ID: orNew(id)},
		Code:          code,
		Language:      language,
		BlockCount:    count,
		RecipientName: agentName(recipient),
	}
}

// ExecuteFunction announces a function about to be executed.
type ExecuteFunction struct {
	Base
	FuncName      string
	CallID        string
	Arguments     map[string]any
	RecipientName string
}

func (ExecuteFunction) Kind() Kind { return KindExecuteFunction }

// NewExecuteFunction records a function call about to run.
func NewExecuteFunction(id uuid.UUID, name, callID string, args map[string]any, recipient *Agent) ExecuteFunction {
	return ExecuteFunction{
		Base:          Base{ID: orNew(id)},
		FuncName:      name,
		CallID:        callID,
		Arguments:     copyMap(args),
		RecipientName: agentName(recipient),
	}
}

// ExecutedFunction reports the output of an executed function.
type ExecutedFunction struct {
	Base
	FuncName      string
	CallID        string
	Arguments     map[string]any
	Content       string
	RecipientName string
}

func (ExecutedFunction) Kind() Kind { return KindExecutedFunction }

// NewExecutedFunction records a finished function call and its output.
func NewExecutedFunction(id uuid.UUID, name, callID string, args map[string]any, content string, recipient *Agent) ExecutedFunction {
	return ExecutedFunction{
		Base:          Base{ID: orNew(id)},
		FuncName:      name,
		CallID:        callID,
		Arguments:     copyMap(args),
		Content:       content,
		RecipientName: agentName(recipient),
	}
}

// SelectSpeaker prompts a human to pick the next speaker.
type SelectSpeaker struct {
	Base
	AgentNames []string
}

func (SelectSpeaker) Kind() Kind { return KindSelectSpeaker }

// NewSelectSpeaker lists the agents offered for manual selection.
func NewSelectSpeaker(id uuid.UUID, agents []*Agent) SelectSpeaker {
	return SelectSpeaker{Base: Base{ID: orNew(id)}, AgentNames: agentNames(agents)}
}

// SelectSpeakerTryCountExceeded is shown after too many invalid choices.
type SelectSpeakerTryCountExceeded struct {
	Base
	TryCount   int
	AgentNames []string
}

func (SelectSpeakerTryCountExceeded) Kind() Kind { return KindSelectSpeakerTryCountExceeded }

// NewSelectSpeakerTryCountExceeded records manual selection giving up.
func NewSelectSpeakerTryCountExceeded(id uuid.UUID, tries int, agents []*Agent) SelectSpeakerTryCountExceeded {
	return SelectSpeakerTryCountExceeded{Base: Base{ID: orNew(id)}, TryCount: tries, AgentNames: agentNames(agents)}
}

// SelectSpeakerInvalidInput is shown after an out-of-range choice.
type SelectSpeakerInvalidInput struct {
	Base
	AgentNames []string
}

func (SelectSpeakerInvalidInput) Kind() Kind { return KindSelectSpeakerInvalidInput }

// NewSelectSpeakerInvalidInput records an out-of-range selection.
func NewSelectSpeakerInvalidInput(id uuid.UUID, agents []*Agent) SelectSpeakerInvalidInput {
	return SelectSpeakerInvalidInput{Base: Base{ID: orNew(id)}, AgentNames: agentNames(agents)}
}

// ClearConversableAgentHistory reports messages kept so a tool call is not
// separated from its response.
type ClearConversableAgentHistory struct {
	Base
	AgentName     string
	RecipientName string
	Preserved     int
}

func (ClearConversableAgentHistory) Kind() Kind { return KindClearConversableAgentHistory }

// NewClearConversableAgentHistory records messages kept when clearing history.
func NewClearConversableAgentHistory(id uuid.UUID, agent *Agent, preserved int) ClearConversableAgentHistory {
	return ClearConversableAgentHistory{
		Base:          Base{ID: orNew(id)},
		AgentName:     agentName(agent),
		RecipientName: agentName(agent),
		Preserved:     preserved,
	}
}

// ClearConversableAgentHistoryWarning warns that a preserve count was ignored.
type ClearConversableAgentHistoryWarning struct {
	Base
	RecipientName string
}

func (ClearConversableAgentHistoryWarning) Kind() Kind {
	return KindClearConversableAgentHistoryWarning
}

// NewClearConversableAgentHistoryWarning warns that the preserve count was ignored.
func NewClearConversableAgentHistoryWarning(id uuid.UUID, recipient *Agent) ClearConversableAgentHistoryWarning {
	return ClearConversableAgentHistoryWarning{Base: Base{ID: orNew(id)}, RecipientName: agentName(recipient)}
}

// GenerateCodeExecutionReply announces execution of extracted code blocks.
type GenerateCodeExecutionReply struct {
	Base
	Languages     []string
	SenderName    string
	RecipientName string
}

func (GenerateCodeExecutionReply) Kind() Kind { return KindGenerateCodeExecutionReply }

// NewGenerateCodeExecutionReply records the languages of blocks about to run.
func NewGenerateCodeExecutionReply(id uuid.UUID, languages []string, sender, recipient *Agent) GenerateCodeExecutionReply {
	return GenerateCodeExecutionReply{
		Base:          Base{ID: orNew(id)},
		Languages:     append([]string(nil), languages...),
		SenderName:    agentName(sender),
		RecipientName: agentName(recipient),
	}
}

// UsageSummary heads the usage report of an agent. NoCost marks agents that
// incurred no cost.
type UsageSummary struct {
	Base
	RecipientName string
	NoCost        bool
}

func (u UsageSummary) Kind() Kind {
	if u.NoCost {
		return KindUsageSummaryNoCost
	}
	return KindUsageSummary
}

// NewUsageSummary records a usage report for recipient.
func NewUsageSummary(id uuid.UUID, recipient *Agent, noCost bool) UsageSummary {
	return UsageSummary{Base: Base{ID: orNew(id)}, RecipientName: agentName(recipient), NoCost: noCost}
}

func senderOrDefault(a *Agent) string {
	if a == nil {
		return NoSender
	}
	return a.Name
}

func agentNames(agents []*Agent) []string {
	if len(agents) == 0 {
		return nil
	}
	names := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, agentName(a))
	}
	return names
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func orNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
