// Package transcript reads recorded conversations and replays them through
// the renderer.
package transcript

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nixlim/chatprint/internal/messages"
)

// KindReceived marks a record whose message is a raw payload received by an
// agent. Every other kind names a messages.Kind.
const KindReceived = "received"

// Agent identifies a participant in a transcript.
type Agent struct {
	Name      string         `json:"name" yaml:"name"`
	LLMConfig map[string]any `json:"llm_config,omitempty" yaml:"llm_config,omitempty"`
}

// Mention is a speaker-selection mention count.
type Mention struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Record is one entry of a transcript. Only the fields relevant to Kind are
// read when building the message.
type Record struct {
	Kind      string `json:"kind" yaml:"kind"`
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Sender    *Agent `json:"sender,omitempty" yaml:"sender,omitempty"`
	Recipient *Agent `json:"recipient,omitempty" yaml:"recipient,omitempty"`

	// Message is the received payload, or the chat message of a
	// post_carryover record.
	Message   any  `json:"message,omitempty" yaml:"message,omitempty"`
	Carryover any  `json:"carryover,omitempty" yaml:"carryover,omitempty"`
	Verbose   bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Silent    bool `json:"silent,omitempty" yaml:"silent,omitempty"`

	SummaryMethod string         `json:"summary_method,omitempty" yaml:"summary_method,omitempty"`
	SummaryArgs   map[string]any `json:"summary_args,omitempty" yaml:"summary_args,omitempty"`
	MaxTurns      *int           `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`

	Agent    *Agent             `json:"agent,omitempty" yaml:"agent,omitempty"`
	Agents   []Agent            `json:"agents,omitempty" yaml:"agents,omitempty"`
	Preserve int                `json:"preserve,omitempty" yaml:"preserve,omitempty"`
	History  []messages.Payload `json:"history,omitempty" yaml:"history,omitempty"`

	Mentions     []Mention `json:"mentions,omitempty" yaml:"mentions,omitempty"`
	Attempt      int       `json:"attempt,omitempty" yaml:"attempt,omitempty"`
	AttemptsLeft int       `json:"attempts_left,omitempty" yaml:"attempts_left,omitempty"`
	TryCount     int       `json:"try_count,omitempty" yaml:"try_count,omitempty"`

	LastSpeaker    string `json:"last_speaker,omitempty" yaml:"last_speaker,omitempty"`
	NoHumanInput   string `json:"no_human_input_msg,omitempty" yaml:"no_human_input_msg,omitempty"`
	HumanInputMode string `json:"human_input_mode,omitempty" yaml:"human_input_mode,omitempty"`

	Code       string   `json:"code,omitempty" yaml:"code,omitempty"`
	Language   string   `json:"language,omitempty" yaml:"language,omitempty"`
	BlockCount int      `json:"block_count,omitempty" yaml:"block_count,omitempty"`
	Languages  []string `json:"languages,omitempty" yaml:"languages,omitempty"`

	FuncName  string         `json:"func_name,omitempty" yaml:"func_name,omitempty"`
	CallID    string         `json:"call_id,omitempty" yaml:"call_id,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Content   string         `json:"content,omitempty" yaml:"content,omitempty"`
	NoCost    bool           `json:"no_cost,omitempty" yaml:"no_cost,omitempty"`
}

// SenderName returns the name shown for the record's originator: the
// sender, or the subject agent for records that have none.
func (r Record) SenderName() string {
	if r.Sender != nil {
		return r.Sender.Name
	}
	if r.Agent != nil {
		return r.Agent.Name
	}
	return ""
}

// ToMessage builds the conversation message the record describes.
func (r Record) ToMessage() (messages.Message, error) {
	id, err := r.parseID()
	if err != nil {
		return nil, err
	}
	sender, recipient, agent := r.Sender.agent(), r.Recipient.agent(), r.Agent.agent()

	switch messages.Kind(r.Kind) {
	case KindReceived:
		payload, ok := toPayload(r.Message)
		if !ok {
			return nil, fmt.Errorf("received record needs an object message, got %T", r.Message)
		}
		return messages.NewReceived(id, payload, sender, recipient), nil
	case messages.KindPostCarryover:
		info := messages.ChatInfo{
			Sender:      sender,
			Recipient:   recipient,
			Message:     r.Message,
			Carryover:   r.Carryover,
			Verbose:     r.Verbose,
			SummaryArgs: r.SummaryArgs,
			MaxTurns:    r.MaxTurns,
		}
		if r.SummaryMethod != "" {
			info.SummaryMethod = r.SummaryMethod
		}
		return messages.NewPostCarryover(id, info), nil
	case messages.KindClearAgentsHistory:
		return messages.NewClearAgentsHistory(id, agent, r.Preserve), nil
	case messages.KindSpeakerAttemptSuccessful:
		return messages.NewSpeakerAttemptSuccessful(id, r.mentions(), r.Attempt, r.AttemptsLeft, r.Verbose), nil
	case messages.KindSpeakerAttemptFailedMultiple:
		return messages.NewSpeakerAttemptFailedMultiple(id, r.mentions(), r.Attempt, r.AttemptsLeft, r.Verbose), nil
	case messages.KindSpeakerAttemptFailedNone:
		return messages.NewSpeakerAttemptFailedNone(id, r.mentions(), r.Attempt, r.AttemptsLeft, r.Verbose), nil
	case messages.KindGroupChatResume:
		return messages.NewGroupChatResume(id, r.LastSpeaker, r.History, r.Silent), nil
	case messages.KindGroupChatRunChat:
		return messages.NewGroupChatRunChat(id, agent, r.Silent), nil
	case messages.KindTerminationAndHumanReply:
		return messages.NewTerminationAndHumanReply(id, r.NoHumanInput, sender, recipient), nil
	case messages.KindUsingAutoReply:
		return messages.NewUsingAutoReply(id, r.HumanInputMode, sender, recipient), nil
	case messages.KindExecuteCodeBlock:
		return messages.NewExecuteCodeBlock(id, r.Code, r.Language, r.BlockCount, recipient), nil
	case messages.KindExecuteFunction:
		return messages.NewExecuteFunction(id, r.FuncName, r.CallID, r.Arguments, recipient), nil
	case messages.KindExecutedFunction:
		return messages.NewExecutedFunction(id, r.FuncName, r.CallID, r.Arguments, r.Content, recipient), nil
	case messages.KindSelectSpeaker:
		return messages.NewSelectSpeaker(id, r.agents()), nil
	case messages.KindSelectSpeakerTryCountExceeded:
		return messages.NewSelectSpeakerTryCountExceeded(id, r.TryCount, r.agents()), nil
	case messages.KindSelectSpeakerInvalidInput:
		return messages.NewSelectSpeakerInvalidInput(id, r.agents()), nil
	case messages.KindClearConversableAgentHistory:
		return messages.NewClearConversableAgentHistory(id, agent, r.Preserve), nil
	case messages.KindClearConversableAgentHistoryWarning:
		return messages.NewClearConversableAgentHistoryWarning(id, recipient), nil
	case messages.KindGenerateCodeExecutionReply:
		return messages.NewGenerateCodeExecutionReply(id, r.Languages, sender, recipient), nil
	case messages.KindUsageSummary:
		return messages.NewUsageSummary(id, recipient, r.NoCost), nil
	case messages.KindUsageSummaryNoCost:
		return messages.NewUsageSummary(id, recipient, true), nil
	}
	return nil, fmt.Errorf("unknown record kind %q", r.Kind)
}

func (r Record) parseID() (uuid.UUID, error) {
	if r.ID == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", r.ID, err)
	}
	return id, nil
}

func (r Record) mentions() []messages.Mention {
	if len(r.Mentions) == 0 {
		return nil
	}
	out := make([]messages.Mention, len(r.Mentions))
	for i, m := range r.Mentions {
		out[i] = messages.Mention{Name: m.Name, Count: m.Count}
	}
	return out
}

func (r Record) agents() []*messages.Agent {
	out := make([]*messages.Agent, len(r.Agents))
	for i := range r.Agents {
		out[i] = r.Agents[i].agent()
	}
	return out
}

func (a *Agent) agent() *messages.Agent {
	if a == nil {
		return nil
	}
	return &messages.Agent{Name: a.Name, LLMConfig: a.LLMConfig}
}

func toPayload(v any) (messages.Payload, bool) {
	switch m := v.(type) {
	case map[string]any:
		return messages.Payload(m), true
	case messages.Payload:
		return m, true
	case string:
		return messages.Payload{"content": m}, true
	}
	return nil, false
}
