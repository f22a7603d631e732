// Package messages models the events of a multi-agent conversation as
// immutable values. Each kind of event is its own struct; all of them
// implement the sealed Message interface so renderers can switch on the
// concrete type.
package messages

import "github.com/google/uuid"

// Kind identifies a message variant.
type Kind string

const (
	KindText                                Kind = "text"
	KindToolCall                            Kind = "tool_call"
	KindToolResponse                        Kind = "tool_response"
	KindFunctionCall                        Kind = "function_call"
	KindFunctionResponse                    Kind = "function_response"
	KindPostCarryover                       Kind = "post_carryover"
	KindClearAgentsHistory                  Kind = "clear_agents_history"
	KindSpeakerAttemptSuccessful            Kind = "speaker_attempt_successful"
	KindSpeakerAttemptFailedMultiple        Kind = "speaker_attempt_failed_multiple"
	KindSpeakerAttemptFailedNone            Kind = "speaker_attempt_failed_none"
	KindGroupChatResume                     Kind = "group_chat_resume"
	KindGroupChatRunChat                    Kind = "group_chat_run_chat"
	KindTerminationAndHumanReply            Kind = "termination_and_human_reply"
	KindUsingAutoReply                      Kind = "using_auto_reply"
	KindExecuteCodeBlock                    Kind = "execute_code_block"
	KindExecuteFunction                     Kind = "execute_function"
	KindExecutedFunction                    Kind = "executed_function"
	KindSelectSpeaker                       Kind = "select_speaker"
	KindSelectSpeakerTryCountExceeded       Kind = "select_speaker_try_count_exceeded"
	KindSelectSpeakerInvalidInput           Kind = "select_speaker_invalid_input"
	KindClearConversableAgentHistory        Kind = "clear_conversable_agent_history"
	KindClearConversableAgentHistoryWarning Kind = "clear_conversable_agent_history_warning"
	KindGenerateCodeExecutionReply          Kind = "generate_code_execution_reply"
	KindUsageSummary                        Kind = "usage_summary"
	KindUsageSummaryNoCost                  Kind = "usage_summary_no_cost"
)

// Role values found in received payloads.
const (
	RoleFunction = "function"
	RoleTool     = "tool"
)

// Sentinels shown in place of missing payload fields.
const (
	NoIDFound           = "No id found"
	NoToolCallIDFound   = "No tool call id found"
	NoFunctionNameFound = "(No function name found)"
	NoArgumentsFound    = "(No arguments found)"
	NoSender            = "No sender"
)

// Message is implemented by every event variant in this package.
type Message interface {
	MessageID() uuid.UUID
	Kind() Kind
	sealed()
}

// Agent is the identity of a conversation participant as seen by the host
// framework.
type Agent struct {
	Name      string
	LLMConfig map[string]any
}

// AllowFormatStrTemplate reports whether the agent's model configuration
// enables placeholder substitution in templated content.
func (a *Agent) AllowFormatStrTemplate() bool {
	if a == nil || a.LLMConfig == nil {
		return false
	}
	v, _ := a.LLMConfig["allow_format_str_template"].(bool)
	return v
}

func agentName(a *Agent) string {
	if a == nil {
		return ""
	}
	return a.Name
}

// Base holds the fields common to every message.
type Base struct {
	ID uuid.UUID
}

// MessageID returns the message identifier.
func (b Base) MessageID() uuid.UUID { return b.ID }

func (Base) sealed() {}

// Received is embedded by the variants produced by NewReceived. These are the
// only messages rendered with a sender header.
type Received struct {
	Base
	SenderName    string
	RecipientName string
}

// FunctionCall is a suggested function invocation.
type FunctionCall struct {
	Name      string
	Arguments string
}

// ToolCall is one entry of a tool-call request.
type ToolCall struct {
	ID       string
	Type     string
	Function FunctionCall
}

// ToolResponse is one entry of a tool-call response.
type ToolResponse struct {
	ToolCallID string
	Role       string
	Content    string
}

// Mention counts how often an agent name appeared in a speaker-selection
// reply. Order is significant: the first mention is the selected speaker.
type Mention struct {
	Name  string
	Count int
}

// Text is a plain content message.
type Text struct {
	Received
	Content    string
	HasContent bool
}

func (Text) Kind() Kind { return KindText }

// FunctionResponse carries the result of a function call.
type FunctionResponse struct {
	Received
	Name    string
	Role    string
	Content string
}

func (FunctionResponse) Kind() Kind { return KindFunctionResponse }

// ToolResponses carries the results of one or more tool calls.
type ToolResponses struct {
	Received
	Role      string
	Responses []ToolResponse
	Content   string
}

func (ToolResponses) Kind() Kind { return KindToolResponse }

// FunctionCallRequest is a message suggesting a function call.
type FunctionCallRequest struct {
	Received
	Content    string
	HasContent bool
	Call       FunctionCall
}

func (FunctionCallRequest) Kind() Kind { return KindFunctionCall }

// ToolCallRequest is a message suggesting one or more tool calls.
type ToolCallRequest struct {
	Received
	Content    string
	HasContent bool
	Role       string
	Calls      []ToolCall
}

func (ToolCallRequest) Kind() Kind { return KindToolCall }
