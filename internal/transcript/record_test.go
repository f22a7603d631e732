package transcript

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nixlim/chatprint/internal/messages"
)

func TestRecord_MessageKinds(t *testing.T) {
	alice := &Agent{Name: "alice"}
	bob := &Agent{Name: "bob"}
	tests := []struct {
		rec  Record
		want messages.Kind
	}{
		{Record{Kind: KindReceived, Sender: alice, Recipient: bob, Message: map[string]any{"content": "hi"}}, messages.KindText},
		{Record{Kind: KindReceived, Sender: alice, Recipient: bob, Message: "plain string"}, messages.KindText},
		{Record{Kind: KindReceived, Sender: alice, Recipient: bob, Message: map[string]any{"role": "tool"}}, messages.KindToolResponse},
		{Record{Kind: "post_carryover", Sender: alice, Recipient: bob, Message: "go"}, messages.KindPostCarryover},
		{Record{Kind: "clear_agents_history"}, messages.KindClearAgentsHistory},
		{Record{Kind: "speaker_attempt_successful", Mentions: []Mention{{Name: "a", Count: 1}}}, messages.KindSpeakerAttemptSuccessful},
		{Record{Kind: "speaker_attempt_failed_multiple"}, messages.KindSpeakerAttemptFailedMultiple},
		{Record{Kind: "speaker_attempt_failed_none"}, messages.KindSpeakerAttemptFailedNone},
		{Record{Kind: "group_chat_resume", LastSpeaker: "a"}, messages.KindGroupChatResume},
		{Record{Kind: "group_chat_run_chat", Agent: alice}, messages.KindGroupChatRunChat},
		{Record{Kind: "termination_and_human_reply", Recipient: bob}, messages.KindTerminationAndHumanReply},
		{Record{Kind: "using_auto_reply", Sender: alice, Recipient: bob}, messages.KindUsingAutoReply},
		{Record{Kind: "execute_code_block", Code: "ls"}, messages.KindExecuteCodeBlock},
		{Record{Kind: "execute_function", FuncName: "f"}, messages.KindExecuteFunction},
		{Record{Kind: "executed_function", FuncName: "f"}, messages.KindExecutedFunction},
		{Record{Kind: "select_speaker", Agents: []Agent{{Name: "a"}}}, messages.KindSelectSpeaker},
		{Record{Kind: "select_speaker_try_count_exceeded", TryCount: 3}, messages.KindSelectSpeakerTryCountExceeded},
		{Record{Kind: "select_speaker_invalid_input"}, messages.KindSelectSpeakerInvalidInput},
		{Record{Kind: "clear_conversable_agent_history", Agent: alice, Preserve: 1}, messages.KindClearConversableAgentHistory},
		{Record{Kind: "clear_conversable_agent_history_warning", Recipient: bob}, messages.KindClearConversableAgentHistoryWarning},
		{Record{Kind: "generate_code_execution_reply", Languages: []string{"sh"}}, messages.KindGenerateCodeExecutionReply},
		{Record{Kind: "usage_summary", Recipient: bob}, messages.KindUsageSummary},
		{Record{Kind: "usage_summary", Recipient: bob, NoCost: true}, messages.KindUsageSummaryNoCost},
		{Record{Kind: "usage_summary_no_cost", Recipient: bob}, messages.KindUsageSummaryNoCost},
	}
	for _, tt := range tests {
		m, err := tt.rec.ToMessage()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.rec.Kind, err)
			continue
		}
		if m.Kind() != tt.want {
			t.Errorf("%s: Kind() = %q, want %q", tt.rec.Kind, m.Kind(), tt.want)
		}
	}
}

func TestRecord_ReceivedFields(t *testing.T) {
	rec := Record{
		Kind:      KindReceived,
		ID:        "6f1c2b0e-8a4d-4c4e-9d55-0f5b8f2d7a11",
		Sender:    &Agent{Name: "planner"},
		Recipient: &Agent{Name: "engineer", LLMConfig: map[string]any{"allow_format_str_template": true}},
		Message: map[string]any{
			"content": "Plan: {task}",
			"context": map[string]any{"task": "plot"},
		},
	}
	m, err := rec.ToMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := m.(messages.Text)
	if !ok {
		t.Fatalf("expected Text, got %T", m)
	}
	if text.Content != "Plan: plot" {
		t.Errorf("content = %q, want templated content", text.Content)
	}
	if text.MessageID() != uuid.MustParse(rec.ID) {
		t.Errorf("id = %s, want %s", text.MessageID(), rec.ID)
	}
	if text.SenderName != "planner" || text.RecipientName != "engineer" {
		t.Errorf("names = %q/%q", text.SenderName, text.RecipientName)
	}
}

func TestRecord_GroupChatResumeCountsHistory(t *testing.T) {
	rec := Record{
		Kind:        "group_chat_resume",
		LastSpeaker: "planner",
		History:     []messages.Payload{{"content": "a"}, {"content": "b"}},
	}
	m, err := rec.ToMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resume := m.(messages.GroupChatResume)
	if resume.MessageCount != 2 || resume.LastSpeakerName != "planner" {
		t.Errorf("unexpected resume: %+v", resume)
	}
}

func TestRecord_Errors(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"unknown kind", Record{Kind: "bogus"}, `unknown record kind "bogus"`},
		{"bad id", Record{Kind: "clear_agents_history", ID: "not-a-uuid"}, `invalid id "not-a-uuid"`},
		{"non-object message", Record{Kind: KindReceived, Message: 42}, "received record needs an object message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rec.ToMessage()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRecord_SenderName(t *testing.T) {
	if got := (Record{Sender: &Agent{Name: "a"}, Agent: &Agent{Name: "b"}}).SenderName(); got != "a" {
		t.Errorf("sender should win, got %q", got)
	}
	if got := (Record{Agent: &Agent{Name: "b"}}).SenderName(); got != "b" {
		t.Errorf("agent fallback, got %q", got)
	}
	if got := (Record{}).SenderName(); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
