package messages

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Payload is a raw message as exchanged between agents. Recognised keys are
// role, content, name, function_call, tool_calls, tool_call_id,
// tool_responses and context.
type Payload map[string]any

// TemplateFunc builds message content from a context mapping.
type TemplateFunc func(ctx map[string]any) string

// NewReceived builds the message variant matching payload:
//   - role "function":        FunctionResponse
//   - role "tool":            ToolResponses
//   - function_call present:  FunctionCallRequest
//   - tool_calls present:     ToolCallRequest
//   - otherwise:              Text, with templated content instantiated
//     against payload["context"]
//
// Missing or malformed fields are left empty; renderers substitute sentinel
// strings. A nil id is replaced by a fresh random id.
func NewReceived(id uuid.UUID, payload Payload, sender, recipient *Agent) Message {
	rcv := Received{
		Base:          Base{ID: orNew(id)},
		SenderName:    agentName(sender),
		RecipientName: agentName(recipient),
	}

	switch role, _ := payload["role"].(string); role {
	case RoleFunction:
		name, _ := payload["name"].(string)
		return FunctionResponse{
			Received: rcv,
			Name:     name,
			Role:     RoleFunction,
			Content:  ContentString(payload["content"]),
		}
	case RoleTool:
		return ToolResponses{
			Received:  rcv,
			Role:      RoleTool,
			Responses: toolResponses(payload["tool_responses"]),
			Content:   ContentString(payload["content"]),
		}
	}

	content, hasContent := payload["content"]
	hasContent = hasContent && content != nil

	if call, ok := functionCall(payload["function_call"]); ok {
		return FunctionCallRequest{
			Received:   rcv,
			Content:    ContentString(content),
			HasContent: hasContent,
			Call:       call,
		}
	}

	if calls := toolCalls(payload["tool_calls"]); len(calls) > 0 {
		role, _ := payload["role"].(string)
		return ToolCallRequest{
			Received:   rcv,
			Content:    ContentString(content),
			HasContent: hasContent,
			Role:       role,
			Calls:      calls,
		}
	}

	if ctx, ok := payload["context"].(map[string]any); ok && hasContent {
		content = Instantiate(content, ctx, recipient.AllowFormatStrTemplate())
	}
	return Text{
		Received:   rcv,
		Content:    ContentString(content),
		HasContent: hasContent,
	}
}

// Instantiate resolves templated content against ctx. With an empty context
// or nil template the template is returned unchanged. A TemplateFunc is
// invoked with ctx. A string is returned verbatim unless allowFormat is set,
// in which case {name} placeholders found in ctx are substituted, unknown
// placeholders are kept as written and doubled braces collapse to one.
func Instantiate(template any, ctx map[string]any, allowFormat bool) any {
	if len(ctx) == 0 || template == nil {
		return template
	}
	switch t := template.(type) {
	case string:
		if !allowFormat {
			return t
		}
		return formatTemplate(t, ctx)
	case TemplateFunc:
		return t(ctx)
	case func(map[string]any) string:
		return t(ctx)
	}
	return template
}

func formatTemplate(s string, ctx map[string]any) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			field := s[i+1 : i+1+end]
			key := field
			if j := strings.IndexAny(key, ":!"); j >= 0 {
				key = key[:j]
			}
			if v, ok := ctx[key]; ok && key != "" {
				fmt.Fprint(&b, v)
			} else {
				b.WriteString(s[i : i+2+end])
			}
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ContentString flattens message content to text. Multimodal content (a
// list of parts) contributes the text of its text parts and "<image>" for
// each image part; unknown parts are skipped.
func ContentString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case TemplateFunc:
		return c(nil)
	case []any:
		var b strings.Builder
		for _, item := range c {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			b.WriteString(contentPart(part))
		}
		return b.String()
	case []map[string]any:
		var b strings.Builder
		for _, part := range c {
			b.WriteString(contentPart(part))
		}
		return b.String()
	case bool:
		if c {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v)
}

func contentPart(part map[string]any) string {
	switch part["type"] {
	case "text", "input_text":
		s, _ := part["text"].(string)
		return s
	case "image_url", "input_image":
		return "<image>"
	}
	return ""
}

func functionCall(v any) (FunctionCall, bool) {
	switch fc := v.(type) {
	case FunctionCall:
		return fc, true
	case *FunctionCall:
		if fc == nil {
			return FunctionCall{}, false
		}
		return *fc, true
	case map[string]any:
		if len(fc) == 0 {
			return FunctionCall{}, false
		}
		name, _ := fc["name"].(string)
		return FunctionCall{Name: name, Arguments: argumentString(fc["arguments"])}, true
	}
	return FunctionCall{}, false
}

func toolCalls(v any) []ToolCall {
	var items []map[string]any
	switch tc := v.(type) {
	case []ToolCall:
		return append([]ToolCall(nil), tc...)
	case []map[string]any:
		items = tc
	case []any:
		for _, it := range tc {
			if m, ok := it.(map[string]any); ok {
				items = append(items, m)
			}
		}
	default:
		return nil
	}

	calls := make([]ToolCall, 0, len(items))
	for _, it := range items {
		id, _ := it["id"].(string)
		typ, _ := it["type"].(string)
		fn, _ := functionCall(it["function"])
		calls = append(calls, ToolCall{ID: id, Type: typ, Function: fn})
	}
	return calls
}

func toolResponses(v any) []ToolResponse {
	var items []map[string]any
	switch tr := v.(type) {
	case []ToolResponse:
		return append([]ToolResponse(nil), tr...)
	case []map[string]any:
		items = tr
	case []any:
		for _, it := range tr {
			if m, ok := it.(map[string]any); ok {
				items = append(items, m)
			}
		}
	}

	out := make([]ToolResponse, 0, len(items))
	for _, it := range items {
		id, _ := it["tool_call_id"].(string)
		role, _ := it["role"].(string)
		if role == "" {
			role = RoleTool
		}
		out = append(out, ToolResponse{ToolCallID: id, Role: role, Content: ContentString(it["content"])})
	}
	return out
}

// argumentString keeps raw argument strings as they are and re-encodes
// structured arguments as JSON.
func argumentString(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
