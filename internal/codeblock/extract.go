// Package codeblock extracts executable code blocks from agent messages.
package codeblock

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nixlim/chatprint/internal/messages"
)

// Unknown is returned by InferLanguage when no language could be inferred.
const Unknown = "unknown"

// pythonCodeKey is the JSON field carrying code in structured replies.
const pythonCodeKey = "python_code"

// Block is a code block found in a message.
type Block struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// fencePattern matches a Markdown fence with an optional language tag. The
// closing fence must sit on its own line.
var fencePattern = regexp.MustCompile("(?s)```[ \\t]*(\\w+)?[ \\t]*\\r?\\n(.*?)\\r?\\n[ \\t]*```")

// Extract returns the code blocks in content.
//
// A JSON object with a string "python_code" field yields exactly one python
// block, and any fences inside the object are ignored. Anything else is
// scanned for fenced blocks in source order. Blocks without a language tag
// get an inferred language, or "" when inference fails.
func Extract(content string) []Block {
	if b, ok := extractJSON(content); ok {
		return []Block{b}
	}
	return extractFences(content)
}

// ExtractContent flattens multimodal message content and extracts from it.
func ExtractContent(content any) []Block {
	return Extract(messages.ContentString(content))
}

// extractJSON reports false for anything that is not a JSON object with a
// string python_code field; the caller then falls back to fence scanning.
func extractJSON(content string) (Block, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return Block{}, false
	}
	raw, ok := obj[pythonCodeKey]
	if !ok {
		return Block{}, false
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return Block{}, false
	}
	return Block{Language: "python", Code: code}, true
}

func extractFences(content string) []Block {
	matches := fencePattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		lang, code := m[1], m[2]
		if lang == "" {
			lang = InferLanguage(code)
		}
		if lang == Unknown {
			lang = ""
		}
		blocks = append(blocks, Block{Language: lang, Code: code})
	}
	return blocks
}

var (
	shellPrefixes = []string{"python ", "python3 ", "pip"}

	pythonStatement = regexp.MustCompile(`^(?:def |class |import |from \S+ import |print\(|if .*:$|elif .*:$|else:$|for .+ in .+:$|while .+:$|with .+:$|try:$|except\b.*:$|finally:$|return\b|async def |@\w|raise |assert |pass$|lambda\b)`)
	pythonAssign    = regexp.MustCompile(`^[A-Za-z_][\w.]*(?:\s*,\s*[A-Za-z_]\w*)*\s*(?:[-+*/%]|//|\*\*)?=\s*[^=\s]`)
	pythonExpr      = regexp.MustCompile(`^(?:[A-Za-z_][\w.]*|-?\d+(?:\.\d+)?|"[^"]*"|'[^']*')$`)
)

// InferLanguage guesses the language of an untagged code block. Commands
// that invoke python or pip are shell; code whose statements all read as
// Python is python; everything else is Unknown.
func InferLanguage(code string) string {
	for _, p := range shellPrefixes {
		if strings.HasPrefix(code, p) {
			return "sh"
		}
	}
	if looksLikePython(code) {
		return "python"
	}
	return Unknown
}

// looksLikePython accepts code made of Python statements, assignments,
// calls and bare expressions. Code holding only comments also counts.
func looksLikePython(code string) bool {
	seen, commented := false, false
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			commented = true
			continue
		}
		if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "{") {
			return false
		}
		if indented(line) {
			continue
		}
		if !pythonStatement.MatchString(trimmed) && !pythonAssign.MatchString(trimmed) &&
			!isCall(trimmed) && !pythonExpr.MatchString(trimmed) {
			return false
		}
		seen = true
	}
	return seen || commented
}

func indented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

var callPattern = regexp.MustCompile(`^[A-Za-z_][\w.]*\(.*\)$`)

func isCall(line string) bool {
	return callPattern.MatchString(line)
}
