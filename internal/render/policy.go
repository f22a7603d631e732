package render

import "github.com/charmbracelet/lipgloss"

// Mode selects how a sender's message content is displayed.
type Mode string

const (
	// ModePlain prints content verbatim.
	ModePlain Mode = "plain"
	// ModeRich renders content as Markdown.
	ModeRich Mode = "rich"
	// ModePlaceholder prints a forwarding notice instead of the content.
	ModePlaceholder Mode = "placeholder"
	// ModeExecutor prints an executor notice followed by the content.
	ModeExecutor Mode = "executor"
)

// ParseMode converts a config string into a Mode. Unknown strings map to
// ModePlain and report false.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModePlain, ModeRich, ModePlaceholder, ModeExecutor:
		return m, true
	}
	return ModePlain, false
}

// FallbackColor is used when a Policy has no DefaultColor.
const FallbackColor = "yellow"

// Policy is the display configuration shared by every Render call.
type Policy struct {
	Debug               bool
	SuppressRichDisplay bool
	DefaultColor        string
	Colors              map[string]string
	Modes               map[string]Mode

	// ToolCallMarkdown names the senders whose tool-call content is
	// rendered as Markdown. When nil, rich-mode senders are used.
	ToolCallMarkdown map[string]bool

	ToolExecutorName string
}

// ColorFor returns the colour configured for sender, or the default colour.
func (p Policy) ColorFor(sender string) string {
	if c, ok := p.Colors[sender]; ok && c != "" {
		return c
	}
	if p.DefaultColor != "" {
		return p.DefaultColor
	}
	return FallbackColor
}

// ModeFor returns the render mode configured for sender.
func (p Policy) ModeFor(sender string) Mode {
	if m, ok := p.Modes[sender]; ok {
		return m
	}
	return ModePlain
}

// ToolCallMarkdownFor reports whether sender's tool-call content is
// rendered as Markdown.
func (p Policy) ToolCallMarkdownFor(sender string) bool {
	if p.ToolCallMarkdown != nil {
		return p.ToolCallMarkdown[sender]
	}
	return p.ModeFor(sender) == ModeRich
}

func (p Policy) isToolExecutor(name string) bool {
	return p.ToolExecutorName != "" && name == p.ToolExecutorName
}

// namedColors maps terminal colour names to ANSI palette indices.
var namedColors = map[string]string{
	"black":         "0",
	"red":           "1",
	"green":         "2",
	"yellow":        "3",
	"blue":          "4",
	"magenta":       "5",
	"cyan":          "6",
	"white":         "7",
	"grey":          "8",
	"dark_grey":     "8",
	"light_grey":    "7",
	"light_red":     "9",
	"light_green":   "10",
	"light_yellow":  "11",
	"light_blue":    "12",
	"light_magenta": "13",
	"light_cyan":    "14",
}

// resolveColor accepts a colour name, an ANSI index or a hex value.
func resolveColor(c string) lipgloss.Color {
	if idx, ok := namedColors[c]; ok {
		return lipgloss.Color(idx)
	}
	return lipgloss.Color(c)
}
