package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

type mdStyles struct {
	heading lipgloss.Style
	strong  lipgloss.Style
	emph    lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
	quote   lipgloss.Style
	rule    lipgloss.Style
}

func newMDStyles(lg *lipgloss.Renderer) mdStyles {
	return mdStyles{
		heading: lg.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		strong:  lg.NewStyle().Bold(true),
		emph:    lg.NewStyle().Italic(true),
		code:    lg.NewStyle().Foreground(lipgloss.Color("203")),
		link:    lg.NewStyle().Underline(true).Foreground(lipgloss.Color("75")),
		quote:   lg.NewStyle().Foreground(lipgloss.Color("245")),
		rule:    lg.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// renderMarkdown parses content and lays it out for a terminal: blocks are
// separated by blank lines, list items get bullets or numbers, code is
// indented, and inline markup becomes text styling.
func (r *Renderer) renderMarkdown(content string) string {
	source := []byte(content)
	doc := r.md.Parser().Parse(gmtext.NewReader(source))
	w := mdWriter{source: source, st: r.styles}
	return strings.Join(w.blocks(doc), "\n\n")
}

type mdWriter struct {
	source []byte
	st     mdStyles
}

func (w *mdWriter) blocks(parent ast.Node) []string {
	var out []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := w.block(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (w *mdWriter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Heading:
		return styleLines(w.st.heading, strings.Repeat("#", n.Level)+" "+w.inline(n))
	case *ast.Paragraph, *ast.TextBlock:
		return w.inline(n)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return w.code(n)
	case *ast.List:
		return w.list(n)
	case *ast.Blockquote:
		inner := strings.Join(w.blocks(n), "\n\n")
		return prefixLines(inner, styleLines(w.st.quote, "│")+" ")
	case *ast.ThematicBreak:
		return styleLines(w.st.rule, strings.Repeat("─", 40))
	case *ast.HTMLBlock:
		var b strings.Builder
		w.writeLines(&b, n)
		if n.HasClosure() {
			b.Write(n.ClosureLine.Value(w.source))
		}
		return strings.TrimRight(b.String(), "\n")
	}
	if n.HasChildren() {
		return strings.Join(w.blocks(n), "\n\n")
	}
	return ""
}

func (w *mdWriter) code(n ast.Node) string {
	var b strings.Builder
	w.writeLines(&b, n)
	body := strings.TrimRight(b.String(), "\n")
	if body == "" {
		return ""
	}
	return prefixLines(styleLines(w.st.code, body), "    ")
}

func (w *mdWriter) writeLines(b *strings.Builder, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
}

func (w *mdWriter) list(l *ast.List) string {
	sep := "\n"
	if !l.IsTight {
		sep = "\n\n"
	}
	var items []string
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		body := strings.Join(w.blocks(item), sep)
		pad := strings.Repeat(" ", len([]rune(marker)))
		items = append(items, marker+strings.ReplaceAll(body, "\n", "\n"+pad))
	}
	return strings.Join(items, sep)
}

func (w *mdWriter) inline(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(w.source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.CodeSpan:
			b.WriteString(styleLines(w.st.code, w.inline(n)))
		case *ast.Emphasis:
			st := w.st.emph
			if n.Level >= 2 {
				st = w.st.strong
			}
			b.WriteString(styleLines(st, w.inline(n)))
		case *ast.Link:
			label := w.inline(n)
			dest := string(n.Destination)
			b.WriteString(styleLines(w.st.link, label))
			if dest != "" && dest != label {
				b.WriteString(" (" + dest + ")")
			}
		case *ast.AutoLink:
			b.WriteString(styleLines(w.st.link, string(n.URL(w.source))))
		case *ast.Image:
			b.WriteString("[image: " + w.inline(n) + "]")
		case *ast.RawHTML:
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				b.Write(seg.Value(w.source))
			}
		default:
			b.WriteString(w.inline(n))
		}
	}
	return b.String()
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
