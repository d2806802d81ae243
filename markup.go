package anydiff

import (
	"sort"
	"strings"
	"unicode"
)

// NodeType identifies the kind of a markup Node.
type NodeType int

// Markup node types.
const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
	DirectiveNode // Emitted verbatim, e.g. <!DOCTYPE html>
)

// Attr is a markup attribute with its qualified name.
type Attr struct {
	Name  string
	Value string
}

// Node is a parsed markup tree shared by the HTML and XML canonicalizers.
type Node struct {
	Type     NodeType
	Name     string // Qualified element name
	Attrs    []Attr
	Children []*Node
	Data     string // Text, comment or directive content
	Void     bool   // Element that never has content or a close tag
	Raw      bool   // Text emitted without escaping
}

// MarkupStyle carries the format-specific rules of the canonical layout.
type MarkupStyle struct {
	EscapeText func(string) string
	EscapeAttr func(string) string
	SelfClose  bool                  // Empty elements render as <name/>
	AttrLess   func(a, b string) bool // Attribute order when arranging
}

const indentUnit = "  "

// LayoutMarkup renders a markup tree in canonical form: one tag, attribute or
// text line per Line, indented two spaces per depth. An element with at most
// one attribute and a single one-line text child is written on one line.
// Elements with several attributes put each attribute on its own line. Every
// line carries the path of the element it belongs to; attribute lines append
// an @name step.
func LayoutMarkup(roots []*Node, style MarkupStyle, opts Options) []Line {
	w := &markupWriter{style: style, opts: opts}
	w.nodes(roots, nil, 0)
	return w.lines
}

type markupWriter struct {
	style MarkupStyle
	opts  Options
	lines []Line
}

func (w *markupWriter) emit(text string, p Path, depth int) {
	w.lines = append(w.lines, NewLine(strings.Repeat(indentUnit, depth)+text, p, depth, w.opts))
}

func (w *markupWriter) nodes(nodes []*Node, parent Path, depth int) {
	seen := make(map[string]int)
	for _, n := range significant(nodes) {
		switch n.Type {
		case ElementNode:
			seen[n.Name]++
			w.element(n, parent.Child(Step{Name: n.Name, Index: seen[n.Name]}), depth)
		case TextNode:
			for _, line := range TextLines(n.Data) {
				w.emit(w.text(n, line), parent, depth)
			}
		case CommentNode:
			w.emit("<!-- "+strings.Join(strings.Fields(n.Data), " ")+" -->", parent, depth)
		case DirectiveNode:
			w.emit(n.Data, parent, depth)
		}
	}
}

func (w *markupWriter) element(n *Node, p Path, depth int) {
	attrs := n.Attrs
	if w.opts.ArrangeAttributes && w.style.AttrLess != nil {
		attrs = append([]Attr(nil), attrs...)
		sort.SliceStable(attrs, func(i, j int) bool { return w.style.AttrLess(attrs[i].Name, attrs[j].Name) })
	}
	children := significant(n.Children)
	closeTag := "</" + n.Name + ">"

	if len(attrs) <= 1 {
		tag := "<" + n.Name
		for _, a := range attrs {
			tag += " " + w.attr(a)
		}
		switch {
		case n.Void:
			w.emit(tag+">", p, depth)
			return
		case len(children) == 0:
			w.emit(tag+w.emptyEnd(n), p, depth)
			return
		case len(children) == 1 && children[0].Type == TextNode:
			if lines := TextLines(children[0].Data); len(lines) == 1 {
				w.emit(tag+">"+w.text(children[0], lines[0])+closeTag, p, depth)
				return
			}
		}
		w.emit(tag+">", p, depth)
	} else {
		w.emit("<"+n.Name, p, depth)
		for _, a := range attrs {
			w.emit(w.attr(a), p.Child(Step{Name: "@" + a.Name, Index: 1}), depth+1)
		}
		switch {
		case n.Void:
			w.emit(">", p, depth)
			return
		case len(children) == 0:
			w.emit(w.emptyEnd(n), p, depth)
			return
		}
		w.emit(">", p, depth)
	}

	w.nodes(children, p, depth+1)
	w.emit(closeTag, p, depth)
}

func (w *markupWriter) emptyEnd(n *Node) string {
	if w.style.SelfClose {
		return "/>"
	}
	return "></" + n.Name + ">"
}

func (w *markupWriter) attr(a Attr) string {
	v := a.Value
	if w.style.EscapeAttr != nil {
		v = w.style.EscapeAttr(v)
	}
	return a.Name + `="` + v + `"`
}

func (w *markupWriter) text(n *Node, line string) string {
	if n.Raw || w.style.EscapeText == nil {
		return line
	}
	return w.style.EscapeText(line)
}

// significant merges adjacent text nodes and drops blank ones.
func significant(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == TextNode {
			if last := len(out) - 1; last >= 0 && out[last].Type == TextNode && out[last].Raw == n.Raw {
				merged := *out[last]
				merged.Data += n.Data
				out[last] = &merged
				continue
			}
		}
		out = append(out, n)
	}
	kept := out[:0]
	for _, n := range out {
		if n.Type == TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

// TextLines splits text into right-trimmed, non-blank lines with their common
// leading white space removed.
func TextLines(s string) []string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if l != "" {
			lines = append(lines, l)
		}
	}
	prefix := ""
	for i, l := range lines {
		lead := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if i == 0 {
			prefix = lead
			continue
		}
		for !strings.HasPrefix(lead, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for i := range lines {
		lines[i] = lines[i][len(prefix):]
	}
	return lines
}
