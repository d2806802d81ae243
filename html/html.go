// Package html canonicalizes HTML with the tolerant HTML5 parser from
// golang.org/x/net/html. Only content that is not valid UTF-8 is rejected.
package html

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/plain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Compile-time interface verification.
var _ anydiff.Canonicalizer = (*Canonicalizer)(nil)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// Canonicalizer implements anydiff.Canonicalizer for HTML.
type Canonicalizer struct{}

// NewCanonicalizer creates an HTML canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{}
}

// Canonicalize parses raw into a full document (the parser supplies missing
// html, head and body elements) and lays it out. Without opts.Normalize the
// raw lines are compared instead.
func (c *Canonicalizer) Canonicalize(raw string, opts anydiff.Options) (*anydiff.Document, error) {
	if !utf8.ValidString(raw) {
		line := strings.Count(raw[:firstInvalid(raw)], "\n") + 1
		return nil, &anydiff.MalformedInputError{Format: anydiff.FormatHTML, Line: line, Err: errInvalidUTF8}
	}
	if !opts.Normalize {
		return plain.NewRaw(anydiff.FormatHTML).Canonicalize(raw, opts)
	}
	roots, err := Parse(raw)
	if err != nil {
		return nil, &anydiff.MalformedInputError{Format: anydiff.FormatHTML, Err: err}
	}
	return &anydiff.Document{
		Format: anydiff.FormatHTML,
		Lines:  anydiff.LayoutMarkup(roots, Style, opts),
	}, nil
}

func firstInvalid(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return i
			}
		}
	}
	return len(s)
}

// Style is the canonical HTML layout.
var Style = anydiff.MarkupStyle{
	EscapeText: html.EscapeString,
	EscapeAttr: html.EscapeString,
	AttrLess:   func(a, b string) bool { return a < b },
}

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Param: true, atom.Source: true,
	atom.Track: true, atom.Wbr: true,
}

var rawTextElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true,
}

// Parse builds a node tree from raw. Blank input yields no nodes.
func Parse(raw string) ([]*anydiff.Node, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return convertChildren(doc, false), nil
}

func convertChildren(n *html.Node, raw bool) []*anydiff.Node {
	var out []*anydiff.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if node := convert(c, raw); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func convert(n *html.Node, raw bool) *anydiff.Node {
	switch n.Type {
	case html.ElementNode:
		el := &anydiff.Node{
			Type: anydiff.ElementNode,
			Name: n.Data,
			Void: voidElements[n.DataAtom] && n.Namespace == "",
		}
		for _, a := range n.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			el.Attrs = append(el.Attrs, anydiff.Attr{Name: name, Value: flatten(a.Val)})
		}
		el.Children = convertChildren(n, rawTextElements[n.DataAtom])
		return el
	case html.TextNode:
		return &anydiff.Node{Type: anydiff.TextNode, Data: n.Data, Raw: raw}
	case html.CommentNode:
		return &anydiff.Node{Type: anydiff.CommentNode, Data: n.Data}
	case html.DoctypeNode:
		return &anydiff.Node{Type: anydiff.DirectiveNode, Data: "<!DOCTYPE " + n.Data + ">"}
	}
	return nil
}

// flatten joins a multi-line attribute value into one line.
func flatten(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	return strings.Join(strings.Fields(v), " ")
}
