// Package xml canonicalizes well-formed XML. Malformed input is rejected.
package xml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/plain"
)

// Compile-time interface verification.
var _ anydiff.Canonicalizer = (*Canonicalizer)(nil)

var (
	errMultipleRoots = errors.New("multiple root elements")
	errNoRoot        = errors.New("no root element")
	errTextOutside   = errors.New("text outside the root element")
)

// Canonicalizer implements anydiff.Canonicalizer for XML.
type Canonicalizer struct{}

// NewCanonicalizer creates an XML canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{}
}

// Canonicalize parses raw strictly and lays out the element tree. Without
// opts.Normalize the input is compared as raw lines after a well-formedness
// check.
func (c *Canonicalizer) Canonicalize(raw string, opts anydiff.Options) (*anydiff.Document, error) {
	roots, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if !opts.Normalize {
		return plain.NewRaw(anydiff.FormatXML).Canonicalize(raw, opts)
	}
	return &anydiff.Document{
		Format: anydiff.FormatXML,
		Lines:  anydiff.LayoutMarkup(roots, Style, opts),
	}, nil
}

// Style is the canonical XML layout.
var Style = anydiff.MarkupStyle{
	EscapeText: textEscaper.Replace,
	EscapeAttr: attrEscaper.Replace,
	SelfClose:  true,
	AttrLess:   AttrLess,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;", "\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// privileged attributes come first, in this order, after namespace
// declarations.
var privileged = map[string]int{
	"jcr:primaryType":         1,
	"sling:resourceType":      2,
	"sling:resourceSuperType": 3,
	"jcr:title":               4,
	"jcr:description":         5,
}

func attrRank(name string) int {
	if name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
		return 0
	}
	if r, ok := privileged[name]; ok {
		return r
	}
	if strings.Contains(name, ":") {
		return 6
	}
	return 7
}

// AttrLess orders namespace declarations first, then the JCR and Sling
// identity attributes, then other prefixed names, then plain names, each
// group alphabetically.
func AttrLess(a, b string) bool {
	ra, rb := attrRank(a), attrRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// Parse reads raw into a node tree. It fails on any well-formedness error,
// including mismatched end tags and content outside a single root element.
// Blank input yields no nodes.
func Parse(raw string) ([]*anydiff.Node, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d := xml.NewDecoder(strings.NewReader(raw))
	d.Strict = true

	var roots []*anydiff.Node
	var stack []*anydiff.Node
	rootClosed := false

	add := func(n *anydiff.Node) {
		if len(stack) == 0 {
			roots = append(roots, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}
	fail := func(err error) error {
		line, _ := d.InputPos()
		var se *xml.SyntaxError
		if errors.As(err, &se) {
			line, err = se.Line, errors.New(se.Msg)
		}
		return &anydiff.MalformedInputError{Format: anydiff.FormatXML, Line: line, Err: err}
	}

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fail(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && rootClosed {
				return nil, fail(errMultipleRoots)
			}
			n := &anydiff.Node{Type: anydiff.ElementNode, Name: qname(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, anydiff.Attr{Name: qname(a.Name), Value: a.Value})
			}
			add(n)
			stack = append(stack, n)
		case xml.EndElement:
			name := qname(t.Name)
			if len(stack) == 0 {
				return nil, fail(fmt.Errorf("unexpected end element </%s>", name))
			}
			if top := stack[len(stack)-1]; top.Name != name {
				return nil, fail(fmt.Errorf("element <%s> closed by </%s>", top.Name, name))
			}
			stack = stack[:len(stack)-1]
			rootClosed = rootClosed || len(stack) == 0
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fail(errTextOutside)
				}
				continue
			}
			add(&anydiff.Node{Type: anydiff.TextNode, Data: string(t)})
		case xml.Comment:
			add(&anydiff.Node{Type: anydiff.CommentNode, Data: string(t)})
		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			add(&anydiff.Node{Type: anydiff.DirectiveNode, Data: "<?" + t.Target + " " + strings.TrimSpace(string(t.Inst)) + "?>"})
		case xml.Directive:
			add(&anydiff.Node{Type: anydiff.DirectiveNode, Data: "<!" + string(t) + ">"})
		}
	}
	if len(stack) > 0 {
		return nil, fail(fmt.Errorf("element <%s> is not closed", stack[len(stack)-1].Name))
	}
	if !rootClosed {
		return nil, fail(errNoRoot)
	}
	return roots, nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
