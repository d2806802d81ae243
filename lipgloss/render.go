package lipgloss

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/anydiff"
	"github.com/muesli/termenv"
)

// Renderer writes console reports of comparisons. Each block is shown with
// its locator and counts, removed lines prefixed "-" and added lines "+",
// and marked ranges of changed lines highlighted.
type Renderer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   anydiff.Styles
	context  int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColorProfile overrides the color profile detected from the output.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Renderer) { r.renderer.SetColorProfile(p) }
}

// WithContext shows up to n unchanged left-hand lines around each block.
func WithContext(n int) Option {
	return func(r *Renderer) { r.context = max(n, 0) }
}

// NewRenderer creates a renderer writing to out with the colors of theme.
func NewRenderer(out io.Writer, theme anydiff.Theme, opts ...Option) *Renderer {
	r := &Renderer{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		styles:   theme.Styles(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the report of d, a comparison of the sources named left and
// right.
func (r *Renderer) Render(left, right string, d *anydiff.Diff) error {
	var sb strings.Builder

	header := r.style(r.styles.SourceHeader)
	sb.WriteString(header.Render("--- "+left) + "\n")
	sb.WriteString(header.Render("+++ "+right) + "\n")

	blockHeader := r.style(r.styles.BlockHeader)
	for _, b := range d.Blocks {
		sb.WriteString(blockHeader.Render(fmt.Sprintf("@@ %s %s @@", b.Locator(), b.Counts)) + "\n")
		r.writeContext(&sb, d.Left, b.LeftRange.Start-r.context, b.LeftRange.Start)
		for _, f := range b.Fragments {
			r.writeFragment(&sb, f)
		}
		r.writeContext(&sb, d.Left, b.LeftRange.End, b.LeftRange.End+r.context)
	}

	summary := fmt.Sprintf("%d block(s), %s", len(d.Blocks), d.After)
	if d.After != d.Before {
		summary += fmt.Sprintf(" (before filtering %s)", d.Before)
	}
	sb.WriteString(r.style(r.styles.Summary).Render(summary) + "\n")

	_, err := io.WriteString(r.out, sb.String())
	return err
}

// RenderError writes a one-line report of a failed comparison.
func (r *Renderer) RenderError(left, right string, err error) error {
	line := r.style(r.styles.Removed).Render(fmt.Sprintf("!!! %s %s: %v", left, right, err))
	_, werr := io.WriteString(r.out, line+"\n")
	return werr
}

func (r *Renderer) writeContext(sb *strings.Builder, doc *anydiff.Document, from, to int) {
	style := r.style(r.styles.Context)
	for i := max(from, 0); i < min(to, doc.Len()); i++ {
		sb.WriteString(style.Render("  "+doc.Lines[i].Text) + "\n")
	}
}

func (r *Renderer) writeFragment(sb *strings.Builder, f anydiff.Fragment) {
	removed := r.style(r.styles.Removed)
	added := r.style(r.styles.Added)
	switch f.Kind {
	case anydiff.Removed:
		r.writeLines(sb, "- ", f.Left.Marked(), removed, removed)
	case anydiff.Added:
		r.writeLines(sb, "+ ", f.Right.Marked(), added, added)
	case anydiff.Changed:
		r.writeLines(sb, "- ", f.Left.Marked(), removed, r.style(r.styles.RemovedHighlight))
		r.writeLines(sb, "+ ", f.Right.Marked(), added, r.style(r.styles.AddedHighlight))
	}
}

// writeLines writes a marked span line by line. Marks may cross line breaks.
func (r *Renderer) writeLines(sb *strings.Builder, prefix string, ms anydiff.MarkedString, base, highlight lipgloss.Style) {
	sb.WriteString(base.Render(prefix))
	for _, seg := range ms.Segments() {
		style := base
		if seg.Marked {
			style = highlight
		}
		for i, part := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				sb.WriteString("\n" + base.Render(prefix))
			}
			if part != "" {
				sb.WriteString(style.Render(part))
			}
		}
	}
	sb.WriteString("\n")
}

// style creates a lipgloss style from a ColorPair.
func (r *Renderer) style(cp anydiff.ColorPair) lipgloss.Style {
	style := r.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if cp.Foreground != "" {
		style = style.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		style = style.Background(lipgloss.Color(cp.Background))
	}
	return style
}
