// Package render builds Markdown documents from a small tree of typed
// sections. Each section type knows how to render itself exactly once;
// callers compose documents and serialize them with Markdown. The package
// is deliberately domain-free: it knows tables, headings and bullets, not
// jobs or resumes.
package render

import (
	"fmt"
	"strings"
)

// Section is one renderable block of a document.
type Section interface {
	render(b *strings.Builder)
}

// Document is a titled sequence of sections.
type Document struct {
	Title    string
	Sections []Section
}

// Markdown serializes the document: an H1 title followed by each section,
// separated by blank lines. Nil sections are skipped.
func (d Document) Markdown() string {
	var b strings.Builder
	if d.Title != "" {
		b.WriteString("# " + d.Title + "\n")
	}
	for _, s := range d.Sections {
		if s == nil {
			continue
		}
		b.WriteString("\n")
		s.render(&b)
	}
	return b.String()
}

// Heading is a section heading. Level 2 ("##") when unset.
type Heading struct {
	Level int
	Text  string
}

func (h Heading) render(b *strings.Builder) {
	level := h.Level
	if level < 1 {
		level = 2
	}
	b.WriteString(strings.Repeat("#", level) + " " + h.Text + "\n")
}

// Paragraph is free-running text, emitted as-is.
type Paragraph string

func (p Paragraph) render(b *strings.Builder) {
	b.WriteString(string(p) + "\n")
}

// Bullets is an unordered list.
type Bullets struct {
	Items []string
}

func (l Bullets) render(b *strings.Builder) {
	for _, it := range l.Items {
		b.WriteString("- " + it + "\n")
	}
}

// Table renders a header row plus data rows. Short rows are padded so the
// table stays rectangular.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) render(b *strings.Builder) {
	if len(t.Header) == 0 {
		return
	}
	writeRow(b, t.Header, len(t.Header))
	sep := make([]string, len(t.Header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(b, sep, len(t.Header))
	for _, row := range t.Rows {
		writeRow(b, row, len(t.Header))
	}
}

func writeRow(b *strings.Builder, cells []string, width int) {
	b.WriteString("|")
	for i := 0; i < width; i++ {
		cell := ""
		if i < len(cells) {
			cell = Cell(cells[i])
		}
		b.WriteString(" " + cell + " |")
	}
	b.WriteString("\n")
}

// Fields is a two-column field/value table with bold field names.
type Fields struct {
	Pairs [][2]string
}

func (f Fields) render(b *strings.Builder) {
	rows := make([][]string, 0, len(f.Pairs))
	for _, p := range f.Pairs {
		rows = append(rows, []string{"**" + p[0] + "**", p[1]})
	}
	Table{Header: []string{"Field", "Value"}, Rows: rows}.render(b)
}

// Code is a fenced code block.
type Code struct {
	Lang string
	Body string
}

func (c Code) render(b *strings.Builder) {
	b.WriteString("```" + c.Lang + "\n")
	b.WriteString(strings.TrimRight(c.Body, "\n") + "\n")
	b.WriteString("```\n")
}

// Rule is a horizontal separator.
type Rule struct{}

func (Rule) render(b *strings.Builder) {
	b.WriteString("---\n")
}

// Cell makes text safe inside a table cell: newlines collapse to spaces
// and pipes are escaped so one logical row stays one table row.
func Cell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.TrimSpace(s)
}

// Link formats a Markdown link, or "n/a" when the URL is empty.
func Link(text, url string) string {
	if strings.TrimSpace(url) == "" {
		return "n/a"
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}
