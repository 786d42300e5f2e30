package document

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"taskdoc/internal/domain"
)

// FromMarkdown converts a markdown text into a Document. Only the block
// structure is kept: headings, quotes, code, list items and paragraphs.
// Inline markup stays in the text verbatim.
func FromMarkdown(src string, opts ...Option) *Document {
	source := []byte(src)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	imp := &mdImporter{src: source}
	imp.walk(root)
	return FromBlocks(imp.blocks, opts...)
}

type mdImporter struct {
	src    []byte
	blocks []domain.Block
}

func (m *mdImporter) add(t domain.BlockType, content string) {
	m.blocks = append(m.blocks, domain.Block{Type: t, Content: content, Position: len(m.blocks)})
}

func (m *mdImporter) walk(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			m.add(domain.HeadingType(n.Level), m.lines(n))
		case *ast.FencedCodeBlock:
			m.add(domain.BlockTypeCode, m.raw(n))
		case *ast.CodeBlock:
			m.add(domain.BlockTypeCode, m.raw(n))
		case *ast.Blockquote:
			m.add(domain.BlockTypeQuote, m.text(n))
		case *ast.List:
			m.list(n)
		case *ast.ThematicBreak:
		default:
			m.add(domain.BlockTypeParagraph, m.text(n))
		}
	}
}

func (m *mdImporter) list(l *ast.List) {
	t := domain.BlockTypeBulletList
	if l.IsOrdered() {
		t = domain.BlockTypeNumberedList
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		var nested []*ast.List
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			if s := m.text(c); s != "" {
				parts = append(parts, s)
			}
		}
		m.add(t, strings.Join(parts, "\n"))
		for _, sub := range nested {
			m.list(sub)
		}
	}
}

// text returns the node's own lines, or the text of its block children.
func (m *mdImporter) text(n ast.Node) string {
	if n.Lines().Len() > 0 {
		return m.lines(n)
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := m.text(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func (m *mdImporter) lines(n ast.Node) string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(m.src)), " \r\n"))
	}
	return strings.Join(out, "\n")
}

// raw keeps code lines byte for byte.
func (m *mdImporter) raw(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(m.src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Markdown renders the document as markdown.
func (d *Document) Markdown() string {
	parts := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		parts = append(parts, markdownBlock(b, d.NumberedIndex(b.ID)))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func markdownBlock(b domain.Block, number int) string {
	switch b.Type {
	case domain.BlockTypeHeading1, domain.BlockTypeHeading2, domain.BlockTypeHeading3:
		return strings.Repeat("#", b.Type.HeadingLevel()) + " " + strings.ReplaceAll(b.Content, "\n", " ")
	case domain.BlockTypeQuote:
		lines := strings.Split(b.Content, "\n")
		for i, l := range lines {
			lines[i] = "> " + l
		}
		return strings.Join(lines, "\n")
	case domain.BlockTypeCode:
		return "```\n" + b.Content + "\n```"
	case domain.BlockTypeBulletList:
		return "- " + b.Content
	case domain.BlockTypeNumberedList:
		return fmt.Sprintf("%d. %s", number, b.Content)
	default:
		return b.Content
	}
}

// Text renders the document as plain text, one block per paragraph.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		if b.Type == domain.BlockTypeNumberedList {
			parts = append(parts, fmt.Sprintf("%d. %s", d.NumberedIndex(b.ID), b.Content))
			continue
		}
		if b.Type == domain.BlockTypeBulletList {
			parts = append(parts, "• "+b.Content)
			continue
		}
		parts = append(parts, b.Content)
	}
	return strings.Join(parts, "\n\n") + "\n"
}
