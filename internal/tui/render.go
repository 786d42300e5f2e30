package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"taskdoc/internal/domain"
	"taskdoc/internal/editor"
)

const gutterWidth = 2

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(m.theme.Title.Render(m.opts.Title))
		b.WriteString("\n")
	}
	for _, v := range m.views {
		b.WriteString(m.renderBlock(v))
		b.WriteString("\n")
		if v.MenuTrigger {
			b.WriteString(m.renderMenu())
			b.WriteString("\n")
		}
	}
	b.WriteString(strings.Repeat(" ", gutterWidth))
	b.WriteString(m.theme.AddBlock.Render("+ " + m.opts.AddLabel))
	b.WriteString("\n\n")

	if m.status != "" {
		style := m.theme.Status
		if m.statusErr {
			style = m.theme.StatusError
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderBlock(v editor.BlockView) string {
	gutter := strings.Repeat(" ", gutterWidth)
	switch {
	case v.Dragging:
		gutter = m.theme.DragMark.Render("↕ ")
	case v.Active:
		gutter = m.theme.ActiveMark.Render("▌ ")
	}

	var marker string
	switch v.Type {
	case domain.BlockTypeBulletList:
		marker = m.theme.ListMarker.Render("• ")
	case domain.BlockTypeNumberedList:
		marker = m.theme.ListMarker.Render(fmt.Sprintf("%d. ", v.Number))
	}

	body := m.renderBody(v, lipgloss.Width(marker))
	if marker != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, marker, body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, gutter, body)
}

func (m *Model) renderBody(v editor.BlockView, indent int) string {
	d := m.drafts[v.ID]
	if d == nil {
		d = newDraft(v.Content)
	}

	if len(d.text) == 0 {
		text := m.theme.Placeholder.Render(v.Placeholder)
		if v.Active {
			text = m.theme.Caret.Render(" ") + text
		}
		if v.Type == domain.BlockTypeCode {
			return m.theme.Code.Render(text)
		}
		return text
	}

	text := d.String()
	if v.Active {
		text = m.withCaret(d)
	}

	var style lipgloss.Style
	switch v.Type {
	case domain.BlockTypeHeading1, domain.BlockTypeHeading2, domain.BlockTypeHeading3:
		style = m.theme.Heading[v.Type.HeadingLevel()-1]
	case domain.BlockTypeQuote:
		style = m.theme.Quote
	case domain.BlockTypeCode:
		if !v.Active {
			text = highlight(text, m.theme.CodeStyle)
		}
		return m.theme.Code.Render(text)
	default:
		style = m.theme.Paragraph
	}
	if w := m.width - gutterWidth - indent - style.GetHorizontalFrameSize(); m.width > 0 && w > 0 {
		style = style.Width(w)
	}
	return style.Render(text)
}

// withCaret renders the draft with the caret cell reversed.
func (m *Model) withCaret(d *draft) string {
	before := string(d.text[:d.caret])
	if d.caret == len(d.text) {
		return before + m.theme.Caret.Render(" ")
	}
	at := d.text[d.caret]
	after := string(d.text[d.caret+1:])
	if at == '\n' {
		return before + m.theme.Caret.Render(" ") + "\n" + after
	}
	return before + m.theme.Caret.Render(string(at)) + after
}

func (m *Model) renderMenu() string {
	items := editor.MenuItems()
	lines := make([]string, 0, len(items))
	for i, it := range items {
		label := m.theme.MenuItem.Render("  " + it.Label)
		if i == m.menuCursor {
			label = m.theme.MenuCursor.Render("› " + it.Label)
		}
		lines = append(lines, label+"  "+m.theme.MenuHint.Render(it.Description))
	}
	box := m.theme.Menu.Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().MarginLeft(gutterWidth).Render(box)
}

// highlight colours code for a 256-colour terminal, guessing the language
// from the source. Plain text is returned when no lexer applies.
func highlight(code, style string) string {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, "", "terminal256", style); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
