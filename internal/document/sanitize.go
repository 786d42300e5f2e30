package document

import (
	"strings"
	"unicode/utf8"

	"taskdoc/internal/domain"
)

// MaxGeneratedContent caps the content of one machine-generated block.
const MaxGeneratedContent = 2000

// Sanitize cleans blocks that come from a generator (an AI agent, an
// import) before they replace a description: control characters other
// than \n, \r and \t are dropped, content is trimmed and capped, unknown
// types become paragraphs and positions follow slice order.
func Sanitize(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		if !b.Type.Valid() {
			b.Type = domain.BlockTypeParagraph
		}
		b.Content = sanitizeText(b.Content, MaxGeneratedContent)
		b.Position = i
		out[i] = b
	}
	return out
}

func sanitizeText(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes]) + "..."
	}
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}
