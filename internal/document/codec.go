package document

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"taskdoc/internal/domain"
)

// Format tells which parse path a content value took.
type Format int

const (
	// FormatEmpty is an absent, blank or empty-array value.
	FormatEmpty Format = iota
	// FormatBlocks is a JSON array of block-like records.
	FormatBlocks
	// FormatPlainText is anything else, kept verbatim as one paragraph.
	FormatPlainText
)

func (f Format) String() string {
	switch f {
	case FormatBlocks:
		return "blocks"
	case FormatPlainText:
		return "plain-text"
	default:
		return "empty"
	}
}

// Parse builds a Document from a host content value. It never fails:
// malformed values fall back to a single paragraph holding the raw text.
func Parse(content string, opts ...Option) *Document {
	d, _ := ParseContent(content, opts...)
	return d
}

// ParseContent is Parse that also reports which format was recognised.
func ParseContent(content string, opts ...Option) (*Document, Format) {
	if strings.TrimSpace(content) == "" {
		return New(opts...), FormatEmpty
	}

	items, ok := blockRecords(content)
	if !ok {
		d := newEmpty(opts...)
		b := d.emptyBlock(domain.BlockTypeParagraph)
		b.Content = content
		d.blocks = []domain.Block{b}
		return d, FormatPlainText
	}
	if len(items) == 0 {
		return New(opts...), FormatEmpty
	}

	d := newEmpty(opts...)
	d.loadRecords(items)
	return d, FormatBlocks
}

// FromBlocks builds a Document from already-decoded blocks, applying the
// same normalisation as Parse (ordering, id repair, type fallback).
func FromBlocks(blocks []domain.Block, opts ...Option) *Document {
	d := newEmpty(opts...)
	if len(blocks) == 0 {
		d.blocks = []domain.Block{d.emptyBlock(domain.BlockTypeParagraph)}
		return d
	}
	d.blocks = make([]domain.Block, len(blocks))
	copy(d.blocks, blocks)
	slices.SortStableFunc(d.blocks, func(a, b domain.Block) int { return a.Position - b.Position })
	d.repair()
	return d
}

// blockRecords returns the array elements when content is a JSON array
// made only of objects.
func blockRecords(content string) ([]gjson.Result, bool) {
	if !gjson.Valid(content) {
		return nil, false
	}
	root := gjson.Parse(content)
	if !root.IsArray() {
		return nil, false
	}
	items := root.Array()
	for _, it := range items {
		if !it.IsObject() {
			return nil, false
		}
	}
	return items, true
}

type positioned struct {
	block domain.Block
	pos   float64
}

func (d *Document) loadRecords(items []gjson.Result) {
	recs := make([]positioned, len(items))
	for i, it := range items {
		b := domain.Block{
			ID:      it.Get("id").String(),
			Content: it.Get("content").String(),
		}
		b.Type, _ = domain.ParseBlockType(it.Get("type").String())

		pos := float64(i)
		if p := it.Get("position"); p.Type == gjson.Number {
			pos = p.Float()
		}
		recs[i] = positioned{block: b, pos: pos}
	}
	slices.SortStableFunc(recs, func(a, b positioned) int {
		switch {
		case a.pos < b.pos:
			return -1
		case a.pos > b.pos:
			return 1
		}
		return 0
	})

	blocks := make([]domain.Block, len(recs))
	for i, r := range recs {
		blocks[i] = r.block
	}
	d.blocks = blocks
	d.repair()
}

// repair fixes ids and types and renumbers positions.
func (d *Document) repair() {
	seen := make(map[string]struct{}, len(d.blocks))
	for i := range d.blocks {
		b := &d.blocks[i]
		if _, dup := seen[b.ID]; b.ID == "" || dup {
			b.ID = d.newID()
		}
		seen[b.ID] = struct{}{}
		if !b.Type.Valid() {
			b.Type = domain.BlockTypeParagraph
		}
	}
	d.renumber()
}

// Serialize encodes the document as the persisted block array.
func (d *Document) Serialize() string { return Serialize(d.blocks) }

// Serialize encodes blocks as a JSON array of {id,type,content,position}
// records. HTML characters are not escaped so the text stays readable in
// the stored description.
func Serialize(blocks []domain.Block) string {
	if blocks == nil {
		blocks = []domain.Block{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(blocks); err != nil {
		// Block holds only strings and ints.
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Equal reports whether two block lists hold the same records in the
// same order.
func Equal(a, b []domain.Block) bool { return slices.Equal(a, b) }

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
