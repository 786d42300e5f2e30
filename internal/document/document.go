// Package document holds the ordered block collection of one editing
// session together with the operations that mutate it and the codec that
// moves it across the wire.
//
// A Document is not safe for concurrent use; the sync engine serializes
// access to it.
package document

import (
	"fmt"

	"github.com/google/uuid"

	"taskdoc/internal/domain"
)

// IDFunc generates block ids. Ids must never repeat.
type IDFunc func() string

// Option configures a Document.
type Option func(*Document)

// WithIDFunc replaces the uuid id generator, mostly for tests.
func WithIDFunc(fn IDFunc) Option {
	return func(d *Document) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// Document is the ordered sequence of blocks. The slice order is the
// position order; Position fields are kept equal to the slice index.
type Document struct {
	blocks []domain.Block
	newID  IDFunc
}

// New returns a Document holding a single empty paragraph.
func New(opts ...Option) *Document {
	d := newEmpty(opts...)
	d.blocks = []domain.Block{d.emptyBlock(domain.BlockTypeParagraph)}
	return d
}

func newEmpty(opts ...Option) *Document {
	d := &Document{newID: uuid.NewString}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of blocks. It is always at least one.
func (d *Document) Len() int { return len(d.blocks) }

// Blocks returns a copy of the blocks in position order.
func (d *Document) Blocks() []domain.Block {
	out := make([]domain.Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// At returns the block at index i.
func (d *Document) At(i int) domain.Block { return d.blocks[i] }

// Block looks a block up by id.
func (d *Document) Block(id string) (domain.Block, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.blocks[i], true
	}
	return domain.Block{}, false
}

// IndexOf returns the index of id, or -1.
func (d *Document) IndexOf(id string) int {
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// First returns the first block.
func (d *Document) First() domain.Block { return d.blocks[0] }

// FirstWithContent returns the first block whose content is not blank,
// falling back to the first block.
func (d *Document) FirstWithContent() domain.Block {
	for _, b := range d.blocks {
		if !isBlank(b.Content) {
			return b
		}
	}
	return d.blocks[0]
}

// NumberedIndex returns the list counter shown next to a numbered-list
// block: the count of numbered-list blocks at or before it.
func (d *Document) NumberedIndex(id string) int {
	i := d.IndexOf(id)
	if i < 0 || d.blocks[i].Type != domain.BlockTypeNumberedList {
		return 0
	}
	n := 0
	for _, b := range d.blocks[:i+1] {
		if b.Type == domain.BlockTypeNumberedList {
			n++
		}
	}
	return n
}

// Validate checks the document invariants: at least one block, dense
// positions 0..n-1 and unique ids.
func (d *Document) Validate() error {
	if len(d.blocks) == 0 {
		return fmt.Errorf("document is empty")
	}
	seen := make(map[string]struct{}, len(d.blocks))
	for i, b := range d.blocks {
		if b.Position != i {
			return fmt.Errorf("block %s at index %d has position %d", b.ID, i, b.Position)
		}
		if b.ID == "" {
			return fmt.Errorf("block at index %d has no id", i)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("duplicate block id %s", b.ID)
		}
		seen[b.ID] = struct{}{}
		if !b.Type.Valid() {
			return fmt.Errorf("block %s has unknown type %q", b.ID, b.Type)
		}
	}
	return nil
}

func (d *Document) emptyBlock(t domain.BlockType) domain.Block {
	return domain.Block{ID: d.newID(), Type: t}
}

// renumber rewrites Position from slice order.
func (d *Document) renumber() {
	for i := range d.blocks {
		d.blocks[i].Position = i
	}
}
