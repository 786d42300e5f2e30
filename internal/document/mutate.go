package document

import (
	"slices"

	"taskdoc/internal/domain"
)

// InsertAfter creates an empty block of type t right after targetID and
// returns it. An empty or unknown target appends at the end; an invalid
// type inserts a paragraph.
func (d *Document) InsertAfter(targetID string, t domain.BlockType) domain.Block {
	if !t.Valid() {
		t = domain.BlockTypeParagraph
	}
	b := d.emptyBlock(t)

	at := len(d.blocks)
	if targetID != "" {
		if i := d.IndexOf(targetID); i >= 0 {
			at = i + 1
		}
	}
	d.blocks = slices.Insert(d.blocks, at, b)
	d.renumber()
	return d.blocks[at]
}

// UpdateContent replaces a block's text. Positions and types are untouched.
func (d *Document) UpdateContent(id, text string) bool {
	i := d.IndexOf(id)
	if i < 0 || d.blocks[i].Content == text {
		return false
	}
	d.blocks[i].Content = text
	return true
}

// ChangeType retypes a block in place, keeping id, content and position.
func (d *Document) ChangeType(id string, t domain.BlockType) bool {
	if !t.Valid() {
		return false
	}
	i := d.IndexOf(id)
	if i < 0 || d.blocks[i].Type == t {
		return false
	}
	d.blocks[i].Type = t
	return true
}

// Delete removes a block unless it is the last one left. Deleting the
// sole block or an unknown id is a silent no-op.
func (d *Document) Delete(id string) bool {
	if len(d.blocks) <= 1 {
		return false
	}
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	d.blocks = slices.Delete(d.blocks, i, i+1)
	d.renumber()
	return true
}

// Reorder moves a block to newIndex, clamped to [0, n-1]. The id set is
// unchanged; only order and positions move.
func (d *Document) Reorder(id string, newIndex int) bool {
	from := d.IndexOf(id)
	if from < 0 {
		return false
	}
	to := min(max(newIndex, 0), len(d.blocks)-1)
	if from == to {
		return false
	}
	b := d.blocks[from]
	d.blocks = slices.Delete(d.blocks, from, from+1)
	d.blocks = slices.Insert(d.blocks, to, b)
	d.renumber()
	return true
}

// Replace swaps the whole block list for another document's blocks.
// Used by inbound reconciliation.
func (d *Document) Replace(other *Document) {
	d.blocks = other.Blocks()
}
