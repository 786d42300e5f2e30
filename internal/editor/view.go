package editor

import (
	"taskdoc/internal/document"
	"taskdoc/internal/domain"
)

// BlockView is everything a host needs to draw one block.
type BlockView struct {
	domain.Block
	Active      bool
	MenuTrigger bool
	Dragging    bool
	// Deletable is false for the sole remaining block.
	Deletable bool
	// Number is the numbered-list counter, 0 for other types.
	Number int
	// Placeholder is set only while the block is empty.
	Placeholder string
}

// MenuItem is one entry of the slash menu.
type MenuItem struct {
	Type        domain.BlockType
	Label       string
	Description string
}

// MenuItems returns the slash menu entries in display order.
func MenuItems() []MenuItem {
	items := make([]MenuItem, 0, len(domain.BlockTypes))
	for _, t := range domain.BlockTypes {
		items = append(items, MenuItem{Type: t, Label: t.Label(), Description: t.Description()})
	}
	return items
}

// Views snapshots the document for rendering.
func (m *Machine) Views() []BlockView {
	var out []BlockView
	m.host.View(func(d *document.Document) {
		m.settle(d)
		out = make([]BlockView, 0, d.Len())
		for _, b := range d.Blocks() {
			v := BlockView{
				Block:       b,
				Active:      b.ID == m.active,
				MenuTrigger: m.menu.Open && m.menu.BlockID == b.ID,
				Dragging:    b.ID == m.dragging,
				Deletable:   d.Len() > 1,
				Number:      d.NumberedIndex(b.ID),
			}
			if b.Content == "" {
				v.Placeholder = b.Type.Placeholder()
			}
			out = append(out, v)
		}
	})
	return out
}

// Local is a Host over a bare Document with no locking and no sync.
type Local struct {
	Doc     *document.Document
	Changes int
}

// NewLocal wraps d.
func NewLocal(d *document.Document) *Local { return &Local{Doc: d} }

func (l *Local) Mutate(fn func(d *document.Document) bool) {
	if fn(l.Doc) {
		l.Changes++
	}
}

func (l *Local) View(fn func(d *document.Document)) { fn(l.Doc) }
