// Package editor turns discrete input events on the focused block into
// document mutations and manages the slash-command menu.
package editor

import (
	"taskdoc/internal/document"
	"taskdoc/internal/domain"
)

// Host owns the document the machine edits. Mutate runs fn with exclusive
// access and treats a true return as "the document changed". The sync
// engine implements it; Local is an unsynchronised version for tests and
// one-shot tools.
type Host interface {
	Mutate(fn func(d *document.Document) bool)
	View(fn func(d *document.Document))
}

// Menu is the slash-command menu state.
type Menu struct {
	Open    bool
	Anchor  Point
	BlockID string
}

// Result reports what an event did.
type Result struct {
	// Handled is false when the host should apply its native behaviour
	// (for example insert the typed character).
	Handled bool
	// Changed is true when the document was mutated.
	Changed bool
	// Focus is the block that should hold the caret afterwards.
	Focus string
	// CaretAtEnd asks the host to put the caret after the last character.
	CaretAtEnd bool
}

// Machine is the edit state machine. All state lives behind the host's
// lock so events, reads and inbound reconciliation never interleave.
type Machine struct {
	host     Host
	active   string
	menu     Menu
	dragging string
}

// New creates a machine focused on the first block with content.
func New(host Host) *Machine {
	m := &Machine{host: host}
	host.View(func(d *document.Document) {
		m.active = d.FirstWithContent().ID
	})
	return m
}

// Handle applies one event.
func (m *Machine) Handle(ev Event) Result {
	var res Result
	m.host.Mutate(func(d *document.Document) bool {
		m.settle(d)
		res = m.apply(d, ev)
		if res.Focus == "" {
			res.Focus = m.active
		}
		return res.Changed
	})
	return res
}

// Active returns the focused block id.
func (m *Machine) Active() string {
	var id string
	m.host.View(func(d *document.Document) {
		m.settle(d)
		id = m.active
	})
	return id
}

// Menu returns the slash menu state.
func (m *Machine) Menu() Menu {
	var menu Menu
	m.host.View(func(*document.Document) { menu = m.menu })
	return menu
}

// Dragging returns the id of the block being dragged, if any.
func (m *Machine) Dragging() string {
	var id string
	m.host.View(func(*document.Document) { id = m.dragging })
	return id
}

// settle drops references to blocks that no longer exist, which happens
// after an inbound overwrite replaced the document.
func (m *Machine) settle(d *document.Document) {
	if d.IndexOf(m.active) < 0 {
		m.active = d.First().ID
	}
	if m.dragging != "" && d.IndexOf(m.dragging) < 0 {
		m.dragging = ""
	}
}

func (m *Machine) apply(d *document.Document, ev Event) Result {
	switch ev := ev.(type) {
	case Focus:
		if d.IndexOf(ev.BlockID) < 0 {
			return Result{}
		}
		m.active = ev.BlockID
		return Result{Handled: true}

	case Input:
		id := m.target(ev.BlockID)
		if d.IndexOf(id) < 0 {
			return Result{}
		}
		m.active = id
		return Result{Handled: true, Changed: d.UpdateContent(id, ev.Text)}

	case Key:
		return m.key(d, ev)

	case PlusClick:
		if d.IndexOf(ev.BlockID) < 0 {
			return Result{}
		}
		m.active = ev.BlockID
		m.menu = Menu{Open: true, Anchor: ev.Anchor, BlockID: ev.BlockID}
		return Result{Handled: true}

	case DeleteClick:
		return m.delete(d, ev.BlockID)

	case AddBlock:
		b := d.InsertAfter("", domain.BlockTypeParagraph)
		m.active = b.ID
		return Result{Handled: true, Changed: true, Focus: b.ID}

	case MenuSelect:
		if !m.menu.Open {
			return Result{}
		}
		trigger := m.menu.BlockID
		m.menu = Menu{}
		if d.IndexOf(trigger) < 0 {
			return Result{Handled: true}
		}
		m.active = trigger
		return Result{
			Handled:    true,
			Changed:    d.ChangeType(trigger, ev.Type),
			Focus:      trigger,
			CaretAtEnd: true,
		}

	case MenuClose:
		if !m.menu.Open {
			return Result{}
		}
		m.menu = Menu{}
		return Result{Handled: true}

	case PointerDown:
		if !m.menu.Open || ev.InMenu {
			return Result{}
		}
		m.menu = Menu{}
		return Result{Handled: true}

	case DragStart:
		if d.IndexOf(ev.BlockID) < 0 {
			return Result{}
		}
		m.dragging = ev.BlockID
		return Result{Handled: true}

	case Drop:
		if m.dragging == "" {
			return Result{}
		}
		id := m.dragging
		m.dragging = ""
		return Result{Handled: true, Changed: d.Reorder(id, ev.Index)}

	case DragCancel:
		m.dragging = ""
		return Result{Handled: true}
	}
	return Result{}
}

func (m *Machine) key(d *document.Document, ev Key) Result {
	id := m.target(ev.BlockID)
	b, ok := d.Block(id)
	if !ok {
		return Result{}
	}

	switch ev.Key {
	case KeyEnter:
		if ev.Shift {
			return Result{}
		}
		nb := d.InsertAfter(id, domain.BlockTypeParagraph)
		m.active = nb.ID
		return Result{Handled: true, Changed: true, Focus: nb.ID}

	case KeyBackspace:
		if b.Content != "" || d.Len() <= 1 {
			return Result{}
		}
		return m.delete(d, id)

	case KeySlash:
		if b.Content != "" {
			return Result{}
		}
		m.active = id
		m.menu = Menu{Open: true, Anchor: ev.Caret, BlockID: id}
		return Result{Handled: true}

	case KeyEscape:
		if !m.menu.Open {
			return Result{}
		}
		m.menu = Menu{}
		return Result{Handled: true}
	}
	return Result{}
}

// delete removes id and moves focus to the previous block, or to the new
// first block when id was first.
func (m *Machine) delete(d *document.Document, id string) Result {
	i := d.IndexOf(id)
	if i < 0 {
		return Result{}
	}
	if !d.Delete(id) {
		return Result{Handled: true}
	}
	m.active = d.At(max(i-1, 0)).ID
	if m.menu.BlockID == id {
		m.menu = Menu{}
	}
	return Result{Handled: true, Changed: true, Focus: m.active}
}

func (m *Machine) target(id string) string {
	if id == "" {
		return m.active
	}
	return id
}
