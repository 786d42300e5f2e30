package editor

import "taskdoc/internal/domain"

// Event is one discrete input delivered to the Machine.
type Event interface{ event() }

// KeyCode names the keys the machine interprets. Everything else is the
// host's business and arrives as Input.
type KeyCode uint8

const (
	KeyEnter KeyCode = iota
	KeyBackspace
	KeySlash
	KeyEscape
)

func (k KeyCode) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyBackspace:
		return "backspace"
	case KeySlash:
		return "/"
	case KeyEscape:
		return "escape"
	}
	return "unknown"
}

// Point is a screen anchor for the slash menu.
type Point struct {
	X, Y int
}

// Focus moves input focus to a block.
type Focus struct {
	BlockID string
}

// Input carries the full new text of a block after the host applied a
// keystroke, paste or other native edit.
type Input struct {
	BlockID string
	Text    string
}

// Key is a key press on a block. An empty BlockID targets the active
// block. Caret is where the slash menu should anchor.
type Key struct {
	BlockID string
	Key     KeyCode
	Shift   bool
	Caret   Point
}

// PlusClick is the "+" handle next to a block: focus it and open the menu.
type PlusClick struct {
	BlockID string
	Anchor  Point
}

// DeleteClick is the trash handle next to a block.
type DeleteClick struct {
	BlockID string
}

// AddBlock is the trailing "add block" affordance below the document.
type AddBlock struct{}

// MenuSelect picks a block type in the open slash menu.
type MenuSelect struct {
	Type domain.BlockType
}

// MenuClose dismisses the slash menu.
type MenuClose struct{}

// PointerDown is a click anywhere; InMenu tells whether it hit the menu.
type PointerDown struct {
	InMenu bool
}

// DragStart grabs a block by its drag handle.
type DragStart struct {
	BlockID string
}

// Drop releases the dragged block at Index.
type Drop struct {
	Index int
}

// DragCancel abandons a drag without moving anything.
type DragCancel struct{}

func (Focus) event()       {}
func (Input) event()       {}
func (Key) event()         {}
func (PlusClick) event()   {}
func (DeleteClick) event() {}
func (AddBlock) event()    {}
func (MenuSelect) event()  {}
func (MenuClose) event()   {}
func (PointerDown) event() {}
func (DragStart) event()   {}
func (Drop) event()        {}
func (DragCancel) event()  {}
