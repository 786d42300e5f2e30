package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the block editor. Keys that type
// text are not listed; anything unbound is inserted into the focused block.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Home  key.Binding
	End   key.Binding

	NewBlock  key.Binding // Enter: new paragraph after the focused block.
	Newline   key.Binding // Line break inside the focused block.
	Backspace key.Binding
	Escape    key.Binding

	TypeMenu  key.Binding // Open the block type menu on the focused block.
	AddBlock  key.Binding // Append a paragraph at the end.
	Delete    key.Binding // Remove the focused block.
	MoveUp    key.Binding
	MoveDown  key.Binding
	External  key.Binding // Edit the focused block in $EDITOR.
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev block")),
	Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next block")),
	Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
	Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
	Home:  key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
	End:   key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),

	NewBlock:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new block")),
	Newline:   key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "line break")),
	Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete char / empty block")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close menu")),

	TypeMenu: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "block type")),
	AddBlock: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "add block")),
	Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("C-d", "delete block")),
	MoveUp:   key.NewBinding(key.WithKeys("alt+up", "ctrl+up"), key.WithHelp("alt+↑", "move up")),
	MoveDown: key.NewBinding(key.WithKeys("alt+down", "ctrl+down"), key.WithHelp("alt+↓", "move down")),
	External: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("C-o", "open in $EDITOR")),
	Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save now")),
	Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "help")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("C-q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TypeMenu, k.NewBlock, k.Delete, k.MoveUp, k.MoveDown, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Home, k.End},
		{k.NewBlock, k.Newline, k.Backspace, k.Escape},
		{k.TypeMenu, k.AddBlock, k.Delete, k.MoveUp, k.MoveDown},
		{k.External, k.Save, k.Help, k.Quit},
	}
}
