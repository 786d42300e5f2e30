// Package tui is a terminal host for the block editor. It keeps a text
// draft with a caret per block, turns key presses into editor events and
// renders the document with lipgloss.
package tui

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"taskdoc/internal/editor"
)

// Document is the synchronised document the model edits. syncer.Engine
// implements it.
type Document interface {
	editor.Host
	Supply(content string) bool
	Rejected(content string)
	Flush()
}

// Options configures a Model. The zero value is usable.
type Options struct {
	// Title is shown above the document.
	Title string
	// AddLabel is the text of the trailing "add block" line.
	AddLabel string
	Keys     *KeyMap
	Theme    *Theme
	// Editor is the command for editing one block externally. Defaults
	// to $VISUAL, then $EDITOR, then vi.
	Editor string
	// Save persists pending changes. Called on the save key and on quit,
	// after the document has been flushed.
	Save   func() error
	Logger *slog.Logger
}

// ExternalMsg delivers a description written by someone else.
type ExternalMsg struct {
	Content string
}

// SaveFailedMsg reports a failed save. Content is the value the owner now
// holds; the Document is kept as is.
type SaveFailedMsg struct {
	Content string
	Err     string
}

// SavedMsg reports a successful save.
type SavedMsg struct{}

// saveResultMsg carries the result of the save key.
type saveResultMsg struct {
	err  error
	quit bool
}

// statusFadeMsg clears the status line unless a newer notice replaced it.
type statusFadeMsg struct {
	seq int
}

const statusFadeDelay = 3 * time.Second

// draft is the text a block shows on screen plus the caret, in runes.
type draft struct {
	text  []rune
	caret int
}

func newDraft(s string) *draft {
	r := []rune(s)
	return &draft{text: r, caret: len(r)}
}

func (d *draft) String() string { return string(d.text) }

func (d *draft) insert(s string) {
	r := []rune(s)
	d.text = slices.Insert(d.text, d.caret, r...)
	d.caret += len(r)
}

func (d *draft) backspace() bool {
	if d.caret == 0 {
		return false
	}
	d.text = slices.Delete(d.text, d.caret-1, d.caret)
	d.caret--
	return true
}

// Model is the bubbletea model of one editing session.
type Model struct {
	doc     Document
	machine *editor.Machine
	binding *editor.Binding
	drafts  map[string]*draft
	views   []editor.BlockView

	menuCursor int

	keys  KeyMap
	theme Theme
	help  help.Model
	opts  Options
	log   *slog.Logger

	width     int
	status    string
	statusErr bool
	statusSeq int
	quitting  bool
}

// New creates a model editing doc.
func New(doc Document, opts Options) *Model {
	if opts.Keys == nil {
		opts.Keys = &DefaultKeyMap
	}
	if opts.Theme == nil {
		opts.Theme = &DefaultTheme
	}
	if opts.AddLabel == "" {
		opts.AddLabel = "Click to add a block"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Model{
		doc:     doc,
		machine: editor.New(doc),
		binding: editor.NewBinding(),
		drafts:  make(map[string]*draft),
		keys:    *opts.Keys,
		theme:   *opts.Theme,
		help:    help.New(),
		opts:    opts,
		log:     opts.Logger.With("component", "tui"),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case ExternalMsg:
		if !m.doc.Supply(msg.Content) {
			return m, nil
		}
		m.refresh()
		return m, m.notify("Updated from another writer", false)

	case SaveFailedMsg:
		m.doc.Rejected(msg.Content)
		return m, m.notify("Save failed: "+msg.Err, true)

	case SavedMsg:
		return m, m.notify("Saved", false)

	case saveResultMsg:
		if msg.err != nil {
			m.log.Error("save failed", "error", msg.err)
			if !msg.quit {
				return m, m.notify("Save failed: "+msg.err.Error(), true)
			}
		}
		if msg.quit {
			return m, tea.Quit
		}
		return m, m.notify("Saved", false)

	case externalEditMsg:
		return m, m.finishExternal(msg)

	case statusFadeMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

// Quitting reports whether the model asked the program to exit.
func (m *Model) Quitting() bool { return m.quitting }

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.machine.Menu().Open {
		if cmd, ok := m.menuKey(msg); ok {
			return cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.save(true)
	case key.Matches(msg, m.keys.Save):
		return m.save(false)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.focusOffset(-1)
	case key.Matches(msg, m.keys.Down):
		m.focusOffset(1)
	case key.Matches(msg, m.keys.Left):
		if d := m.current(); d != nil && d.caret > 0 {
			d.caret--
		}
	case key.Matches(msg, m.keys.Right):
		if d := m.current(); d != nil && d.caret < len(d.text) {
			d.caret++
		}
	case key.Matches(msg, m.keys.Home):
		if d := m.current(); d != nil {
			d.caret = 0
		}
	case key.Matches(msg, m.keys.End):
		if d := m.current(); d != nil {
			d.caret = len(d.text)
		}

	case key.Matches(msg, m.keys.Newline):
		m.insert("\n")
	case key.Matches(msg, m.keys.NewBlock):
		m.handle(editor.Key{Key: editor.KeyEnter})
	case key.Matches(msg, m.keys.Backspace):
		m.backspace()
	case key.Matches(msg, m.keys.Escape):
		m.handle(editor.Key{Key: editor.KeyEscape})

	case key.Matches(msg, m.keys.TypeMenu):
		m.openMenu(func(id string) editor.Event {
			return editor.PlusClick{BlockID: id, Anchor: m.caretPoint()}
		})
	case key.Matches(msg, m.keys.AddBlock):
		m.handle(editor.AddBlock{})
	case key.Matches(msg, m.keys.Delete):
		m.handle(editor.DeleteClick{BlockID: m.machine.Active()})
	case key.Matches(msg, m.keys.MoveUp):
		m.move(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.move(1)
	case key.Matches(msg, m.keys.External):
		return m.openExternal()

	default:
		switch msg.Type {
		case tea.KeyRunes:
			if !msg.Alt {
				m.typeRunes(string(msg.Runes))
			}
		case tea.KeySpace:
			m.insert(" ")
		}
	}
	return nil
}

// menuKey routes keys while the slash menu is open. ok is false when the
// key should fall through to normal handling.
func (m *Model) menuKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	items := editor.MenuItems()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menuCursor = (m.menuCursor + len(items) - 1) % len(items)
	case key.Matches(msg, m.keys.Down):
		m.menuCursor = (m.menuCursor + 1) % len(items)
	case key.Matches(msg, m.keys.NewBlock):
		m.handle(editor.MenuSelect{Type: items[m.menuCursor].Type})
	case key.Matches(msg, m.keys.Escape):
		m.handle(editor.Key{Key: editor.KeyEscape})
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) openMenu(ev func(id string) editor.Event) editor.Result {
	id := m.machine.Active()
	res := m.handle(ev(id))
	if res.Handled {
		m.menuCursor = 0
		for i, it := range editor.MenuItems() {
			if v, ok := m.view(id); ok && it.Type == v.Type {
				m.menuCursor = i
			}
		}
	}
	return res
}

func (m *Model) typeRunes(s string) {
	if s == "/" {
		if d := m.current(); d != nil && len(d.text) == 0 {
			res := m.openMenu(func(id string) editor.Event {
				return editor.Key{BlockID: id, Key: editor.KeySlash, Caret: m.caretPoint()}
			})
			if res.Handled {
				return
			}
		}
	}
	m.insert(s)
}

func (m *Model) insert(s string) {
	id := m.machine.Active()
	d := m.drafts[id]
	if d == nil {
		return
	}
	d.insert(s)
	m.input(id, d)
}

func (m *Model) backspace() {
	id := m.machine.Active()
	d := m.drafts[id]
	if d == nil {
		return
	}
	if len(d.text) == 0 {
		m.handle(editor.Key{BlockID: id, Key: editor.KeyBackspace})
		return
	}
	if d.backspace() {
		m.input(id, d)
	}
}

// input reports the draft to the machine. Observing first keeps the
// refresh that follows from resetting the caret.
func (m *Model) input(id string, d *draft) {
	m.binding.Observe(id, d.String())
	m.handle(editor.Input{BlockID: id, Text: d.String()})
}

func (m *Model) focusOffset(delta int) {
	i := m.activeIndex()
	j := min(max(i+delta, 0), len(m.views)-1)
	if i < 0 || i == j {
		return
	}
	m.handle(editor.Focus{BlockID: m.views[j].ID})
}

func (m *Model) move(delta int) {
	i := m.activeIndex()
	j := i + delta
	if i < 0 || j < 0 || j >= len(m.views) {
		return
	}
	m.handle(editor.DragStart{BlockID: m.views[i].ID})
	m.handle(editor.Drop{Index: j})
}

// handle applies ev and refreshes the drafts. When focus lands on another
// block the caret goes to its end.
func (m *Model) handle(ev editor.Event) editor.Result {
	before := m.machine.Active()
	res := m.machine.Handle(ev)
	m.refresh()
	if res.Focus != "" && (res.Focus != before || res.CaretAtEnd) {
		if d := m.drafts[res.Focus]; d != nil {
			d.caret = len(d.text)
		}
	}
	return res
}

// refresh snapshots the document and overwrites drafts whose block text
// changed underneath them.
func (m *Model) refresh() {
	m.views = m.machine.Views()
	live := make(map[string]bool, len(m.views))
	for _, v := range m.views {
		live[v.ID] = true
		d, ok := m.drafts[v.ID]
		if m.binding.Reconcile(v.ID, v.Content) || !ok {
			nd := newDraft(v.Content)
			if ok {
				nd.caret = min(d.caret, len(nd.text))
			}
			m.drafts[v.ID] = nd
		}
	}
	m.binding.Retain(func(id string) bool { return live[id] })
	maps.DeleteFunc(m.drafts, func(id string, _ *draft) bool { return !live[id] })
}

func (m *Model) save(quit bool) tea.Cmd {
	m.doc.Flush()
	if quit {
		m.quitting = true
	}
	save := m.opts.Save
	return func() tea.Msg {
		var err error
		if save != nil {
			err = save()
		}
		return saveResultMsg{err: err, quit: quit}
	}
}

func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	seq := m.statusSeq
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{seq: seq}
	})
}

func (m *Model) current() *draft {
	return m.drafts[m.machine.Active()]
}

func (m *Model) activeIndex() int {
	active := m.machine.Active()
	return slices.IndexFunc(m.views, func(v editor.BlockView) bool { return v.ID == active })
}

func (m *Model) view(id string) (editor.BlockView, bool) {
	i := slices.IndexFunc(m.views, func(v editor.BlockView) bool { return v.ID == id })
	if i < 0 {
		return editor.BlockView{}, false
	}
	return m.views[i], true
}

// caretPoint is the caret position in block coordinates: X is the rune
// column, Y the block index.
func (m *Model) caretPoint() editor.Point {
	p := editor.Point{Y: m.activeIndex()}
	if d := m.current(); d != nil {
		p.X = d.caret
	}
	return p
}
