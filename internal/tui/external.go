package tui

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// externalEditMsg is sent when the external editor exits.
type externalEditMsg struct {
	blockID string
	path    string
	err     error
}

// editorCommand resolves the command used for external edits.
func editorCommand(configured string) []string {
	for _, c := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if f := strings.Fields(c); len(f) > 0 {
			return f
		}
	}
	return []string{"vi"}
}

// openExternal suspends the program and edits the focused block in a
// temporary file.
func (m *Model) openExternal() tea.Cmd {
	id := m.machine.Active()
	d := m.drafts[id]
	if d == nil {
		return nil
	}

	f, err := os.CreateTemp("", "taskdoc-block-*.md")
	if err != nil {
		return m.notify("Cannot open editor: "+err.Error(), true)
	}
	path := f.Name()
	_, err = f.WriteString(d.String())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return m.notify("Cannot open editor: "+err.Error(), true)
	}

	argv := append(editorCommand(m.opts.Editor), path)
	c := exec.Command(argv[0], argv[1:]...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return externalEditMsg{blockID: id, path: path, err: err}
	})
}

func (m *Model) finishExternal(msg externalEditMsg) tea.Cmd {
	defer os.Remove(msg.path)
	if msg.err != nil {
		m.log.Warn("external editor failed", "error", msg.err)
		return m.notify("Editor failed: "+msg.err.Error(), true)
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		return m.notify("Cannot read edited block: "+err.Error(), true)
	}
	if _, ok := m.drafts[msg.blockID]; !ok {
		return m.notify("Block was removed while editing", true)
	}
	d := newDraft(strings.TrimSuffix(string(data), "\n"))
	m.drafts[msg.blockID] = d
	m.input(msg.blockID, d)
	return nil
}
