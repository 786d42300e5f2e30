package editor

// Binding keeps a rendered view and the document from fighting over the
// same text. The view reports what it shows through Observe; the model is
// written back into the view only when it differs from that report, so a
// native caret or selection is left alone while the user types.
type Binding struct {
	shown map[string]string
}

// NewBinding returns an empty binding.
func NewBinding() *Binding {
	return &Binding{shown: make(map[string]string)}
}

// Observe records the text the view currently shows for a block.
func (b *Binding) Observe(id, text string) {
	b.shown[id] = text
}

// Reconcile compares the model text with what the view last showed. When
// they differ the view must be overwritten with model; the binding then
// records model as shown.
func (b *Binding) Reconcile(id, model string) (overwrite bool) {
	if shown, ok := b.shown[id]; ok && shown == model {
		return false
	}
	b.shown[id] = model
	return true
}

// Retain forgets blocks for which keep returns false.
func (b *Binding) Retain(keep func(id string) bool) {
	for id := range b.shown {
		if !keep(id) {
			delete(b.shown, id)
		}
	}
}
