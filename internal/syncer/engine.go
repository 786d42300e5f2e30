// Package syncer keeps a Document in step with the content value held by an
// external owner: local mutations are coalesced into one debounced
// emission, and supplied values overwrite the Document only when they are
// not an echo of what the engine itself emitted.
package syncer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"taskdoc/internal/document"
	"taskdoc/internal/domain"
)

// DefaultDelay is the quiet period before an emission.
const DefaultDelay = 100 * time.Millisecond

// DebounceFunc returns a function that runs the latest f it was given
// once calls stop arriving. debounce.New is the production factory.
type DebounceFunc func(after time.Duration) func(f func())

// Options configures an Engine. The zero value is usable.
type Options struct {
	Delay    time.Duration
	Debounce DebounceFunc
	IDFunc   document.IDFunc
	Logger   *slog.Logger
}

// Engine owns one Document for one editor session.
type Engine struct {
	mu       sync.Mutex
	doc      *document.Document
	opts     []document.Option
	emit     func(content string)
	schedule func(f func())
	log      *slog.Logger

	lastEmitted  []domain.Block
	lastSupplied string
	supplied     bool
	pending      bool
	closed       bool
}

// New parses content and returns an engine that calls emit with the
// serialized Document after each burst of mutations.
func New(content string, emit func(content string), o Options) *Engine {
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.Debounce == nil {
		o.Debounce = debounce.New
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	var opts []document.Option
	if o.IDFunc != nil {
		opts = append(opts, document.WithIDFunc(o.IDFunc))
	}

	doc, format := document.ParseContent(content, opts...)
	e := &Engine{
		doc:          doc,
		opts:         opts,
		emit:         emit,
		schedule:     o.Debounce(o.Delay),
		log:          o.Logger.With("component", "syncer"),
		lastEmitted:  doc.Blocks(),
		lastSupplied: content,
		supplied:     true,
	}
	if format == document.FormatPlainText {
		e.log.Debug("content is not block JSON, loaded as plain text", "len", len(content))
	}
	return e
}

// Mutate runs fn with exclusive access to the Document. A true return
// schedules an emission.
func (e *Engine) Mutate(fn func(d *document.Document) bool) {
	e.mu.Lock()
	changed := fn(e.doc)
	if changed && !e.closed {
		e.pending = true
		e.schedule(e.fire)
	}
	e.mu.Unlock()
}

// View runs fn with exclusive access to the Document. fn must not keep d.
func (e *Engine) View(fn func(d *document.Document)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.doc)
}

// Blocks returns a snapshot of the Document.
func (e *Engine) Blocks() []domain.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Blocks()
}

// Supply hands the engine a content value from the external owner and
// reports whether the Document was overwritten.
func (e *Engine) Supply(content string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.supplied && content == e.lastSupplied {
		return false
	}
	e.lastSupplied = content
	e.supplied = true

	next, format := document.ParseContent(content, e.opts...)
	if document.Equal(next.Blocks(), e.lastEmitted) {
		return false
	}
	if format == document.FormatPlainText {
		e.log.Debug("supplied content is not block JSON, wrapping as paragraph", "len", len(content))
	}

	e.doc.Replace(next)
	e.lastEmitted = next.Blocks()
	return true
}

// Rejected records that the owner did not keep the last emission and now
// holds content. The Document is left alone; if it differs from content
// the next Flush or mutation emits it again.
func (e *Engine) Rejected(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	held, _ := document.ParseContent(content, e.opts...)
	e.lastEmitted = held.Blocks()
	e.lastSupplied = content
	e.supplied = true
	if !document.Equal(e.doc.Blocks(), e.lastEmitted) {
		e.pending = true
	}
}

// Flush emits right away if an emission is pending.
func (e *Engine) Flush() {
	e.mu.Lock()
	if !e.pending || e.closed {
		e.mu.Unlock()
		return
	}
	e.schedule(func() {})
	e.mu.Unlock()
	e.fire()
}

// Close drops any pending emission. Later mutations still apply but are
// never emitted.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.pending = false
	e.schedule(func() {})
}

// LastEmitted returns the records most recently emitted or adopted from
// the external owner.
func (e *Engine) LastEmitted() []domain.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Block(nil), e.lastEmitted...)
}

func (e *Engine) fire() {
	e.mu.Lock()
	if !e.pending || e.closed {
		e.mu.Unlock()
		return
	}
	e.pending = false
	blocks := e.doc.Blocks()
	if document.Equal(blocks, e.lastEmitted) {
		e.mu.Unlock()
		return
	}
	content := e.doc.Serialize()
	e.lastEmitted = blocks
	// The owner may now legitimately supply an older value again, for
	// instance when it reverts a failed save.
	e.supplied = false
	e.mu.Unlock()

	e.emit(content)
}
