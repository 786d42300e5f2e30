package service

import (
	"context"
	"sync"
)

// ExportedSaveGuard is an exported alias so _test packages can test the guard.
type ExportedSaveGuard = saveGuard

// ─────────────────────────────────────────────────────────────
// saveGuard — at most one in-flight save per task
// ─────────────────────────────────────────────────────────────

// saveGuard marks tasks whose description is being persisted so a second
// save for the same task waits its turn instead of racing the first.
type saveGuard struct {
	mu     sync.Mutex
	saving map[string]struct{}
	wg     sync.WaitGroup
}

// TryLock marks taskID as saving. It returns false if a save is already
// in flight for that task.
func (g *saveGuard) TryLock(taskID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saving == nil {
		g.saving = make(map[string]struct{})
	}
	if _, ok := g.saving[taskID]; ok {
		return false
	}
	g.saving[taskID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock ends the save for taskID. Must follow a successful TryLock.
func (g *saveGuard) Unlock(taskID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.saving, taskID)
	g.wg.Done()
}

// Saving reports whether a save for taskID is in flight.
func (g *saveGuard) Saving(taskID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.saving[taskID]
	return ok
}

// WaitAll blocks until every in-flight save completes or ctx is cancelled.
func (g *saveGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
