// Package future implements the single-shot completable future returned by
// createGame/joinGame (spec §4.2, §9): it completes when the relevant Game
// or player reaches the awaited state transition, never from inside a lock
// held across user callbacks.
//
// No literal teacher analog exists; synthesized from Go's close-to-
// broadcast channel idiom, structurally grounded on match-service/
// engine.go's UpdateChan/StateChan fields used for async handoff between
// the public API and the per-match actor loop.
package future

import (
	"context"
	"errors"
	"sync"

	"github.com/faforever/game-session-engine/internal/model"
)

// ErrCancelled is returned by Wait when the future was cancelled, e.g.
// because the waiting player was removed before the game reached the
// awaited state (spec §4.4: "cancel the join future if pending").
var ErrCancelled = errors.New("future cancelled")

// Future is a single-shot container for a *model.Game result.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	result    *model.Game
	err       error
	completed bool
}

// New returns a pending Future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete fulfills the future with g. Only the first call has effect.
func (f *Future) Complete(g *model.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		return
	}
	f.completed = true
	f.result = g
	close(f.done)
}

// Cancel fulfills the future with ErrCancelled. Only the first call (of
// Complete or Cancel) has effect.
func (f *Future) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		return
	}
	f.completed = true
	f.err = ErrCancelled
	close(f.done)
}

// Wait blocks until the future completes, the context is cancelled, or the
// context's deadline passes. Callers must supply their own timeout (spec
// §5: "the engine itself does not time out in-progress joins").
func (f *Future) Wait(ctx context.Context) (*model.Game, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
