package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faforever/game-session-engine/internal/model"
)

func TestAllocateID_StartsAfterSeed(t *testing.T) {
	r := New(41)
	assert.Equal(t, 42, r.AllocateID())
	assert.Equal(t, 43, r.AllocateID())
}

func TestInsertFindRemove(t *testing.T) {
	r := New(0)
	g := model.NewGame(1, "t", "faf", model.VisibilityPublic, 10, model.LobbyModeDefault)

	r.Insert(g)
	found, ok := r.Find(1)
	assert.True(t, ok)
	assert.Same(t, g, found)

	r.Remove(g)
	_, ok = r.Find(1)
	assert.False(t, ok)
}

func TestSnapshotAndCount(t *testing.T) {
	r := New(0)
	r.Insert(model.NewGame(1, "a", "faf", model.VisibilityPublic, 1, model.LobbyModeDefault))
	r.Insert(model.NewGame(2, "b", "faf", model.VisibilityPublic, 2, model.LobbyModeDefault))

	assert.Equal(t, 2, r.Count())
	assert.Len(t, r.Snapshot(), 2)
}

func TestAllocateID_ConcurrentCallersNeverCollide(t *testing.T) {
	r := New(0)
	const n = 200
	ids := make(chan int, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.AllocateID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
