package collab

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/model"
)

type fakeFetcher struct {
	calls int
	by    map[int]*model.Player
	err   error
}

func (f *fakeFetcher) FetchOnlinePlayer(ctx context.Context, id int) (*model.Player, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	p, ok := f.by[id]
	return p, ok, nil
}

func TestGetOnlinePlayer_CachesAcrossCalls(t *testing.T) {
	fetcher := &fakeFetcher{by: map[int]*model.Player{1: model.NewPlayer(1, "alice")}}
	dir := NewCachedPlayerDirectory(fetcher, time.Minute, zap.NewNop())

	p1, ok := dir.GetOnlinePlayer(context.Background(), 1)
	require.True(t, ok)
	assert.Equal(t, "alice", p1.Login)

	p2, ok := dir.GetOnlinePlayer(context.Background(), 1)
	require.True(t, ok)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, fetcher.calls, "second lookup within ttl must be served from cache")
}

func TestGetOnlinePlayer_RefetchesAfterExpiry(t *testing.T) {
	fetcher := &fakeFetcher{by: map[int]*model.Player{1: model.NewPlayer(1, "alice")}}
	dir := NewCachedPlayerDirectory(fetcher, -time.Second, zap.NewNop())

	_, _ = dir.GetOnlinePlayer(context.Background(), 1)
	_, _ = dir.GetOnlinePlayer(context.Background(), 1)

	assert.Equal(t, 2, fetcher.calls, "an already-expired ttl must never serve from cache")
}

func TestGetOnlinePlayer_UnknownPlayerNotCached(t *testing.T) {
	fetcher := &fakeFetcher{by: map[int]*model.Player{}}
	dir := NewCachedPlayerDirectory(fetcher, time.Minute, zap.NewNop())

	_, ok := dir.GetOnlinePlayer(context.Background(), 7)
	assert.False(t, ok)
}

func TestGetOnlinePlayer_FetchErrorReturnsNotFound(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream unavailable")}
	dir := NewCachedPlayerDirectory(fetcher, time.Minute, zap.NewNop())

	_, ok := dir.GetOnlinePlayer(context.Background(), 1)
	assert.False(t, ok)
}
