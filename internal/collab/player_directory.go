package collab

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/model"
)

// CachedPlayerDirectory implements PlayerDirectory against an upstream
// player/presence service, keeping a short-lived in-memory cache so a
// burst of lookups for the same player (e.g. every reconnect attempt in a
// flaky-network window) doesn't each round-trip upstream.
//
// Grounded on presence-service/presence.go's PresenceManager: the same
// map-plus-RWMutex cache shape, generalized from a push-updated presence
// feed to a pull-through cache in front of a Fetcher.
type CachedPlayerDirectory struct {
	fetch  PlayerFetcher
	logger *zap.Logger
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[int]cachedPlayer
}

type cachedPlayer struct {
	player  *model.Player
	expires time.Time
}

// PlayerFetcher resolves a player record from the upstream directory
// service. Concrete transport (HTTP, gRPC, ...) lives outside this
// package; CachedPlayerDirectory only owns the caching policy.
type PlayerFetcher interface {
	FetchOnlinePlayer(ctx context.Context, id int) (*model.Player, bool, error)
}

// NewCachedPlayerDirectory wraps fetch with a ttl-bounded cache.
func NewCachedPlayerDirectory(fetch PlayerFetcher, ttl time.Duration, logger *zap.Logger) *CachedPlayerDirectory {
	return &CachedPlayerDirectory{
		fetch:  fetch,
		logger: logger,
		ttl:    ttl,
		cache:  make(map[int]cachedPlayer),
	}
}

// GetOnlinePlayer implements collab.PlayerDirectory (spec §6
// playerService.getOnlinePlayer(id)).
func (d *CachedPlayerDirectory) GetOnlinePlayer(ctx context.Context, id int) (*model.Player, bool) {
	if p, ok := d.fromCache(id); ok {
		return p, true
	}

	p, ok, err := d.fetch.FetchOnlinePlayer(ctx, id)
	if err != nil {
		d.logger.Warn("player directory lookup failed", zap.Int("playerId", id), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	d.mu.Lock()
	d.cache[id] = cachedPlayer{player: p, expires: time.Now().Add(d.ttl)}
	d.mu.Unlock()
	return p, true
}

func (d *CachedPlayerDirectory) fromCache(id int) (*model.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.cache[id]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.player, true
}
