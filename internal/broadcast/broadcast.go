// Package broadcast implements the Dirty-Set debounced broadcaster (spec
// §4.9): coalesces multiple dirty marks for the same game id arriving
// within [minDelay, maxDelay] into a single last-write-wins snapshot
// publish.
//
// Grounded on DatabaseManagerImpl.UpdateMatchState (Redis snapshot cache)
// and RedisRepository.Publish/Subscribe from shared/database/interfaces.go.
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/faforever/game-session-engine/internal/model"
)

// Snapshot is the wire-visible projection of a Game (spec §4.9): never
// includes the password itself, only whether one is set.
type Snapshot struct {
	ID              int
	Title           string
	Visibility      model.Visibility
	PasswordPresent bool
	State           model.GameState
	FeaturedMod     string
	SimMods         []model.ModVersionRef
	MapFolder       string
	HostLogin       string
	Players         []SnapshotPlayer
	MaxPlayers      int
	StartTime       *time.Time
	MinRating       *float64
	MaxRating       *float64
}

// SnapshotPlayer is one entry in a Snapshot's player list.
type SnapshotPlayer struct {
	ID    int
	Login string
	Team  int
}

// Publisher delivers a coalesced snapshot to subscribers (e.g. a Redis
// Pub/Sub channel keyed by game id).
type Publisher interface {
	Publish(ctx context.Context, gameID int, snap Snapshot) error
}

// Broadcaster coalesces dirty marks per game id and flushes snapshots to a
// Publisher after the configured delay window.
type Broadcaster struct {
	mu        sync.Mutex
	pending   map[int]*pendingEntry
	publisher Publisher
}

type pendingEntry struct {
	timer    *time.Timer
	snapshot Snapshot
}

// New constructs a Broadcaster that publishes through pub.
func New(pub Publisher) *Broadcaster {
	return &Broadcaster{
		pending:   map[int]*pendingEntry{},
		publisher: pub,
	}
}

// MarkDirty coalesces snap into the pending entry for its game id. If an
// entry is already pending, its snapshot is overwritten (last-write-wins)
// and its timer is left running — it is not reset — so a burst of dirty
// marks bounded by maxDelay still flushes by maxDelay even under continued
// activity. minDelay=maxDelay=0 forces an immediate synchronous flush,
// which the state machine uses for its own transitions (spec §4.9).
func (b *Broadcaster) MarkDirty(gameID int, snap Snapshot, minDelay, maxDelay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if minDelay == 0 && maxDelay == 0 {
		delete(b.pending, gameID)
		b.flush(gameID, snap)
		return
	}

	entry, exists := b.pending[gameID]
	if exists {
		entry.snapshot = snap
		return
	}

	entry = &pendingEntry{snapshot: snap}
	entry.timer = time.AfterFunc(minDelay, func() {
		b.mu.Lock()
		cur, ok := b.pending[gameID]
		if !ok {
			b.mu.Unlock()
			return
		}
		delete(b.pending, gameID)
		toSend := cur.snapshot
		b.mu.Unlock()
		b.flush(gameID, toSend)
	})
	b.pending[gameID] = entry

	if maxDelay > minDelay {
		time.AfterFunc(maxDelay, func() {
			b.mu.Lock()
			cur, ok := b.pending[gameID]
			if !ok {
				b.mu.Unlock()
				return
			}
			cur.timer.Stop()
			delete(b.pending, gameID)
			toSend := cur.snapshot
			b.mu.Unlock()
			b.flush(gameID, toSend)
		})
	}
}

func (b *Broadcaster) flush(gameID int, snap Snapshot) {
	_ = b.publisher.Publish(context.Background(), gameID, snap)
}

// BuildSnapshot projects a Game into its wire-visible Snapshot. Caller must
// hold at least a read lock on g.
func BuildSnapshot(g *model.Game, hostLogin string, players []SnapshotPlayer) Snapshot {
	return Snapshot{
		ID:              g.ID,
		Title:           g.Title,
		Visibility:      g.Visibility,
		PasswordPresent: g.Password != "",
		State:           g.State,
		FeaturedMod:     g.FeaturedMod,
		SimMods:         g.SimMods,
		MapFolder:       g.MapFolder,
		HostLogin:       hostLogin,
		Players:         players,
		MaxPlayers:      g.MaxPlayers,
		StartTime:       g.StartTime,
		MinRating:       g.MinRating,
		MaxRating:       g.MaxRating,
	}
}
