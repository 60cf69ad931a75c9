// Package rating implements the Rating Serializer (spec §4.8): a
// rating-pending queue that orders rating updates across overlapping games
// by start-time so that two games sharing a player never rate out of
// order.
//
// Grounded on queue-service/matchmaker.go's queue-map-plus-mutex-plus-
// background-drain pattern, repurposed from matchmaking quality scoring
// (a Non-goal, spec §1) to rating-dependency ordering.
package rating

import (
	"sort"
	"sync"
	"time"

	"github.com/faforever/game-session-engine/internal/model"
)

// Applier calls out to the rating collaborator for one game.
type Applier func(g *model.Game, ratingType model.RatingType) error

// Queue holds games that have finished but may still have a
// rating-dependent predecessor still PLAYING.
type Queue struct {
	mu      sync.Mutex
	pending map[int]*model.Game

	isLadder1v1 func(featuredMod string) bool
	apply       Applier
	onApplied   func(*model.Game)
}

// New constructs an empty rating-pending queue.
func New(isLadder1v1 func(string) bool, apply Applier, onApplied func(*model.Game)) *Queue {
	return &Queue{
		pending:     map[int]*model.Game{},
		isLadder1v1: isLadder1v1,
		apply:       apply,
		onApplied:   onApplied,
	}
}

// Drain re-scans the pending queue without adding to it, applying every
// game that no longer has a rating-dependent predecessor in active.
func (q *Queue) Drain(active []*model.Game) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.drainLocked(active)
}

// Enqueue adds a just-ended game to the pending queue and drains.
func (q *Queue) Enqueue(g *model.Game, active []*model.Game) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[g.ID] = g
	q.drainLocked(active)
}

func (q *Queue) drainLocked(active []*model.Game) {
	ordered := make([]*model.Game, 0, len(q.pending))
	for _, g := range q.pending {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return startTimeOf(ordered[i]).Before(startTimeOf(ordered[j]))
	})

	for _, g := range ordered {
		if hasRatingDependentPredecessor(g, active) {
			continue
		}
		ratingType := model.RatingGlobal
		if q.isLadder1v1(g.FeaturedMod) {
			ratingType = model.RatingLadder1v1
		}
		if err := q.apply(g, ratingType); err != nil {
			// Persistence/collaborator errors propagate to the caller's
			// logging path via onApplied's absence; the game stays queued
			// and will be retried on the next drain.
			continue
		}
		delete(q.pending, g.ID)
		if q.onApplied != nil {
			q.onApplied(g)
		}
	}
}

func startTimeOf(g *model.Game) time.Time {
	if g.StartTime == nil {
		return time.Time{}
	}
	return *g.StartTime
}

// hasRatingDependentPredecessor reports whether any game in active is
// PLAYING, started strictly before g, and shares a player with g (spec
// §4.8's "rating-dependent" definition).
//
// active comes from registry.Snapshot, which hands back the live *model.Game
// pointers still in the registry, so other's fields are read under its own
// RWMutex rather than g's: some other goroutine may be mid-JoinGame,
// mid-UpdatePlayerGameState or mid-ReportGameEnded on it right now. g itself
// is read without taking its lock: the game being enqueued has its per-game
// mutex held by the caller (runEndProcessingLocked also holds its write
// lock; EnforceRating does not), and any other game still pending is
// already ENDED.
func hasRatingDependentPredecessor(g *model.Game, active []*model.Game) bool {
	gStart := startTimeOf(g)
	for _, other := range active {
		if other.ID == g.ID {
			continue
		}

		other.RLock()
		playing := other.State == model.GamePlaying
		otherStart := other.StartTime
		shares := sharesPlayerLocked(g, other)
		other.RUnlock()

		if !playing || otherStart == nil || !otherStart.Before(gStart) {
			continue
		}
		if shares {
			return true
		}
	}
	return false
}

// sharesPlayerLocked assumes the caller already holds b's read lock; a is
// the pending game from hasRatingDependentPredecessor, read unlocked.
func sharesPlayerLocked(a, b *model.Game) bool {
	for playerID := range a.PlayerStats {
		if _, ok := b.PlayerStats[playerID]; ok {
			return true
		}
	}
	return false
}
