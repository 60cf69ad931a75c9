package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faforever/game-session-engine/internal/model"
)

func gameAt(id int, start time.Time, playerIDs ...int) *model.Game {
	g := model.NewGame(id, "t", "faf", model.VisibilityPublic, playerIDs[0], model.LobbyModeDefault)
	g.StartTime = &start
	for _, pid := range playerIDs {
		g.PlayerStats[pid] = &model.GamePlayerStats{PlayerID: pid}
	}
	return g
}

func TestEnqueue_AppliesImmediatelyWhenNoDependency(t *testing.T) {
	var applied []int
	q := New(func(string) bool { return false }, func(g *model.Game, rt model.RatingType) error {
		applied = append(applied, g.ID)
		return nil
	}, nil)

	g := gameAt(1, time.Now(), 10)
	q.Enqueue(g, nil)

	assert.Equal(t, []int{1}, applied)
}

func TestEnqueue_SkipsWhileRatingDependentPredecessorPlaying(t *testing.T) {
	var applied []int
	q := New(func(string) bool { return false }, func(g *model.Game, rt model.RatingType) error {
		applied = append(applied, g.ID)
		return nil
	}, nil)

	earlier := time.Now()
	later := earlier.Add(time.Minute)

	predecessor := gameAt(1, earlier, 10, 20)
	predecessor.State = model.GamePlaying

	g := gameAt(2, later, 10, 30)
	q.Enqueue(g, []*model.Game{predecessor})

	assert.Empty(t, applied, "game 2 shares player 10 with a still-PLAYING earlier game")
}

func TestDrain_AppliesOnceBlockingPredecessorEnds(t *testing.T) {
	applyCalls := map[int]int{}
	q := New(func(string) bool { return false }, func(g *model.Game, rt model.RatingType) error {
		applyCalls[g.ID]++
		return nil
	}, nil)

	earlier := time.Now()
	later := earlier.Add(time.Minute)

	predecessor := gameAt(1, earlier, 10, 20)
	predecessor.State = model.GamePlaying

	g := gameAt(2, later, 10, 30)
	q.Enqueue(g, []*model.Game{predecessor})
	require.Zero(t, applyCalls[2])

	predecessor.State = model.GameEnded
	q.Drain(nil)

	assert.Equal(t, 1, applyCalls[2])
}

func TestEnqueue_SelectsRatingTypeFromIsLadder1v1(t *testing.T) {
	var gotType model.RatingType
	q := New(func(string) bool { return true }, func(g *model.Game, rt model.RatingType) error {
		gotType = rt
		return nil
	}, nil)

	q.Enqueue(gameAt(1, time.Now(), 10), nil)
	assert.Equal(t, model.RatingLadder1v1, gotType)
}

func TestEnqueue_FailedApplyStaysQueuedForRetry(t *testing.T) {
	attempts := 0
	q := New(func(string) bool { return false }, func(g *model.Game, rt model.RatingType) error {
		attempts++
		if attempts == 1 {
			return assert.AnError
		}
		return nil
	}, nil)

	g := gameAt(1, time.Now(), 10)
	q.Enqueue(g, nil)
	assert.Equal(t, 1, attempts)

	q.Drain(nil)
	assert.Equal(t, 2, attempts)
}
