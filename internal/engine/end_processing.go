// end_processing.go implements reportGameEnded, end-of-game processing
// (spec §4.6), enforceRating and updateUnfinishedGamesValidity.
package engine

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/faforever/game-session-engine/internal/apperror"
	"github.com/faforever/game-session-engine/internal/collab"
	"github.com/faforever/game-session-engine/internal/model"
	"github.com/faforever/game-session-engine/internal/options"
	"github.com/faforever/game-session-engine/internal/reconcile"
	"github.com/faforever/game-session-engine/internal/validity"
)

// ReportGameEnded records the reporter in game-ended-reporters; once every
// currently-connected player has reported, end processing runs (spec
// §4.6). Idempotent: repeated calls by the same player are no-ops.
func (e *Engine) ReportGameEnded(ctx context.Context, player *model.Player) error {
	gameID, ok := player.CurrentGame()
	if !ok {
		return apperror.New(apperror.NotInAGame, "player %d has no current game", player.ID)
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		return apperror.New(apperror.NoSuchGame, "no such game %d", gameID)
	}

	mu := e.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	e.reportGameEndedLocked(ctx, g, player)
	return nil
}

func (e *Engine) reportGameEndedLocked(ctx context.Context, g *model.Game, player *model.Player) {
	if g.GameEndedReporters[player.ID] {
		return // idempotent: repeated report is a no-op (spec §8)
	}
	g.GameEndedReporters[player.ID] = true

	allReported := true
	for id := range g.ConnectedPlayers {
		if !g.GameEndedReporters[id] {
			allReported = false
			break
		}
	}
	if allReported {
		e.runEndProcessingLocked(ctx, g)
	}
}

// runEndProcessingLocked assumes the caller already holds g's per-game
// mutex and write lock. Idempotent: if state is already ENDED it returns
// immediately (spec §4.6, §8).
func (e *Engine) runEndProcessingLocked(ctx context.Context, g *model.Game) {
	if g.State == model.GameEnded || g.State == model.GameClosed {
		return
	}

	wasPlaying := g.State == model.GamePlaying

	now := time.Now()
	g.EndTime = &now
	e.transitionGameState(g, model.GameEnded)

	if wasPlaying {
		e.adjudicateValidityLocked(ctx, g)

		e.ratingQueue.Enqueue(g, e.activeSnapshot())

		if g.MapFolder != "" {
			if err := e.collab.MapService.IncrementTimesPlayed(ctx, g.MapFolder); err != nil {
				e.logger.Warn("incrementTimesPlayed failed", zap.String("map", g.MapFolder), zap.Error(err))
			}
		}

		truth, ties := reconcile.MostReportedPerArmy(g.ReportedArmyResults, g.ReporterOrder, g.ConnectedPlayers)
		if ties > 0 {
			e.metrics.ReconciliationTies.Add(float64(ties))
		}
		results := reconcile.PlayerResults(g.PlayerStats, func(playerID int) (int, bool) {
			return options.ArmyForPlayer(g, playerID)
		}, truth)

		if err := e.collab.ClientChannel.BroadcastGameResult(ctx, collab.GameResultMessage{
			GameID:  g.ID,
			Draw:    reconcile.AnyDraw(results),
			Results: results,
		}); err != nil {
			e.logger.Warn("broadcastGameResult failed", zap.Int("gameId", g.ID), zap.Error(err))
		}

		for playerID, result := range results {
			stats, ok := g.PlayerStats[playerID]
			if !ok {
				continue
			}
			score := result.Score
			stats.Score = &score
			stats.ScoreTime = &now
		}

		if g.Validity == model.ValidityValid || g.RatingEnforced {
			e.postDivisionResultsLocked(ctx, g, results)
		}

		if err := e.collab.GameRepository.Save(ctx, g); err != nil {
			e.logger.Error("persist at end processing failed", zap.Int("gameId", g.ID), zap.Error(err))
		}

		// Stats post-processing is isolated per player and must never let
		// one slow/failing collaborator call delay the others, so they run
		// concurrently through an errgroup (spec §4.6 step 7, §7) rather
		// than the teacher's single goroutine-per-match pattern.
		var eg errgroup.Group
		for playerID := range g.PlayerStats {
			playerID := playerID
			if player, ok := e.player(playerID); ok {
				eg.Go(func() error {
					e.ReportArmyStatistics(ctx, player)
					return nil
				})
			}
		}
		_ = eg.Wait()
	}

	if len(g.ConnectedPlayers) == 0 {
		e.transitionGameState(g, model.GameClosed)
		e.registry.Remove(g)
		e.metrics.GamesClosed.WithLabelValues(closeCause(wasPlaying)).Inc()
		return
	}

	e.markDirty(g, 0, 0)
}

func closeCause(wasPlaying bool) string {
	if wasPlaying {
		return "end_processed"
	}
	return "ended_without_launch"
}

func (e *Engine) postDivisionResultsLocked(ctx context.Context, g *model.Game, results map[int]model.ArmyResult) {
	playerIDs := make([]int, 0, len(results))
	for id := range results {
		playerIDs = append(playerIDs, id)
	}
	sort.Ints(playerIDs) // each pair is posted as (lower id, higher id)

	var eg errgroup.Group
	for i := 0; i < len(playerIDs); i++ {
		for j := i + 1; j < len(playerIDs); j++ {
			p1, p2 := playerIDs[i], playerIDs[j]
			var winner *int
			if results[p1].Outcome == model.OutcomeVictory {
				winner = &p1
			} else if results[p2].Outcome == model.OutcomeVictory {
				winner = &p2
			}
			eg.Go(func() error {
				if err := e.collab.DivisionService.PostResult(ctx, p1, p2, winner); err != nil {
					e.logger.Warn("postResult failed", zap.Int("gameId", g.ID), zap.Error(err))
				}
				return nil
			})
		}
	}
	_ = eg.Wait()
}

func (e *Engine) adjudicateValidityLocked(ctx context.Context, g *model.Game) {
	modInfo, _, err := e.collab.ModService.GetFeaturedMod(ctx, g.FeaturedMod)
	if err != nil {
		e.logger.Warn("GetFeaturedMod failed during validity adjudication", zap.Error(err))
	}
	coop, _ := e.collab.ModService.IsCoop(ctx, g.FeaturedMod)
	rankable, _ := e.collab.ModService.IsModRanked(ctx, g.FeaturedMod)

	var mapInfo collab.MapInfo
	var mapExists bool
	if g.MapFolder != "" {
		mapInfo, mapExists, _ = e.collab.MapService.FindMap(ctx, g.MapFolder)
	}

	humanCount := 0
	for range g.PlayerStats {
		humanCount++
	}

	hasAI, teamsUnlocked, teamSpawnFixed, civiliansRevealed, difficultyOK, expansionOK := validity.DeriveModeGates(g)

	c := validity.Context{
		Game:                       g,
		FeaturedModRankable:        rankable,
		FeaturedModCoop:            coop,
		RequiredVictoryCond:        modInfo.RequiredVictoryCond,
		MapExists:                  mapExists,
		MapRanked:                  mapInfo.Ranked,
		HumanPlayerCount:           humanCount,
		RankedMinTimeMultiplicator: e.cfg.RankedMinTimeMultiplicator,
		HasAI:                      hasAI,
		TeamsUnlocked:              teamsUnlocked,
		TeamSpawnFixed:             teamSpawnFixed,
		CiviliansRevealed:          civiliansRevealed,
		DifficultyOK:               difficultyOK,
		ExpansionOK:                expansionOK,
	}

	verdict := validity.Adjudicate(c, validity.DefaultVoters())
	g.Validity = verdict
	e.metrics.ValidityVerdicts.WithLabelValues(string(verdict)).Inc()
}

// applyRating acquires g's per-game serialization mutex via TryLock: the
// common case (the just-ended game enqueuing itself) already holds it
// through the calling stack, in which case TryLock fails and this falls
// through (runEndProcessingLocked and EnforceRating both call Enqueue with
// it held). Any other pending game in the queue is very likely idle, so TryLock
// succeeds and this acquires it properly for the duration of the update.
func (e *Engine) applyRating(g *model.Game, ratingType model.RatingType) error {
	mu := e.gameMutex(g.ID)
	if mu.TryLock() {
		defer mu.Unlock()
	}

	if g.Validity != model.ValidityValid && !g.RatingEnforced {
		return nil // rating updates skip unless VALID, unless rating-enforced (spec §4.7)
	}

	err := e.collab.RatingService.UpdateRatings(context.Background(), g.PlayerStats, model.NoTeamID, ratingType)
	if err != nil {
		e.logger.Error("rating update failed", zap.Int("gameId", g.ID), zap.Error(err))
	}
	return err
}

func (e *Engine) onRatingApplied(g *model.Game) {
	if g.Validity != model.ValidityValid && !g.RatingEnforced {
		return // applyRating skipped this game; no update was sent
	}
	e.metrics.RatingsApplied.Inc()
}

// EnforceRating forces a rating update to apply even though validity is
// not VALID (spec §4.7: "unless rating-enforced is set, which forces
// them").
func (e *Engine) EnforceRating(g *model.Game) {
	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	g.RatingEnforced = true
	g.Unlock()

	e.ratingQueue.Enqueue(g, e.activeSnapshot())
}

// UpdateUnfinishedGamesValidity is a recovery-path operation: it bulk-marks
// persisted games that never reached a terminal state, e.g. after a
// crash (spec §6).
func (e *Engine) UpdateUnfinishedGamesValidity(ctx context.Context, v model.Validity) error {
	return e.collab.GameRepository.UpdateUnfinishedGamesValidity(ctx, v)
}
