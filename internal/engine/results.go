// results.go implements reportArmyScore, reportArmyOutcome and
// reportArmyStatistics (spec §4.6, §6).
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/model"
	"github.com/faforever/game-session-engine/internal/options"
	"github.com/faforever/game-session-engine/internal/reconcile"
)

func (e *Engine) recordReporter(g *model.Game, reporterID int) map[int]model.ArmyResult {
	bucket, ok := g.ReportedArmyResults[reporterID]
	if !ok {
		bucket = map[int]model.ArmyResult{}
		g.ReportedArmyResults[reporterID] = bucket
		g.ReporterOrder = append(g.ReporterOrder, reporterID)
	}
	return bucket
}

// ReportArmyScore updates the reporter's ArmyResult for armyID, preserving
// any existing outcome (spec §4.6). Reports for an unknown army id are
// logged and dropped.
func (e *Engine) ReportArmyScore(reporter *model.Player, armyID int, score int) {
	gameID, ok := reporter.CurrentGame()
	if !ok {
		return
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		return
	}

	mu := e.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	if !options.KnownArmyIDs(g)[armyID] {
		e.logger.Debug("score report for unknown army, dropped", zap.Int("gameId", gameID), zap.Int("armyId", armyID))
		return
	}

	bucket := e.recordReporter(g, reporter.ID)
	reconcile.ApplyScore(bucket, armyID, score)
}

// ReportArmyOutcome replaces the reporter's whole ArmyResult for armyID
// (spec §4.6).
func (e *Engine) ReportArmyOutcome(reporter *model.Player, armyID int, outcome model.Outcome, score int) {
	gameID, ok := reporter.CurrentGame()
	if !ok {
		return
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		return
	}

	mu := e.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	if !options.KnownArmyIDs(g)[armyID] {
		e.logger.Debug("outcome report for unknown army, dropped", zap.Int("gameId", gameID), zap.Int("armyId", armyID))
		return
	}

	bucket := e.recordReporter(g, reporter.ID)
	reconcile.ApplyOutcome(bucket, armyID, outcome, score)
}

// ReportArmyStatistics forwards a player's per-army statistics to the
// army-statistics collaborator. A failure is logged and swallowed — stats
// processing must never block a game from closing (spec §4.6 step 7,
// §7).
func (e *Engine) ReportArmyStatistics(ctx context.Context, player *model.Player) {
	gameID, ok := player.CurrentGame()
	if !ok {
		return
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		return
	}
	if err := e.collab.ArmyStatisticsService.Process(ctx, player.ID, g); err != nil {
		e.logger.Warn("army statistics processing failed", zap.Int("playerId", player.ID), zap.Int("gameId", gameID), zap.Error(err))
	}
}
