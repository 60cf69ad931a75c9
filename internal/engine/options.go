// options.go implements updateGameOption, updatePlayerOption,
// updateAiOption, clearSlot, reportDesync, updateGameMods and
// updateGameModsCount (spec §4.5).
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/apperror"
	"github.com/faforever/game-session-engine/internal/model"
	"github.com/faforever/game-session-engine/internal/options"
)

// hostGuard resolves the caller's current Game and verifies it is the
// host, per spec §4.5 ("All option mutations require the caller to be the
// host of its current-game"). Missing current-game is telemetry-plane: it
// is logged and silently ignored, returning (nil, nil) rather than an
// error (spec §4.5, §7).
func (e *Engine) hostGuard(player *model.Player, requireOpen bool) (*model.Game, error) {
	gameID, ok := player.CurrentGame()
	if !ok {
		e.logger.Debug("option update from player with no current game, ignored", zap.Int("playerId", player.ID))
		return nil, nil
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		e.logger.Debug("option update for game no longer in registry, ignored", zap.Int("gameId", gameID))
		return nil, nil
	}
	if !g.IsHost(player.ID) {
		return nil, apperror.New(apperror.HostOnlyOption, "player %d is not the host of game %d", player.ID, gameID)
	}
	if requireOpen && g.State != model.GameOpen {
		return nil, apperror.New(apperror.InvalidGameState, "game %d is not OPEN", gameID)
	}
	return g, nil
}

// UpdateGameOption applies a global option update (spec §4.5).
func (e *Engine) UpdateGameOption(player *model.Player, key string, value model.OptionValue) error {
	g, err := e.hostGuard(player, false)
	if err != nil || g == nil {
		return err
	}

	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	if err := options.ApplyGlobalOption(g, key, value); err != nil {
		e.logger.Debug("option value rejected, ignored", zap.String("key", key), zap.Error(err))
		return nil
	}
	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

// UpdatePlayerOption applies a player-scoped option update (spec §4.5).
func (e *Engine) UpdatePlayerOption(player *model.Player, targetPlayerID int, key string, value model.OptionValue) error {
	g, err := e.hostGuard(player, true)
	if err != nil || g == nil {
		return err
	}

	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	options.ApplyPlayerOption(g, targetPlayerID, key, value)
	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

// UpdateAiOption applies an AI-scoped option update (spec §4.5).
func (e *Engine) UpdateAiOption(player *model.Player, aiName string, key string, value model.OptionValue) error {
	g, err := e.hostGuard(player, true)
	if err != nil || g == nil {
		return err
	}

	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	if !options.ApplyAIOption(g, aiName, key, value) {
		e.logger.Debug("non-Army AI option key dropped", zap.String("ai", aiName), zap.String("key", key))
		return nil
	}
	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

// ClearSlot removes every player-options entry for slotID (spec §4.5).
func (e *Engine) ClearSlot(player *model.Player, slotID int) error {
	g, err := e.hostGuard(player, true)
	if err != nil || g == nil {
		return err
	}

	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	options.ClearSlot(g, slotID)
	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

// ReportDesync increments a game's desync counter; feeds the DESYNC
// validity voter (spec §4.7).
func (e *Engine) ReportDesync(player *model.Player) {
	gameID, ok := player.CurrentGame()
	if !ok {
		e.logger.Debug("desync report from player with no current game, ignored", zap.Int("playerId", player.ID))
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

	g.DesyncCounter++
}

// UpdateGameMods sets the sim-mod list bound to a game.
func (e *Engine) UpdateGameMods(ctx context.Context, player *model.Player, uids []string) error {
	g, err := e.hostGuard(player, false)
	if err != nil || g == nil {
		return err
	}

	versions, err := e.collab.ModService.FindModVersionsByUIDs(ctx, uids)
	if err != nil {
		e.logger.Warn("FindModVersionsByUIDs failed", zap.Error(err))
		return nil
	}

	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	g.SimMods = versions
	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

// UpdateGameModsCount is a transport-sourced hint used only to detect
// desync in sim-mod list length; it does not mutate the sim-mod list
// itself (which arrives separately via UpdateGameMods with full uids).
func (e *Engine) UpdateGameModsCount(player *model.Player, count int) error {
	g, err := e.hostGuard(player, false)
	if err != nil || g == nil {
		return err
	}

	g.RLock()
	mismatch := len(g.SimMods) != count
	gameID := g.ID
	g.RUnlock()

	if mismatch {
		e.logger.Warn("game mods count mismatch", zap.Int("gameId", gameID), zap.Int("reported", count))
	}
	return nil
}
