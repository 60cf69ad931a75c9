// player_state.go implements updatePlayerGameState, removePlayer,
// restoreGameSession, disconnectPlayerFromGame and mutuallyAgreeDraw
// (spec §4.3, §4.4, §4.10, §4.12).
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/apperror"
	"github.com/faforever/game-session-engine/internal/model"
	"github.com/faforever/game-session-engine/internal/playerstate"
)

// UpdatePlayerGameState drives a player's per-game state forward (spec
// §4.3).
func (e *Engine) UpdatePlayerGameState(ctx context.Context, newState model.PlayerGameState, player *model.Player) error {
	if newState == model.PlayerIdle {
		e.logger.Debug("ignoring IDLE player-game state report", zap.Int("playerId", player.ID))
		return nil
	}

	gameID, ok := player.CurrentGame()
	if !ok {
		return apperror.New(apperror.NotInAGame, "player %d has no current game", player.ID)
	}

	g, ok := e.registry.Find(gameID)
	if !ok {
		return apperror.New(apperror.NotInAGame, "player %d's game %d no longer exists", player.ID, gameID)
	}

	mu := e.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	from := player.State()
	if !playerstate.CanTransition(from, newState) {
		return apperror.New(apperror.InvalidPlayerGameStateTransition, "player %d: %s -> %s is not a legal transition", player.ID, from, newState)
	}

	switch newState {
	case model.PlayerLobby:
		e.onPlayerReachedLobby(ctx, g, player)
	case model.PlayerLaunching:
		e.onHostReachedLaunching(ctx, g, player)
	case model.PlayerEnded:
		e.reportGameEndedLocked(ctx, g, player)
		player.SetState(model.PlayerEnded)
		return nil
	case model.PlayerClosed:
		e.removePlayerLocked(ctx, g, player)
		return nil
	}

	player.SetState(newState)
	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

func (e *Engine) onPlayerReachedLobby(ctx context.Context, g *model.Game, player *model.Player) {
	if g.IsHost(player.ID) {
		e.transitionGameState(g, model.GameOpen)
		if err := e.collab.ClientChannel.HostGame(ctx, g, player); err != nil {
			e.logger.Warn("hostGame failed", zap.Int("gameId", g.ID), zap.Error(err))
		}
	} else {
		if err := e.collab.ClientChannel.ConnectToHost(ctx, player, g); err != nil {
			e.logger.Warn("connectToHost failed", zap.Int("gameId", g.ID), zap.Error(err))
		}
		for peerID := range g.ConnectedPlayers {
			if peerID == player.ID {
				continue
			}
			peer, ok := e.player(peerID)
			if !ok {
				continue
			}
			if err := e.collab.ClientChannel.ConnectToPeer(ctx, player, peer, true); err != nil {
				e.logger.Warn("connectToPeer failed", zap.Int("gameId", g.ID), zap.Error(err))
			}
			if err := e.collab.ClientChannel.ConnectToPeer(ctx, peer, player, false); err != nil {
				e.logger.Warn("connectToPeer failed", zap.Int("gameId", g.ID), zap.Error(err))
			}
		}
	}

	g.ConnectedPlayers[player.ID] = true

	ratingType := model.RatingGlobal
	if e.isLadder1v1(g.FeaturedMod) {
		ratingType = model.RatingLadder1v1
	}
	var mean, deviation float64
	var err error
	if ratingType == model.RatingLadder1v1 {
		mean, deviation, err = e.collab.RatingService.InitLadder1v1Rating(ctx, player.ID)
	} else {
		mean, deviation, err = e.collab.RatingService.InitGlobalRating(ctx, player.ID)
	}
	if err != nil {
		e.logger.Warn("rating init failed", zap.Int("playerId", player.ID), zap.Error(err))
	}
	g.PlayerStats[player.ID] = &model.GamePlayerStats{PlayerID: player.ID, Mean: mean, Deviation: deviation}

	if fut, ok := e.takeJoinFuture(player.ID); ok {
		fut.Complete(g)
	}
}

func (e *Engine) onHostReachedLaunching(ctx context.Context, g *model.Game, player *model.Player) {
	if !g.IsHost(player.ID) {
		return
	}
	now := time.Now()
	e.transitionGameState(g, model.GamePlaying)
	g.StartTime = &now

	for playerID, stats := range g.PlayerStats {
		bag := g.PlayerOptions[playerID]
		stats.Team = optInt(bag, model.OptionTeam)
		stats.Faction = optInt(bag, model.OptionFaction)
		stats.Color = optInt(bag, model.OptionColor)
		stats.StartSpot = optInt(bag, model.OptionStartSpot)
	}

	if err := e.collab.GameRepository.Persist(ctx, g); err != nil {
		e.logger.Error("persist on launch failed", zap.Int("gameId", g.ID), zap.Error(err))
	}
}

func optInt(bag model.OptionBag, key string) int {
	if bag == nil {
		return 0
	}
	v, ok := bag[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

// RemovePlayer detaches a player from its current game (spec §4.4).
func (e *Engine) RemovePlayer(ctx context.Context, g *model.Game, player *model.Player) {
	mu := e.gameMutex(g.ID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()
	e.removePlayerLocked(ctx, g, player)
}

// removePlayerLocked assumes the caller already holds g's per-game mutex
// and write lock.
func (e *Engine) removePlayerLocked(ctx context.Context, g *model.Game, player *model.Player) {
	player.SetState(model.PlayerNone)
	player.SetCurrentGame(nil)
	if fut, ok := e.takeJoinFuture(player.ID); ok {
		fut.Cancel()
	}

	delete(g.ConnectedPlayers, player.ID)

	var receivers []*model.Player
	for id := range g.ConnectedPlayers {
		if p, ok := e.player(id); ok {
			receivers = append(receivers, p)
		}
	}
	if err := e.collab.ClientChannel.DisconnectPlayerFromGame(ctx, player.ID, receivers); err != nil {
		e.logger.Warn("disconnectPlayerFromGame (cascade) failed", zap.Int("gameId", g.ID), zap.Error(err))
	}

	if g.State == model.GameOpen && g.IsHost(player.ID) {
		for id := range g.ConnectedPlayers {
			if peer, ok := e.player(id); ok {
				e.removePlayerLocked(ctx, g, peer)
			}
		}
	}

	if len(g.ConnectedPlayers) == 0 {
		switch g.State {
		case model.GameInitializing, model.GameOpen:
			e.transitionGameState(g, model.GameClosed)
			e.registry.Remove(g)
			e.metrics.GamesClosed.WithLabelValues("cancelled_or_abandoned").Inc()
			return
		case model.GamePlaying:
			e.runEndProcessingLocked(ctx, g)
			return
		}
	}

	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
}

// RestoreGameSession reattaches a disconnected participant (spec §4.10).
func (e *Engine) RestoreGameSession(ctx context.Context, player *model.Player, gameID int) error {
	if _, ok := player.CurrentGame(); ok {
		return apperror.New(apperror.AlreadyInGame, "player %d already has a current game", player.ID)
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		return apperror.New(apperror.CantRestoreGameDoesntExist, "game %d does not exist", gameID)
	}

	mu := e.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	if g.State != model.GameOpen && g.State != model.GamePlaying {
		return apperror.New(apperror.CantRestoreGameDoesntExist, "game %d is not restorable (state %s)", gameID, g.State)
	}
	if g.State == model.GamePlaying {
		if _, ok := g.PlayerStats[player.ID]; !ok {
			return apperror.New(apperror.CantRestoreGameNotParticipant, "player %d was not a participant of game %d", player.ID, gameID)
		}
	}

	// Refresh the restoring player's directory record (login, presence)
	// against the upstream source of truth. This is a best-effort sync:
	// a directory miss does not block the restore, since the caller
	// already authenticated this player's socket (spec §6 player
	// directory is informational, not an authorization gate here).
	if e.collab.PlayerDirectory != nil {
		if online, ok := e.collab.PlayerDirectory.GetOnlinePlayer(ctx, player.ID); ok {
			player.Login = online.Login
		}
	}

	player.SetCurrentGame(&gameID)
	g.ConnectedPlayers[player.ID] = true

	player.SetState(model.PlayerInitializing)
	player.SetState(model.PlayerLobby)
	if g.State == model.GamePlaying {
		player.SetState(model.PlayerLaunching)
	}

	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return nil
}

// DisconnectPlayerFromGame instructs every other connected peer to drop
// its connection to target; this is a transport-level instruction only,
// it does not remove target from the Game (spec §4.12).
func (e *Engine) DisconnectPlayerFromGame(ctx context.Context, requester *model.Player, targetID int) error {
	gameID, ok := requester.CurrentGame()
	if !ok {
		return apperror.New(apperror.NotInAGame, "player %d has no current game", requester.ID)
	}
	g, ok := e.registry.Find(gameID)
	if !ok {
		return apperror.New(apperror.NoSuchGame, "no such game %d", gameID)
	}

	g.RLock()
	var receivers []*model.Player
	for id := range g.ConnectedPlayers {
		if id == targetID {
			continue
		}
		if p, ok := e.player(id); ok {
			receivers = append(receivers, p)
		}
	}
	g.RUnlock()

	return e.collab.ClientChannel.DisconnectPlayerFromGame(ctx, targetID, receivers)
}

// MutuallyAgreeDraw records a player's vote to end the game as a draw
// (spec §4.11).
func (e *Engine) MutuallyAgreeDraw(ctx context.Context, player *model.Player) error {
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

	if g.State != model.GamePlaying {
		return apperror.New(apperror.InvalidGameState, "game %d is not PLAYING", gameID)
	}
	stats, ok := g.PlayerStats[player.ID]
	if !ok || stats.Team == model.ObserversTeamID {
		return apperror.New(apperror.InvalidGameState, "player %d is not a real participant of game %d", player.ID, gameID)
	}

	g.MutualDrawAcceptors[player.ID] = true

	allAccepted := true
	for id, s := range g.PlayerStats {
		if s.Team == model.ObserversTeamID {
			continue
		}
		if !g.ConnectedPlayers[id] {
			continue
		}
		if !g.MutualDrawAcceptors[id] {
			allAccepted = false
			break
		}
	}
	if allAccepted {
		g.MutualDraw = true
	}
	return nil
}
