// create_join.go implements createGame and joinGame (spec §4.2).
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/apperror"
	"github.com/faforever/game-session-engine/internal/future"
	"github.com/faforever/game-session-engine/internal/model"
)

// CreateGameRequest bundles createGame's parameters (spec §4.2).
type CreateGameRequest struct {
	Title              string
	FeaturedModName    string
	MapFileName        string
	Password           string
	Visibility         model.Visibility
	MinRating          *float64
	MaxRating          *float64
	Player             *model.Player
	LobbyMode          model.LobbyMode
	PresetParticipants []int
}

// CreateGame allocates, registers and starts a new Game, returning a
// future that completes when the Game reaches OPEN (spec §4.2).
func (e *Engine) CreateGame(ctx context.Context, req CreateGameRequest) (*future.Future, error) {
	player := req.Player

	if gameID, ok := player.CurrentGame(); ok {
		g, found := e.registry.Find(gameID)
		if found {
			if g.State != model.GameInitializing {
				return nil, apperror.New(apperror.AlreadyInGame, "player %d already in game %d", player.ID, gameID)
			}
			// Orphaned prior attempt: remove the caller from it first (spec §4.2).
			e.RemovePlayer(ctx, g, player)
		}
	}

	modInfo, ok, err := e.collab.ModService.GetFeaturedMod(ctx, req.FeaturedModName)
	if err != nil || !ok {
		return nil, apperror.New(apperror.InvalidFeaturedMod, "unknown featured mod %q", req.FeaturedModName)
	}
	_ = modInfo

	id := e.registry.AllocateID()
	g := model.NewGame(id, req.Title, req.FeaturedModName, req.Visibility, player.ID, req.LobbyMode)
	g.Password = req.Password
	g.MinRating = req.MinRating
	g.MaxRating = req.MaxRating
	g.MapFile = req.MapFileName
	g.PresetParticipants = req.PresetParticipants
	g.ConnectedPlayers[player.ID] = true

	e.registry.Insert(g)
	e.metrics.GamesCreated.Inc()

	// The Game is visible to other callers (e.g. the host's own LOBBY
	// report racing in via UpdatePlayerGameState) the instant Insert
	// returns, so every further mutation/read of g below must go through
	// its serialization token, matching JoinGame.
	mu := e.gameMutex(id)
	mu.Lock()
	defer mu.Unlock()
	g.Lock()
	defer g.Unlock()

	fut := future.New()
	e.setJoinFuture(player.ID, fut)

	player.SetCurrentGame(&id)
	player.SetState(model.PlayerInitializing)

	if err := e.collab.ClientChannel.StartGameProcess(ctx, g, player); err != nil {
		e.logger.Warn("startGameProcess failed", zap.Int("gameId", id), zap.Error(err))
	}

	e.markDirty(g, e.cfg.BroadcastMinDelay, e.cfg.BroadcastMaxDelay)
	return fut, nil
}

// JoinGame attaches player to an existing joinable Game, returning a future
// that completes when the player reaches LOBBY (spec §4.2).
func (e *Engine) JoinGame(ctx context.Context, gameID int, password string, player *model.Player) (*future.Future, error) {
	if _, ok := player.CurrentGame(); ok {
		return nil, apperror.New(apperror.AlreadyInGame, "player %d already in a game", player.ID)
	}

	g, ok := e.registry.Find(gameID)
	if !ok {
		return nil, apperror.New(apperror.NoSuchGame, "no such game %d", gameID)
	}

	mu := e.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()

	g.Lock()
	defer g.Unlock()

	if g.State != model.GameOpen {
		return nil, apperror.New(apperror.GameNotJoinable, "game %d is not joinable (state %s)", gameID, g.State)
	}
	if g.Password != "" && g.Password != password {
		return nil, apperror.New(apperror.InvalidPassword, "invalid password for game %d", gameID)
	}

	fut := future.New()
	e.setJoinFuture(player.ID, fut)

	player.SetCurrentGame(&gameID)
	player.SetState(model.PlayerInitializing)

	if err := e.collab.ClientChannel.StartGameProcess(ctx, g, player); err != nil {
		e.logger.Warn("startGameProcess failed", zap.Int("gameId", gameID), zap.Error(err))
	}

	return fut, nil
}

func (e *Engine) setJoinFuture(playerID int, fut *future.Future) {
	e.joinFuturesMu.Lock()
	defer e.joinFuturesMu.Unlock()
	e.joinFutures[playerID] = fut
}

func (e *Engine) takeJoinFuture(playerID int) (*future.Future, bool) {
	e.joinFuturesMu.Lock()
	defer e.joinFuturesMu.Unlock()
	fut, ok := e.joinFutures[playerID]
	if ok {
		delete(e.joinFutures, playerID)
	}
	return fut, ok
}
