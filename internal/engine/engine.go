// Package engine implements the Engine type: the public operation surface
// of the Game Session Engine (spec §6), gluing the registry, state
// machines, option store, reconciler, validity adjudicator, rating
// serializer and broadcaster together behind one per-Game mutex.
//
// Grounded on match-service/engine.go's GameEngine/per-match-mutex design,
// generalized from the teacher's per-match actor loop to per-Game mutex
// acquisition — spec §5 explicitly permits either model, and a mutex per
// aggregate is simpler to reason about for the voting/reconciliation/
// rating-ordering logic this engine needs.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/broadcast"
	"github.com/faforever/game-session-engine/internal/collab"
	"github.com/faforever/game-session-engine/internal/future"
	"github.com/faforever/game-session-engine/internal/gamestate"
	"github.com/faforever/game-session-engine/internal/metrics"
	"github.com/faforever/game-session-engine/internal/model"
	"github.com/faforever/game-session-engine/internal/rating"
	"github.com/faforever/game-session-engine/internal/registry"
)

// Collaborators bundles every external port the engine consumes (spec §6).
type Collaborators struct {
	ClientChannel         collab.ClientChannel
	GameRepository        collab.GameRepository
	MapService            collab.MapService
	ModService            collab.ModService
	RatingService         collab.RatingService
	ArmyStatisticsService collab.ArmyStatisticsService
	DivisionService       collab.DivisionService
	PlayerDirectory       collab.PlayerDirectory
}

// Config carries the operational knobs the engine needs at runtime, a
// subset of internal/config.Config so this package doesn't import config
// directly (keeps the dependency direction single-way: cmd -> config,
// cmd -> engine).
type Config struct {
	BroadcastMinDelay          time.Duration
	BroadcastMaxDelay          time.Duration
	RankedMinTimeMultiplicator float64
}

// Engine is the process-wide singleton coordinating every active Game
// (spec §9: "Encapsulate each behind a single Engine object constructed
// once; pass it explicitly rather than using global singletons.").
type Engine struct {
	registry *registry.Registry
	cfg      Config
	collab   Collaborators
	metrics  *metrics.Metrics
	logger   *zap.Logger

	broadcaster *broadcast.Broadcaster
	ratingQueue *rating.Queue

	playersMu sync.RWMutex
	players   map[int]*model.Player

	joinFuturesMu sync.Mutex
	joinFutures   map[int]*future.Future // playerID -> pending createGame/joinGame future

	gameMusMu sync.Mutex
	gameMus   map[int]*sync.Mutex
}

// New constructs an Engine. seedMaxID should come from
// GameRepository.FindMaxID so the first allocated id is max persisted id
// + 1 (spec §8).
func New(seedMaxID int, cfg Config, collaborators Collaborators, m *metrics.Metrics, logger *zap.Logger, pub broadcast.Publisher) *Engine {
	e := &Engine{
		registry:    registry.New(seedMaxID),
		cfg:         cfg,
		collab:      collaborators,
		metrics:     m,
		logger:      logger,
		broadcaster: broadcast.New(pub),
		players:     map[int]*model.Player{},
		joinFutures: map[int]*future.Future{},
		gameMus:     map[int]*sync.Mutex{},
	}
	e.ratingQueue = rating.New(e.isLadder1v1, e.applyRating, e.onRatingApplied)
	return e
}

// gameMutex returns (creating if necessary) the serialization token for a
// game id. The map entry is never removed: game ids are never reused
// within a process (spec invariant 6), so a small permanent map of mutexes
// is an acceptable trade for never racing on creation.
func (e *Engine) gameMutex(gameID int) *sync.Mutex {
	e.gameMusMu.Lock()
	defer e.gameMusMu.Unlock()
	mu, ok := e.gameMus[gameID]
	if !ok {
		mu = &sync.Mutex{}
		e.gameMus[gameID] = mu
	}
	return mu
}

func (e *Engine) player(id int) (*model.Player, bool) {
	e.playersMu.RLock()
	defer e.playersMu.RUnlock()
	p, ok := e.players[id]
	return p, ok
}

// RegisterPlayer adds a player to the engine's directory, e.g. on login.
// Not part of the spec's public operation surface but required plumbing:
// the directory must be populated from somewhere before createGame/
// joinGame can resolve a caller's Player.
func (e *Engine) RegisterPlayer(p *model.Player) {
	e.playersMu.Lock()
	defer e.playersMu.Unlock()
	e.players[p.ID] = p
}

func (e *Engine) markDirty(g *model.Game, minDelay, maxDelay time.Duration) {
	players := make([]broadcast.SnapshotPlayer, 0, len(g.ConnectedPlayers))
	hostLogin := ""
	for id := range g.ConnectedPlayers {
		p, ok := e.player(id)
		login := ""
		team := 0
		if ok {
			login = p.Login
		}
		if stats, ok := g.PlayerStats[id]; ok {
			team = stats.Team
		}
		players = append(players, broadcast.SnapshotPlayer{ID: id, Login: login, Team: team})
		if id == g.HostID {
			hostLogin = login
		}
	}
	snap := broadcast.BuildSnapshot(g, hostLogin, players)
	e.broadcaster.MarkDirty(g.ID, snap, minDelay, maxDelay)
}

func (e *Engine) activeSnapshot() []*model.Game {
	return e.registry.Snapshot()
}

// transitionGameState applies a Game lifecycle transition, validating it
// against gamestate.CanTransition first. Unlike playerstate transitions
// (requested directly by a client's updatePlayerGameState call and
// rejected back to the caller on an illegal edge, player_state.go:42),
// Game state only ever moves as a side effect of the engine's own
// bookkeeping — there is no caller to reject, so an illegal edge here
// means the engine's own logic is wrong. Logged loudly and left
// unapplied rather than panicking, so one bad transition doesn't take
// down the whole process for every other Game.
func (e *Engine) transitionGameState(g *model.Game, to model.GameState) bool {
	if !gamestate.CanTransition(g.State, to) {
		e.logger.Error("illegal game state transition",
			zap.Int("gameId", g.ID), zap.String("from", string(g.State)), zap.String("to", string(to)))
		return false
	}
	g.State = to
	return true
}

func (e *Engine) isLadder1v1(featuredMod string) bool {
	ok, err := e.collab.ModService.IsLadder1v1(context.Background(), featuredMod)
	if err != nil {
		e.logger.Warn("isLadder1v1 lookup failed", zap.String("mod", featuredMod), zap.Error(err))
		return false
	}
	return ok
}
