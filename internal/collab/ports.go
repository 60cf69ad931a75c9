// Package collab defines the port interfaces for every external
// collaborator the core engine consumes (spec §6), plus concrete adapters
// grounded on the teacher's database/transport stack.
//
// Grounded on shared/database/interfaces.go (port shapes) and
// DatabaseManagerImpl (adapter wiring).
package collab

import (
	"context"

	"github.com/faforever/game-session-engine/internal/model"
)

// ClientChannel delivers transport-level commands to connected clients.
// The concrete implementation (websocket_channel.go) is a thin Gorilla-backed
// adapter kept outside the engine's core per spec §1's scope note.
type ClientChannel interface {
	StartGameProcess(ctx context.Context, game *model.Game, player *model.Player) error
	HostGame(ctx context.Context, game *model.Game, host *model.Player) error
	ConnectToHost(ctx context.Context, player *model.Player, game *model.Game) error
	ConnectToPeer(ctx context.Context, from, to *model.Player, offerer bool) error
	DisconnectPlayerFromGame(ctx context.Context, targetID int, receivers []*model.Player) error
	SendGameList(ctx context.Context, list []*model.Game, recipient *model.Player) error
	BroadcastGameResult(ctx context.Context, msg GameResultMessage) error
}

// GameResultMessage is broadcast to all participants once end processing
// computes the per-player result (spec §4.6 step 5).
type GameResultMessage struct {
	GameID  int
	Draw    bool
	Results map[int]model.ArmyResult
}

// GameRepository persists Games durably (spec §6).
type GameRepository interface {
	Save(ctx context.Context, g *model.Game) error
	Persist(ctx context.Context, g *model.Game) error
	FindMaxID(ctx context.Context) (int, error)
	UpdateUnfinishedGamesValidity(ctx context.Context, validity model.Validity) error
}

// MapService resolves map metadata (spec §6).
type MapService interface {
	FindMap(ctx context.Context, folder string) (MapInfo, bool, error)
	IncrementTimesPlayed(ctx context.Context, folder string) error
}

// MapInfo is the subset of map metadata the Validity Adjudicator needs.
type MapInfo struct {
	Folder string
	Ranked bool
}

// ModService resolves featured-mod and sim-mod metadata (spec §6).
type ModService interface {
	GetFeaturedMod(ctx context.Context, technicalName string) (ModInfo, bool, error)
	IsLadder1v1(ctx context.Context, technicalName string) (bool, error)
	IsCoop(ctx context.Context, technicalName string) (bool, error)
	IsModRanked(ctx context.Context, technicalName string) (bool, error)
	FindModVersionsByUIDs(ctx context.Context, uids []string) ([]model.ModVersionRef, error)
	GetLatestFileVersions(ctx context.Context, technicalName string) (map[string]int, error)
}

// ModInfo is the subset of featured-mod metadata the engine needs.
type ModInfo struct {
	TechnicalName       string
	Rankable            bool
	RequiredVictoryCond string
}

// RatingService applies rating updates for a finished game (spec §6).
type RatingService interface {
	UpdateRatings(ctx context.Context, stats map[int]*model.GamePlayerStats, noTeamID int, ratingType model.RatingType) error
	InitLadder1v1Rating(ctx context.Context, playerID int) (mean, deviation float64, err error)
	InitGlobalRating(ctx context.Context, playerID int) (mean, deviation float64, err error)
}

// ArmyStatisticsService processes per-army post-game statistics (spec §6).
// A failure here is logged and swallowed by the engine; it never blocks
// game closure (spec §4.6 step 7).
type ArmyStatisticsService interface {
	Process(ctx context.Context, playerID int, g *model.Game) error
}

// DivisionService updates ladder/division standings (spec §6).
type DivisionService interface {
	PostResult(ctx context.Context, playerOne, playerTwo int, winner *int) error
}

// PlayerDirectory resolves online player records (spec §6).
type PlayerDirectory interface {
	GetOnlinePlayer(ctx context.Context, id int) (*model.Player, bool)
}
