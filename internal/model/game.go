package model

import (
	"sync"
	"time"
)

// OptionValue is whatever a game, player or AI option carries: a string, a
// number, or a bool, as parsed off the wire. Options that this engine does
// not interpret are stored verbatim (spec §4.5).
type OptionValue = interface{}

// OptionBag is a plain string-keyed map of option values.
type OptionBag map[string]OptionValue

// Game is one active match. The Game never owns a Player by pointer;
// connected-players and host are ids resolved through a Player directory.
type Game struct {
	mu sync.RWMutex

	ID int `json:"id" firestore:"id" redis:"id"`

	Title          string     `json:"title" firestore:"title" redis:"title"`
	Password       string     `json:"-" firestore:"password" redis:"-"`
	Visibility     Visibility `json:"visibility" firestore:"visibility" redis:"visibility"`
	FeaturedMod    string     `json:"featuredMod" firestore:"featuredMod" redis:"featuredMod"`
	MapFile        string     `json:"mapFile,omitempty" firestore:"mapFile" redis:"mapFile"`
	MapFolder      string     `json:"mapFolder,omitempty" firestore:"mapFolder" redis:"mapFolder"`
	MinRating      *float64   `json:"minRating,omitempty" firestore:"minRating" redis:"minRating"`
	MaxRating      *float64   `json:"maxRating,omitempty" firestore:"maxRating" redis:"maxRating"`
	MaxPlayers     int        `json:"maxPlayers" firestore:"maxPlayers" redis:"maxPlayers"`
	LobbyMode      LobbyMode  `json:"lobbyMode" firestore:"lobbyMode" redis:"lobbyMode"`
	VictoryCond    string     `json:"victoryCondition,omitempty" firestore:"victoryCondition" redis:"victoryCondition"`

	HostID int `json:"hostId" firestore:"hostId" redis:"hostId"`

	State    GameState `json:"state" firestore:"state" redis:"state"`
	Validity Validity  `json:"validity" firestore:"validity" redis:"validity"`

	StartTime *time.Time `json:"startTime,omitempty" firestore:"startTime" redis:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty" firestore:"endTime" redis:"endTime"`

	DesyncCounter  int  `json:"desyncCounter" firestore:"desyncCounter" redis:"desyncCounter"`
	RatingEnforced bool `json:"ratingEnforced" firestore:"ratingEnforced" redis:"ratingEnforced"`
	MutualDraw     bool `json:"mutualDraw" firestore:"mutualDraw" redis:"mutualDraw"`

	Options       OptionBag            `json:"options" firestore:"options" redis:"options"`
	PlayerOptions map[int]OptionBag    `json:"playerOptions" firestore:"playerOptions" redis:"playerOptions"`
	AIOptions     map[string]OptionBag `json:"aiOptions" firestore:"aiOptions" redis:"aiOptions"`

	SimMods []ModVersionRef `json:"simMods" firestore:"simMods" redis:"simMods"`

	ConnectedPlayers map[int]bool `json:"-" firestore:"-" redis:"-"`

	PlayerStats map[int]*GamePlayerStats `json:"-" firestore:"-" redis:"-"`

	// ReportedArmyResults[reporterID][armyID] = ArmyResult
	ReportedArmyResults map[int]map[int]ArmyResult `json:"-" firestore:"-" redis:"-"`
	// ReporterOrder records the order reporters first reported any army
	// result, needed for most-reported insertion-order tie-breaking
	// (spec §4.6). Not a set: a reporter appears once, at its first report.
	ReporterOrder []int `json:"-" firestore:"-" redis:"-"`

	MutualDrawAcceptors map[int]bool `json:"-" firestore:"-" redis:"-"`
	GameEndedReporters  map[int]bool `json:"-" firestore:"-" redis:"-"`

	// PresetParticipants lists player ids a matchmaker expects to join this
	// game. The engine stores it verbatim for the client channel/observers
	// to read; matchmaking policy itself is out of scope (spec §1).
	PresetParticipants []int `json:"presetParticipants,omitempty" firestore:"presetParticipants" redis:"-"`
}

// ModVersionRef names one sim-mod version bound to a game.
type ModVersionRef struct {
	UID         string `json:"uid" firestore:"uid" redis:"uid"`
	DisplayName string `json:"displayName" firestore:"displayName" redis:"displayName"`
	Version     int    `json:"version" firestore:"version" redis:"version"`
}

// NewGame builds a freshly allocated, not-yet-registered Game in
// INITIALIZING state with all collections initialized empty.
func NewGame(id int, title, featuredMod string, visibility Visibility, hostID int, lobbyMode LobbyMode) *Game {
	return &Game{
		ID:                  id,
		Title:               title,
		FeaturedMod:         featuredMod,
		Visibility:          visibility,
		HostID:              hostID,
		LobbyMode:           lobbyMode,
		MaxPlayers:          12,
		State:               GameInitializing,
		Validity:            ValidityValid,
		Options:             OptionBag{},
		PlayerOptions:       map[int]OptionBag{},
		AIOptions:           map[string]OptionBag{},
		SimMods:             nil,
		ConnectedPlayers:    map[int]bool{},
		PlayerStats:         map[int]*GamePlayerStats{},
		ReportedArmyResults: map[int]map[int]ArmyResult{},
		MutualDrawAcceptors: map[int]bool{},
		GameEndedReporters:  map[int]bool{},
	}
}

// Lock/Unlock/RLock/RUnlock expose the Game's own mutex. The engine
// acquires this as the per-Game serialization token for the duration of
// each public operation (spec §5); everything else in this package assumes
// the caller already holds it unless documented otherwise.
func (g *Game) Lock()    { g.mu.Lock() }
func (g *Game) Unlock()  { g.mu.Unlock() }
func (g *Game) RLock()   { g.mu.RLock() }
func (g *Game) RUnlock() { g.mu.RUnlock() }

// ConnectedPlayerIDs returns a snapshot slice of currently connected player
// ids. Caller must hold at least a read lock.
func (g *Game) ConnectedPlayerIDs() []int {
	ids := make([]int, 0, len(g.ConnectedPlayers))
	for id := range g.ConnectedPlayers {
		ids = append(ids, id)
	}
	return ids
}

// IsHost reports whether playerID is this game's host.
func (g *Game) IsHost(playerID int) bool {
	return g.HostID == playerID
}
