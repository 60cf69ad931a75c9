package validity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faforever/game-session-engine/internal/model"
)

func baseContext() Context {
	return Context{
		Game: &model.Game{
			PlayerStats:         map[int]*model.GamePlayerStats{1: {PlayerID: 1, Team: 1}, 2: {PlayerID: 2, Team: 2}},
			ReportedArmyResults: map[int]map[int]model.ArmyResult{1: {}},
			Options:             model.OptionBag{},
		},
		FeaturedModRankable: true,
		MapExists:           true,
		MapRanked:           true,
		HumanPlayerCount:    2,
		DifficultyOK:        true,
		ExpansionOK:         true,
		TeamSpawnFixed:      true,
	}
}

func TestAdjudicate_AllVotersPass(t *testing.T) {
	assert.Equal(t, model.ValidityValid, Adjudicate(baseContext(), DefaultVoters()))
}

func TestAdjudicate_FirstNonValidWins(t *testing.T) {
	c := baseContext()
	c.FeaturedModRankable = false
	c.HasAI = true // would also fail, but isRanked is checked first

	assert.Equal(t, model.ValidityIsRanked, Adjudicate(c, DefaultVoters()))
}

func TestVoteVictoryCondition_CoopAlwaysValid(t *testing.T) {
	c := baseContext()
	c.FeaturedModCoop = true
	c.RequiredVictoryCond = "demoralization"
	c.Game.VictoryCond = "domination"
	assert.Equal(t, model.ValidityValid, voteVictoryCondition(c))
}

func TestVoteVictoryCondition_MismatchFails(t *testing.T) {
	c := baseContext()
	c.RequiredVictoryCond = "demoralization"
	c.Game.VictoryCond = "domination"
	assert.Equal(t, model.ValidityVictoryCondition, voteVictoryCondition(c))
}

func TestVoteFreeForAll_ThreeDistinctTeamsFails(t *testing.T) {
	c := baseContext()
	c.Game.PlayerStats = map[int]*model.GamePlayerStats{
		1: {PlayerID: 1, Team: 2},
		2: {PlayerID: 2, Team: 3},
		3: {PlayerID: 3, Team: 4},
	}
	assert.Equal(t, model.ValidityFreeForAll, voteFreeForAll(c))
}

func TestVoteEvenTeams_UnevenFails(t *testing.T) {
	c := baseContext()
	c.Game.PlayerStats = map[int]*model.GamePlayerStats{
		1: {PlayerID: 1, Team: 2},
		2: {PlayerID: 2, Team: 2},
		3: {PlayerID: 3, Team: 3},
	}
	assert.Equal(t, model.ValidityEvenTeams, voteEvenTeams(c))
}

func TestVoteEvenTeams_ObserversIgnored(t *testing.T) {
	c := baseContext()
	c.Game.PlayerStats = map[int]*model.GamePlayerStats{
		1: {PlayerID: 1, Team: 2},
		2: {PlayerID: 2, Team: 3},
		3: {PlayerID: 3, Team: model.ObserversTeamID},
	}
	assert.Equal(t, model.ValidityValid, voteEvenTeams(c))
}

func TestVoteOptions_FogOfWarOffFails(t *testing.T) {
	c := baseContext()
	c.Game.Options[model.OptionFogOfWar] = "none"
	assert.Equal(t, model.ValidityFogOfWar, voteOptions(c))
}

func TestVoteOptions_CheatsEnabledFails(t *testing.T) {
	c := baseContext()
	c.Game.Options[model.OptionCheatsEnabled] = "true"
	assert.Equal(t, model.ValidityCheatsEnabled, voteOptions(c))
}

func TestVoteRankedMap_UnrankedMapFails(t *testing.T) {
	c := baseContext()
	c.MapRanked = false
	assert.Equal(t, model.ValidityRankedMap, voteRankedMap(c))
}

func TestVoteDesync_TooManyFails(t *testing.T) {
	c := baseContext()
	c.Game.DesyncCounter = 10
	assert.Equal(t, model.ValidityDesync, voteDesync(c))
}

func TestVoteMutualDraw(t *testing.T) {
	c := baseContext()
	c.Game.MutualDraw = true
	assert.Equal(t, model.ValidityMutualDraw, voteMutualDraw(c))
}

func TestVoteSinglePlayer_Fails(t *testing.T) {
	c := baseContext()
	c.HumanPlayerCount = 1
	assert.Equal(t, model.ValiditySinglePlayer, voteSinglePlayer(c))
}

func TestVoteUnknownResult_NoReportsFails(t *testing.T) {
	c := baseContext()
	c.Game.ReportedArmyResults = map[int]map[int]model.ArmyResult{}
	assert.Equal(t, model.ValidityUnknownResult, voteUnknownResult(c))
}

func TestVoteTooShort(t *testing.T) {
	c := baseContext()
	start := time.Now()
	end := start.Add(10 * time.Second)
	c.Game.StartTime = &start
	c.Game.EndTime = &end
	c.RankedMinTimeMultiplicator = 60 // 2 players * 60s = 120s minimum

	assert.Equal(t, model.ValidityTooShort, voteTooShort(c))
}

func TestVoteTooShort_NoTimesIsValid(t *testing.T) {
	c := baseContext()
	assert.Equal(t, model.ValidityValid, voteTooShort(c))
}

func TestVoteModeGates_HasAI(t *testing.T) {
	c := baseContext()
	c.HasAI = true
	assert.Equal(t, model.ValidityHasAI, voteModeGates(c))
}

func TestDeriveModeGates_Defaults(t *testing.T) {
	g := &model.Game{Options: model.OptionBag{}, AIOptions: map[string]model.OptionBag{}}
	hasAI, teamsUnlocked, teamSpawnFixed, civiliansRevealed, difficultyOK, expansionOK := DeriveModeGates(g)
	assert.False(t, hasAI)
	assert.False(t, teamsUnlocked)
	assert.True(t, teamSpawnFixed)
	assert.False(t, civiliansRevealed)
	assert.True(t, difficultyOK)
	assert.True(t, expansionOK)
}

func TestDeriveModeGates_HasAIFromAIOptions(t *testing.T) {
	g := &model.Game{Options: model.OptionBag{}, AIOptions: map[string]model.OptionBag{"AI: Tough": {}}}
	hasAI, _, _, _, _, _ := DeriveModeGates(g)
	assert.True(t, hasAI)
}

func TestDeriveModeGates_TeamsUnlockedWhenNotLocked(t *testing.T) {
	g := &model.Game{Options: model.OptionBag{model.OptionTeamLock: "unlocked"}, AIOptions: map[string]model.OptionBag{}}
	_, teamsUnlocked, _, _, _, _ := DeriveModeGates(g)
	assert.True(t, teamsUnlocked)
}

func TestDeriveModeGates_TeamSpawnNotFixed(t *testing.T) {
	g := &model.Game{Options: model.OptionBag{model.OptionTeamSpawn: "random"}, AIOptions: map[string]model.OptionBag{}}
	_, _, teamSpawnFixed, _, _, _ := DeriveModeGates(g)
	assert.False(t, teamSpawnFixed)
}

func TestDeriveModeGates_CiviliansRevealed(t *testing.T) {
	g := &model.Game{Options: model.OptionBag{model.OptionRevealedCivilians: "On"}, AIOptions: map[string]model.OptionBag{}}
	_, _, _, civiliansRevealed, _, _ := DeriveModeGates(g)
	assert.True(t, civiliansRevealed)
}
