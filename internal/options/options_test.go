package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faforever/game-session-engine/internal/model"
)

func newTestGame() *model.Game {
	return model.NewGame(1, "t", "faf", model.VisibilityPublic, 100, model.LobbyModeDefault)
}

func TestApplyGlobalOption_ScenarioFileParsesMapFolder(t *testing.T) {
	g := newTestGame()
	err := ApplyGlobalOption(g, model.OptionScenarioFile, "/maps/scmp_001/scmp_001_scenario.lua")
	require.NoError(t, err)
	assert.Equal(t, "scmp_001", g.MapFolder)
}

func TestApplyGlobalOption_ScenarioFileNormalizesSeparators(t *testing.T) {
	g := newTestGame()
	err := ApplyGlobalOption(g, model.OptionScenarioFile, `\maps\\scmp_002\\scmp_002_scenario.lua`)
	require.NoError(t, err)
	assert.Equal(t, "scmp_002", g.MapFolder)
}

func TestApplyGlobalOption_ScenarioFileTooShortRejected(t *testing.T) {
	g := newTestGame()
	err := ApplyGlobalOption(g, model.OptionScenarioFile, "maps/onlytwo")
	assert.ErrorIs(t, err, ErrScenarioFileTooShort)
	assert.Empty(t, g.MapFolder)
}

func TestApplyGlobalOption_SlotsUpdatesMaxPlayers(t *testing.T) {
	g := newTestGame()
	require.NoError(t, ApplyGlobalOption(g, model.OptionSlots, 4))
	assert.Equal(t, 4, g.MaxPlayers)
}

func TestApplyGlobalOption_UnknownKeyStoredVerbatim(t *testing.T) {
	g := newTestGame()
	require.NoError(t, ApplyGlobalOption(g, "SomeUnknownKey", "value"))
	assert.Equal(t, "value", g.Options["SomeUnknownKey"])
}

func TestApplyAIOption_OnlyArmyKeyKept(t *testing.T) {
	g := newTestGame()
	assert.False(t, ApplyAIOption(g, "AI: Tough", model.OptionFaction, 2))
	assert.True(t, ApplyAIOption(g, "AI: Tough", model.OptionArmy, 5))
	assert.Equal(t, 5, g.AIOptions["AI: Tough"][model.OptionArmy])
	_, ok := g.AIOptions["AI: Tough"][model.OptionFaction]
	assert.False(t, ok)
}

func TestClearSlot_RemovesMatchingPlayersOnly(t *testing.T) {
	g := newTestGame()
	ApplyPlayerOption(g, 1, model.OptionStartSpot, 3)
	ApplyPlayerOption(g, 2, model.OptionStartSpot, 4)
	ApplyAIOption(g, "AI: Easy", model.OptionArmy, 9)

	ClearSlot(g, 3)

	_, ok := g.PlayerOptions[1]
	assert.False(t, ok)
	_, ok = g.PlayerOptions[2]
	assert.True(t, ok)
	_, ok = g.AIOptions["AI: Easy"]
	assert.True(t, ok, "AI entries are keyed by name, not slot")
}

func TestClearSlot_Idempotent(t *testing.T) {
	g := newTestGame()
	ApplyPlayerOption(g, 1, model.OptionStartSpot, 3)
	ClearSlot(g, 3)
	assert.NotPanics(t, func() { ClearSlot(g, 3) })
}

func TestArmyForPlayer(t *testing.T) {
	g := newTestGame()
	ApplyPlayerOption(g, 1, model.OptionArmy, 7)

	army, ok := ArmyForPlayer(g, 1)
	require.True(t, ok)
	assert.Equal(t, 7, army)

	_, ok = ArmyForPlayer(g, 2)
	assert.False(t, ok)
}

func TestKnownArmyIDs_IncludesPlayersAndAIs(t *testing.T) {
	g := newTestGame()
	ApplyPlayerOption(g, 1, model.OptionArmy, 1)
	ApplyAIOption(g, "AI: Easy", model.OptionArmy, 2)

	known := KnownArmyIDs(g)
	assert.True(t, known[1])
	assert.True(t, known[2])
	assert.False(t, known[3])
}
