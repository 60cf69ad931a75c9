// Package validity implements the Validity Adjudicator (spec §4.7): an
// ordered list of independent voters, the first non-VALID vote wins.
//
// Grounded on the strategy-list idiom visible in queue-service/
// matchmaker.go's ordered scoring passes, adapted from "highest score
// wins" to "first non-VALID wins".
package validity

import "github.com/faforever/game-session-engine/internal/model"

// Context bundles everything a voter needs to cast its vote, so voters stay
// pure functions of Context rather than closing over engine internals.
type Context struct {
	Game *model.Game

	FeaturedModRankable bool
	FeaturedModCoop     bool
	RequiredVictoryCond string

	MapExists bool
	MapRanked bool

	HumanPlayerCount int

	RankedMinTimeMultiplicator float64 // seconds per player

	HasAI             bool
	TeamsUnlocked     bool
	TeamSpawnFixed    bool
	CiviliansRevealed bool
	DifficultyOK      bool
	ExpansionOK       bool
}

// Voter casts a single verdict: VALID, or a specific disqualifying kind.
type Voter func(c Context) model.Validity

// DefaultVoters is the canonical ordered voter list (spec §4.7 says "exact
// set is implementation data"; this is this engine's choice).
func DefaultVoters() []Voter {
	return []Voter{
		voteIsRanked,
		voteVictoryCondition,
		voteFreeForAll,
		voteEvenTeams,
		voteOptions,
		voteRankedMap,
		voteDesync,
		voteMutualDraw,
		voteSinglePlayer,
		voteUnknownResult,
		voteTooShort,
		voteModeGates,
	}
}

// Adjudicate runs voters in order against c and returns the first
// non-VALID verdict, or VALID if every voter passes.
func Adjudicate(c Context, voters []Voter) model.Validity {
	for _, v := range voters {
		if verdict := v(c); verdict != model.ValidityValid {
			return verdict
		}
	}
	return model.ValidityValid
}

func voteIsRanked(c Context) model.Validity {
	if !c.FeaturedModRankable {
		return model.ValidityIsRanked
	}
	return model.ValidityValid
}

func voteVictoryCondition(c Context) model.Validity {
	if c.FeaturedModCoop {
		return model.ValidityValid
	}
	if c.RequiredVictoryCond != "" && c.Game.VictoryCond != c.RequiredVictoryCond {
		return model.ValidityVictoryCondition
	}
	return model.ValidityValid
}

func voteFreeForAll(c Context) model.Validity {
	teams := map[int]int{}
	for _, s := range c.Game.PlayerStats {
		if s.Team == model.ObserversTeamID {
			continue
		}
		teams[s.Team]++
	}
	if len(teams) >= 3 {
		allDistinct := true
		for team, count := range teams {
			if team <= 0 || count != 1 {
				allDistinct = false
				break
			}
		}
		if allDistinct {
			return model.ValidityFreeForAll
		}
	}
	return model.ValidityValid
}

func voteEvenTeams(c Context) model.Validity {
	teams := map[int]int{}
	hasNoTeam := false
	for _, s := range c.Game.PlayerStats {
		if s.Team == model.ObserversTeamID {
			continue
		}
		teams[s.Team]++
		if s.Team == model.NoTeamID {
			hasNoTeam = true
		}
	}
	if hasNoTeam {
		for team, count := range teams {
			if team == model.NoTeamID {
				continue
			}
			if count != 1 {
				return model.ValidityEvenTeams
			}
		}
		return model.ValidityValid
	}
	var size int
	first := true
	for _, count := range teams {
		if first {
			size = count
			first = false
			continue
		}
		if count != size {
			return model.ValidityEvenTeams
		}
	}
	return model.ValidityValid
}

func voteOptions(c Context) model.Validity {
	opt := func(key string) (model.OptionValue, bool) {
		v, ok := c.Game.Options[key]
		return v, ok
	}
	if v, ok := opt(model.OptionFogOfWar); ok && v != "explored" {
		return model.ValidityFogOfWar
	}
	if v, ok := opt(model.OptionCheatsEnabled); ok && v != "false" {
		return model.ValidityCheatsEnabled
	}
	if v, ok := opt(model.OptionPrebuiltUnits); ok && v != "Off" {
		return model.ValidityPrebuiltUnits
	}
	if v, ok := opt(model.OptionNoRush); ok && v != "Off" {
		return model.ValidityNoRush
	}
	if v, ok := opt(model.OptionRestrictedCategories); ok && v != "0" && v != 0 {
		return model.ValidityRestrictedCategories
	}
	return model.ValidityValid
}

func voteRankedMap(c Context) model.Validity {
	if !c.MapExists || !c.MapRanked {
		return model.ValidityRankedMap
	}
	return model.ValidityValid
}

func voteDesync(c Context) model.Validity {
	if c.Game.DesyncCounter > len(c.Game.PlayerStats) {
		return model.ValidityDesync
	}
	return model.ValidityValid
}

func voteMutualDraw(c Context) model.Validity {
	if c.Game.MutualDraw {
		return model.ValidityMutualDraw
	}
	return model.ValidityValid
}

func voteSinglePlayer(c Context) model.Validity {
	if c.HumanPlayerCount < 2 {
		return model.ValiditySinglePlayer
	}
	return model.ValidityValid
}

func voteUnknownResult(c Context) model.Validity {
	if len(c.Game.ReportedArmyResults) == 0 {
		return model.ValidityUnknownResult
	}
	return model.ValidityValid
}

func voteTooShort(c Context) model.Validity {
	if c.Game.StartTime == nil || c.Game.EndTime == nil {
		return model.ValidityValid
	}
	elapsed := c.Game.EndTime.Sub(*c.Game.StartTime).Seconds()
	minSeconds := float64(len(c.Game.PlayerStats)) * c.RankedMinTimeMultiplicator
	if elapsed < minSeconds {
		return model.ValidityTooShort
	}
	return model.ValidityValid
}

// DeriveModeGates reads g's option bags into the mode-gate fields
// voteModeGates checks. Ranked defaults mirror voteOptions' style of
// comparing wire option values against a known-good literal: teams locked,
// spawns fixed, civilians hidden, default difficulty, expansion packs off.
func DeriveModeGates(g *model.Game) (hasAI, teamsUnlocked, teamSpawnFixed, civiliansRevealed, difficultyOK, expansionOK bool) {
	hasAI = len(g.AIOptions) > 0

	teamLock, _ := g.Options[model.OptionTeamLock].(string)
	teamsUnlocked = teamLock != "" && teamLock != "locked"

	teamSpawn, _ := g.Options[model.OptionTeamSpawn].(string)
	teamSpawnFixed = teamSpawn == "" || teamSpawn == "fixed"

	revealed, _ := g.Options[model.OptionRevealedCivilians].(string)
	civiliansRevealed = revealed == "on" || revealed == "On"

	difficulty, _ := g.Options[model.OptionDifficulty].(string)
	difficultyOK = difficulty == "" || difficulty == "normal" || difficulty == "Normal"

	expansion, _ := g.Options[model.OptionExpansion].(string)
	expansionOK = expansion == "" || expansion == "off" || expansion == "Off"
	return
}

func voteModeGates(c Context) model.Validity {
	if c.HasAI {
		return model.ValidityHasAI
	}
	if c.TeamsUnlocked {
		return model.ValidityTeamsUnlocked
	}
	if !c.TeamSpawnFixed {
		return model.ValidityTeamSpawn
	}
	if c.CiviliansRevealed {
		return model.ValidityCiviliansRevealed
	}
	if !c.DifficultyOK {
		return model.ValidityDifficulty
	}
	if !c.ExpansionOK {
		return model.ValidityExpansion
	}
	return model.ValidityValid
}
