// Package playerstate validates transitions of the per-player view of its
// current game (spec §3): NONE -> INITIALIZING -> LOBBY -> LAUNCHING ->
// ENDED -> CLOSED, plus IDLE which the engine logs and ignores wherever it
// appears rather than validating as a real transition.
package playerstate

import "github.com/faforever/game-session-engine/internal/model"

// legalPredecessors enumerates, for each state, the states a transition
// into it may legally come from (spec §3: "a transition table enumerates
// legal predecessors for each state").
var legalPredecessors = map[model.PlayerGameState][]model.PlayerGameState{
	model.PlayerInitializing: {model.PlayerNone, model.PlayerClosed},
	model.PlayerLobby:        {model.PlayerInitializing},
	model.PlayerLaunching:    {model.PlayerLobby},
	model.PlayerEnded:        {model.PlayerLobby, model.PlayerLaunching},
	model.PlayerClosed:       {model.PlayerNone, model.PlayerInitializing, model.PlayerLobby, model.PlayerLaunching, model.PlayerEnded},
	model.PlayerNone:         {model.PlayerClosed},
}

// CanTransition reports whether from->to is a legal player-game state
// transition. IDLE is never a legal destination through this table: the
// engine special-cases it before consulting CanTransition (spec §4.3).
func CanTransition(from, to model.PlayerGameState) bool {
	if to == model.PlayerIdle {
		return false
	}
	for _, s := range legalPredecessors[to] {
		if s == from {
			return true
		}
	}
	return false
}
