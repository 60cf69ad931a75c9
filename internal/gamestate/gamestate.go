// Package gamestate validates transitions of the Game lifecycle state
// machine (spec §3): INITIALIZING -> OPEN -> PLAYING -> ENDED -> CLOSED,
// plus the two early-exit edges INITIALIZING->CLOSED (cancelled) and
// OPEN->CLOSED (abandoned), plus the two ended-without-launch edges
// INITIALIZING->ENDED and OPEN->ENDED: spec §4.6 has reportGameEnded run
// end processing (and transition to ENDED) even when the previous state
// was not PLAYING, skipping only steps 2-7 of the happy path.
//
// No teacher file implements a generic FSM; dashdice checks Match.Status
// with ad hoc string comparisons inline in engine.go. This package builds
// the equivalent as a table-driven validator in the same small-function
// style as engine.go's validateMatchConfig/validateGameAction.
package gamestate

import "github.com/faforever/game-session-engine/internal/model"

var allowed = map[model.GameState][]model.GameState{
	model.GameInitializing: {model.GameOpen, model.GameClosed, model.GameEnded},
	model.GameOpen:         {model.GamePlaying, model.GameClosed, model.GameEnded},
	model.GamePlaying:      {model.GameEnded},
	model.GameEnded:        {model.GameClosed},
	model.GameClosed:       {},
}

// CanTransition reports whether from->to is a legal Game state transition.
func CanTransition(from, to model.GameState) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}
