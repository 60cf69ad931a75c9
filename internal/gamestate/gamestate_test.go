package gamestate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faforever/game-session-engine/internal/model"
)

func TestCanTransition_LegalEdges(t *testing.T) {
	cases := []struct {
		from, to model.GameState
	}{
		{model.GameInitializing, model.GameOpen},
		{model.GameInitializing, model.GameClosed},
		{model.GameInitializing, model.GameEnded},
		{model.GameOpen, model.GamePlaying},
		{model.GameOpen, model.GameClosed},
		{model.GameOpen, model.GameEnded},
		{model.GamePlaying, model.GameEnded},
		{model.GameEnded, model.GameClosed},
	}
	for _, c := range cases {
		assert.True(t, CanTransition(c.from, c.to), "%s -> %s should be legal", c.from, c.to)
	}
}

func TestCanTransition_IllegalEdges(t *testing.T) {
	cases := []struct {
		from, to model.GameState
	}{
		{model.GameInitializing, model.GamePlaying},
		{model.GameOpen, model.GameInitializing},
		{model.GamePlaying, model.GameClosed},
		{model.GameClosed, model.GameOpen},
	}
	for _, c := range cases {
		assert.False(t, CanTransition(c.from, c.to), "%s -> %s should be illegal", c.from, c.to)
	}
}
