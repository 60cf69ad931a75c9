package model

import "sync"

// Player is a directory-owned aggregate. Games reference it by id, never
// by pointer ownership, so Players can outlive the Games they played in.
type Player struct {
	mu sync.RWMutex

	ID    int
	Login string

	currentGame *int
	playerState PlayerGameState
}

// NewPlayer constructs a directory entry for a freshly connected player.
func NewPlayer(id int, login string) *Player {
	return &Player{
		ID:          id,
		Login:       login,
		playerState: PlayerNone,
	}
}

// CurrentGame returns the id of the game this player is attached to, if any.
func (p *Player) CurrentGame() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.currentGame == nil {
		return 0, false
	}
	return *p.currentGame, true
}

// SetCurrentGame attaches the player to a game id, or detaches it when nil.
func (p *Player) SetCurrentGame(gameID *int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gameID == nil {
		p.currentGame = nil
		return
	}
	id := *gameID
	p.currentGame = &id
}

// State returns the player's current player-game state.
func (p *Player) State() PlayerGameState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playerState
}

// SetState forcibly sets the player-game state, bypassing transition
// validation. Checking the edge (playerstate.CanTransition) is left to the
// caller.
func (p *Player) SetState(s PlayerGameState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playerState = s
}
