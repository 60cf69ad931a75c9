package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatsMessage(t *testing.T) {
	err := New(NoSuchGame, "no such game %d", 5)
	assert.Equal(t, NoSuchGame, err.Code)
	assert.Equal(t, "no such game 5", err.Message)
	assert.Contains(t, err.Error(), "NO_SUCH_GAME")
	assert.Contains(t, err.Error(), "no such game 5")
}

func TestWrap_PreservesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(InvalidGameState, cause, "could not transition")

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestWithDetail_Chains(t *testing.T) {
	err := New(GameNotJoinable, "nope").WithDetail("gameId", 7).WithDetail("reason", "password")
	assert.Equal(t, 7, err.Details["gameId"])
	assert.Equal(t, "password", err.Details["reason"])
}

func TestIs_MatchesCodeOnly(t *testing.T) {
	err := New(AlreadyInGame, "already in game")
	assert.True(t, Is(err, AlreadyInGame))
	assert.False(t, Is(err, NoSuchGame))
	assert.False(t, Is(errors.New("plain"), AlreadyInGame))
}
