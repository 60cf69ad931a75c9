package future

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faforever/game-session-engine/internal/model"
)

func TestWait_ReturnsCompletedResult(t *testing.T) {
	f := New()
	g := model.NewGame(1, "t", "faf", model.VisibilityPublic, 1, model.LobbyModeDefault)
	f.Complete(g)

	got, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, g, got)
}

func TestWait_ReturnsErrCancelled(t *testing.T) {
	f := New()
	f.Cancel()

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestComplete_OnlyFirstCallHasEffect(t *testing.T) {
	f := New()
	g1 := model.NewGame(1, "t", "faf", model.VisibilityPublic, 1, model.LobbyModeDefault)
	g2 := model.NewGame(2, "t", "faf", model.VisibilityPublic, 1, model.LobbyModeDefault)

	f.Complete(g1)
	f.Complete(g2)
	f.Cancel()

	got, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, g1, got)
}

func TestWait_RespectsContextCancellation(t *testing.T) {
	f := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
