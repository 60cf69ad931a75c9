package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/metrics"
	"github.com/faforever/game-session-engine/internal/model"
)

// mockDivisionService replaces fakeDivisions (engine_test.go) for the one
// test that needs to assert exactly which pairs and winners were posted,
// grounded on shared/testing/testing.go's use of testify/mock for
// collaborator doubles.
type mockDivisionService struct{ mock.Mock }

func (m *mockDivisionService) PostResult(ctx context.Context, p1, p2 int, winner *int) error {
	args := m.Called(p1, p2, winner)
	return args.Error(0)
}

func TestPostDivisionResultsLocked_PostsEveryPairWithWinner(t *testing.T) {
	div := &mockDivisionService{}
	winner := 1
	div.On("PostResult", 1, 2, &winner).Return(nil)

	e := &Engine{
		collab:  Collaborators{DivisionService: div},
		metrics: metrics.New(prometheus.NewRegistry()),
		logger:  zap.NewNop(),
	}
	g := model.NewGame(1, "t", "faf", model.VisibilityPublic, 1, model.LobbyModeDefault)

	results := map[int]model.ArmyResult{
		1: {ArmyID: 10, Outcome: model.OutcomeVictory},
		2: {ArmyID: 20, Outcome: model.OutcomeDefeat},
	}

	e.postDivisionResultsLocked(context.Background(), g, results)

	div.AssertExpectations(t)
}
