package collab

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/model"
)

const gamesCollection = "games"

// FirestoreGameRepository implements GameRepository against a Firestore
// project, mirroring DatabaseManagerImpl.StoreMatch/UpdateMatchState's
// document-per-match shape from shared/database/interfaces.go.
type FirestoreGameRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreGameRepository initializes a Firestore client for projectID
// and returns a GameRepository adapter bound to it.
func NewFirestoreGameRepository(ctx context.Context, projectID string, logger *zap.Logger) (*FirestoreGameRepository, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("firebase app init: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client init: %w", err)
	}
	return &FirestoreGameRepository{client: client, logger: logger}, nil
}

// Save creates or overwrites a game document (spec §6 gameRepository.save).
func (r *FirestoreGameRepository) Save(ctx context.Context, g *model.Game) error {
	_, err := r.client.Collection(gamesCollection).Doc(docID(g.ID)).Set(ctx, gameDocument(g))
	if err != nil {
		r.logger.Error("firestore save failed", zap.Int("gameId", g.ID), zap.Error(err))
	}
	return err
}

// Persist writes the launch-time snapshot of a game (spec §6
// gameRepository.persist — called once, at onGameLaunching).
func (r *FirestoreGameRepository) Persist(ctx context.Context, g *model.Game) error {
	return r.Save(ctx, g)
}

// FindMaxID seeds the Active-Game Registry's id counter from the highest
// persisted game id (spec §4.1).
func (r *FirestoreGameRepository) FindMaxID(ctx context.Context) (int, error) {
	iter := r.client.Collection(gamesCollection).OrderBy("id", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()
	doc, err := iter.Next()
	if err != nil {
		return 0, nil //nolint:nilerr // no persisted games yet is not an error
	}
	var stored struct {
		ID int `firestore:"id"`
	}
	if err := doc.DataTo(&stored); err != nil {
		return 0, err
	}
	return stored.ID, nil
}

// UpdateUnfinishedGamesValidity bulk-updates persisted games that never
// reached a terminal state (spec §6), e.g. after a crash recovery pass.
func (r *FirestoreGameRepository) UpdateUnfinishedGamesValidity(ctx context.Context, validity model.Validity) error {
	iter := r.client.Collection(gamesCollection).
		Where("state", "in", []string{string(model.GameInitializing), string(model.GameOpen), string(model.GamePlaying)}).
		Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	any := false
	for {
		doc, err := iter.Next()
		if err != nil {
			break
		}
		batch.Update(doc.Ref, []firestore.Update{{Path: "validity", Value: string(validity)}})
		any = true
	}
	if !any {
		return nil
	}
	_, err := batch.Commit(ctx)
	return err
}

func docID(gameID int) string {
	return fmt.Sprintf("%d", gameID)
}

func gameDocument(g *model.Game) map[string]interface{} {
	return map[string]interface{}{
		"id":          g.ID,
		"title":       g.Title,
		"state":       string(g.State),
		"validity":    string(g.Validity),
		"featuredMod": g.FeaturedMod,
		"hostId":      g.HostID,
		"startTime":   g.StartTime,
		"endTime":     g.EndTime,
	}
}
