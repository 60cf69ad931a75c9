package collab

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/broadcast"
)

// RedisBroadcastPublisher implements broadcast.Publisher over a Redis
// Pub/Sub channel per game id, grounded on RedisRepository.Publish/
// Subscribe and DatabaseManagerImpl.UpdateMatchState's Redis-backed
// snapshot cache from shared/database/interfaces.go.
type RedisBroadcastPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBroadcastPublisher wraps an already-connected Redis client.
func NewRedisBroadcastPublisher(client *redis.Client, logger *zap.Logger) *RedisBroadcastPublisher {
	return &RedisBroadcastPublisher{client: client, logger: logger}
}

// Publish serializes the snapshot and publishes it to the per-game
// channel "game-snapshot:<id>".
func (p *RedisBroadcastPublisher) Publish(ctx context.Context, gameID int, snap broadcast.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	channel := channelName(gameID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Warn("broadcast publish failed", zap.Int("gameId", gameID), zap.Error(err))
		return err
	}
	return nil
}

func channelName(gameID int) string {
	return fmt.Sprintf("game-snapshot:%d", gameID)
}

// NewRedisClient builds a redis.Client the way
// api-gateway/shared/database/redis.go wires its connection pool.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 10,
		MaxRetries:   3,
	})
}
