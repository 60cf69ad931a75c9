// Command sessionengine wires the Game Session Engine and serves its admin
// plane (health/metrics only — the client wire protocol is out of scope,
// spec §1).
//
// Grounded on match-service/main.go's config/logger/collaborator wiring
// and graceful-shutdown sequencing.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/faforever/game-session-engine/internal/collab"
	"github.com/faforever/game-session-engine/internal/config"
	"github.com/faforever/game-session-engine/internal/engine"
	"github.com/faforever/game-session-engine/internal/metrics"
	"github.com/faforever/game-session-engine/internal/obslog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer zapLogger.Sync() //nolint:errcheck

	adminLogger := obslog.New(obslog.Config{Level: cfg.LogLevel, JSONFormat: cfg.IsProduction()})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient := collab.NewRedisClient(cfg.RedisAddr(), "", cfg.RedisDB)

	gameRepo, err := collab.NewFirestoreGameRepository(ctx, cfg.FirebaseProjectID, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize Firestore game repository", zap.Error(err))
	}

	wsChannel := collab.NewWebSocketChannel(zapLogger)
	publisher := collab.NewRedisBroadcastPublisher(redisClient, zapLogger)

	playerFetcher := collab.NewHTTPPlayerFetcher(cfg.PlayerServiceURL, []byte(cfg.JWTSecret), nil, zapLogger)
	playerDir := collab.NewCachedPlayerDirectory(playerFetcher, cfg.PlayerCacheTTL, zapLogger)

	seedMaxID, err := gameRepo.FindMaxID(ctx)
	if err != nil {
		zapLogger.Fatal("failed to seed game id counter from persistence", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	eng := engine.New(
		seedMaxID,
		engine.Config{
			BroadcastMinDelay:          cfg.BroadcastMinDelay,
			BroadcastMaxDelay:          cfg.BroadcastMaxDelay,
			RankedMinTimeMultiplicator: cfg.RankedMinTimeMultiplicator.Seconds(),
		},
		engine.Collaborators{
			ClientChannel:  wsChannel,
			GameRepository: gameRepo,
			// MapService, ModService, RatingService, ArmyStatisticsService
			// and DivisionService are deployment-specific gRPC/HTTP clients
			// to sibling services; wired here by whoever stands this engine
			// up against a concrete faf-server environment.
			PlayerDirectory: playerDir,
		},
		m,
		zapLogger,
		publisher,
	)
	_ = eng

	srv := newAdminServer(cfg, adminLogger, reg)

	zapLogger.Info("starting session engine admin surface",
		zap.Int("port", cfg.AdminPort),
		zap.String("environment", cfg.Environment))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("admin server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down session engine...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("admin server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("session engine stopped")
}

func newAdminServer(cfg *config.Config, logger *logrus.Logger, reg *prometheus.Registry) *http.Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLoggingMiddleware(logger))
	router.Use(rateLimitMiddleware(rate.Limit(50), 100))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return &http.Server{
		Addr:         ":" + itoa(cfg.AdminPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}
