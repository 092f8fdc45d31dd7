// Command server runs the Stratagem game and coordination server: order
// submission, turn resolution, replay persistence, rating updates, and
// spectator/event endpoints, all over plain HTTP and one WebSocket.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/KaliBomaye/stratagem/internal/auth"
	"github.com/KaliBomaye/stratagem/internal/config"
	"github.com/KaliBomaye/stratagem/internal/handler"
	"github.com/KaliBomaye/stratagem/internal/logger"
	"github.com/KaliBomaye/stratagem/internal/middleware"
	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/internal/repository/file"
	"github.com/KaliBomaye/stratagem/internal/repository/memory"
	"github.com/KaliBomaye/stratagem/internal/repository/postgres"
	redisrepo "github.com/KaliBomaye/stratagem/internal/repository/redis"
	"github.com/KaliBomaye/stratagem/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()

	replays, err := file.NewReplayStore(cfg.ReplayDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open replay store")
	}

	rankings, err := buildRankingsRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open rankings store")
	}
	matches, err := buildMatchRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open match store")
	}
	cache, err := buildBarrierCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open barrier cache")
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	tokens := auth.NewTokenStore()

	wsHub := handler.NewHub()

	ratingSvc := service.NewRatingService(rankings, matches, func() string {
		return time.Now().UTC().Format(time.RFC3339)
	})
	gameMgr := service.NewGameManager(replays, cache, ratingSvc, wsHub)
	recoverySvc := service.NewRecoveryService(replays, cache, gameMgr)

	recovered, err := recoverySvc.RecoverAll(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("game recovery failed (continuing with what loaded)")
	}
	log.Info().Int("recovered", recovered).Msg("startup recovery complete")

	gameHandler := handler.NewGameHandler(gameMgr, replays, jwtMgr, tokens)
	orderHandler := handler.NewOrderHandler(gameMgr, wsHub)
	rankingHandler := handler.NewRankingHandler(ratingSvc, matches)
	wsHandler := handler.NewWSHandler(wsHub)

	gameIDFromPath := func(r *http.Request) string { return r.PathValue("id") }
	requirePlayer := auth.RequirePlayer(jwtMgr, tokens, gameIDFromPath)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /games", gameHandler.CreateGame)
	mux.HandleFunc("GET /games", gameHandler.ListGames)
	mux.HandleFunc("GET /games/{id}/spectator", gameHandler.GetSpectator)
	mux.HandleFunc("POST /games/{id}/process", gameHandler.Process)
	mux.HandleFunc("GET /games/{id}/replay", gameHandler.GetReplay)
	mux.HandleFunc("GET /rankings", rankingHandler.Leaderboard)
	mux.HandleFunc("GET /rankings/{agent_id}", rankingHandler.Profile)
	mux.HandleFunc("GET /matches", rankingHandler.ListMatches)
	mux.HandleFunc("GET /matches/{id}", rankingHandler.GetMatch)
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	mux.Handle("GET /games/{id}/state", requirePlayer(http.HandlerFunc(gameHandler.GetState)))
	mux.Handle("POST /games/{id}/orders", requirePlayer(http.HandlerFunc(orderHandler.SubmitOrders)))
	mux.Handle("POST /games/{id}/diplomacy", requirePlayer(http.HandlerFunc(orderHandler.SubmitDiplomacy)))
	mux.Handle("POST /games/{id}/draw", requirePlayer(http.HandlerFunc(orderHandler.VoteDraw)))

	limiter := middleware.NewPerTokenRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	root := middleware.Chain(mux,
		middleware.Logger,
		middleware.CORS(cfg.CORSOrigin),
		middleware.JSON,
		limiter.Middleware,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}

// buildRankingsRepository always returns the file-backed store, whether
// or not DATABASE_URL is set. Stratagem has no Postgres-backed rankings
// store (only matches) — see DESIGN.md — so rankings always persist to
// the JSON file.
func buildRankingsRepository(cfg *config.Config) (repository.RankingsRepository, error) {
	return file.NewRankingsStore(cfg.RatingsPath)
}

// buildMatchRepository picks the Postgres-backed store when DATABASE_URL
// is set, otherwise the file-backed default.
func buildMatchRepository(cfg *config.Config) (repository.MatchRepository, error) {
	if cfg.DatabaseURL == "" {
		return file.NewMatchStore(cfg.MatchesPath)
	}
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		return nil, err
	}
	return postgres.NewMatchRepo(db), nil
}

// buildBarrierCache picks the Redis-backed cache when REDIS_URL is set,
// otherwise the in-memory default.
func buildBarrierCache(cfg *config.Config) (repository.BarrierCache, error) {
	if cfg.RedisURL == "" {
		return memory.NewBarrierCache(), nil
	}
	return redisrepo.NewClient(cfg.RedisURL)
}
