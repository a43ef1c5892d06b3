package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/Iaion/walkie-talkie-server-sub000/internal/adapters/http"
	wssignal "github.com/Iaion/walkie-talkie-server-sub000/internal/adapters/signal"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/app"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/config"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	store := storage.NewRedisStore(rdb)
	blobs := storage.NewDiskBlobStore(cfg.BlobDir, cfg.PublicBaseURL)

	orch := &app.Orchestrator{
		Registry: app.NewRegistry(),
		Catalog:  core.NewCatalog(domain.DefaultRooms()),
		Arbiter:  core.NewTalkArbiter(),
		Profiles: store,
		Messages: store,
		Blobs:    blobs,
		Policy:   app.SimplePolicy{},
	}

	limiter := wssignal.NewMessageRateLimiter(cfg.MsgRateLimit, cfg.MsgRateWindow)
	ctl := wssignal.NewController(orch, limiter, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, orch, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("walkie-talkie server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	log.Info().Msg("Server exited gracefully")
}
