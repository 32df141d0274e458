package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"poker-platform/internal/config"
	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/lock"
	"poker-platform/internal/logging"
	"poker-platform/internal/scheduler"
	"poker-platform/internal/store"
	httptransport "poker-platform/internal/transport/http"
)

// tournamentPollEvery runs the tournament jobs on one scheduler tick out of this many.
const tournamentPollEvery = 5

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	closeLog, err := logging.Init(logCfg)
	if err != nil {
		panic(err)
	}
	defer closeLog()

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if cfg.Server.SeedSettings {
		if err := st.EnsureDefaultSettings(context.Background(), cfg.Engine.TurnTime); err != nil {
			log.Fatal().Err(err).Msg("ensure default settings failed")
		}
	}

	locks := newLocker(cfg.Server)
	hub := events.NewHub(256)
	defer hub.Close()
	eng := engine.New(st, locks, hub, engine.Options{
		AfkTurnTime:     cfg.Engine.AfkTurnTime,
		RoundExpiration: cfg.Engine.RoundExpiration,
		ReformThreshold: cfg.Engine.ReformThreshold,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	schedDone := scheduler.New(eng, cfg.Engine.PollInterval, tournamentPollEvery).Start(ctx)

	r := httptransport.NewRouter(httptransport.NewHandlers(eng, hub, st))
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	<-schedDone
	log.Info().Msg("poker server stopped")
}

// newLocker uses Redis when configured so several servers can share the
// database.
func newLocker(cfg config.ServerConfig) engine.Locker {
	if cfg.RedisAddr == "" {
		log.Info().Msg("table locks are process local")
		return lock.NewLocal()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	return lock.NewRedis(client, cfg.LockTTL)
}
