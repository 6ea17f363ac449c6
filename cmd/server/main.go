package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tourneyops/match-engine/internal/config"
	"github.com/tourneyops/match-engine/internal/httpapi"
	"github.com/tourneyops/match-engine/internal/hub"
	"github.com/tourneyops/match-engine/internal/service"
	"github.com/tourneyops/match-engine/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	ctx := context.Background()

	st, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}

	svc := service.New(st, log)
	h := hub.NewHub(ctx, st, log)
	handler := httpapi.SetupRoutes(svc, h, cfg.Server.AdminToken, cfg.Server.CORSOrigins, log)

	log.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// buildStore picks postgres when configured, in-memory otherwise. With
// postgres, redis carries change notifications between instances.
func buildStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory match store")
		return store.NewMemory(), nil
	}

	var notifier store.Notifier
	if cfg.Redis.URL != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
		})
		notifier = store.NewRedisBus(rdb, log)
		log.Info("redis change notification enabled", zap.String("addr", cfg.Redis.URL))
	} else {
		log.Warn("postgres without redis: websocket subscriptions unavailable")
	}
	return store.OpenPostgres(cfg.DatabaseURL, notifier, log)
}
