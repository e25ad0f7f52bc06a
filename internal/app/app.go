package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safehaven/internal/cache"
	"safehaven/internal/config"
	"safehaven/internal/logger"
	"safehaven/internal/repository"
	"safehaven/internal/service"
	"safehaven/internal/transport/rest"
	"safehaven/internal/transport/ws"
)

const connectTimeout = 5 * time.Second

// App owns the gateway's connections and services
type App struct {
	Config *config.Config
	Log    logger.Logger

	Redis *redis.Client
	Mongo *mongo.Client

	Sessions *service.SessionService
	Hub      *ws.Hub
	Handler  *rest.Container
}

// New connects to Redis and MongoDB and builds every service
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to redis", map[string]interface{}{"address": cfg.Redis.Address})

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		rdb.Close()
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("connected to mongodb", map[string]interface{}{"database": cfg.Mongo.Database})

	draftRepo := repository.NewDraftRepo(mongoClient.Database(cfg.Mongo.Database))
	if err := draftRepo.EnsureIndexes(pingCtx, cfg.Workflow.DraftMaxAge); err != nil {
		log.WithError(err).Warn("could not ensure draft indexes", nil)
	}

	hub := ws.NewHub(log)

	backend := service.NewBackendClient(cfg.Backend, log)
	loader := service.NewSurveyLoader(backend, log)
	toasts := service.NewToastService(cfg.Workflow.ToastDuration, hub, log)
	sessions := service.NewSessionService(
		loader,
		backend,
		cache.NewSessionCache(rdb, cfg.Workflow.SessionTTL),
		toasts,
		hub,
		cfg,
		log,
	)

	return &App{
		Config:   cfg,
		Log:      log,
		Redis:    rdb,
		Mongo:    mongoClient,
		Sessions: sessions,
		Hub:      hub,
		Handler: &rest.Container{
			Config:         cfg,
			AuthService:    service.NewAuthService(cfg.Auth),
			SurveyLoader:   loader,
			SessionService: sessions,
			DraftService:   service.NewDraftService(draftRepo, cfg.Workflow.DraftMaxAge, log),
			WSHub:          hub,
			Logger:         log,
		},
	}, nil
}

// Close tears down open sessions, then the hub and the connections
func (a *App) Close(ctx context.Context) {
	a.Sessions.Shutdown()
	a.Hub.Shutdown()
	if err := a.Mongo.Disconnect(ctx); err != nil {
		a.Log.WithError(err).Warn("mongo disconnect failed", nil)
	}
	if err := a.Redis.Close(); err != nil {
		a.Log.WithError(err).Warn("redis close failed", nil)
	}
}
