package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockmate/config"
	"github.com/yoockh/mockmate/internal/api/handlers"
	"github.com/yoockh/mockmate/internal/api/routes"
	"github.com/yoockh/mockmate/internal/cache"
	"github.com/yoockh/mockmate/internal/events"
	"github.com/yoockh/mockmate/internal/repositories/memory"
	mongorepo "github.com/yoockh/mockmate/internal/repositories/mongo"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/workers"
)

// backends holds the stores and brokers the services run on. worker is nil
// for the memory driver, where events are delivered in-process.
type backends struct {
	users    mongorepo.UserRepository
	sessions mongorepo.SessionRepository
	notes    pgrepo.NoteRepository
	cache    cache.Cache
	pub      events.Publisher
	feed     events.Subscriber
	worker   *workers.SessionEventWorkerPool
	close    func(ctx context.Context)
}

func openBackends(ctx context.Context, cfg config.Config, log *logrus.Logger) (*backends, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		hub := events.NewHub()
		return &backends{
			users:    memory.NewUserRepo(),
			sessions: memory.NewSessionRepo(),
			notes:    memory.NewNoteRepo(),
			pub:      hub,
			feed:     hub,
			close:    func(context.Context) {},
		}, nil
	}

	mc, err := config.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}
	log.Info("MongoDB connected")

	pg, err := config.NewPostgres(cfg.PostgresURI)
	if err != nil {
		_ = mc.Disconnect(ctx)
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("PostgreSQL connected")

	rdb, err := config.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		if sqlDB, dbErr := pg.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		_ = mc.Disconnect(ctx)
		return nil, fmt.Errorf("redis: %w", err)
	}
	log.Info("Redis connected")

	db := mc.Database(cfg.MongoDB)
	c := cache.NewRedisCache(rdb, "mockmate:")
	feed := events.NewRedisFeed(rdb)

	return &backends{
		users:    mongorepo.NewUserRepo(db),
		sessions: mongorepo.NewSessionRepo(db),
		notes:    pgrepo.NewNoteRepo(pg),
		cache:    c,
		pub:      events.NewRedisStreamPublisher(rdb, cfg.SessionEventStream),
		feed:     feed,
		worker:   newWorker(rdb, feed, c, cfg, log),
		close: func(ctx context.Context) {
			_ = rdb.Close()
			if sqlDB, err := pg.DB(); err == nil {
				_ = sqlDB.Close()
			}
			_ = mc.Disconnect(ctx)
		},
	}, nil
}

func newWorker(rdb *redis.Client, feed events.Notifier, c cache.Cache, cfg config.Config, log *logrus.Logger) *workers.SessionEventWorkerPool {
	return &workers.SessionEventWorkerPool{
		Redis:      rdb,
		Feed:       feed,
		Cache:      c,
		NumWorkers: cfg.SessionEventWorkers,
		Logger:     log,
		Stream:     cfg.SessionEventStream,
	}
}

func buildDeps(cfg config.Config, b *backends, log *logrus.Logger) routes.Deps {
	directory := services.NewDirectoryService(b.users, b.cache, cfg.DirectoryCacheTTL)
	sessions := services.NewSessionService(b.sessions, directory, b.pub, log)
	notes := services.NewNoteService(b.notes, sessions, directory, cfg.NoteMaxBytes)
	match := services.NewMatchService(b.users, b.sessions, b.cache, services.MatchOptions{
		DefaultRadiusKm: cfg.MatchDefaultRadiusKm,
		MaxRadiusKm:     cfg.MatchMaxRadiusKm,
		WorkloadTTL:     cfg.WorkloadCacheTTL,
	})

	return routes.Deps{
		JWT:     cfg.JWT,
		Match:   handlers.NewMatchHandler(match),
		Session: handlers.NewSessionHandler(sessions),
		Note:    handlers.NewNoteHandler(notes),
		Profile: handlers.NewProfileHandler(directory),
		WS:      handlers.NewWSHandler(b.feed, nil),
	}
}
