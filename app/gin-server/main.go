package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/mockmate/config"
	"github.com/yoockh/mockmate/internal/api/middleware"
	"github.com/yoockh/mockmate/internal/api/routes"
	"github.com/yoockh/mockmate/internal/logger"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mockmate",
		Short:         "Mock interview matching and session API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	root.AddCommand(migrateCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create MongoDB indexes and PostgreSQL tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.StorageMemory {
				log.Info("memory storage needs no migration")
				return nil
			}
			return migrate(cmd.Context(), cfg, log)
		},
	}
}

func setup() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func migrate(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	mc, err := config.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	defer mc.Disconnect(ctx)

	if err := config.EnsureMongoIndexes(ctx, mc.Database(cfg.MongoDB)); err != nil {
		return fmt.Errorf("mongodb indexes: %w", err)
	}
	log.Info("MongoDB indexes ensured")

	pg, err := config.NewPostgres(cfg.PostgresURI)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := config.MigratePostgres(pg); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	log.Info("PostgreSQL tables migrated")
	return nil
}

func serve(parent context.Context, cfg config.Config, log *logrus.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		b.close(closeCtx)
	}()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, buildDeps(cfg, b, log))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if b.worker != nil {
		g.Go(func() error {
			log.WithField("workers", cfg.SessionEventWorkers).Info("session event workers started")
			return b.worker.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
