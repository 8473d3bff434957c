package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/modelhub-io/go-modelapi-backend/config"
	"github.com/modelhub-io/go-modelapi-backend/internal/bootstrap"
	"github.com/modelhub-io/go-modelapi-backend/internal/logentries/repository"
	"github.com/modelhub-io/go-modelapi-backend/internal/logging"
	"github.com/modelhub-io/go-modelapi-backend/internal/retention"
)

const serviceName = "go-modelapi-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatal("config load failed", zap.Error(err))
	}

	logging.Init(cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbOpts := bootstrap.DBOptions{DSN: cfg.Database.DSN()}
	pool, err := bootstrap.OpenDB(ctx, dbOpts)
	if err != nil {
		logging.Log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	sqlDB, err := bootstrap.OpenSQL(ctx, dbOpts)
	if err != nil {
		logging.Log.Fatal("database connection failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logging.Log.Fatal("redis connection failed", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		DB:             pool,
		SQL:            sqlDB,
		Redis:          rdb,
		PageSize:       cfg.API.PageSize,
		AdminKey:       cfg.API.Key,
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
	})
	if err != nil {
		logging.Log.Fatal("router setup failed", zap.Error(err))
	}

	// In-process retention when configured; the worker binary does the same
	// job for deployments that want it out of the request path.
	if cfg.Retention.Days > 0 {
		sched := retention.NewScheduler(
			repository.NewLogEntryRepository(sqlDB),
			cfg.Retention.Schedule,
			cfg.Retention.Days,
		)
		if err := sched.Start(); err != nil {
			logging.Log.Fatal("retention scheduler failed", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logging.Log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Log.Error("shutdown failed", zap.Error(err))
	}
}
