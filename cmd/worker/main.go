// The worker binary runs scheduled maintenance outside the API process: the
// log entry retention prune. Pass -once to run a single pass and exit.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/modelhub-io/go-modelapi-backend/config"
	"github.com/modelhub-io/go-modelapi-backend/internal/bootstrap"
	"github.com/modelhub-io/go-modelapi-backend/internal/logentries/repository"
	"github.com/modelhub-io/go-modelapi-backend/internal/logging"
	"github.com/modelhub-io/go-modelapi-backend/internal/retention"
)

func main() {
	once := flag.Bool("once", false, "run one prune pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatal("config load failed", zap.Error(err))
	}
	logging.Init(cfg.App.LogLevel)

	if cfg.Retention.Days <= 0 {
		logging.Log.Fatal("RETENTION_DAYS must be positive for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := bootstrap.OpenSQL(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		logging.Log.Fatal("database connection failed", zap.Error(err))
	}
	defer sqlDB.Close()

	sched := retention.NewScheduler(
		repository.NewLogEntryRepository(sqlDB),
		cfg.Retention.Schedule,
		cfg.Retention.Days,
	)

	if *once {
		sched.RunOnce(ctx)
		return
	}

	if err := sched.Start(); err != nil {
		logging.Log.Fatal("retention scheduler failed", zap.Error(err))
	}
	defer sched.Stop()

	<-ctx.Done()
	logging.Log.Info("worker shutting down")
}
