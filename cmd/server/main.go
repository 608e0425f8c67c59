package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-task-report/internal/adapters/grpc/handler"
	"github.com/ogurasousui/codex-task-report/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
	"github.com/ogurasousui/codex-task-report/internal/platform/config"
	pg "github.com/ogurasousui/codex-task-report/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-task-report/internal/platform/logger"
	"github.com/ogurasousui/codex-task-report/internal/platform/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or "+config.DefaultPath+")")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	lg := logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	var (
		store handler.RunStore
		sinks []report.Sink
	)
	if cfg.Database.PersistReports {
		dbPool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to initialize database pool: %v", err)
		}
		defer dbPool.Close()

		repo := postgres.NewReportRepository(dbPool, pg.NewTransactionManager(dbPool))
		store = repo
		sinks = append(sinks, repo)
	}

	grpcServer := server.New(cfg.Server.ListenAddr, handler.NewReportHandler(nil, store, sinks...), lg)

	lg.Info("gRPC server listening", slog.String("addr", cfg.Server.ListenAddr), slog.Bool("persist_reports", cfg.Database.PersistReports))

	if err := grpcServer.Run(ctx); err != nil {
		lg.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}
