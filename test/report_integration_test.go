//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	repo "github.com/ogurasousui/codex-task-report/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
	"github.com/ogurasousui/codex-task-report/internal/core/task"
	"github.com/ogurasousui/codex-task-report/internal/platform/config"
	pg "github.com/ogurasousui/codex-task-report/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func TestReportRunIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		t.Fatalf("invalid database config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	clock := stubClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	taskRepo := repo.NewTaskRepository(pool, clock)

	seed := []task.NewInput{
		{Assignee: "alice", Description: "write docs", Completed: true},
		{Assignee: "bob", Description: "review"},
		{Assignee: "alice", Description: "ship"},
	}
	for _, in := range seed {
		if err := taskRepo.Insert(ctx, task.New(in, clock)); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}

	runRepo := repo.NewReportRepository(pool, pg.NewTransactionManager(pool))
	svc := report.NewService(taskRepo, clock, runRepo)

	run, err := svc.Build(ctx)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if run.TotalTasks != 3 || run.CompletedTasks != 1 || run.OverallPercentage != 33.33 {
		t.Fatalf("unexpected run %+v", run)
	}
	if err := svc.Publish(ctx, run); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	found, err := runRepo.FindByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if found.Source != "postgres:tasks" || !found.GeneratedAt.Equal(clock.now) {
		t.Fatalf("unexpected stored run %+v", found)
	}

	names := found.Report.Assignees()
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Fatalf("unexpected stored order %v", names)
	}
	alice, _ := found.Report.Get("alice")
	if alice.TotalTasks != 2 || alice.CompletedTasks != 1 || alice.CompletionPercentage != 50 {
		t.Fatalf("unexpected alice entry %+v", alice)
	}

	missing := "00000000-0000-4000-8000-000000000000"
	if _, err := runRepo.FindByID(ctx, missing); !errors.Is(err, report.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../" + config.DefaultPath
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
