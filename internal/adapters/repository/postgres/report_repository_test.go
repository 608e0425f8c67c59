package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
	pgdb "github.com/ogurasousui/codex-task-report/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

const testRunID = "6f1c2a7e-3d4b-4c5a-9e8f-0a1b2c3d4e5f"

func newTestRun() *report.Run {
	r := report.New()
	r.Set("alice", report.Entry{TotalTasks: 2, CompletedTasks: 1, CompletionPercentage: 50})
	r.Set("bob", report.Entry{TotalTasks: 1, CompletedTasks: 1, CompletionPercentage: 100})

	return &report.Run{
		ID:                testRunID,
		GeneratedAt:       time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Source:            "csv:tasks.csv",
		TotalTasks:        3,
		CompletedTasks:    2,
		OverallPercentage: 66.67,
		Report:            r,
	}
}

func TestReportRepository_Write(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock, pgdb.NewTransactionManager(mock))

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).
		WithArgs(testRunID, pgxmock.AnyArg(), "csv:tasks.csv", 3, 2, 66.67).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_entries")).
		WithArgs(testRunID, 0, "alice", 2, 1, 50.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_entries")).
		WithArgs(testRunID, 1, "bob", 1, 1, 100.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.Write(context.Background(), newTestRun()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRepository_Write_RollbackOnEntryError(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock, pgdb.NewTransactionManager(mock))

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_entries")).
		WillReturnError(errors.New("check violation"))
	mock.ExpectRollback()

	err := repo.Write(context.Background(), newTestRun())
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRepository_Write_InvalidID(t *testing.T) {
	t.Parallel()

	run := newTestRun()
	run.ID = "not-a-uuid"

	err := NewReportRepository(nil, nil).Write(context.Background(), run)
	if !errors.Is(err, report.ErrInvalidRunID) {
		t.Fatalf("expected ErrInvalidRunID, got %v", err)
	}
}

func TestReportRepository_FindByID(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock, pgdb.NewTransactionManager(mock))
	generatedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs")).
		WithArgs(testRunID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "generated_at", "source", "total_tasks", "completed_tasks", "overall_percentage"}).
			AddRow(testRunID, generatedAt, "csv:tasks.csv", 3, 2, 66.67))
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_entries")).
		WithArgs(testRunID).
		WillReturnRows(pgxmock.NewRows([]string{"emp_name", "total_tasks", "completed_tasks", "completion_percentage"}).
			AddRow("bob", 1, 1, 100.0).
			AddRow("alice", 2, 1, 50.0))
	mock.ExpectCommit()

	run, err := repo.FindByID(context.Background(), testRunID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if run.TotalTasks != 3 || run.CompletedTasks != 2 || run.OverallPercentage != 66.67 {
		t.Fatalf("unexpected run %+v", run)
	}
	if !run.GeneratedAt.Equal(generatedAt) {
		t.Fatalf("unexpected generated_at %v", run.GeneratedAt)
	}

	names := run.Report.Assignees()
	if len(names) != 2 || names[0] != "bob" || names[1] != "alice" {
		t.Fatalf("expected stored order, got %v", names)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock, pgdb.NewTransactionManager(mock))

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs")).
		WithArgs(testRunID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "generated_at", "source", "total_tasks", "completed_tasks", "overall_percentage"}))
	mock.ExpectRollback()

	_, err := repo.FindByID(context.Background(), testRunID)
	if !errors.Is(err, report.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
