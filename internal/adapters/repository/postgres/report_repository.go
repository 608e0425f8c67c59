package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
	pgdb "github.com/ogurasousui/codex-task-report/internal/platform/db/postgres"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// ReportRepository は集計結果を report_runs / report_entries に保存します。
type ReportRepository struct {
	pool pgdb.Queryer
	tx   TransactionManager
}

// NewReportRepository は ReportRepository を生成します。tx が nil の場合はトランザクションを張りません。
func NewReportRepository(pool pgdb.Queryer, tx TransactionManager) *ReportRepository {
	if tx == nil {
		tx = (*pgdb.TransactionManager)(nil)
	}
	return &ReportRepository{pool: pool, tx: tx}
}

// Write は report.Sink を満たします。集計結果と担当者別の行を一つのトランザクションで保存します。
func (r *ReportRepository) Write(ctx context.Context, run *report.Run) error {
	if _, err := uuid.Parse(run.ID); err != nil {
		return fmt.Errorf("%w: %q", report.ErrInvalidRunID, run.ID)
	}

	return r.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		exec := pgdb.QueryerFromContext(ctx, r.pool)

		if _, err := exec.Exec(ctx, `
            INSERT INTO report_runs (id, generated_at, source, total_tasks, completed_tasks, overall_percentage)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, run.ID, run.GeneratedAt, run.Source, run.TotalTasks, run.CompletedTasks, run.OverallPercentage); err != nil {
			return fmt.Errorf("postgres: insert report run: %w", err)
		}

		for i, e := range run.Report.Entries() {
			if _, err := exec.Exec(ctx, `
                INSERT INTO report_entries (run_id, position, emp_name, total_tasks, completed_tasks, completion_percentage)
                VALUES ($1, $2, $3, $4, $5, $6)
            `, run.ID, i, e.Assignee, e.TotalTasks, e.CompletedTasks, e.CompletionPercentage); err != nil {
				return fmt.Errorf("postgres: insert report entry %q: %w", e.Assignee, err)
			}
		}
		return nil
	})
}

// FindByID は保存済みの集計結果を取得します。担当者の順序は保存時のままです。
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*report.Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", report.ErrInvalidRunID, id)
	}

	var run *report.Run
	err := r.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		exec := pgdb.QueryerFromContext(ctx, r.pool)

		found, err := scanRun(exec.QueryRow(ctx, `
            SELECT id::text, generated_at, source, total_tasks, completed_tasks, overall_percentage
              FROM report_runs
             WHERE id = $1
        `, id))
		if err != nil {
			return err
		}

		rows, err := exec.Query(ctx, `
            SELECT emp_name, total_tasks, completed_tasks, completion_percentage
              FROM report_entries
             WHERE run_id = $1
             ORDER BY position
        `, id)
		if err != nil {
			return fmt.Errorf("postgres: query report entries: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name string
				e    report.Entry
			)
			if err := rows.Scan(&name, &e.TotalTasks, &e.CompletedTasks, &e.CompletionPercentage); err != nil {
				return fmt.Errorf("postgres: scan report entry: %w", err)
			}
			found.Report.Set(name, e)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("postgres: iterate report entries: %w", err)
		}

		run = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func scanRun(row pgx.Row) (*report.Run, error) {
	var (
		run         report.Run
		generatedAt time.Time
	)
	if err := row.Scan(&run.ID, &generatedAt, &run.Source, &run.TotalTasks, &run.CompletedTasks, &run.OverallPercentage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrRunNotFound
		}
		return nil, fmt.Errorf("postgres: scan report run: %w", err)
	}
	run.GeneratedAt = generatedAt.UTC()
	run.Report = report.New()
	return &run, nil
}
