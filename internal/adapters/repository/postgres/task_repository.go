package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-task-report/internal/core/task"
	pgdb "github.com/ogurasousui/codex-task-report/internal/platform/db/postgres"
)

// TaskRepository は tasks テーブルからタスクを読み込みます。
type TaskRepository struct {
	pool  pgdb.Queryer
	clock task.Clock
}

// NewTaskRepository は TaskRepository を生成します。
func NewTaskRepository(pool pgdb.Queryer, clock task.Clock) *TaskRepository {
	return &TaskRepository{pool: pool, clock: clock}
}

// Name は読み込み元の名前です。
func (r *TaskRepository) Name() string {
	return "postgres:tasks"
}

// LoadTasks は登録順にタスクを読み込みます。担当者が空の行は CSV と同様に読み飛ばします。
func (r *TaskRepository) LoadTasks(ctx context.Context) ([]*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT emp_name, description, completed, deadline, created_at
          FROM tasks
         ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("%w: query tasks: %w", task.ErrIOFailure, err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, ok, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan task: %w", task.ErrIOFailure, err)
		}
		if ok {
			tasks = append(tasks, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate tasks: %w", task.ErrIOFailure, err)
	}
	return tasks, nil
}

// Insert はタスクを末尾に追加します。
func (r *TaskRepository) Insert(ctx context.Context, t *task.Task) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO tasks (emp_name, description, completed, deadline, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, t.Assignee, t.Description, t.Completed, nullableString(t.Deadline), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert task: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TaskRepository) scanTask(row rowScanner) (*task.Task, bool, error) {
	var (
		assignee    string
		description sql.NullString
		completed   bool
		deadline    sql.NullString
		createdAt   sql.NullString
	)
	if err := row.Scan(&assignee, &description, &completed, &deadline, &createdAt); err != nil {
		return nil, false, err
	}

	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, false, nil
	}

	in := task.NewInput{
		Assignee:    assignee,
		Description: strings.TrimSpace(description.String),
		Completed:   completed,
	}
	if deadline.Valid && deadline.String != "" {
		in.Deadline = &deadline.String
	}
	if createdAt.Valid && createdAt.String != "" {
		in.CreatedAt = &createdAt.String
	}
	return task.New(in, r.clock), true, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
