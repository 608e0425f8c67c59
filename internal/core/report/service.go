package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-task-report/internal/core/task"
)

// TaskSource はタスクの読み込み元の抽象です。
type TaskSource interface {
	LoadTasks(ctx context.Context) ([]*task.Task, error)
	Name() string
}

// Sink は集計結果の出力先の抽象です。
type Sink interface {
	Write(ctx context.Context, run *Run) error
}

// SinkFunc は関数を Sink として扱うためのアダプタです。
type SinkFunc func(ctx context.Context, run *Run) error

// Write は f を呼び出します。
func (f SinkFunc) Write(ctx context.Context, run *Run) error {
	return f(ctx, run)
}

// Run は一回分の集計結果です。
type Run struct {
	ID                string    `json:"id"`
	GeneratedAt       time.Time `json:"generated_at"`
	Source            string    `json:"source"`
	TotalTasks        int       `json:"total_tasks"`
	CompletedTasks    int       `json:"completed_tasks"`
	OverallPercentage float64   `json:"overall_percentage"`
	Report            *Report   `json:"report"`
}

// Service は読み込み・集計・出力のユースケースをまとめます。
type Service struct {
	source TaskSource
	clock  task.Clock
	sinks  []Sink
	newID  func() string
}

// NewService は Service を生成します。clock が nil の場合は UTC の現在時刻を使います。
func NewService(source TaskSource, clock task.Clock, sinks ...Sink) *Service {
	if clock == nil {
		clock = task.ClockFunc(func() time.Time { return time.Now().UTC() })
	}
	return &Service{source: source, clock: clock, sinks: sinks, newID: uuid.NewString}
}

// Build はタスクを読み込んで集計します。読み込みに失敗した場合は task.ErrIOFailure を返します。
func (s *Service) Build(ctx context.Context) (*Run, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: task source is not configured", task.ErrIOFailure)
	}

	tasks, err := s.source.LoadTasks(ctx)
	if err != nil {
		if errors.Is(err, task.ErrIOFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", task.ErrIOFailure, s.source.Name(), err)
	}

	run := Summarize(tasks)
	run.ID = s.newID()
	run.GeneratedAt = s.clock.Now().UTC()
	run.Source = s.source.Name()
	return run, nil
}

// Publish は集計結果を登録順に各出力先へ渡します。最初の失敗で中断します。
func (s *Service) Publish(ctx context.Context, run *Run) error {
	for i, sink := range s.sinks {
		if err := sink.Write(ctx, run); err != nil {
			return fmt.Errorf("report: sink %d: %w", i, err)
		}
	}
	return nil
}

// Summarize はタスク一覧から Run の集計部分を組み立てます。
func Summarize(tasks []*task.Task) *Run {
	completed := len(task.Completed(tasks))
	return &Run{
		TotalTasks:        len(tasks),
		CompletedTasks:    completed,
		OverallPercentage: ComputePercentage(completed, len(tasks)),
		Report:            TeamReport(tasks),
	}
}

// Summary は標準出力向けの一行サマリーを返します。
func Summary(run *Run) string {
	return fmt.Sprintf("Loaded %d tasks. Completed: %d. Overall completion: %.2f%%",
		run.TotalTasks, run.CompletedTasks, run.OverallPercentage)
}
