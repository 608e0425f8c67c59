package report

import "github.com/ogurasousui/codex-task-report/internal/core/task"

// TeamReport はタスクを担当者ごとに集計します。
// 担当者は初出順に並び、完了率は Round2 で小数第 2 位に丸めます。入力が空なら空の Report を返します。
func TeamReport(tasks []*task.Task) *Report {
	r := New()
	for _, t := range tasks {
		e := r.entry(t.Assignee)
		e.TotalTasks++
		if t.Completed {
			e.CompletedTasks++
		}
	}

	for _, name := range r.order {
		e := r.entries[name]
		e.CompletionPercentage = Round2(ComputePercentage(e.CompletedTasks, e.TotalTasks))
	}
	return r
}
