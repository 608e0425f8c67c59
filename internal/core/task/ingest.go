package task

import "strings"

var truthyValues = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"y":    {},
	"t":    {},
}

// ParseCompleted は完了列の文字列を bool に変換します。大文字小文字は区別しません。
func ParseCompleted(raw string) bool {
	_, ok := truthyValues[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// FromRow は列名をキーとする一行分の文字列からタスクを生成します。
// 担当者 (emp_name) が空の行は取り込まず、false を返します。
func FromRow(row map[string]string, clock Clock) (*Task, bool) {
	assignee := strings.TrimSpace(row[FieldAssignee])
	if assignee == "" {
		return nil, false
	}

	return New(NewInput{
		Assignee:    assignee,
		Description: strings.TrimSpace(row[FieldDescription]),
		Completed:   ParseCompleted(row[FieldCompleted]),
		Deadline:    nonEmpty(row[FieldDeadline]),
		CreatedAt:   nonEmpty(row[FieldCreatedAt]),
	}, clock), true
}

// FromRows は複数行をまとめて変換します。取り込めない行は読み飛ばします。
func FromRows(rows []map[string]string, clock Clock) []*Task {
	tasks := make([]*Task, 0, len(rows))
	for _, row := range rows {
		if t, ok := FromRow(row, clock); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
