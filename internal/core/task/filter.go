package task

// Completed は完了済みのタスクを入力順のまま返します。
func Completed(tasks []*Task) []*Task {
	return filter(tasks, true)
}

// Incomplete は未完了のタスクを入力順のまま返します。
func Incomplete(tasks []*Task) []*Task {
	return filter(tasks, false)
}

func filter(tasks []*Task, completed bool) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out
}
