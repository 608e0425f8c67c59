package task

import "fmt"

// Task は一人の担当者に割り当てられた一件の作業を表します。
type Task struct {
	Assignee    string
	Description string
	Completed   bool
	Deadline    *string
	CreatedAt   string
}

// NewInput はタスク生成時の入力です。
type NewInput struct {
	Assignee    string
	Description string
	Completed   bool
	Deadline    *string
	CreatedAt   *string
}

// New はタスクを生成します。
// 生成時には検証を行いません。呼び出し側 (取り込み処理など) が整形済みの値を渡す前提です。
// CreatedAt が未指定の場合は clock の現在時刻 (UTC) を用います。
func New(in NewInput, clock Clock) *Task {
	t := &Task{
		Assignee:    in.Assignee,
		Description: in.Description,
		Completed:   in.Completed,
		Deadline:    cloneString(in.Deadline),
	}
	if in.CreatedAt != nil && *in.CreatedAt != "" {
		t.CreatedAt = *in.CreatedAt
	} else {
		t.CreatedAt = clockOrDefault(clock).Now().UTC().Format(CreatedAtLayout)
	}
	return t
}

// AssignTask は担当者を付け替えます。空文字列は ErrInvalidArgument です。
func (t *Task) AssignTask(assignee string) error {
	if assignee == "" {
		return fmt.Errorf("%w: assignee must be a non-empty string", ErrInvalidArgument)
	}
	t.Assignee = assignee
	return nil
}

// UpdateStatus は完了状態を更新します。
func (t *Task) UpdateStatus(completed bool) {
	t.Completed = completed
}

// CompletionRate は完了なら 1.0、未完了なら 0.0 を返します。
func (t *Task) CompletionRate() float64 {
	if t.Completed {
		return 1.0
	}
	return 0.0
}

// Apply は型の付いていない変更 (JSON 由来など) を検証してから反映します。
// 対応するキーは emp_name と completed のみで、検証に失敗した場合は何も変更しません。
func (t *Task) Apply(changes map[string]any) error {
	var (
		assignee  *string
		completed *bool
	)

	for key, value := range changes {
		switch key {
		case FieldAssignee:
			s, ok := value.(string)
			if !ok || s == "" {
				return fmt.Errorf("%w: %s must be a non-empty string, got %T", ErrInvalidArgument, FieldAssignee, value)
			}
			assignee = &s
		case FieldCompleted:
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("%w: %s must be boolean, got %T", ErrTypeMismatch, FieldCompleted, value)
			}
			completed = &b
		default:
			return fmt.Errorf("%w: unsupported field %q", ErrInvalidArgument, key)
		}
	}

	if assignee != nil {
		if err := t.AssignTask(*assignee); err != nil {
			return err
		}
	}
	if completed != nil {
		t.UpdateStatus(*completed)
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
