package task

import "fmt"

// 直列化で使うフィールド名です。
const (
	FieldAssignee    = "emp_name"
	FieldDescription = "description"
	FieldCompleted   = "completed"
	FieldDeadline    = "deadline"
	FieldCreatedAt   = "created_at"
)

// Record はタスクの直列化表現です。
type Record struct {
	EmpName     string  `json:"emp_name"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Deadline    *string `json:"deadline"`
	CreatedAt   *string `json:"created_at"`
}

// ToRecord はタスクを Record に変換します。
func (t *Task) ToRecord() Record {
	createdAt := t.CreatedAt
	return Record{
		EmpName:     t.Assignee,
		Description: t.Description,
		Completed:   t.Completed,
		Deadline:    cloneString(t.Deadline),
		CreatedAt:   &createdAt,
	}
}

// FromRecord は Record からタスクを復元します。
func FromRecord(r Record, clock Clock) *Task {
	return New(NewInput{
		Assignee:    r.EmpName,
		Description: r.Description,
		Completed:   r.Completed,
		Deadline:    r.Deadline,
		CreatedAt:   r.CreatedAt,
	}, clock)
}

// ToMap はタスクをフィールド名をキーとするマップに変換します。
// deadline が未設定の場合は nil を格納します。
func (t *Task) ToMap() map[string]any {
	var deadline any
	if t.Deadline != nil {
		deadline = *t.Deadline
	}
	return map[string]any{
		FieldAssignee:    t.Assignee,
		FieldDescription: t.Description,
		FieldCompleted:   t.Completed,
		FieldDeadline:    deadline,
		FieldCreatedAt:   t.CreatedAt,
	}
}

// FromMap はマップからタスクを復元します。
// completed が無い場合は false、deadline と created_at は値をそのまま引き継ぎます。
func FromMap(m map[string]any, clock Clock) (*Task, error) {
	assignee, ok := m[FieldAssignee].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, FieldAssignee)
	}
	description, ok := m[FieldDescription].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, FieldDescription)
	}

	completed := false
	if raw, exists := m[FieldCompleted]; exists && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be boolean, got %T", ErrTypeMismatch, FieldCompleted, raw)
		}
		completed = b
	}

	deadline, err := optionalString(m, FieldDeadline)
	if err != nil {
		return nil, err
	}
	createdAt, err := optionalString(m, FieldCreatedAt)
	if err != nil {
		return nil, err
	}

	return New(NewInput{
		Assignee:    assignee,
		Description: description,
		Completed:   completed,
		Deadline:    deadline,
		CreatedAt:   createdAt,
	}, clock), nil
}

func optionalString(m map[string]any, key string) (*string, error) {
	raw, exists := m[key]
	if !exists || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgument, key, raw)
	}
	return &s, nil
}
