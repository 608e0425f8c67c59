package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Entry は担当者ごとの集計結果です。
type Entry struct {
	TotalTasks           int     `json:"total_tasks"`
	CompletedTasks       int     `json:"completed_tasks"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// NamedEntry は担当者名付きの Entry です。
type NamedEntry struct {
	Assignee string
	Entry
}

// Report は担当者 -> Entry の対応を初出順に保持します。
// JSON に変換した場合もキーは初出順に並びます。
type Report struct {
	order   []string
	entries map[string]*Entry
}

// New は空の Report を生成します。
func New() *Report {
	return &Report{entries: make(map[string]*Entry)}
}

// entry は担当者の Entry を返し、初出であれば末尾に追加します。
func (r *Report) entry(assignee string) *Entry {
	if e, ok := r.entries[assignee]; ok {
		return e
	}
	e := &Entry{}
	r.entries[assignee] = e
	r.order = append(r.order, assignee)
	return e
}

// Set は担当者の Entry を設定します。既存の担当者であれば順序は変わりません。
func (r *Report) Set(assignee string, e Entry) {
	*r.entry(assignee) = e
}

// Len は担当者数を返します。
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Assignees は担当者を初出順で返します。
func (r *Report) Assignees() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get は担当者の Entry を返します。
func (r *Report) Get(assignee string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[assignee]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries は担当者名付きの Entry を初出順で返します。
func (r *Report) Entries() []NamedEntry {
	if r == nil {
		return nil
	}
	out := make([]NamedEntry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, NamedEntry{Assignee: name, Entry: *r.entries[name]})
	}
	return out
}

// Totals はチーム全体のタスク数と完了数を返します。
func (r *Report) Totals() (total, completed int) {
	if r == nil {
		return 0, 0
	}
	for _, name := range r.order {
		e := r.entries[name]
		total += e.TotalTasks
		completed += e.CompletedTasks
	}
	return total, completed
}

// MarshalJSON は初出順のキーを持つ JSON オブジェクトを出力します。
func (r *Report) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		writeEntry(&buf, r.entries[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeEntry は Entry を書き出します。割合は整数値でも小数点付き (100.0) で出力します。
func writeEntry(buf *bytes.Buffer, e *Entry) {
	fmt.Fprintf(buf, `{"total_tasks":%d,"completed_tasks":%d,"completion_percentage":%s}`,
		e.TotalTasks, e.CompletedTasks, formatPercentage(e.CompletionPercentage))
}

func formatPercentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// UnmarshalJSON は JSON オブジェクトのキー順を保ったまま読み込みます。
func (r *Report) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("report: decode: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("report: decode: expected object, got %v", tok)
	}

	decoded := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("report: decode: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("report: decode: unexpected key %v", tok)
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("report: decode entry %q: %w", name, err)
		}
		decoded.Set(name, e)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("report: decode: %w", err)
	}

	*r = *decoded
	return nil
}
