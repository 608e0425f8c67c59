package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ogurasousui/codex-task-report/internal/core/task"
)

// Source は CSV ファイルからタスクを読み込みます。
type Source struct {
	Path  string
	Clock task.Clock
}

// NewSource は Source を生成します。
func NewSource(path string, clock task.Clock) *Source {
	return &Source{Path: path, Clock: clock}
}

// Name はログや永続化で使う読み込み元の名前です。
func (s *Source) Name() string {
	return "csv:" + s.Path
}

// LoadTasks はファイルを読み込み、取り込み可能な行をタスクに変換します。
func (s *Source) LoadTasks(ctx context.Context) ([]*task.Task, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", task.ErrIOFailure, s.Path, err)
	}
	defer f.Close()

	rows, err := ReadRows(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", task.ErrIOFailure, s.Path, err)
	}
	return task.FromRows(rows, s.Clock), nil
}

// ReadRows は先頭行をヘッダーとして、各行を列名 -> 値のマップにします。
// ヘッダーより短い行は不足列を持たないマップになります。引用符の誤りは許容します。
func ReadRows(ctx context.Context, r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []map[string]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv record: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
