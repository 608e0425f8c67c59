package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ogurasousui/codex-task-report/internal/core/report"
)

// Sink は担当者別の集計結果を JSON ファイルに書き出します。
type Sink struct {
	Path string
}

// NewSink は Sink を生成します。
func NewSink(path string) *Sink {
	return &Sink{Path: path}
}

// Write は report.Sink を満たします。
func (s *Sink) Write(_ context.Context, run *report.Run) error {
	return Save(run.Report, s.Path)
}

// Save は集計結果を 2 スペースでインデントした JSON として path に保存します。
func Save(r *report.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonfile: create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("jsonfile: create %s: %w", path, err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", path, err)
	}
	return f.Close()
}

// Load は Save で保存した集計結果を読み込みます。
func Load(path string) (*report.Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read %s: %w", path, err)
	}
	r := report.New()
	if err := json.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", path, err)
	}
	return r, nil
}
