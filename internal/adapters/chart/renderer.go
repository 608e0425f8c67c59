package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ogurasousui/codex-task-report/internal/core/report"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// 出力ファイル名です。
const (
	BarChartFile = "completion_bar.png"
	PieChartFile = "task_status_pie.png"
)

// Opener は描画済みの画像を表示します。
type Opener func(path string) error

// Renderer は集計結果から棒グラフと円グラフを描画します。
type Renderer struct {
	Dir    string
	Show   bool
	Opener Opener
	Logger *slog.Logger
}

// NewRenderer は Renderer を生成します。
func NewRenderer(dir string, show bool, logger *slog.Logger) *Renderer {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{Dir: dir, Show: show, Opener: openWithSystemViewer, Logger: logger}
}

// Write は report.Sink を満たします。担当者がいない場合は描画せずに警告のみ出します。
func (r *Renderer) Write(_ context.Context, run *report.Run) error {
	if run.Report.Len() == 0 {
		r.Logger.Warn("no tasks to plot; skipping charts", "dir", r.Dir)
		return nil
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("chart: create directory %s: %w", r.Dir, err)
	}

	paths := []string{
		filepath.Join(r.Dir, BarChartFile),
		filepath.Join(r.Dir, PieChartFile),
	}
	renderers := []func(io.Writer, *report.Report) error{RenderBar, RenderPie}

	for i, path := range paths {
		if err := renderFile(path, run.Report, renderers[i]); err != nil {
			return err
		}
		r.Logger.Debug("chart written", "path", path)

		if r.Show && r.Opener != nil {
			if err := r.Opener(path); err != nil {
				r.Logger.Warn("could not display chart", "path", path, "error", err)
			}
		}
	}
	return nil
}

func renderFile(path string, rep *report.Report, render func(io.Writer, *report.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: create %s: %w", path, err)
	}
	defer f.Close()

	if err := render(f, rep); err != nil {
		return fmt.Errorf("chart: render %s: %w", path, err)
	}
	return f.Close()
}

// RenderBar は担当者ごとの完了率を棒グラフとして PNG で書き出します。
func RenderBar(w io.Writer, rep *report.Report) error {
	entries := rep.Entries()
	bars := make([]gochart.Value, 0, len(entries))
	for _, e := range entries {
		bars = append(bars, gochart.Value{Value: e.CompletionPercentage, Label: e.Assignee})
	}

	width := 800
	if need := 160 + 80*len(bars); need > width {
		width = need
	}

	graph := gochart.BarChart{
		Title:      "Completion Percentage per Employee",
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		Width:      width,
		Height:     400,
		BarWidth:   40,
		BarSpacing: 40,
		YAxis: gochart.YAxis{
			Name:  "Completion %",
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}
	return graph.Render(gochart.PNG, w)
}

// RenderPie はチーム全体の完了・未完了の件数を円グラフとして PNG で書き出します。
func RenderPie(w io.Writer, rep *report.Report) error {
	total, completed := rep.Totals()
	incomplete := total - completed

	var values []gochart.Value
	for _, s := range []struct {
		label string
		count int
	}{
		{label: "Completed", count: completed},
		{label: "Incomplete", count: incomplete},
	} {
		if s.count == 0 {
			continue
		}
		pct := report.ComputePercentage(s.count, total)
		values = append(values, gochart.Value{
			Value: float64(s.count),
			Label: fmt.Sprintf("%s (%.1f%%)", s.label, pct),
		})
	}

	graph := gochart.PieChart{
		Title:  "Task Status Distribution (team)",
		Width:  600,
		Height: 600,
		Values: values,
	}
	return graph.Render(gochart.PNG, w)
}

func openWithSystemViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
