package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
)

// Renderer は集計結果を A4 一枚の PDF に書き出します。
type Renderer struct {
	Path string
}

// NewRenderer は Renderer を生成します。
func NewRenderer(path string) *Renderer {
	return &Renderer{Path: path}
}

// Write は report.Sink を満たします。
func (r *Renderer) Write(_ context.Context, run *report.Run) error {
	b, err := Generate(run)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pdf: create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(r.Path, b, 0o644); err != nil {
		return fmt.Errorf("pdf: write %s: %w", r.Path, err)
	}
	return nil
}

var columnWidths = []float64{80, 30, 35, 35}

// Generate は担当者別の表とチーム合計を含む PDF を生成します。
func Generate(run *report.Run) ([]byte, error) {
	if run == nil || run.Report == nil {
		return nil, fmt.Errorf("pdf: invalid report data")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 20, 15)
	doc.SetAutoPageBreak(true, 20)
	doc.AliasNbPages("{nb}")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Arial", "", 9)
		doc.SetTextColor(108, 117, 125)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	doc.SetFont("Arial", "B", 20)
	doc.SetTextColor(0, 102, 204)
	doc.CellFormat(0, 12, "Employee Task Completion", "", 1, "C", false, 0, "")

	doc.SetFont("Arial", "", 10)
	doc.SetTextColor(108, 117, 125)
	generated := run.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	doc.CellFormat(0, 8, "Generated: "+generated.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	doc.Ln(4)

	addHeaderRow(doc)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetFont("Arial", "", 10)
	doc.SetTextColor(33, 37, 41)
	for i, e := range run.Report.Entries() {
		fill := i%2 == 1
		doc.SetFillColor(248, 249, 250)
		doc.CellFormat(columnWidths[0], 8, tr(e.Assignee), "1", 0, "L", fill, 0, "")
		doc.CellFormat(columnWidths[1], 8, fmt.Sprintf("%d", e.TotalTasks), "1", 0, "R", fill, 0, "")
		doc.CellFormat(columnWidths[2], 8, fmt.Sprintf("%d", e.CompletedTasks), "1", 0, "R", fill, 0, "")
		doc.CellFormat(columnWidths[3], 8, fmt.Sprintf("%.2f%%", e.CompletionPercentage), "1", 1, "R", fill, 0, "")
	}

	total, completed := run.Report.Totals()
	doc.SetFont("Arial", "B", 10)
	doc.CellFormat(columnWidths[0], 8, "Team", "1", 0, "L", false, 0, "")
	doc.CellFormat(columnWidths[1], 8, fmt.Sprintf("%d", total), "1", 0, "R", false, 0, "")
	doc.CellFormat(columnWidths[2], 8, fmt.Sprintf("%d", completed), "1", 0, "R", false, 0, "")
	doc.CellFormat(columnWidths[3], 8, fmt.Sprintf("%.2f%%", report.ComputePercentage(completed, total)), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeaderRow(doc *gofpdf.Fpdf) {
	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(0, 102, 204)
	doc.SetTextColor(255, 255, 255)
	headers := []string{"Employee", "Total", "Completed", "Completion %"}
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		doc.CellFormat(columnWidths[i], 8, h, "1", ln, "C", true, 0, "")
	}
}
