// Package cli はタスク集計コマンドの組み立てと実行を行います。
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-task-report/internal/adapters/chart"
	"github.com/ogurasousui/codex-task-report/internal/adapters/pdf"
	pgrepo "github.com/ogurasousui/codex-task-report/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-task-report/internal/adapters/sink/jsonfile"
	"github.com/ogurasousui/codex-task-report/internal/adapters/source/csvfile"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
	"github.com/ogurasousui/codex-task-report/internal/platform/config"
	pgdb "github.com/ogurasousui/codex-task-report/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-task-report/internal/platform/logger"
)

// 終了コードです。
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type options struct {
	configPath string
	envFile    string
	tasksPath  string
	outPath    string
	chartDir   string
	pdfPath    string
	show       bool
}

// Run は args を解釈してレポートを生成し、終了コードを返します。
// サマリーは stdout に、診断メッセージは stderr に出力します。
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, set, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if err := loadEnvFile(opts.envFile); err != nil {
		fmt.Fprintf(stderr, "Error loading env file: %v\n", err)
		return ExitError
	}

	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return ExitError
	}
	applyFlags(cfg, opts, set)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return ExitError
	}

	log := logger.Init(cfg.Log.Level, cfg.Log.Format, stderr)

	var pool *pgxpool.Pool
	if cfg.DatabaseRequired() {
		pool, err = pgdb.NewPool(ctx, cfg.Database)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading tasks: %v\n", err)
			return ExitError
		}
		defer pool.Close()
	}

	svc := report.NewService(newSource(cfg, pool), nil, newSinks(cfg, pool, log)...)

	run, err := svc.Build(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading tasks: %v\n", err)
		return ExitError
	}
	fmt.Fprintln(stdout, report.Summary(run))

	if err := svc.Publish(ctx, run); err != nil {
		log.Error("failed to write report", slog.String("run_id", run.ID), slog.Any("error", err))
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return ExitError
	}

	log.Info("report written",
		slog.String("run_id", run.ID),
		slog.String("summary_path", cfg.Output.SummaryPath),
		slog.Int("assignees", run.Report.Len()),
	)
	return ExitOK
}

func parseFlags(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var opts options

	flags := flag.NewFlagSet("taskreport", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or "+config.DefaultPath+")")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config (ignored when missing)")
	flags.StringVar(&opts.tasksPath, "tasks", "", "path to tasks CSV (default tasks.csv)")
	flags.StringVar(&opts.tasksPath, "t", "", "shorthand for -tasks")
	flags.StringVar(&opts.outPath, "out", "", "path to summary JSON (default employee_summary.json)")
	flags.StringVar(&opts.outPath, "o", "", "shorthand for -out")
	flags.StringVar(&opts.chartDir, "chart-dir", "", "directory for chart images (default .)")
	flags.StringVar(&opts.pdfPath, "pdf", "", "path to PDF summary (disabled when empty)")
	flags.BoolVar(&opts.show, "show", false, "open the charts with the system viewer")

	if err := flags.Parse(args); err != nil {
		return opts, nil, err
	}

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return opts, set, nil
}

func applyFlags(cfg *config.Config, opts options, set map[string]bool) {
	if set["tasks"] || set["t"] {
		cfg.Input.TasksPath = opts.tasksPath
	}
	if set["out"] || set["o"] {
		cfg.Output.SummaryPath = opts.outPath
	}
	if set["chart-dir"] {
		cfg.Output.ChartDir = opts.chartDir
	}
	if set["pdf"] {
		cfg.Output.PDFPath = opts.pdfPath
	}
	if set["show"] {
		cfg.Output.Show = opts.show
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func newSource(cfg *config.Config, pool *pgxpool.Pool) report.TaskSource {
	if cfg.Input.Source == config.SourcePostgres {
		return pgrepo.NewTaskRepository(pool, nil)
	}
	return csvfile.NewSource(cfg.Input.TasksPath, nil)
}

func newSinks(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) []report.Sink {
	sinks := []report.Sink{
		jsonfile.NewSink(cfg.Output.SummaryPath),
		chart.NewRenderer(cfg.Output.ChartDir, cfg.Output.Show, log),
	}
	if cfg.Output.PDFPath != "" {
		sinks = append(sinks, pdf.NewRenderer(cfg.Output.PDFPath))
	}
	if cfg.Database.PersistReports && pool != nil {
		sinks = append(sinks, pgrepo.NewReportRepository(pool, pgdb.NewTransactionManager(pool)))
	}
	return sinks
}
