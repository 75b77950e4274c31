// Command evaluate runs the question set against the live query stack
// and writes a markdown report, optionally with a spreadsheet copy.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/bootstrap"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/evaluation"
)

func main() {
	questionsPath := flag.String("questions", "", "path to the question set (defaults to QUESTIONS_PATH)")
	reportPath := flag.String("out", "evaluation_report.md", "markdown report destination")
	xlsxPath := flag.String("xlsx", "", "optional xlsx report destination")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New("evaluate")
	if err != nil {
		slog.Error("bootstrap_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	path := *questionsPath
	if path == "" {
		path = app.Cfg.QuestionsPath
	}
	questions, err := evaluation.LoadQuestions(path)
	if err != nil {
		app.Logger.Error("questions_load_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	report := evaluation.NewRunner(app.Query, app.Logger).Run(ctx, questions)

	if err := os.WriteFile(*reportPath, []byte(report.Markdown()), 0o644); err != nil {
		app.Logger.Error("report_write_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *xlsxPath != "" {
		if err := report.WriteXLSX(*xlsxPath); err != nil {
			app.Logger.Error("xlsx_write_failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	app.Logger.Info("evaluation_finished",
		slog.Int("questions", report.Total),
		slog.Int("grounded", report.Answered),
		slog.Int("fallbacks", report.Fallbacks),
		slog.Int("errors", report.Errors),
		slog.Float64("success_rate", report.SuccessRate()),
		slog.Float64("citation_rate", report.CitationRate()),
		slog.String("report", *reportPath),
	)
}
