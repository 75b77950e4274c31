// Package evaluation runs a fixed question set through the query service
// and reports how often answers are grounded and cited.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

// Question is one evaluation case. ExpectFallback marks questions that a
// well-behaved system should refuse rather than answer.
type Question struct {
	Question       string `json:"question"`
	Category       string `json:"category,omitempty"`
	ExpectFallback bool   `json:"expect_fallback,omitempty"`
}

// Result is the outcome of one evaluated question.
type Result struct {
	Question  Question
	Answer    *domain.Answer
	Err       error
	Elapsed   time.Duration
	Succeeded bool
}

// Report aggregates a full evaluation run.
type Report struct {
	StartedAt    time.Time
	Results      []Result
	Total        int
	Answered     int
	Fallbacks    int
	Errors       int
	WithCitation int
}

// SuccessRate is the share of questions whose outcome matched
// expectation: grounded answers for in-scope questions, the fallback
// for out-of-scope ones.
func (r *Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	ok := 0
	for _, res := range r.Results {
		if res.Succeeded {
			ok++
		}
	}
	return float64(ok) / float64(r.Total)
}

// CitationRate is the share of grounded answers that carry at least one
// citation.
func (r *Report) CitationRate() float64 {
	if r.Answered == 0 {
		return 0
	}
	return float64(r.WithCitation) / float64(r.Answered)
}

// LoadQuestions reads the evaluation question set from a JSON file.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}
	return questions, nil
}

type Runner struct {
	query  ports.QueryService
	logger *slog.Logger
}

func NewRunner(query ports.QueryService, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{query: query, logger: logger}
}

// Run evaluates every question sequentially. Per-question errors are
// recorded, never fatal; a broken corpus still produces a report.
func (r *Runner) Run(ctx context.Context, questions []Question) *Report {
	report := &Report{StartedAt: time.Now().UTC(), Total: len(questions)}

	for _, q := range questions {
		if ctx.Err() != nil {
			break
		}
		started := time.Now()
		answer, err := r.query.Answer(ctx, q.Question)
		result := Result{Question: q, Answer: answer, Err: err, Elapsed: time.Since(started)}

		switch {
		case err != nil:
			report.Errors++
			r.logger.Warn("eval_question_failed",
				slog.String("question", q.Question),
				slog.String("error", err.Error()),
			)
		case answer.Grounded:
			report.Answered++
			if len(answer.Citations) > 0 {
				report.WithCitation++
			}
			result.Succeeded = !q.ExpectFallback
		default:
			report.Fallbacks++
			result.Succeeded = q.ExpectFallback
		}

		report.Results = append(report.Results, result)
	}
	return report
}
