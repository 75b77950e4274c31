package evaluation

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

// WriteXLSX saves the report as a spreadsheet for reviewers who track
// evaluation runs outside the repo.
func (r *Report) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"#", "Question", "Category", "Outcome", "Answer", "Citations", "Elapsed (ms)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(resultsSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, res := range r.Results {
		row := i + 2
		outcome := "grounded"
		answerText := ""
		citations := ""
		switch {
		case res.Err != nil:
			outcome = "error"
			answerText = res.Err.Error()
		case !res.Answer.Grounded:
			outcome = "fallback"
			answerText = res.Answer.Paragraph1
		default:
			answerText = res.Answer.Paragraph1
			urls := make([]string, 0, len(res.Answer.Citations))
			for _, c := range res.Answer.Citations {
				urls = append(urls, c.URL)
			}
			citations = strings.Join(urls, "\n")
		}

		values := []any{
			i + 1,
			res.Question.Question,
			res.Question.Category,
			outcome,
			answerText,
			citations,
			res.Elapsed.Milliseconds(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(resultsSheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	summaryRow := len(r.Results) + 3
	summary := fmt.Sprintf("success %.1f%%, citations %.1f%%, errors %d/%d",
		r.SuccessRate()*100, r.CitationRate()*100, r.Errors, r.Total)
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	if err := f.SetCellValue(resultsSheet, cell, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
