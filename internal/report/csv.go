package report

import (
	"bytes"
	"encoding/csv"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
)

// CSV renders the single-row grade sheet consumed by the classroom importer.
func CSV(r grading.GradeReport) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{
		{"student", "score", "max_score"},
		{"all_students", Number(r.Total), Number(r.MaxPossible)},
	}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
