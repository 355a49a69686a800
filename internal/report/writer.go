package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
)

const (
	gradeFile    = "grade.csv"
	reportFile   = "grade.json"
	feedbackDir  = "feedback"
	feedbackFile = "README.md"
)

// Writer persists the artifacts of a grading run.
type Writer struct {
	ArtifactsDir string
	// StepSummary is the CI step-summary file; empty disables it.
	StepSummary string
	Logger      zerolog.Logger
}

// Artifacts lists the files a run produced.
type Artifacts struct {
	CSV      string
	JSON     string
	Feedback string
	Tasks    []string
	Summary  string
}

// FeedbackPath is where the full feedback document is written.
func (w Writer) FeedbackPath() string {
	return filepath.Join(w.ArtifactsDir, feedbackDir, feedbackFile)
}

// Write renders and stores every artifact. It keeps going after a failure
// and returns all errors combined, so one unwritable file does not hide the
// others.
func (w Writer) Write(r grading.GradeReport, lab grading.Lab) (Artifacts, error) {
	var (
		artifacts Artifacts
		errs      error
	)

	if err := os.MkdirAll(filepath.Join(w.ArtifactsDir, feedbackDir), 0o755); err != nil {
		return artifacts, fmt.Errorf("create artifacts dir: %w", err)
	}

	sheet, err := CSV(r)
	errs = multierr.Append(errs, err)
	if err == nil {
		artifacts.CSV = w.writeFile(&errs, filepath.Join(w.ArtifactsDir, gradeFile), sheet)
	}

	encoded, err := json.MarshalIndent(r, "", "  ")
	errs = multierr.Append(errs, err)
	if err == nil {
		artifacts.JSON = w.writeFile(&errs, filepath.Join(w.ArtifactsDir, reportFile), encoded)
	}

	artifacts.Feedback = w.writeFile(&errs, w.FeedbackPath(), []byte(Feedback(r, lab)))

	for _, task := range r.Tasks {
		path := filepath.Join(w.ArtifactsDir, feedbackDir, task.ID+".md")
		if written := w.writeFile(&errs, path, []byte(TaskDocument(task))); written != "" {
			artifacts.Tasks = append(artifacts.Tasks, written)
		}
	}

	if w.StepSummary != "" {
		summary := Summary(r, lab, filepath.ToSlash(w.FeedbackPath()))
		if err := appendFile(w.StepSummary, []byte(summary)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("append step summary: %w", err))
		} else {
			artifacts.Summary = w.StepSummary
		}
	}

	if errs != nil {
		w.Logger.Error().Err(errs).Str("dir", w.ArtifactsDir).Msg("some artifacts were not written")
	}
	return artifacts, errs
}

func (w Writer) writeFile(errs *error, path string, data []byte) string {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		*errs = multierr.Append(*errs, fmt.Errorf("write %s: %w", path, err))
		return ""
	}
	w.Logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("artifact written")
	return path
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return multierr.Append(err, f.Close())
}
