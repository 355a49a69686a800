package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/report"
	"github.com/noah-isme/gema-lab-grader/internal/submission"
)

func sampleReport(t *testing.T) (grading.GradeReport, grading.Lab) {
	t.Helper()

	lab := grading.MoreCSS()
	timing := lab.Deadline.Assess(lab.Deadline.At.Add(time.Hour), submission.SourceGit)
	css := `.site-header { background: var(--card); }
.tagline { color: var(--muted); }
.static-box { padding: 0.5rem 0.75rem; margin-bottom: 0.5rem; }`

	r := lab.Grade(grading.File{}, grading.File{Path: "styles.css", Content: css}, timing)
	return r, lab
}

func TestNumber(t *testing.T) {
	require.Equal(t, "100", report.Number(100))
	require.Equal(t, "9.6", report.Number(9.6))
	require.Equal(t, "9.33", report.Number(9.33))
	require.Equal(t, "0", report.Number(0))
}

func TestEscape(t *testing.T) {
	require.Equal(t, "Has &lt;head&gt; section", report.Escape("Has <head> section"))
}

func TestCSV(t *testing.T) {
	r := grading.GradeReport{Total: 87.5, MaxPossible: 100}

	data, err := report.CSV(r)
	require.NoError(t, err)
	require.Equal(t, "student,score,max_score\nall_students,87.5,100\n", string(data))
}

func TestConsoleLine(t *testing.T) {
	r := grading.GradeReport{
		Total:       57.6,
		MaxPossible: 100,
		StepsScore:  47.6,
		StepsMax:    80,
		Timing:      grading.Timing{Score: 10, Max: 20},
	}

	require.Equal(t, "✔ Lab graded: 57.6/100 (Submission: 10/20, TODOs: 47.6/80).", report.ConsoleLine(r))
}

func TestFeedback(t *testing.T) {
	r, lab := sampleReport(t)

	doc := report.Feedback(r, lab)

	require.True(t, strings.HasPrefix(doc, "# 3-2-More-CSS-main — Feedback"))
	require.Contains(t, doc, "- HTML: ❌ No HTML file found")
	require.Contains(t, doc, "- CSS: ✅ styles.css")
	require.Contains(t, doc, "(Late submission)")
	require.Contains(t, doc, "Last commit time (from git log)")
	require.Contains(t, doc, "- ❗ No .html file found (expected index.html or any .html file).")
	require.Contains(t, doc, "- ✅ Has .static-box { ... } rule")
	require.Contains(t, doc, "- ❌ .static-box sets border-radius: 10px")
	require.Contains(t, doc, "## How marks were deducted (rules)")
	require.Equal(t, len(r.Tasks), strings.Count(doc, "\n### "))
}

func TestTaskDocument(t *testing.T) {
	r, _ := sampleReport(t)

	doc := report.TaskDocument(r.Tasks[0])

	require.True(t, strings.HasPrefix(doc, "# TODO 0: HTML links styles.css in <head> — **0/6**"))
	require.Contains(t, doc, "- (No checks available)")
}

func TestSummary(t *testing.T) {
	r, lab := sampleReport(t)

	summary := report.Summary(r, lab, "artifacts/feedback/README.md")

	require.Contains(t, summary, "| Component | Marks |")
	require.Contains(t, summary, "| Submission (timing) | 10/20 |")
	require.Contains(t, summary, "**"+report.Number(r.Total)+" / 100**")
	require.Equal(t, len(r.Tasks), strings.Count(summary, "<details>"))
	require.Contains(t, summary, "<summary><strong>TODO 0: HTML links styles.css in &lt;head&gt;</strong> — 0/6</summary>")
	require.Contains(t, summary, "- (Nothing detected)")
	require.Contains(t, summary, "- No deductions.")
	require.Contains(t, summary, "`artifacts/feedback/README.md`")
}

func TestHTMLRenderer(t *testing.T) {
	renderer := report.NewHTMLRenderer()

	out, err := renderer.Render("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<script>alert(1)</script>\n\n<details><summary>x</summary>y</details>\n")
	require.NoError(t, err)
	require.Contains(t, out, "<h1")
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<details>")
	require.NotContains(t, out, "<script>")
}

func TestWriter_Write(t *testing.T) {
	r, lab := sampleReport(t)
	dir := t.TempDir()
	stepSummary := filepath.Join(dir, "step-summary.md")
	require.NoError(t, os.WriteFile(stepSummary, []byte("previous step\n"), 0o644))

	writer := report.Writer{
		ArtifactsDir: filepath.Join(dir, "artifacts"),
		StepSummary:  stepSummary,
		Logger:       zerolog.Nop(),
	}

	artifacts, err := writer.Write(r, lab)
	require.NoError(t, err)
	require.Len(t, artifacts.Tasks, len(r.Tasks))

	sheet, err := os.ReadFile(filepath.Join(dir, "artifacts", "grade.csv"))
	require.NoError(t, err)
	require.Contains(t, string(sheet), "all_students,"+report.Number(r.Total)+",100")

	feedback, err := os.ReadFile(writer.FeedbackPath())
	require.NoError(t, err)
	require.Contains(t, string(feedback), "TODO-by-TODO Feedback")

	_, err = os.Stat(filepath.Join(dir, "artifacts", "feedback", "todo7.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "artifacts", "grade.json"))
	require.NoError(t, err)

	summary, err := os.ReadFile(stepSummary)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(summary), "previous step\n# 3-2-More-CSS-main — Autograding Summary"))
}

func TestWriter_WriteCollectsErrors(t *testing.T) {
	r, lab := sampleReport(t)
	dir := t.TempDir()

	writer := report.Writer{
		ArtifactsDir: dir,
		StepSummary:  filepath.Join(dir, "missing", "summary.md"),
		Logger:       zerolog.Nop(),
	}

	artifacts, err := writer.Write(r, lab)
	require.Error(t, err)
	require.Contains(t, err.Error(), "append step summary")
	require.NotEmpty(t, artifacts.CSV)
	require.Empty(t, artifacts.Summary)
}
