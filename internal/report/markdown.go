package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/submission"
)

// Number formats a score the shortest way that round-trips: 9.6, 100, 9.33.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fraction(score, max float64) string {
	return Number(score) + "/" + Number(max)
}

var mdEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Escape neutralises angle brackets so labels such as "<head>" survive
// inside raw HTML blocks.
func Escape(s string) string {
	return mdEscaper.Replace(s)
}

func checkLine(check grading.Check) string {
	if check.Satisfied {
		return "✅ " + check.Label
	}
	return "❌ " + check.Label
}

func submissionSection(b *strings.Builder, r grading.GradeReport) {
	status := "(On time)"
	if r.Timing.Late {
		status = "(Late submission)"
	}

	fmt.Fprintf(b, "- **Lab:** %s\n", r.Lab)
	fmt.Fprintf(b, "- **Deadline (Riyadh / UTC+03:00):** %s\n", r.Timing.Deadline.Format(time.RFC3339))
	fmt.Fprintf(b, "- **%s:** %s\n", instantLabel(r.Timing.Source), instant(r.Timing.SubmittedAt))
	fmt.Fprintf(b, "- **Submission marks:** **%s** %s\n", fraction(r.Timing.Score, r.Timing.Max), status)
}

func instantLabel(source string) string {
	switch source {
	case submission.SourceGit:
		return "Last commit time (from git log)"
	case submission.SourceReceipt:
		return "Received at"
	default:
		return "Graded at (commit time unavailable)"
	}
}

func instant(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.RFC3339)
}

func filesSection(b *strings.Builder, r grading.GradeReport, stylesheetName string) {
	b.WriteString("- HTML: ")
	if r.MarkupPath != "" {
		b.WriteString("✅ " + r.MarkupPath + "\n")
	} else {
		b.WriteString("❌ No HTML file found\n")
	}

	b.WriteString("- CSS: ")
	if r.StylesheetPath != "" {
		b.WriteString("✅ " + r.StylesheetPath + "\n")
	} else {
		b.WriteString("❌ No " + stylesheetName + " file found\n")
	}
}

// Feedback renders the full feedback document covering every task.
func Feedback(r grading.GradeReport, lab grading.Lab) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s — Feedback\n\n## Submission\n\n", r.Lab)
	submissionSection(&b, r)
	b.WriteString("\n## Files Checked\n\n")
	filesSection(&b, r, lab.StylesheetFile)
	b.WriteString("\n---\n\n## TODO-by-TODO Feedback\n")

	for _, task := range r.Tasks {
		b.WriteString("\n")
		writeTask(&b, task, "###")
	}

	b.WriteString("\n---\n\n## How marks were deducted (rules)\n\n")
	b.WriteString(rulesSection)
	return b.String()
}

const rulesSection = `- HTML comments are ignored (examples in comments do NOT count).
- CSS comments are ignored (examples in comments do NOT count).
- Checks are intentionally light: they look for key selectors and the presence of key properties.
- CSS rules can be in ANY order, and repeated selectors/properties are allowed.
- Accepted alternatives include:
  - ` + "`background`" + ` or ` + "`background-color`" + `
  - ` + "`white`" + ` or ` + "`#fff`" + ` or ` + "`#ffffff`" + `
  - ` + "`inline-block`" + ` or ` + "`inline-flex`" + ` where appropriate
  - spacing: ` + "`0.75rem`" + ` ~ ` + "`12px`" + `, ` + "`0.5rem`" + ` ~ ` + "`8px`" + `, ` + "`0.25rem`" + ` ~ ` + "`4px`" + `
  - ` + "`margin-block`" + ` may be replaced by ` + "`margin-top`" + ` and ` + "`margin-bottom`" + `
- Missing required items reduce marks proportionally within that TODO.
`

// TaskDocument renders the feedback for a single task as its own document.
func TaskDocument(task grading.TaskResult) string {
	var b strings.Builder
	writeTask(&b, task, "#")
	return b.String()
}

func writeTask(b *strings.Builder, task grading.TaskResult, heading string) {
	fmt.Fprintf(b, "%s %s — **%s**\n\n**Checklist**\n", heading, task.Name, fraction(task.AwardedMarks, task.MaxMarks))
	if len(task.Checklist) == 0 {
		b.WriteString("- (No checks available)\n")
	}
	for _, check := range task.Checklist {
		b.WriteString("- " + checkLine(check) + "\n")
	}

	b.WriteString("\n**Deductions / Notes**\n")
	if len(task.Deductions) == 0 {
		b.WriteString("- ✅ No deductions. Good job!\n")
	}
	for _, note := range task.Deductions {
		b.WriteString("- ❗ " + note + "\n")
	}
}

// Summary renders the condensed summary: a marks table followed by one
// collapsible block per task. feedbackPath is where the full document lives.
func Summary(r grading.GradeReport, lab grading.Lab, feedbackPath string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s — Autograding Summary\n\n## Submission\n\n", r.Lab)
	submissionSection(&b, r)
	b.WriteString("\n## Files Checked\n\n")
	filesSection(&b, r, lab.StylesheetFile)

	b.WriteString("\n## Marks Breakdown\n\n| Component | Marks |\n|---|---:|\n")
	for _, task := range r.Tasks {
		fmt.Fprintf(&b, "| %s | %s |\n", task.Name, fraction(task.AwardedMarks, task.MaxMarks))
	}
	fmt.Fprintf(&b, "| Submission (timing) | %s |\n", fraction(r.Timing.Score, r.Timing.Max))

	fmt.Fprintf(&b, "\n## Total Marks\n\n**%s / %s**\n\n## Detailed Checks (What you did / missed)\n", Number(r.Total), Number(r.MaxPossible))
	for _, task := range r.Tasks {
		writeDetails(&b, task)
	}

	fmt.Fprintf(&b, "\n> Full feedback is also available in: `%s`\n", feedbackPath)
	return b.String()
}

func writeDetails(b *strings.Builder, task grading.TaskResult) {
	fmt.Fprintf(b, "\n<details>\n  <summary><strong>%s</strong> — %s</summary>\n\n  <br/>\n\n", Escape(task.Name), fraction(task.AwardedMarks, task.MaxMarks))

	b.WriteString("  <strong>✅ Found</strong>\n\n")
	writeList(b, task.Found(), "(Nothing detected)")

	b.WriteString("\n  <br/><br/>\n\n  <strong>❌ Missing</strong>\n\n")
	writeList(b, task.Missed(), "(Nothing missing)")

	b.WriteString("\n  <br/><br/>\n\n  <strong>❗ Deductions / Notes</strong>\n\n")
	if len(task.Deductions) == 0 {
		b.WriteString("- No deductions.\n")
	}
	for _, note := range task.Deductions {
		b.WriteString("- " + Escape(note) + "\n")
	}

	b.WriteString("\n</details>\n")
}

func writeList(b *strings.Builder, checks []grading.Check, empty string) {
	if len(checks) == 0 {
		b.WriteString("- " + empty + "\n")
		return
	}
	for _, check := range checks {
		b.WriteString("- " + Escape(checkLine(check)) + "\n")
	}
}

// ConsoleLine is the one-line result printed at the end of a run.
func ConsoleLine(r grading.GradeReport) string {
	return fmt.Sprintf("✔ Lab graded: %s (Submission: %s, TODOs: %s).",
		fraction(r.Total, r.MaxPossible),
		fraction(r.Timing.Score, r.Timing.Max),
		fraction(r.StepsScore, r.StepsMax),
	)
}
