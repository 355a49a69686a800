package grading

import (
	"github.com/noah-isme/gema-lab-grader/internal/markup"
	"github.com/noah-isme/gema-lab-grader/internal/stylesheet"
)

// MarkupTask grades the HTML entry file.
type MarkupTask struct {
	Task
	Checks func(document string) []Check
}

// StylesheetTask grades the parsed stylesheet.
type StylesheetTask struct {
	Task
	Checks func(rules stylesheet.Rules) []Check
}

// Lab is a complete grading scheme: the markup task, the stylesheet tasks,
// and the deadline policy.
type Lab struct {
	Name           string
	MarkupFile     string
	StylesheetFile string
	Deadline       Deadline
	Markup         MarkupTask
	Stylesheet     []StylesheetTask
	Parser         stylesheet.Parser
}

// Tasks lists every task in report order.
func (l Lab) Tasks() []Task {
	tasks := make([]Task, 0, len(l.Stylesheet)+1)
	tasks = append(tasks, l.Markup.Task)
	for _, task := range l.Stylesheet {
		tasks = append(tasks, task.Task)
	}
	return tasks
}

// StepsMax is the sum of the task marks.
func (l Lab) StepsMax() float64 {
	var total float64
	for _, task := range l.Tasks() {
		total += task.Marks
	}
	return total
}

// MaxPossible is the best total a submission can reach.
func (l Lab) MaxPossible() float64 {
	return l.StepsMax() + l.Deadline.FullMarks
}

// Grade evaluates every task. A missing or unreadable file zeroes the tasks
// that depend on it; the rest are graded independently.
func (l Lab) Grade(markupFile, stylesheetFile File, timing Timing) GradeReport {
	results := make([]TaskResult, 0, len(l.Stylesheet)+1)
	results = append(results, l.gradeMarkup(markupFile))
	results = append(results, l.gradeStylesheet(stylesheetFile)...)

	report := NewGradeReport(l.Name, results, timing)
	report.MarkupPath = markupFile.Path
	report.StylesheetPath = stylesheetFile.Path
	return report
}

func (l Lab) gradeMarkup(file File) TaskResult {
	switch {
	case !file.Found():
		return MissingFile(l.Markup.Task, "No .html file found (expected "+l.MarkupFile+" or any .html file).")
	case file.Err != nil:
		return MissingFile(l.Markup.Task, "Could not read HTML file at: "+file.Path)
	}

	document := markup.StripComments(file.Content)
	return Evaluate(l.Markup.Task, l.Markup.Checks(document))
}

func (l Lab) gradeStylesheet(file File) []TaskResult {
	results := make([]TaskResult, 0, len(l.Stylesheet))

	if !file.Readable() {
		note := "No " + l.StylesheetFile + " file found."
		if file.Found() {
			note = "Could not read CSS file at: " + file.Path
		}
		for _, task := range l.Stylesheet {
			results = append(results, MissingFile(task.Task, note))
		}
		return results
	}

	parser := l.Parser
	if parser == nil {
		parser = stylesheet.BraceParser{}
	}
	rules := parser.Parse(stylesheet.StripComments(file.Content))

	for _, task := range l.Stylesheet {
		results = append(results, Evaluate(task.Task, task.Checks(rules)))
	}
	return results
}
