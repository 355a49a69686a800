package grading

import "time"

// Task is one graded unit of a lab, worth a fixed share of the marks.
type Task struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Marks float64 `json:"marks"`
}

// Check is one atomic requirement. Every check in a task weighs the same.
type Check struct {
	Label     string `json:"label"`
	Satisfied bool   `json:"satisfied"`
}

// Require builds a check.
func Require(label string, satisfied bool) Check {
	return Check{Label: label, Satisfied: satisfied}
}

// TaskResult is the outcome of grading one task. It is built once by
// Evaluate or MissingFile and not changed afterwards.
type TaskResult struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MaxMarks     float64  `json:"max_marks"`
	AwardedMarks float64  `json:"awarded_marks"`
	Checklist    []Check  `json:"checklist"`
	Deductions   []string `json:"deductions"`
}

// Found returns the satisfied checks in order.
func (r TaskResult) Found() []Check {
	return r.filter(true)
}

// Missed returns the unsatisfied checks in order.
func (r TaskResult) Missed() []Check {
	return r.filter(false)
}

func (r TaskResult) filter(satisfied bool) []Check {
	var checks []Check
	for _, check := range r.Checklist {
		if check.Satisfied == satisfied {
			checks = append(checks, check)
		}
	}
	return checks
}

// File is one student file handed to the grader. Path is empty when the
// file was never found; Err is set when it was found but could not be read.
type File struct {
	Path    string `json:"path"`
	Content string `json:"-"`
	Err     error  `json:"-"`
}

// Found reports whether discovery located the file.
func (f File) Found() bool {
	return f.Path != ""
}

// Readable reports whether the file content can be graded.
func (f File) Readable() bool {
	return f.Found() && f.Err == nil
}

// Timing is the deadline outcome for a submission.
type Timing struct {
	Deadline    time.Time `json:"deadline"`
	SubmittedAt time.Time `json:"submitted_at"`
	Source      string    `json:"source"`
	Late        bool      `json:"late"`
	Score       float64   `json:"score"`
	Max         float64   `json:"max"`
}

// GradeReport aggregates every task result with the timing score.
type GradeReport struct {
	Lab            string       `json:"lab"`
	MarkupPath     string       `json:"markup_path"`
	StylesheetPath string       `json:"stylesheet_path"`
	Tasks          []TaskResult `json:"tasks"`
	Timing         Timing       `json:"timing"`
	StepsScore     float64      `json:"steps_score"`
	StepsMax       float64      `json:"steps_max"`
	Total          float64      `json:"total"`
	MaxPossible    float64      `json:"max_possible"`
}
