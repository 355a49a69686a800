package grading

import (
	"math"
	"time"
)

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Proportional deducts an equal share of maxMarks for every failed check:
// max(0, M - M*failed/total), rounded to two decimals. No failures, or no
// checks at all, keeps the full marks.
func Proportional(maxMarks float64, failed, total int) float64 {
	if failed <= 0 || total <= 0 {
		return maxMarks
	}
	if failed > total {
		failed = total
	}
	deducted := maxMarks * float64(failed) / float64(total)
	return math.Max(0, Round2(maxMarks-deducted))
}

// Evaluate scores task against its ordered checks. Every failed check adds a
// "Missing: <label>" deduction note.
func Evaluate(task Task, checks []Check) TaskResult {
	checklist := make([]Check, len(checks))
	copy(checklist, checks)

	deductions := []string{}
	for _, check := range checklist {
		if !check.Satisfied {
			deductions = append(deductions, "Missing: "+check.Label)
		}
	}

	return TaskResult{
		ID:           task.ID,
		Name:         task.Name,
		MaxMarks:     task.Marks,
		AwardedMarks: Proportional(task.Marks, len(deductions), len(checklist)),
		Checklist:    checklist,
		Deductions:   deductions,
	}
}

// MissingFile is the terminal state for a task whose source file could not
// be found or read: zero marks, no checklist, one note.
func MissingFile(task Task, note string) TaskResult {
	return TaskResult{
		ID:           task.ID,
		Name:         task.Name,
		MaxMarks:     task.Marks,
		AwardedMarks: 0,
		Checklist:    []Check{},
		Deductions:   []string{note},
	}
}

// Deadline awards full timing marks on or before At and LateMarks after.
type Deadline struct {
	At        time.Time
	FullMarks float64
	LateMarks float64
}

// Assess compares a submission instant with the deadline. A zero instant
// means the time is unknown and is treated as late.
func (d Deadline) Assess(submittedAt time.Time, source string) Timing {
	late := submittedAt.IsZero() || submittedAt.After(d.At)

	score := d.FullMarks
	if late {
		score = d.LateMarks
	}

	return Timing{
		Deadline:    d.At,
		SubmittedAt: submittedAt,
		Source:      source,
		Late:        late,
		Score:       score,
		Max:         d.FullMarks,
	}
}

// NewGradeReport sums task results and timing into a report. The total is
// rounded to two decimals and clamped to [0, max].
func NewGradeReport(lab string, tasks []TaskResult, timing Timing) GradeReport {
	var steps, stepsMax float64
	for _, task := range tasks {
		steps += task.AwardedMarks
		stepsMax += task.MaxMarks
	}

	maxPossible := stepsMax + timing.Max
	total := Round2(steps + timing.Score)
	total = math.Min(math.Max(total, 0), maxPossible)

	return GradeReport{
		Lab:         lab,
		Tasks:       tasks,
		Timing:      timing,
		StepsScore:  Round2(steps),
		StepsMax:    stepsMax,
		Total:       total,
		MaxPossible: maxPossible,
	}
}
