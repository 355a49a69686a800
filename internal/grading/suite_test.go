package grading_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
)

func TestProportional(t *testing.T) {
	require.Equal(t, 9.6, grading.Proportional(16, 2, 5))
	require.Equal(t, 16.0, grading.Proportional(16, 0, 5))
	require.Equal(t, 0.0, grading.Proportional(16, 5, 5))
	require.Equal(t, 8.0, grading.Proportional(8, 0, 0))
	require.Equal(t, 9.33, grading.Proportional(14, 5, 15))
	require.Equal(t, 0.0, grading.Proportional(4, 9, 5))
}

func TestEvaluate(t *testing.T) {
	task := grading.Task{ID: "t", Name: "Task", Marks: 10}
	checks := []grading.Check{
		grading.Require("first", true),
		grading.Require("second", false),
		grading.Require("third", true),
		grading.Require("fourth", false),
	}

	result := grading.Evaluate(task, checks)
	require.Equal(t, 5.0, result.AwardedMarks)
	require.Equal(t, 10.0, result.MaxMarks)
	require.Equal(t, []string{"Missing: second", "Missing: fourth"}, result.Deductions)
	require.Len(t, result.Found(), 2)
	require.Len(t, result.Missed(), 2)

	checks[0].Satisfied = false
	require.True(t, result.Checklist[0].Satisfied)
}

func TestEvaluate_AllSatisfied(t *testing.T) {
	result := grading.Evaluate(grading.Task{Marks: 6}, []grading.Check{grading.Require("a", true)})

	require.Equal(t, 6.0, result.AwardedMarks)
	require.Empty(t, result.Deductions)
}

func TestEvaluate_NoChecks(t *testing.T) {
	result := grading.Evaluate(grading.Task{Marks: 6}, nil)

	require.Equal(t, 6.0, result.AwardedMarks)
	require.Empty(t, result.Checklist)
}

func TestMissingFile(t *testing.T) {
	result := grading.MissingFile(grading.Task{ID: "todo3", Marks: 16}, "No styles.css file found.")

	require.Equal(t, 0.0, result.AwardedMarks)
	require.Empty(t, result.Checklist)
	require.Equal(t, []string{"No styles.css file found."}, result.Deductions)
}

func TestDeadline_Assess(t *testing.T) {
	at := time.Date(2026, time.January, 28, 23, 59, 0, 0, time.FixedZone("AST", 3*60*60))
	deadline := grading.Deadline{At: at, FullMarks: 20, LateMarks: 10}

	onTime := deadline.Assess(at, "git")
	require.False(t, onTime.Late)
	require.Equal(t, 20.0, onTime.Score)

	early := deadline.Assess(at.Add(-time.Hour), "git")
	require.Equal(t, 20.0, early.Score)

	late := deadline.Assess(at.Add(time.Second), "git")
	require.True(t, late.Late)
	require.Equal(t, 10.0, late.Score)
	require.Equal(t, 20.0, late.Max)

	sameInstantUTC := deadline.Assess(at.UTC(), "git")
	require.False(t, sameInstantUTC.Late)

	unknown := deadline.Assess(time.Time{}, "clock")
	require.True(t, unknown.Late)
}

func TestNewGradeReport(t *testing.T) {
	tasks := []grading.TaskResult{
		{MaxMarks: 16, AwardedMarks: 9.6},
		{MaxMarks: 14, AwardedMarks: 9.33},
	}
	timing := grading.Timing{Score: 10, Max: 20}

	report := grading.NewGradeReport("lab", tasks, timing)
	require.Equal(t, 28.93, report.Total)
	require.Equal(t, 18.93, report.StepsScore)
	require.Equal(t, 30.0, report.StepsMax)
	require.Equal(t, 50.0, report.MaxPossible)
	require.GreaterOrEqual(t, report.Total, 0.0)
	require.LessOrEqual(t, report.Total, report.MaxPossible)
}
