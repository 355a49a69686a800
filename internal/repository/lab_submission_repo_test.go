package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/models"
)

func setupLabTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LabSubmission{}))
	return db
}

func TestLabSubmissionRepositoryCreateAndGet(t *testing.T) {
	repo := NewLabSubmissionRepository(setupLabTestDB(t))
	ctx := context.Background()

	submittedAt := time.Date(2026, time.January, 20, 10, 0, 0, 0, time.UTC)
	report := grading.GradeReport{
		Lab:         "3-2-More-CSS-main",
		MarkupPath:  "index.html",
		StepsScore:  70.5,
		Total:       90.5,
		MaxPossible: 100,
		Timing:      grading.Timing{SubmittedAt: submittedAt, Score: 20, Max: 20},
		Tasks:       []grading.TaskResult{{ID: "todo0", MaxMarks: 6, AwardedMarks: 6}},
	}

	submission := models.LabSubmission{StudentID: 7, ArchiveName: "lab.zip"}
	require.NoError(t, submission.SetReport(report))
	require.NoError(t, repo.Create(ctx, &submission))
	require.NotZero(t, submission.ID)

	stored, err := repo.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, "3-2-More-CSS-main", stored.Lab)
	require.Equal(t, 90.5, stored.Total)
	require.Equal(t, 20.0, stored.TimingScore)

	decoded, err := stored.GradeReport()
	require.NoError(t, err)
	require.Len(t, decoded.Tasks, 1)
	require.Equal(t, "todo0", decoded.Tasks[0].ID)
	require.True(t, decoded.Timing.SubmittedAt.Equal(submittedAt))

	_, err = repo.GetByID(ctx, submission.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLabSubmissionRepositoryListByStudent(t *testing.T) {
	db := setupLabTestDB(t)
	repo := NewLabSubmissionRepository(db)
	ctx := context.Background()

	first := models.LabSubmission{StudentID: 3, Lab: "a", Total: 40}
	second := models.LabSubmission{StudentID: 3, Lab: "a", Total: 80}
	other := models.LabSubmission{StudentID: 3, Lab: "b", Total: 10}
	stranger := models.LabSubmission{StudentID: 4, Lab: "a", Total: 99}
	for _, s := range []*models.LabSubmission{&first, &second, &other, &stranger} {
		require.NoError(t, repo.Create(ctx, s))
	}

	items, err := repo.ListByStudent(ctx, 3, "a")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, second.ID, items[0].ID, "newest submission should appear first")

	all, err := repo.ListByStudent(ctx, 3, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}
