package dto

import (
	"time"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/models"
)

// LabResponse outlines a lab: its tasks, marks, and deadline.
type LabResponse struct {
	Name           string         `json:"name"`
	MarkupFile     string         `json:"markup_file"`
	StylesheetFile string         `json:"stylesheet_file"`
	Deadline       time.Time      `json:"deadline"`
	Tasks          []grading.Task `json:"tasks"`
	StepsMax       float64        `json:"steps_max"`
	TimingMax      float64        `json:"timing_max"`
	LateTiming     float64        `json:"late_timing"`
	MaxPossible    float64        `json:"max_possible"`
}

// NewLabResponse converts a lab definition into a DTO.
func NewLabResponse(lab grading.Lab) LabResponse {
	return LabResponse{
		Name:           lab.Name,
		MarkupFile:     lab.MarkupFile,
		StylesheetFile: lab.StylesheetFile,
		Deadline:       lab.Deadline.At,
		Tasks:          lab.Tasks(),
		StepsMax:       lab.StepsMax(),
		TimingMax:      lab.Deadline.FullMarks,
		LateTiming:     lab.Deadline.LateMarks,
		MaxPossible:    lab.MaxPossible(),
	}
}

// LabSubmissionCreateRequest captures the payload for grading an upload.
type LabSubmissionCreateRequest struct {
	Lab       string `form:"lab" json:"lab" validate:"required,max=128"`
	StudentID uint   `form:"-" json:"-" validate:"required"`
}

// LabSubmissionResponse serializes a graded submission for API clients.
type LabSubmissionResponse struct {
	ID          uint                `json:"id"`
	StudentID   uint                `json:"student_id"`
	Lab         string              `json:"lab"`
	ArchiveName string              `json:"archive_name"`
	Total       float64             `json:"total"`
	MaxPossible float64             `json:"max_possible"`
	Late        bool                `json:"late"`
	SubmittedAt time.Time           `json:"submitted_at"`
	CreatedAt   time.Time           `json:"created_at"`
	Summary     string              `json:"summary"`
	Report      grading.GradeReport `json:"report"`
}

// NewLabSubmissionResponse converts a stored submission into a DTO.
func NewLabSubmissionResponse(model models.LabSubmission, summary string) (LabSubmissionResponse, error) {
	report, err := model.GradeReport()
	if err != nil {
		return LabSubmissionResponse{}, err
	}

	return LabSubmissionResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		Lab:         model.Lab,
		ArchiveName: model.ArchiveName,
		Total:       model.Total,
		MaxPossible: model.MaxPossible,
		Late:        model.Late,
		SubmittedAt: model.SubmittedAt,
		CreatedAt:   model.CreatedAt,
		Summary:     summary,
		Report:      report,
	}, nil
}

// LabSubmissionSummary is the list view of a submission.
type LabSubmissionSummary struct {
	ID          uint      `json:"id"`
	Lab         string    `json:"lab"`
	Total       float64   `json:"total"`
	MaxPossible float64   `json:"max_possible"`
	Late        bool      `json:"late"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewLabSubmissionSummarySlice converts stored submissions into list items.
func NewLabSubmissionSummarySlice(submissions []models.LabSubmission) []LabSubmissionSummary {
	items := make([]LabSubmissionSummary, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, LabSubmissionSummary{
			ID:          s.ID,
			Lab:         s.Lab,
			Total:       s.Total,
			MaxPossible: s.MaxPossible,
			Late:        s.Late,
			SubmittedAt: s.SubmittedAt,
		})
	}
	return items
}

// LabFeedbackResponse carries the sanitised feedback document.
type LabFeedbackResponse struct {
	ID       uint   `json:"id"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}
