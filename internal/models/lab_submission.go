package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
)

// LabSubmission is one graded upload of a web lab.
type LabSubmission struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StudentID      uint           `gorm:"index;not null" json:"student_id"`
	Lab            string         `gorm:"size:128;index;not null" json:"lab"`
	ArchiveName    string         `gorm:"size:255" json:"archive_name"`
	ArchiveSHA256  string         `gorm:"size:64;index" json:"archive_sha256"`
	MarkupPath     string         `gorm:"size:512" json:"markup_path"`
	StylesheetPath string         `gorm:"size:512" json:"stylesheet_path"`
	StepsScore     float64        `json:"steps_score"`
	TimingScore    float64        `json:"timing_score"`
	Total          float64        `json:"total"`
	MaxPossible    float64        `json:"max_possible"`
	Late           bool           `json:"late"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Report         datatypes.JSON `gorm:"type:json" json:"-"`
	Feedback       string         `gorm:"type:text" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SetReport stores the full grade report and copies its headline numbers
// into indexed columns.
func (s *LabSubmission) SetReport(report grading.GradeReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode grade report: %w", err)
	}

	s.Report = datatypes.JSON(data)
	s.Lab = report.Lab
	s.MarkupPath = report.MarkupPath
	s.StylesheetPath = report.StylesheetPath
	s.StepsScore = report.StepsScore
	s.TimingScore = report.Timing.Score
	s.Total = report.Total
	s.MaxPossible = report.MaxPossible
	s.Late = report.Timing.Late
	s.SubmittedAt = report.Timing.SubmittedAt
	return nil
}

// GradeReport decodes the stored report.
func (s LabSubmission) GradeReport() (grading.GradeReport, error) {
	var report grading.GradeReport
	if len(s.Report) == 0 {
		return report, nil
	}
	if err := json.Unmarshal(s.Report, &report); err != nil {
		return grading.GradeReport{}, fmt.Errorf("decode grade report: %w", err)
	}
	return report, nil
}
