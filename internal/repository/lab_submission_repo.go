package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lab-grader/internal/models"
)

// LabSubmissionRepository persists graded lab submissions.
type LabSubmissionRepository interface {
	Create(ctx context.Context, submission *models.LabSubmission) error
	GetByID(ctx context.Context, id uint) (models.LabSubmission, error)
	ListByStudent(ctx context.Context, studentID uint, lab string) ([]models.LabSubmission, error)
}

type labSubmissionRepository struct {
	db *gorm.DB
}

// NewLabSubmissionRepository constructs a lab submission repository.
func NewLabSubmissionRepository(db *gorm.DB) LabSubmissionRepository {
	return &labSubmissionRepository{db: db}
}

func (r *labSubmissionRepository) Create(ctx context.Context, submission *models.LabSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *labSubmissionRepository) GetByID(ctx context.Context, id uint) (models.LabSubmission, error) {
	var submission models.LabSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.LabSubmission{}, err
	}

	return submission, nil
}

// ListByStudent returns the newest submissions first. An empty lab matches
// every lab.
func (r *labSubmissionRepository) ListByStudent(ctx context.Context, studentID uint, lab string) ([]models.LabSubmission, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if lab != "" {
		query = query.Where("lab = ?", lab)
	}

	var submissions []models.LabSubmission
	if err := query.Order("created_at DESC").Order("id DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
