package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lab-grader/internal/dto"
	"github.com/noah-isme/gema-lab-grader/internal/events"
	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/models"
	"github.com/noah-isme/gema-lab-grader/internal/observability"
	"github.com/noah-isme/gema-lab-grader/internal/report"
	"github.com/noah-isme/gema-lab-grader/internal/repository"
	"github.com/noah-isme/gema-lab-grader/internal/submission"
)

const maxLabArchiveBytes int64 = 10 * 1024 * 1024

var (
	// ErrLabNotFound indicates the requested lab is not in the catalog.
	ErrLabNotFound = errors.New("lab not found")
	// ErrLabSubmissionNotFound indicates the submission does not exist or belongs to someone else.
	ErrLabSubmissionNotFound = errors.New("lab submission not found")
	// ErrArchiveRequired signals that the request did not include a file upload.
	ErrArchiveRequired = errors.New("submission file is required")
	// ErrArchiveUnsupportedType is returned when the upload is not a valid ZIP file.
	ErrArchiveUnsupportedType = errors.New("submission file must be a ZIP archive")
	// ErrArchiveTooLarge is returned when the upload exceeds the 10 MB limit.
	ErrArchiveTooLarge = errors.New("submission exceeds the 10 MB limit")
	// ErrArchiveInvalid signals that the zip archive could not be read.
	ErrArchiveInvalid = errors.New("submission archive is invalid or corrupted")
	// ErrArchiveDangerousFile indicates the archive contains disallowed content.
	ErrArchiveDangerousFile = errors.New("submission archive contains disallowed files")
)

// archiveSkipDirs are ignored inside uploads on top of the usual ones.
var archiveSkipDirs = []string{"__MACOSX"}

// GradingService grades uploaded lab archives and serves stored results.
type GradingService interface {
	Labs() []dto.LabResponse
	Submit(ctx context.Context, payload dto.LabSubmissionCreateRequest, file *multipart.FileHeader) (dto.LabSubmissionResponse, error)
	Get(ctx context.Context, id, studentID uint) (dto.LabSubmissionResponse, error)
	ListMine(ctx context.Context, studentID uint, lab string) ([]dto.LabSubmissionSummary, error)
	Feedback(ctx context.Context, id, studentID uint) (dto.LabFeedbackResponse, error)
}

// GradingServiceOptions carries the optional collaborators of the service.
type GradingServiceOptions struct {
	Redis     *redis.Client
	CacheTTL  time.Duration
	Publisher events.Publisher
	Now       func() time.Time
}

type gradingService struct {
	labs        map[string]grading.Lab
	submissions repository.LabSubmissionRepository
	validator   *validator.Validate
	renderer    *report.HTMLRenderer
	redis       *redis.Client
	cacheTTL    time.Duration
	publisher   events.Publisher
	now         func() time.Time
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradingService constructs a GradingService for the given labs.
func NewGradingService(
	labs []grading.Lab,
	submissionRepo repository.LabSubmissionRepository,
	validate *validator.Validate,
	opts GradingServiceOptions,
	logger zerolog.Logger,
) GradingService {
	catalog := make(map[string]grading.Lab, len(labs))
	for _, lab := range labs {
		catalog[lab.Name] = lab
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &gradingService{
		labs:        catalog,
		submissions: submissionRepo,
		validator:   validate,
		renderer:    report.NewHTMLRenderer(),
		redis:       opts.Redis,
		cacheTTL:    ttl,
		publisher:   opts.Publisher,
		now:         now,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-lab-grader/internal/service/grading"),
	}
}

func (s *gradingService) Labs() []dto.LabResponse {
	names := make([]string, 0, len(s.labs))
	for name := range s.labs {
		names = append(names, name)
	}
	sort.Strings(names)

	labs := make([]dto.LabResponse, 0, len(names))
	for _, name := range names {
		labs = append(labs, dto.NewLabResponse(s.labs[name]))
	}
	return labs
}

func (s *gradingService) Submit(ctx context.Context, payload dto.LabSubmissionCreateRequest, file *multipart.FileHeader) (dto.LabSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LabSubmissionResponse{}, err
	}

	lab, ok := s.labs[payload.Lab]
	if !ok {
		return dto.LabSubmissionResponse{}, ErrLabNotFound
	}

	if file == nil {
		return dto.LabSubmissionResponse{}, ErrArchiveRequired
	}
	if file.Size > maxLabArchiveBytes {
		s.reject(lab, ErrArchiveTooLarge)
		return dto.LabSubmissionResponse{}, ErrArchiveTooLarge
	}

	spanCtx, span := s.tracer.Start(ctx, "weblab.submit", trace.WithAttributes(
		attribute.String("lab", lab.Name),
		attribute.Int64("student_id", int64(payload.StudentID)),
		attribute.Int64("archive_bytes", file.Size),
	))
	defer span.End()

	data, err := readMultipartFile(file)
	if err == nil {
		err = ensureZipArchive(file.Filename, data)
	}
	var archive *zip.Reader
	if err == nil {
		archive, err = openArchive(data)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.reject(lab, err)
		return dto.LabSubmissionResponse{}, err
	}

	receivedAt, source := submission.FixedClock{At: s.now(), Source: submission.SourceReceipt}.SubmittedAt(spanCtx)
	graded := s.grade(lab, archive, lab.Deadline.Assess(receivedAt, source))
	span.SetAttributes(attribute.Float64("total", graded.Total), attribute.Bool("late", graded.Timing.Late))

	digest := sha256.Sum256(data)
	model := models.LabSubmission{
		StudentID:     payload.StudentID,
		ArchiveName:   path.Base(file.Filename),
		ArchiveSHA256: hex.EncodeToString(digest[:]),
		Feedback:      report.Feedback(graded, lab),
	}
	if err := model.SetReport(graded); err != nil {
		span.RecordError(err)
		return dto.LabSubmissionResponse{}, err
	}

	if err := s.submissions.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist submission")
		return dto.LabSubmissionResponse{}, fmt.Errorf("failed to store submission: %w", err)
	}

	response, err := dto.NewLabSubmissionResponse(model, report.ConsoleLine(graded))
	if err != nil {
		return dto.LabSubmissionResponse{}, err
	}

	s.cache(spanCtx, response)
	s.announce(spanCtx, model)

	observability.Submissions().WithLabelValues(lab.Name, "graded").Inc()
	if graded.MaxPossible > 0 {
		observability.SubmissionScore().WithLabelValues(lab.Name).Observe(graded.Total / graded.MaxPossible)
	}

	s.logger.Info().
		Uint("submission_id", model.ID).
		Uint("student_id", model.StudentID).
		Str("lab", lab.Name).
		Float64("total", graded.Total).
		Bool("late", graded.Timing.Late).
		Msg("lab submission graded")

	return response, nil
}

func (s *gradingService) grade(lab grading.Lab, archive *zip.Reader, timing grading.Timing) grading.GradeReport {
	start := time.Now()
	defer func() {
		observability.GradingLatency().WithLabelValues(lab.Name).Observe(time.Since(start).Seconds())
	}()

	locator := submission.NewLocator(lab, "artifacts")
	locator.SkipDirs = append(locator.SkipDirs, archiveSkipDirs...)

	markupFile, stylesheetFile := locator.Discover(archive)
	return lab.Grade(markupFile, stylesheetFile, timing)
}

func (s *gradingService) reject(lab grading.Lab, err error) {
	observability.Submissions().WithLabelValues(lab.Name, "rejected").Inc()
	s.logger.Warn().Err(err).Str("lab", lab.Name).Msg("lab submission rejected")
}

func (s *gradingService) Get(ctx context.Context, id, studentID uint) (dto.LabSubmissionResponse, error) {
	if cached, ok := s.cached(ctx, id); ok {
		if cached.StudentID != studentID {
			return dto.LabSubmissionResponse{}, ErrLabSubmissionNotFound
		}
		return cached, nil
	}

	model, err := s.load(ctx, id, studentID)
	if err != nil {
		return dto.LabSubmissionResponse{}, err
	}

	graded, err := model.GradeReport()
	if err != nil {
		return dto.LabSubmissionResponse{}, err
	}

	response, err := dto.NewLabSubmissionResponse(model, report.ConsoleLine(graded))
	if err != nil {
		return dto.LabSubmissionResponse{}, err
	}

	s.cache(ctx, response)
	return response, nil
}

func (s *gradingService) ListMine(ctx context.Context, studentID uint, lab string) ([]dto.LabSubmissionSummary, error) {
	if lab != "" {
		if _, ok := s.labs[lab]; !ok {
			return nil, ErrLabNotFound
		}
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID, lab)
	if err != nil {
		return nil, err
	}
	return dto.NewLabSubmissionSummarySlice(submissions), nil
}

func (s *gradingService) Feedback(ctx context.Context, id, studentID uint) (dto.LabFeedbackResponse, error) {
	model, err := s.load(ctx, id, studentID)
	if err != nil {
		return dto.LabFeedbackResponse{}, err
	}

	html, err := s.renderer.Render(model.Feedback)
	if err != nil {
		return dto.LabFeedbackResponse{}, err
	}

	return dto.LabFeedbackResponse{ID: model.ID, Markdown: model.Feedback, HTML: html}, nil
}

func (s *gradingService) load(ctx context.Context, id, studentID uint) (models.LabSubmission, error) {
	model, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LabSubmission{}, ErrLabSubmissionNotFound
		}
		return models.LabSubmission{}, err
	}
	if model.StudentID != studentID {
		return models.LabSubmission{}, ErrLabSubmissionNotFound
	}
	return model, nil
}

func cacheKey(id uint) string {
	return fmt.Sprintf("weblab:submission:%d", id)
}

func (s *gradingService) cache(ctx context.Context, response dto.LabSubmissionResponse) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", response.ID).Msg("failed to encode submission for cache")
		return
	}
	if err := s.redis.Set(ctx, cacheKey(response.ID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", response.ID).Msg("failed to cache submission")
	}
}

func (s *gradingService) cached(ctx context.Context, id uint) (dto.LabSubmissionResponse, bool) {
	if s.redis == nil {
		return dto.LabSubmissionResponse{}, false
	}

	payload, err := s.redis.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Uint("submission_id", id).Msg("submission cache unavailable")
		}
		return dto.LabSubmissionResponse{}, false
	}

	var response dto.LabSubmissionResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.LabSubmissionResponse{}, false
	}
	return response, true
}

func (s *gradingService) announce(ctx context.Context, model models.LabSubmission) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishGraded(ctx, events.GradedEvent{
		SubmissionID: model.ID,
		StudentID:    model.StudentID,
		Lab:          model.Lab,
		Total:        model.Total,
		MaxPossible:  model.MaxPossible,
		Late:         model.Late,
		GradedAt:     model.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", model.ID).Msg("failed to publish graded event")
	}
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open submission: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxLabArchiveBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read submission: %w", err)
	}

	if int64(len(data)) > maxLabArchiveBytes {
		return nil, ErrArchiveTooLarge
	}
	if len(data) == 0 {
		return nil, ErrArchiveInvalid
	}

	return data, nil
}

func ensureZipArchive(filename string, data []byte) error {
	if ext := strings.ToLower(path.Ext(filename)); ext != ".zip" {
		return ErrArchiveUnsupportedType
	}

	mime := mimetype.Detect(data)
	if !mime.Is("application/zip") && !mime.Is("application/x-zip-compressed") {
		return ErrArchiveUnsupportedType
	}

	return nil
}

func openArchive(data []byte) (*zip.Reader, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if errors.Is(err, zip.ErrInsecurePath) {
		return nil, ErrArchiveDangerousFile
	}
	if err != nil || len(archive.File) == 0 {
		return nil, ErrArchiveInvalid
	}

	for _, entry := range archive.File {
		if err := validateZipEntry(entry); err != nil {
			return nil, err
		}
	}
	return archive, nil
}

func validateZipEntry(entry *zip.File) error {
	name := strings.ReplaceAll(entry.Name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		return ErrArchiveDangerousFile
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return ErrArchiveDangerousFile
		}
	}

	if entry.Mode()&os.ModeSymlink != 0 {
		return ErrArchiveDangerousFile
	}

	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		return ErrArchiveDangerousFile
	}

	return nil
}
