package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lab-grader/internal/dto"
	"github.com/noah-isme/gema-lab-grader/internal/middleware"
	"github.com/noah-isme/gema-lab-grader/internal/service"
	"github.com/noah-isme/gema-lab-grader/internal/utils"
)

const mimeMarkdown = "text/markdown"

// GradingHandler exposes lab grading endpoints.
type GradingHandler struct {
	service   service.GradingService
	logger    zerolog.Logger
	submitMax int
	window    time.Duration
}

// GradingHandlerOptions tunes the submission rate limit.
type GradingHandlerOptions struct {
	SubmitLimit  int
	SubmitWindow time.Duration
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, opts GradingHandlerOptions, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service:   service,
		logger:    logger.With().Str("component", "grading_handler").Logger(),
		submitMax: opts.SubmitLimit,
		window:    opts.SubmitWindow,
	}
}

// Register wires the routes below /api/v2/web-lab.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Get("/labs", h.listLabs)

	submissions := router.Group("/submissions")
	submissions.Post("", middleware.RateLimit("weblab-submit", h.submitMax, h.window), h.submit)
	submissions.Get("", h.listMine)
	submissions.Get("/:id", h.get)
	submissions.Get("/:id/feedback", h.feedback)
}

// LabNames lists the labs the service accepts.
func (h *GradingHandler) LabNames() []string {
	labs := h.service.Labs()
	names := make([]string, 0, len(labs))
	for _, lab := range labs {
		names = append(names, lab.Name)
	}
	return names
}

func (h *GradingHandler) listLabs(c *fiber.Ctx) error {
	labs := h.service.Labs()
	return utils.OK(c, labs, "labs retrieved", fiber.Map{"count": len(labs)})
}

func (h *GradingHandler) submit(c *fiber.Ctx) error {
	studentID := middleware.StudentID(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusForbidden, "missing authenticated student")
	}

	payload := dto.LabSubmissionCreateRequest{
		Lab:       strings.TrimSpace(c.FormValue("lab")),
		StudentID: studentID,
	}

	if payload.Lab == "" {
		if labs := h.service.Labs(); len(labs) == 1 {
			payload.Lab = labs[0].Name
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	submission, err := h.service.Submit(c.UserContext(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, submission, "submission graded")
}

func (h *GradingHandler) listMine(c *fiber.Ctx) error {
	studentID := middleware.StudentID(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusForbidden, "missing authenticated student")
	}

	items, err := h.service.ListMine(c.UserContext(), studentID, strings.TrimSpace(c.Query("lab")))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, items, "submissions retrieved", fiber.Map{"count": len(items)})
}

func (h *GradingHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), id, middleware.StudentID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, submission, "submission retrieved", nil)
}

func (h *GradingHandler) feedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feedback, err := h.service.Feedback(c.UserContext(), id, middleware.StudentID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	if strings.Contains(c.Get(fiber.HeaderAccept), mimeMarkdown) {
		c.Set(fiber.HeaderContentType, mimeMarkdown+"; charset=utf-8")
		return c.SendString(feedback.Markdown)
	}

	return utils.OK(c, feedback, "feedback retrieved", nil)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	if details, ok := validationDetails(err); ok {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
	}

	switch {
	case errors.Is(err, service.ErrLabNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lab not found")
	case errors.Is(err, service.ErrLabSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrArchiveRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	case errors.Is(err, service.ErrArchiveUnsupportedType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "submission must be a zip archive")
	case errors.Is(err, service.ErrArchiveTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "submission exceeds the 10 MB limit")
	case errors.Is(err, service.ErrArchiveInvalid):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "invalid zip archive")
	case errors.Is(err, service.ErrArchiveDangerousFile):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "submission contains disallowed files")
	default:
		logger := middleware.RequestLogger(h.logger, c)
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
