package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dubplan/backend/internal/convert"
	"github.com/dubplan/backend/internal/models"
	"github.com/dubplan/backend/internal/service"
)

// RunReader is the read side of the run store. *db.Store implements it.
type RunReader interface {
	Ping(ctx context.Context) error
	GetLatestRun(ctx context.Context) (models.Run, error)
	GetRun(ctx context.Context, runID string) (models.Run, error)
	ListLines(ctx context.Context, runID string) ([]models.ScriptLine, error)
	ListSegments(ctx context.Context, runID string) ([]models.Segment, error)
	ListSchedule(ctx context.Context, runID string) ([]models.Assignment, error)
}

// Handler serves the HTTP API. Store is nil when persistence is disabled.
type Handler struct {
	Store          RunReader
	Service        *service.ProcessingService
	Converter      convert.Converter
	Validator      *validator.Validate
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

type ScriptRequest struct {
	Chunks []string `json:"chunks" validate:"required,min=1"`
}

type SegmentsScheduleRequest struct {
	Segments []models.Segment `json:"segments" validate:"required,min=1"`
	service.ScheduleRequest
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "memory"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "postgres"})
}

// @Summary Parse a dubbing script
// @Description Classify script lines, aggregate segments and compute analytics. Accepts JSON chunks or a multipart "script" file.
// @Tags scripts
// @Accept json,multipart/form-data
// @Produce json
// @Param body body ScriptRequest false "Script text chunks"
// @Param script formData file false "Script document"
// @Success 200 {object} service.ParseReport
// @Failure 400 {object} map[string]any
// @Failure 415 {object} map[string]any
// @Router /api/scripts [post]
func (h *Handler) ParseScript(c *gin.Context) {
	var chunks []string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var ok bool
		if chunks, ok = h.readUpload(c); !ok {
			return
		}
	} else {
		var req ScriptRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
			return
		}
		if err := h.Validator.Struct(req); err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
			return
		}
		chunks = req.Chunks
	}

	report, err := h.Service.ParseScript(c.Request.Context(), chunks)
	if err != nil {
		h.Logger.Error().Err(err).Msg("parse failed")
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) readUpload(c *gin.Context) ([]string, bool) {
	file, err := c.FormFile("script")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "script file required", nil)
		return nil, false
	}
	if h.MaxUploadBytes > 0 && file.Size > h.MaxUploadBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Script file too large", file.Size)
		return nil, false
	}
	f, err := file.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to open upload", err.Error())
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", err.Error())
		return nil, false
	}

	chunks, err := h.Converter.Convert(c.Request.Context(), file.Filename, data)
	if err != nil {
		h.Logger.Warn().Err(err).Str("filename", file.Filename).Msg("conversion failed")
		writeServiceError(c, err)
		return nil, false
	}
	if len(chunks) == 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Script is empty", nil)
		return nil, false
	}
	return chunks, true
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.Run
// @Failure 404 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary Run details
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.Run
// @Router /api/runs/{id} [get]
func (h *Handler) RunDetails(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	run, err := h.Store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary Classified lines of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]any
// @Router /api/runs/{id}/lines [get]
func (h *Handler) RunLines(c *gin.Context) {
	id, ok := h.runID(c)
	if !ok {
		return
	}
	items, err := h.Store.ListLines(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Segments of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]any
// @Router /api/runs/{id}/segments [get]
func (h *Handler) RunSegments(c *gin.Context) {
	id, ok := h.runID(c)
	if !ok {
		return
	}
	items, err := h.Store.ListSegments(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Stored schedule of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]any
// @Router /api/runs/{id}/schedule [get]
func (h *Handler) RunSchedule(c *gin.Context) {
	id, ok := h.runID(c)
	if !ok {
		return
	}
	items, err := h.Store.ListSchedule(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Schedule a parsed run
// @Tags schedule
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param body body service.ScheduleRequest true "Availability and recording slots"
// @Success 200 {object} service.ScheduleReport
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/runs/{id}/schedule [post]
func (h *Handler) ScheduleRun(c *gin.Context) {
	var req service.ScheduleRequest
	if !h.bind(c, &req) {
		return
	}
	report, err := h.Service.ScheduleRun(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Schedule inline segments
// @Tags schedule
// @Accept json
// @Produce json
// @Param body body SegmentsScheduleRequest true "Segments, availability and recording slots"
// @Success 200 {object} service.ScheduleReport
// @Failure 400 {object} map[string]any
// @Router /api/schedule [post]
func (h *Handler) ScheduleSegments(c *gin.Context) {
	var req SegmentsScheduleRequest
	if !h.bind(c, &req) {
		return
	}
	for i := range req.Segments {
		if req.Segments[i].NumSpeakers == 0 {
			req.Segments[i].NumSpeakers = len(req.Segments[i].Speakers)
		}
	}
	report, err := h.Service.ScheduleSegments(c.Request.Context(), req.Segments, req.ScheduleRequest)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Availability calendar
// @Tags schedule
// @Accept json
// @Produce json
// @Param body body service.CalendarRequest true "Speakers, availability and recording slots"
// @Success 200 {object} scheduler.Calendar
// @Router /api/calendar [post]
func (h *Handler) Calendar(c *gin.Context) {
	var req service.CalendarRequest
	if !h.bind(c, &req) {
		return
	}
	cal, err := h.Service.Calendar(req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) requireStore(c *gin.Context) bool {
	if h.Store == nil {
		writeServiceError(c, models.ErrNoStore)
		return false
	}
	return true
}

// runID checks that the run exists before listing its children.
func (h *Handler) runID(c *gin.Context) (string, bool) {
	if !h.requireStore(c) {
		return "", false
	}
	id := c.Param("id")
	if _, err := h.Store.GetRun(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return "", false
	}
	return id, true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNoStore):
		writeError(c, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Persistence is not configured", nil)
	case errors.Is(err, models.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Run not found", err.Error())
	case errors.Is(err, models.ErrValidation):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
	case errors.Is(err, convert.ErrUnsupportedFormat):
		writeError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", "Unsupported script format", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed", err.Error())
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
