package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/models"
	"github.com/courthive/tods-scheduling-api/internal/service"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
	"github.com/courthive/tods-scheduling-api/pkg/jobs"
	"github.com/courthive/tods-scheduling-api/pkg/response"
)

type schedulingRunner interface {
	Run(ctx context.Context, req dto.RunScheduleRequest) (*models.SchedulingAudit, error)
	GetRun(ctx context.Context, runID string) (*models.SchedulingAudit, error)
	Annotate(ctx context.Context, req dto.AnnotateScheduleRequest) (*models.AnnotationResult, error)
	ScheduleGrid(ctx context.Context, req dto.GridScheduleRequest) (*models.GridResult, error)
}

type auditRenderer interface {
	RenderAudit(audit *models.SchedulingAudit, format string) ([]byte, string, error)
}

// actionRecorder appends operator actions to the audit trail.
type actionRecorder interface {
	RecordAction(ctx context.Context, operatorID, action, resource, resourceID string, details []byte, ip, userAgent string)
}

// SchedulingHandler wires HTTP endpoints to the scheduling engine.
type SchedulingHandler struct {
	service schedulingRunner
	exports auditRenderer
	audits  actionRecorder
	queue   *jobs.Queue
}

// NewSchedulingHandler creates a new handler. The queue is optional; without
// one every run executes synchronously.
func NewSchedulingHandler(svc *service.SchedulingService, exports *service.ExportService, auth *service.AuthService, queue *jobs.Queue) *SchedulingHandler {
	return &SchedulingHandler{service: svc, exports: exports, audits: auth, queue: queue}
}

// recordRun notes who triggered a scheduling run for which date.
func (h *SchedulingHandler) recordRun(c *gin.Context, req dto.RunScheduleRequest) {
	if h.audits == nil {
		return
	}
	operatorID := ""
	if claims := claimsFromContext(c); claims != nil {
		operatorID = claims.OperatorID
	}
	details := []byte(`{"tournament_id":"` + req.TournamentID + `"}`)
	h.audits.RecordAction(c.Request.Context(), operatorID, models.AuditActionScheduleRun, "scheduling", req.Date, details, c.ClientIP(), c.GetHeader("User-Agent"))
}

// Run godoc
// @Summary Run the scheduler for a date
// @Description Executes the greedy scheduling loop for one tournament date and returns the run audit
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param async query bool false "Queue the run and return immediately"
// @Param payload body dto.RunScheduleRequest true "Run payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scheduling/run [post]
func (h *SchedulingHandler) Run(c *gin.Context) {
	var req dto.RunScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run payload"))
		return
	}

	if c.Query("async") == "true" && h.queue != nil {
		req.RunID = uuid.NewString()
		if err := h.queue.Enqueue(jobs.Job{ID: req.RunID, Type: "scheduling_run", Payload: req}); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to queue run"))
			return
		}
		h.recordRun(c, req)
		response.JSON(c, http.StatusAccepted, dto.RunQueuedResponse{RunID: req.RunID, Date: req.Date}, nil)
		return
	}

	audit, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordRun(c, req)

	response.JSON(c, http.StatusOK, dto.RunResponse{Audit: audit}, nil)
}

// RunForDate godoc
// @Summary Run the scheduler for a profile date
// @Description Executes the scheduling loop for the date in the path using its stored profile
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param async query bool false "Queue the run and return immediately"
// @Param payload body dto.RunScheduleRequest true "Run payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scheduling/profiles/{date}/run [post]
func (h *SchedulingHandler) RunForDate(c *gin.Context) {
	var req dto.RunScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run payload"))
		return
	}
	req.Date = c.Param("date")

	if c.Query("async") == "true" && h.queue != nil {
		req.RunID = uuid.NewString()
		if err := h.queue.Enqueue(jobs.Job{ID: req.RunID, Type: "scheduling_run", Payload: req}); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to queue run"))
			return
		}
		h.recordRun(c, req)
		response.JSON(c, http.StatusAccepted, dto.RunQueuedResponse{RunID: req.RunID, Date: req.Date}, nil)
		return
	}

	audit, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordRun(c, req)
	response.JSON(c, http.StatusOK, dto.RunResponse{Audit: audit}, nil)
}

// GetRun godoc
// @Summary Get a run audit
// @Description Returns the audit for a recent scheduling run
// @Tags Scheduling
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scheduling/runs/{id} [get]
func (h *SchedulingHandler) GetRun(c *gin.Context) {
	audit, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RunResponse{Audit: audit}, nil)
}

// ExportRun godoc
// @Summary Export a run audit
// @Description Renders a run audit as CSV or PDF
// @Tags Scheduling
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Run id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /scheduling/runs/{id}/export [get]
func (h *SchedulingHandler) ExportRun(c *gin.Context) {
	audit, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, contentType, err := h.exports.RenderAudit(audit, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule-`+audit.Date+`.`+c.DefaultQuery("format", service.ExportFormatCSV)+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

// Annotate godoc
// @Summary Annotate an arranged schedule
// @Description Classifies ordering and participant conflicts on an already-arranged date
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.AnnotateScheduleRequest true "Annotation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scheduling/annotate [post]
func (h *SchedulingHandler) Annotate(c *gin.Context) {
	var req dto.AnnotateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid annotation payload"))
		return
	}

	result, err := h.service.Annotate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Grid godoc
// @Summary Run the grid scheduler for a draw
// @Description Places a draw's matchUps into a fixed grid of court columns and time rows
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.GridScheduleRequest true "Grid payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scheduling/grid [post]
func (h *SchedulingHandler) Grid(c *gin.Context) {
	var req dto.GridScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid payload"))
		return
	}

	result, err := h.service.ScheduleGrid(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
