package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/models"
	"github.com/courthive/tods-scheduling-api/internal/service"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
	"github.com/courthive/tods-scheduling-api/pkg/response"
)

type profileManager interface {
	List(ctx context.Context, tournamentID string) ([]models.SchedulingProfile, error)
	Get(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error)
	Upsert(ctx context.Context, req dto.UpsertProfileRequest) (*models.SchedulingProfile, error)
	Delete(ctx context.Context, tournamentID, date string) error
}

// ProfileHandler wires HTTP endpoints to scheduling profile management.
type ProfileHandler struct {
	service profileManager
	audits  actionRecorder
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService, auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{service: svc, audits: auth}
}

// recordChange notes who changed which date's profile.
func (h *ProfileHandler) recordChange(c *gin.Context, tournamentID, date string) {
	if h.audits == nil {
		return
	}
	operatorID := ""
	if claims := claimsFromContext(c); claims != nil {
		operatorID = claims.OperatorID
	}
	details := []byte(`{"tournament_id":"` + tournamentID + `"}`)
	h.audits.RecordAction(c.Request.Context(), operatorID, models.AuditActionProfileChange, "scheduling_profile", date, details, c.ClientIP(), c.GetHeader("User-Agent"))
}

// List godoc
// @Summary List scheduling profiles
// @Description Returns every stored scheduling profile for a tournament
// @Tags Profiles
// @Produce json
// @Param tournament_id query string true "Tournament id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scheduling/profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	tournamentID := c.Query("tournament_id")
	if tournamentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tournament_id is required"))
		return
	}

	profiles, err := h.service.List(c.Request.Context(), tournamentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, nil)
}

// Get godoc
// @Summary Get a scheduling profile
// @Description Returns the scheduling profile for one tournament date
// @Tags Profiles
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param tournament_id query string true "Tournament id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scheduling/profiles/{date} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	tournamentID := c.Query("tournament_id")
	if tournamentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tournament_id is required"))
		return
	}

	profile, err := h.service.Get(c.Request.Context(), tournamentID, c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Upsert godoc
// @Summary Create or replace a scheduling profile
// @Description Stores the declarative venue/round ordering for one date; rows naming unknown venues are dropped
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.UpsertProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scheduling/profiles [put]
func (h *ProfileHandler) Upsert(c *gin.Context) {
	var req dto.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordChange(c, req.TournamentID, req.Date)
	response.JSON(c, http.StatusOK, profile, nil)
}

// Delete godoc
// @Summary Delete a scheduling profile
// @Description Removes the scheduling profile for one tournament date
// @Tags Profiles
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param tournament_id query string true "Tournament id"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scheduling/profiles/{date} [delete]
func (h *ProfileHandler) Delete(c *gin.Context) {
	tournamentID := c.Query("tournament_id")
	if tournamentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tournament_id is required"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), tournamentID, c.Param("date")); err != nil {
		response.Error(c, err)
		return
	}
	h.recordChange(c, tournamentID, c.Param("date"))
	response.NoContent(c)
}
