package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
	"github.com/courthive/tods-scheduling-api/pkg/response"
)

type venueReader interface {
	ListWithCourts(ctx context.Context, tournamentID string) ([]models.Venue, error)
}

type matchUpReader interface {
	ListInContext(ctx context.Context, tournamentID string) ([]models.MatchUp, error)
	ListByDraw(ctx context.Context, tournamentID, drawID string) ([]models.MatchUp, error)
}

// ResourceHandler exposes the read-only venue and matchUp surfaces.
type ResourceHandler struct {
	venues   venueReader
	matchUps matchUpReader
}

// NewResourceHandler creates a new handler.
func NewResourceHandler(venues venueReader, matchUps matchUpReader) *ResourceHandler {
	return &ResourceHandler{venues: venues, matchUps: matchUps}
}

// ListVenues godoc
// @Summary List venues
// @Description Returns a tournament's venues with courts and availability
// @Tags Resources
// @Produce json
// @Param tournament_id query string true "Tournament id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /venues [get]
func (h *ResourceHandler) ListVenues(c *gin.Context) {
	tournamentID := c.Query("tournament_id")
	if tournamentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tournament_id is required"))
		return
	}

	venues, err := h.venues.ListWithCourts(c.Request.Context(), tournamentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, venues, nil)
}

// ListMatchUps godoc
// @Summary List matchUps
// @Description Returns a tournament's in-context matchUps, optionally for one draw
// @Tags Resources
// @Produce json
// @Param tournament_id query string true "Tournament id"
// @Param draw_id query string false "Draw id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /matchups [get]
func (h *ResourceHandler) ListMatchUps(c *gin.Context) {
	tournamentID := c.Query("tournament_id")
	if tournamentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tournament_id is required"))
		return
	}

	var (
		matchUps []models.MatchUp
		err      error
	)
	if drawID := c.Query("draw_id"); drawID != "" {
		matchUps, err = h.matchUps.ListByDraw(c.Request.Context(), tournamentID, drawID)
	} else {
		matchUps, err = h.matchUps.ListInContext(c.Request.Context(), tournamentID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matchUps, nil)
}
