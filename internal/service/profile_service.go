package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
)

type profileRepository interface {
	FindByTournamentAndDate(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]models.SchedulingProfile, error)
	Upsert(ctx context.Context, profile *models.SchedulingProfile) error
	Delete(ctx context.Context, tournamentID, date string) error
}

// ProfileService manages the declarative per-date scheduling profiles the
// loop executes. Profiles are operator input: rows naming unknown venues are
// filtered on write, never rejected.
type ProfileService struct {
	repo      profileRepository
	venues    schedulingVenueLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService wires profile persistence and validation.
func NewProfileService(repo profileRepository, venues schedulingVenueLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, venues: venues, cache: cache, validator: validate, logger: logger}
}

func profileCachePattern(tournamentID string) string {
	return fmt.Sprintf("profiles:%s:*", tournamentID)
}

// Get returns the profile for a tournament date.
func (s *ProfileService) Get(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error) {
	if !models.ValidDate(date) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "profile date must be YYYY-MM-DD")
	}
	return s.repo.FindByTournamentAndDate(ctx, tournamentID, date)
}

// List returns every stored profile for the tournament.
func (s *ProfileService) List(ctx context.Context, tournamentID string) ([]models.SchedulingProfile, error) {
	return s.repo.ListByTournament(ctx, tournamentID)
}

// Upsert validates the payload, filters rows naming unknown venues, and
// replaces the stored profile for the date.
func (s *ProfileService) Upsert(ctx context.Context, req dto.UpsertProfileRequest) (*models.SchedulingProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling profile payload")
	}

	venues, err := s.venues.ListWithCourts(ctx, req.TournamentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venues")
	}
	known := make(map[string]bool, len(venues))
	for _, venue := range venues {
		known[venue.ID] = true
	}

	profile := &models.SchedulingProfile{
		TournamentID: req.TournamentID,
		Date:         req.Date,
	}
	for _, row := range req.Venues {
		if !known[row.VenueID] {
			s.logger.Warn("dropping profile row for unknown venue",
				zap.String("tournament_id", req.TournamentID),
				zap.String("venue_id", row.VenueID),
			)
			continue
		}
		if len(row.Rounds) == 0 {
			continue
		}
		profile.Venues = append(profile.Venues, row)
	}
	if len(profile.Venues) == 0 {
		return nil, appErrors.ErrEmptyProfile
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store scheduling profile")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, profileCachePattern(req.TournamentID))
	}

	return profile, nil
}

// Delete removes the profile for a tournament date.
func (s *ProfileService) Delete(ctx context.Context, tournamentID, date string) error {
	if !models.ValidDate(date) {
		return appErrors.Clone(appErrors.ErrInvalidDate, "profile date must be YYYY-MM-DD")
	}
	if err := s.repo.Delete(ctx, tournamentID, date); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, profileCachePattern(tournamentID))
	}
	return nil
}
