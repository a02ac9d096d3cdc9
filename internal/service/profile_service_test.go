package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
)

type stubProfileRepo struct {
	stored   *models.SchedulingProfile
	profiles []models.SchedulingProfile
	deleted  []string
}

func (r *stubProfileRepo) FindByTournamentAndDate(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error) {
	for i := range r.profiles {
		if r.profiles[i].TournamentID == tournamentID && r.profiles[i].Date == date {
			return &r.profiles[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (r *stubProfileRepo) ListByTournament(ctx context.Context, tournamentID string) ([]models.SchedulingProfile, error) {
	return r.profiles, nil
}

func (r *stubProfileRepo) Upsert(ctx context.Context, profile *models.SchedulingProfile) error {
	r.stored = profile
	return nil
}

func (r *stubProfileRepo) Delete(ctx context.Context, tournamentID, date string) error {
	r.deleted = append(r.deleted, date)
	return nil
}

func newProfileServiceFixture(repo *stubProfileRepo, venues ...models.Venue) *ProfileService {
	return NewProfileService(repo, &stubVenueLister{venues: venues}, nil, nil, nil)
}

func TestProfileServiceUpsertFiltersUnknownVenues(t *testing.T) {
	repo := &stubProfileRepo{}
	svc := newProfileServiceFixture(repo, models.Venue{ID: "venue-1", Name: "Center"})

	profile, err := svc.Upsert(context.Background(), dto.UpsertProfileRequest{
		TournamentID: "t-1",
		Date:         "2024-06-01",
		Venues: []models.VenueProfile{
			{VenueID: "venue-1", Rounds: []models.ProfileRound{{DrawID: "draw-1"}}},
			{VenueID: "ghost", Rounds: []models.ProfileRound{{DrawID: "draw-1"}}},
			{VenueID: "venue-1"},
		},
	})
	require.NoError(t, err)

	// Unknown venue and round-less rows are dropped, the rest persists.
	require.Len(t, profile.Venues, 1)
	assert.Equal(t, "venue-1", profile.Venues[0].VenueID)
	require.NotNil(t, repo.stored)
	assert.Equal(t, profile, repo.stored)
}

func TestProfileServiceUpsertAllRowsFiltered(t *testing.T) {
	repo := &stubProfileRepo{}
	svc := newProfileServiceFixture(repo, models.Venue{ID: "venue-1"})

	_, err := svc.Upsert(context.Background(), dto.UpsertProfileRequest{
		TournamentID: "t-1",
		Date:         "2024-06-01",
		Venues: []models.VenueProfile{
			{VenueID: "ghost", Rounds: []models.ProfileRound{{DrawID: "draw-1"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyProfile.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.stored, "nothing is persisted when every row is dropped")
}

func TestProfileServiceUpsertValidatesPayload(t *testing.T) {
	svc := newProfileServiceFixture(&stubProfileRepo{})

	_, err := svc.Upsert(context.Background(), dto.UpsertProfileRequest{TournamentID: "t-1", Date: "2024-06-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceGetRejectsBadDate(t *testing.T) {
	svc := newProfileServiceFixture(&stubProfileRepo{})

	_, err := svc.Get(context.Background(), "t-1", "June 1st")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDate.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceGetDelegates(t *testing.T) {
	repo := &stubProfileRepo{profiles: []models.SchedulingProfile{
		{TournamentID: "t-1", Date: "2024-06-01", Venues: []models.VenueProfile{{VenueID: "venue-1"}}},
	}}
	svc := newProfileServiceFixture(repo)

	profile, err := svc.Get(context.Background(), "t-1", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", profile.Date)

	_, err = svc.Get(context.Background(), "t-1", "2024-06-02")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceDelete(t *testing.T) {
	repo := &stubProfileRepo{}
	svc := newProfileServiceFixture(repo)

	require.Error(t, svc.Delete(context.Background(), "t-1", "bad-date"))

	require.NoError(t, svc.Delete(context.Background(), "t-1", "2024-06-01"))
	assert.Equal(t, []string{"2024-06-01"}, repo.deleted)
}
