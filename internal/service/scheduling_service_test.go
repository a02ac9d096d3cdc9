package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
)

func newEngine() *SchedulingService {
	return NewSchedulingService(nil, nil, nil, nil, nil, nil, nil, 0, nil, nil, SchedulingConfig{})
}

func thirtyMinutePolicy() models.TimingPolicy {
	return models.TimingPolicy{Default: &models.MatchUpTiming{AverageMinutes: 30}}
}

func roundOneProfile() models.SchedulingProfile {
	return models.SchedulingProfile{
		TournamentID: "t-1",
		Date:         "2024-06-01",
		Venues: []models.VenueProfile{
			{VenueID: "venue-1", Rounds: []models.ProfileRound{{DrawID: "draw-1"}}},
		},
	}
}

func commitTimes(audit *models.SchedulingAudit) []string {
	times := make([]string, 0, len(audit.Commits))
	for _, commit := range audit.Commits {
		times = append(times, commit.ScheduledTime)
	}
	sort.Strings(times)
	return times
}

func TestRunDateSimpleFit(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")

	matchUps := []models.MatchUp{
		*singlesMatchUp("m1", "p1", "p2"),
		*singlesMatchUp("m2", "p3", "p4"),
		*singlesMatchUp("m3", "p5", "p6"),
		*singlesMatchUp("m4", "p7", "p8"),
	}

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: matchUps,
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
	})
	require.NoError(t, err)

	assert.Len(t, audit.ScheduledMatchUpIDs, 4)
	assert.Empty(t, audit.NoTimeMatchUpIDs)
	// Two courts: two matchUps share each start time.
	assert.Equal(t, []string{"09:00", "09:00", "09:30", "09:30"}, commitTimes(audit))
}

func TestRunDateDailyLimitRemovesFromPending(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")

	matchUps := []models.MatchUp{
		*singlesMatchUp("m1", "p1", "p2"),
		*singlesMatchUp("m2", "p1", "p3"),
	}

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: matchUps,
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
		Limits:   models.DailyLimits{Total: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"m1"}, audit.ScheduledMatchUpIDs)
	assert.Equal(t, []string{"m2"}, audit.OverLimitMatchUpIDs)
	// Over-limit is terminal for the date, not a no-time outcome.
	assert.Empty(t, audit.NoTimeMatchUpIDs)
}

func TestRunDateDependencyOrdersRounds(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")

	sf := singlesMatchUp("sf", "p1", "p2")
	sf.WinnerTargetID = "final"
	final := singlesMatchUp("final", "p3", "p4")
	final.RoundNumber = 2

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: []models.MatchUp{*sf, *final},
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
	})
	require.NoError(t, err)

	require.Len(t, audit.Commits, 2)
	byID := map[string]models.ScheduleCommit{}
	for _, commit := range audit.Commits {
		byID[commit.MatchUpID] = commit
	}
	assert.Equal(t, "09:00", byID["sf"].ScheduledTime)
	assert.Equal(t, "09:30", byID["final"].ScheduledTime, "dependent must start strictly after its source")

	// The final was rejected at 09:00 and that rejection is audit data.
	require.NotEmpty(t, audit.DependencyDeferred)
	assert.Equal(t, "final", audit.DependencyDeferred[0].MatchUpID)
	assert.Equal(t, "09:00", audit.DependencyDeferred[0].AttemptedTime)
}

func TestRunDateRecoveryDefersSharedParticipant(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")

	audit, err := engine.RunDate(RunInput{
		Date:    "2024-06-01",
		Profile: roundOneProfile(),
		MatchUps: []models.MatchUp{
			*singlesMatchUp("m1", "p1", "p2"),
			*singlesMatchUp("m2", "p1", "p3"),
		},
		Venues: []models.Venue{*venue},
		Policy: models.TimingPolicy{Default: &models.MatchUpTiming{AverageMinutes: 30, RecoveryMinutes: 30}},
	})
	require.NoError(t, err)

	require.Len(t, audit.Commits, 2)
	byID := map[string]models.ScheduleCommit{}
	for _, commit := range audit.Commits {
		byID[commit.MatchUpID] = commit
	}
	assert.Equal(t, "09:00", byID["m1"].ScheduledTime)
	// m1 ends 09:30, recovery until 10:00.
	assert.Equal(t, "10:00", byID["m2"].ScheduledTime)
	assert.NotEmpty(t, audit.RecoveryDeferred)
}

func TestRunDatePersonRequestBlocksWindow(t *testing.T) {
	engine := newEngine()
	venue := testVenue(1, "2024-06-01", "09:00", "10:00")

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: []models.MatchUp{*singlesMatchUp("m1", "p1", "p2")},
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
		Requests: map[string][]models.PersonRequest{
			"p1": {{PersonID: "p1", Date: "2024-06-01", StartTime: "09:00", EndTime: "12:00", RequestType: models.RequestDoNotSchedule}},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, audit.ScheduledMatchUpIDs)
	assert.Equal(t, []string{"m1"}, audit.NoTimeMatchUpIDs)
	require.NotEmpty(t, audit.RequestConflicts)
	assert.Equal(t, "p1", audit.RequestConflicts[0].PersonID)
}

func TestRunDateZeroCourtsExhaustsWithoutError(t *testing.T) {
	engine := newEngine()
	venue := &models.Venue{ID: "venue-1", Name: "Closed"}

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: []models.MatchUp{*singlesMatchUp("m1", "p1", "p2")},
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
	})
	require.NoError(t, err, "exhaustion is a normal outcome, not an error")
	assert.Equal(t, []string{"m1"}, audit.NoTimeMatchUpIDs)
	assert.Empty(t, audit.ScheduledMatchUpIDs)
}

func TestRunDateIterationCapTerminates(t *testing.T) {
	engine := newEngine()
	venue := testVenue(1, "2024-06-01", "09:00", "10:00")

	// The final's source exists but is never schedulable here, so no slot can
	// ever place the final. The caps must still end the run.
	blocked := singlesMatchUp("blocked", "p1", "p2")
	blocked.DrawID = "draw-other"
	blocked.WinnerTargetID = "final"
	final := singlesMatchUp("final", "p3", "p4")
	final.RoundNumber = 2

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: []models.MatchUp{*blocked, *final},
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, audit.Iterations)
	assert.Equal(t, []string{"final"}, audit.NoTimeMatchUpIDs)
	assert.NotEmpty(t, audit.DependencyDeferred)
	assert.Equal(t, 2, audit.AbandonedSlots["venue-1"], "both slots burn through their attempt cap")
}

func TestRunDateRemainingSlotsSorted(t *testing.T) {
	engine := newEngine()
	venue := testVenue(1, "2024-06-01", "09:00", "12:00")

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: []models.MatchUp{*singlesMatchUp("m1", "p1", "p2")},
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
	})
	require.NoError(t, err)

	remaining := audit.RemainingSlots["venue-1"]
	require.NotEmpty(t, remaining)
	assert.True(t, sort.StringsAreSorted(remaining))
	assert.NotContains(t, remaining, "09:00", "the consumed slot is not remaining")
}

// maxConcurrency evaluates how many committed matchUps are in play at once,
// sampling at every committed start time.
func maxConcurrency(audit *models.SchedulingAudit, averageMinutes int) int {
	peak := 0
	for _, probe := range audit.Commits {
		at, _ := models.ParseClock(probe.ScheduledTime)
		playing := 0
		for _, commit := range audit.Commits {
			start, _ := models.ParseClock(commit.ScheduledTime)
			if start <= at && at < start+averageMinutes {
				playing++
			}
		}
		if playing > peak {
			peak = playing
		}
	}
	return peak
}

func TestRunDateLongMatchUpsDoNotExceedCourts(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "13:00")

	matchUps := []models.MatchUp{
		*singlesMatchUp("m1", "p1", "p2"),
		*singlesMatchUp("m2", "p3", "p4"),
		*singlesMatchUp("m3", "p5", "p6"),
		*singlesMatchUp("m4", "p7", "p8"),
	}

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: matchUps,
		Venues:   []models.Venue{*venue},
		Policy:   models.TimingPolicy{Default: &models.MatchUpTiming{AverageMinutes: 90}},
	})
	require.NoError(t, err)

	assert.Len(t, audit.ScheduledMatchUpIDs, 4)
	// 90 minute matchUps span three 30 minute slot periods; the second pair
	// cannot start until the first pair's courts free up at 10:30.
	assert.Equal(t, []string{"09:00", "09:00", "10:30", "10:30"}, commitTimes(audit))
	assert.LessOrEqual(t, maxConcurrency(audit, 90), 2, "two courts can never host more than two concurrent matchUps")
}

func TestRunDateBookingsLimitSlotCapacity(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "12:00")
	venue.Courts[1].DateAvailability[0].Bookings = []models.Booking{
		{StartTime: "09:00", EndTime: "10:00", BookingType: "MAINTENANCE"},
	}

	audit, err := engine.RunDate(RunInput{
		Date:    "2024-06-01",
		Profile: roundOneProfile(),
		MatchUps: []models.MatchUp{
			*singlesMatchUp("m1", "p1", "p2"),
			*singlesMatchUp("m2", "p3", "p4"),
		},
		Venues: []models.Venue{*venue},
		Policy: models.TimingPolicy{Default: &models.MatchUpTiming{AverageMinutes: 60}},
	})
	require.NoError(t, err)

	require.Len(t, audit.Commits, 2)
	// Only one court is free of the booking before 10:00, so exactly one
	// matchUp starts at 09:00; the second waits for the booking to clear.
	assert.Equal(t, []string{"09:00", "10:00"}, commitTimes(audit))
}

func TestRunDateLateCourtDoesNotAddEarlyCapacity(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "12:00")
	venue.Courts[1].DateAvailability[0].StartTime = "10:00"

	audit, err := engine.RunDate(RunInput{
		Date:    "2024-06-01",
		Profile: roundOneProfile(),
		MatchUps: []models.MatchUp{
			*singlesMatchUp("m1", "p1", "p2"),
			*singlesMatchUp("m2", "p3", "p4"),
		},
		Venues: []models.Venue{*venue},
		Policy: thirtyMinutePolicy(),
	})
	require.NoError(t, err)

	require.Len(t, audit.Commits, 2)
	// Court two does not open until 10:00; it contributes no capacity to the
	// 09:00 window even though the venue counts two courts.
	assert.Equal(t, []string{"09:00", "09:30"}, commitTimes(audit))
}

func TestRunDateStructuralErrors(t *testing.T) {
	engine := newEngine()
	venue := testVenue(1, "2024-06-01", "09:00", "17:00")
	matchUps := []models.MatchUp{*singlesMatchUp("m1", "p1", "p2")}

	_, err := engine.RunDate(RunInput{Date: "June 1", Profile: roundOneProfile(), MatchUps: matchUps, Venues: []models.Venue{*venue}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDate.Code, appErrors.FromError(err).Code)

	_, err = engine.RunDate(RunInput{Date: "2024-06-01", Profile: roundOneProfile(), MatchUps: matchUps})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoVenues.Code, appErrors.FromError(err).Code)

	_, err = engine.RunDate(RunInput{Date: "2024-06-01", Profile: roundOneProfile(), Venues: []models.Venue{*venue}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingDependencies.Code, appErrors.FromError(err).Code)

	// Rows naming unknown venues are filtered; an all-unknown profile is empty.
	unknownProfile := models.SchedulingProfile{
		Date:   "2024-06-01",
		Venues: []models.VenueProfile{{VenueID: "nope", Rounds: []models.ProfileRound{{DrawID: "draw-1"}}}},
	}
	_, err = engine.RunDate(RunInput{Date: "2024-06-01", Profile: unknownProfile, MatchUps: matchUps, Venues: []models.Venue{*venue}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyProfile.Code, appErrors.FromError(err).Code)
}

func TestRunDateSkipsResolvedAndPreScheduled(t *testing.T) {
	engine := newEngine()
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")

	done := singlesMatchUp("done", "p1", "p2")
	done.Status = models.StatusCompleted
	pinned := singlesMatchUp("pinned", "p3", "p4")
	pinned.Schedule = &models.ScheduleAssignment{Date: "2024-06-01", StartTime: "14:00", VenueID: "venue-1"}
	open := singlesMatchUp("open", "p5", "p6")

	audit, err := engine.RunDate(RunInput{
		Date:     "2024-06-01",
		Profile:  roundOneProfile(),
		MatchUps: []models.MatchUp{*done, *pinned, *open},
		Venues:   []models.Venue{*venue},
		Policy:   thirtyMinutePolicy(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, audit.ScheduledMatchUpIDs)
}

// stub collaborators for the Run orchestration path

type stubMatchUpLister struct {
	matchUps []models.MatchUp
}

func (s *stubMatchUpLister) ListInContext(ctx context.Context, tournamentID string) ([]models.MatchUp, error) {
	return s.matchUps, nil
}

func (s *stubMatchUpLister) ListByDraw(ctx context.Context, tournamentID, drawID string) ([]models.MatchUp, error) {
	var out []models.MatchUp
	for _, m := range s.matchUps {
		if m.DrawID == drawID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubVenueLister struct {
	venues []models.Venue
}

func (s *stubVenueLister) ListWithCourts(ctx context.Context, tournamentID string) ([]models.Venue, error) {
	return s.venues, nil
}

type stubProfileReader struct {
	profile *models.SchedulingProfile
}

func (s *stubProfileReader) FindByTournamentAndDate(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error) {
	if s.profile == nil {
		return nil, appErrors.ErrNotFound
	}
	return s.profile, nil
}

type stubRequestLister struct {
	requests map[string][]models.PersonRequest
}

func (s *stubRequestLister) ListByType(ctx context.Context, tournamentID string, requestType models.RequestType) (map[string][]models.PersonRequest, error) {
	return s.requests, nil
}

type stubCommitSink struct {
	committed [][]models.ScheduleCommit
}

func (s *stubCommitSink) CommitSchedule(ctx context.Context, commits []models.ScheduleCommit) error {
	s.committed = append(s.committed, commits)
	return nil
}

func newSchedulingServiceFixture(matchUps []models.MatchUp, venues []models.Venue, profile *models.SchedulingProfile) (*SchedulingService, *stubCommitSink) {
	sink := &stubCommitSink{}
	svc := NewSchedulingService(
		&stubMatchUpLister{matchUps: matchUps},
		&stubVenueLister{venues: venues},
		&stubProfileReader{profile: profile},
		&stubRequestLister{},
		sink,
		nil,
		nil,
		0,
		nil,
		nil,
		SchedulingConfig{},
	)
	return svc, sink
}

func TestSchedulingServiceRunPersistsCommits(t *testing.T) {
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")
	profile := roundOneProfile()
	svc, sink := newSchedulingServiceFixture(
		[]models.MatchUp{*singlesMatchUp("m1", "p1", "p2")},
		[]models.Venue{*venue},
		&profile,
	)

	audit, err := svc.Run(context.Background(), dto.RunScheduleRequest{
		TournamentID: "t-1",
		Date:         "2024-06-01",
		Policy:       thirtyMinutePolicy(),
	})
	require.NoError(t, err)
	require.Len(t, sink.committed, 1)
	assert.Equal(t, audit.Commits, sink.committed[0])
}

func TestSchedulingServiceRunDryRunSkipsSink(t *testing.T) {
	venue := testVenue(2, "2024-06-01", "09:00", "17:00")
	profile := roundOneProfile()
	svc, sink := newSchedulingServiceFixture(
		[]models.MatchUp{*singlesMatchUp("m1", "p1", "p2")},
		[]models.Venue{*venue},
		&profile,
	)

	_, err := svc.Run(context.Background(), dto.RunScheduleRequest{
		TournamentID: "t-1",
		Date:         "2024-06-01",
		DryRun:       true,
		Policy:       thirtyMinutePolicy(),
	})
	require.NoError(t, err)
	assert.Empty(t, sink.committed)
}

func TestSchedulingServiceRunValidatesPayload(t *testing.T) {
	svc, _ := newSchedulingServiceFixture(nil, nil, nil)

	_, err := svc.Run(context.Background(), dto.RunScheduleRequest{Date: "2024-06-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
