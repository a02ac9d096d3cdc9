package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

var matchUpMockColumns = []string{
	"id", "tournament_id", "event_id", "draw_id", "structure_id",
	"round_number", "round_position", "match_up_type", "format", "category_name",
	"status", "winner_target_id", "loser_target_id", "sides", "potential_participants",
	"venue_id", "court_id", "court_order", "scheduled_date", "scheduled_time", "end_time",
}

func TestMatchUpRepositoryListInContext(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	rows := sqlmock.NewRows(matchUpMockColumns).
		AddRow("m1", "t-1", "e-1", "draw-1", nil,
			1, 1, "SINGLES", "SET3-S:6/TB7", "U18",
			"TO_BE_PLAYED", "final", nil,
			[]byte(`[{"side_number":1,"individual_ids":["p1"]}]`), []byte(`[["p3"]]`),
			nil, nil, nil, nil, nil, nil).
		AddRow("m2", "t-1", "e-1", "draw-1", nil,
			1, 2, "SINGLES", nil, nil,
			"TO_BE_PLAYED", nil, nil, nil, nil,
			"venue-1", "court-1", 2, "2024-06-01", "09:00", "09:30")
	mock.ExpectQuery("SELECT (.+) FROM match_ups WHERE tournament_id").
		WithArgs("t-1").
		WillReturnRows(rows)

	matchUps, err := repo.ListInContext(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, matchUps, 2)

	assert.Equal(t, "final", matchUps[0].WinnerTargetID)
	require.Len(t, matchUps[0].Sides, 1)
	assert.Equal(t, []string{"p1"}, matchUps[0].Sides[0].IndividualIDs)
	assert.Equal(t, [][]string{{"p3"}}, matchUps[0].PotentialParticipants)
	assert.Nil(t, matchUps[0].Schedule)

	require.NotNil(t, matchUps[1].Schedule)
	assert.Equal(t, "09:00", matchUps[1].Schedule.StartTime)
	assert.Equal(t, 2, matchUps[1].Schedule.CourtOrder)
}

func TestMatchUpRepositoryListByDraw(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	rows := sqlmock.NewRows(matchUpMockColumns).
		AddRow("m1", "t-1", "e-1", "draw-1", nil,
			1, 1, "SINGLES", nil, nil,
			"TO_BE_PLAYED", nil, nil, nil, nil,
			nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM match_ups WHERE tournament_id = \\$1 AND draw_id").
		WithArgs("t-1", "draw-1").
		WillReturnRows(rows)

	matchUps, err := repo.ListByDraw(context.Background(), "t-1", "draw-1")
	require.NoError(t, err)
	require.Len(t, matchUps, 1)
	assert.Equal(t, "draw-1", matchUps[0].DrawID)
}

func TestMatchUpRepositoryListInContextBadPayload(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	rows := sqlmock.NewRows(matchUpMockColumns).
		AddRow("m1", "t-1", "e-1", "draw-1", nil,
			1, 1, "SINGLES", nil, nil,
			"TO_BE_PLAYED", nil, nil, []byte(`{not json`), nil,
			nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM match_ups").
		WithArgs("t-1").
		WillReturnRows(rows)

	_, err := repo.ListInContext(context.Background(), "t-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode sides")
}

func TestMatchUpRepositoryCommitSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE match_ups SET scheduled_date").
		WithArgs("m1", "2024-06-01", "09:00", "venue-1", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE match_ups SET scheduled_date").
		WithArgs("m2", "2024-06-01", "09:30", "venue-1", "court-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	commits := []models.ScheduleCommit{
		{MatchUpID: "m1", ScheduledDate: "2024-06-01", ScheduledTime: "09:00", VenueID: "venue-1"},
		{MatchUpID: "m2", ScheduledDate: "2024-06-01", ScheduledTime: "09:30", VenueID: "venue-1", CourtID: "court-2"},
	}
	require.NoError(t, repo.CommitSchedule(context.Background(), commits))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchUpRepositoryCommitScheduleRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE match_ups SET scheduled_date").
		WithArgs("m1", "2024-06-01", "09:00", "venue-1", "").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CommitSchedule(context.Background(), []models.ScheduleCommit{
		{MatchUpID: "m1", ScheduledDate: "2024-06-01", ScheduledTime: "09:00", VenueID: "venue-1"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchUpRepositoryCommitScheduleEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	require.NoError(t, repo.CommitSchedule(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchUpRepositoryClearSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMatchUpRepository(db)
	mock.ExpectExec("UPDATE match_ups SET scheduled_date = NULL").
		WithArgs("t-1", "2024-06-01").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.ClearSchedule(context.Background(), "t-1", "2024-06-01"))
}
