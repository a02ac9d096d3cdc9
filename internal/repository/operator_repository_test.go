package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

func TestOperatorRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOperatorRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("op1", "scheduler@example.com", "hash", "Scheduler", string(models.RoleScheduler), true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM operators WHERE email = $1 LIMIT 1")).
		WithArgs("scheduler@example.com").
		WillReturnRows(rows)

	operator, err := repo.FindByEmail(context.Background(), "scheduler@example.com")
	require.NoError(t, err)
	assert.Equal(t, "scheduler@example.com", operator.Email)
	assert.Equal(t, models.RoleScheduler, operator.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepositoryCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOperatorRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{ID: "rt1", OperatorID: "op1", Token: "token", ExpiresAt: time.Now(), CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepositoryRevokeRefreshToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOperatorRepository(db)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE").
		WithArgs("rt1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "rt1", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepositoryRecordAudit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOperatorRepository(db)

	mock.ExpectExec("INSERT INTO operator_audit").WillReturnResult(sqlmock.NewResult(1, 1))

	operatorID := "op1"
	date := "2024-06-01"
	entry := &models.AuditEntry{
		OperatorID: &operatorID,
		Action:     models.AuditActionScheduleRun,
		Resource:   "scheduling",
		ResourceID: &date,
	}
	require.NoError(t, repo.RecordAudit(context.Background(), entry))
	assert.NotEmpty(t, entry.ID, "an id is assigned before insert")
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
