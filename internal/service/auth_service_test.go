package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
)

type mockOperatorDirectory struct {
	operatorByEmail  *models.Operator
	operatorByID     *models.Operator
	refreshTokens    map[string]*models.RefreshToken
	auditEntries     []*models.AuditEntry
	lastLoginUpdated bool
}

func (m *mockOperatorDirectory) FindByEmail(ctx context.Context, email string) (*models.Operator, error) {
	if m.operatorByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.operatorByEmail, nil
}

func (m *mockOperatorDirectory) FindByID(ctx context.Context, id string) (*models.Operator, error) {
	if m.operatorByID != nil {
		return m.operatorByID, nil
	}
	if m.operatorByEmail != nil {
		return m.operatorByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOperatorDirectory) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockOperatorDirectory) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.operatorByEmail != nil && m.operatorByEmail.ID == id {
		m.operatorByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockOperatorDirectory) RevokeOperatorRefreshTokens(ctx context.Context, operatorID string) error {
	return nil
}

func (m *mockOperatorDirectory) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockOperatorDirectory) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockOperatorDirectory) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockOperatorDirectory) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	m.auditEntries = append(m.auditEntries, entry)
	return nil
}

func newAuthServiceFixture(directory *mockOperatorDirectory) *AuthService {
	return NewAuthService(directory, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	directory := &mockOperatorDirectory{operatorByEmail: &models.Operator{ID: "op1", Email: "scheduler@example.com", PasswordHash: string(password), Active: true, Role: models.RoleScheduler}}
	svc := newAuthServiceFixture(directory)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "scheduler@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleScheduler, res.Operator.Role)
	assert.True(t, directory.lastLoginUpdated)
	require.NotEmpty(t, directory.auditEntries)
	assert.Equal(t, models.AuditActionLogin, directory.auditEntries[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	directory := &mockOperatorDirectory{operatorByEmail: &models.Operator{ID: "op1", Email: "scheduler@example.com", PasswordHash: string(password), Active: true}}
	svc := newAuthServiceFixture(directory)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "scheduler@example.com", Password: "nope1234"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	directory := &mockOperatorDirectory{operatorByEmail: &models.Operator{ID: "op1", Email: "scheduler@example.com", PasswordHash: string(password), Active: false}}
	svc := newAuthServiceFixture(directory)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "scheduler@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	operator := &models.Operator{ID: "op1", Email: "scheduler@example.com", PasswordHash: "hash", Active: true, Role: models.RoleScheduler}
	directory := &mockOperatorDirectory{operatorByID: operator, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", OperatorID: operator.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newAuthServiceFixture(directory)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, directory.refreshTokens["token"].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	operator := &models.Operator{ID: "op1", Active: true}
	directory := &mockOperatorDirectory{operatorByID: operator, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", OperatorID: operator.ID, Token: "token", ExpiresAt: time.Now().Add(-time.Hour)},
	}}
	svc := newAuthServiceFixture(directory)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	directory := &mockOperatorDirectory{operatorByEmail: &models.Operator{ID: "op1", PasswordHash: string(oldHash), Active: true}}
	svc := newAuthServiceFixture(directory)

	err := svc.ChangePassword(context.Background(), "op1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), directory.operatorByEmail.PasswordHash)
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := newAuthServiceFixture(&mockOperatorDirectory{})
	operator := &models.Operator{ID: "op1", Email: "scheduler@example.com", Role: models.RoleScheduler}
	token, _, err := svc.generateAccessToken(operator)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, claims.OperatorID)
	assert.Equal(t, models.RoleScheduler, claims.Role)
}

func TestAuthServiceRecordActionFillsTrailEntry(t *testing.T) {
	directory := &mockOperatorDirectory{}
	svc := newAuthServiceFixture(directory)

	svc.RecordAction(context.Background(), "op1", models.AuditActionScheduleRun, "scheduling", "2024-06-01", []byte(`{"tournament_id":"t-1"}`), "10.0.0.1", "cli")

	require.Len(t, directory.auditEntries, 1)
	entry := directory.auditEntries[0]
	assert.Equal(t, models.AuditActionScheduleRun, entry.Action)
	assert.Equal(t, "scheduling", entry.Resource)
	require.NotNil(t, entry.OperatorID)
	assert.Equal(t, "op1", *entry.OperatorID)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "2024-06-01", *entry.ResourceID)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
}

func TestOperatorRoleCanSchedule(t *testing.T) {
	assert.True(t, models.RoleDirector.CanSchedule())
	assert.True(t, models.RoleScheduler.CanSchedule())
	assert.False(t, models.RoleViewer.CanSchedule())
}
