package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurofleetx/internal/config"
	"neurofleetx/internal/models"
)

func testManager(now *time.Time) *Manager {
	return New(config.Load(), WithNow(func() time.Time { return *now }))
}

func TestLoginSuccess(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	u, token, err := m.Login("admin@neurofleetx.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotEmpty(t, token)

	got, ok := m.UserForToken(token)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
}

func TestLoginFailureCountsAttempts(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	_, _, err := m.Login("admin@neurofleetx.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, m.Attempts())
	assert.Equal(t, 2, m.RemainingAttempts())

	// a successful login resets the counter
	_, _, err = m.Login("admin@neurofleetx.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Attempts())
}

func TestLockoutAfterThreeFailures(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	_, _, err := m.Login("admin@neurofleetx.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = m.Login("admin@neurofleetx.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = m.Login("admin@neurofleetx.com", "wrong")
	assert.ErrorIs(t, err, ErrLocked)

	// even correct credentials are rejected during the window
	_, _, err = m.Login("admin@neurofleetx.com", "admin123")
	assert.ErrorIs(t, err, ErrLocked)

	now = now.Add(29 * time.Second)
	_, _, err = m.Login("admin@neurofleetx.com", "admin123")
	assert.ErrorIs(t, err, ErrLocked)

	// window expired: counter resets and the login goes through
	now = now.Add(2 * time.Second)
	_, _, err = m.Login("admin@neurofleetx.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Attempts())
}

func TestLockoutIsGlobal(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	for i := 0; i < 3; i++ {
		m.Login("admin@neurofleetx.com", "wrong")
	}

	// a different account is locked out too
	_, _, err := m.Login("viewer@neurofleetx.com", "viewer123")
	assert.ErrorIs(t, err, ErrLocked)
}

func TestSignup(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	u, token, err := m.Signup("New User", "new@neurofleetx.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, 5, u.ID)
	assert.Equal(t, models.RoleViewer, u.Role)
	assert.NotEmpty(t, token)
	assert.Equal(t, 5, m.UserCount())

	// signup opens a session immediately
	got, ok := m.UserForToken(token)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	_, _, err := m.Signup("Imposter", "admin@neurofleetx.com", "secret")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 4, m.UserCount())
}

func TestLogout(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := testManager(&now)

	_, token, err := m.Login("viewer@neurofleetx.com", "viewer123")
	require.NoError(t, err)

	m.Logout(token)
	_, ok := m.UserForToken(token)
	assert.False(t, ok)
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, models.RoleAdmin.Can(models.PermManageFleet))
	assert.True(t, models.RoleAdmin.Can(models.PermExportData))

	assert.True(t, models.RoleManager.Can(models.PermManageFleet))
	assert.True(t, models.RoleManager.Can(models.PermExportData))

	assert.True(t, models.RoleOperator.Can(models.PermOptimizeRoutes))
	assert.False(t, models.RoleOperator.Can(models.PermManageFleet))
	assert.False(t, models.RoleOperator.Can(models.PermExportData))

	assert.True(t, models.RoleViewer.Can(models.PermView))
	assert.False(t, models.RoleViewer.Can(models.PermOptimizeRoutes))
}
