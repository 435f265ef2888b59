package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"neurofleetx/internal/config"
	"neurofleetx/internal/metrics"
	"neurofleetx/internal/models"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrLocked is returned while the lockout window is active
	ErrLocked = errors.New("account temporarily locked")
	// ErrEmailTaken is returned when a signup email is already registered
	ErrEmailTaken = errors.New("email already registered")
)

// Manager holds the in-memory account roster and the active sessions.
// Nothing survives a restart. Passwords are plain demo strings compared
// by equality; this mirrors the demo roster and is explicitly not a
// security boundary.
type Manager struct {
	mu       sync.Mutex
	users    []models.User
	sessions map[string]int // token -> user id

	attempts    int
	lockedUntil time.Time

	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithNow injects the clock, letting tests advance the lockout window
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a manager seeded with the demo roster
func New(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		users: []models.User{
			{ID: 1, Name: "Admin User", Email: "admin@neurofleetx.com", Password: "admin123", Role: models.RoleAdmin},
			{ID: 2, Name: "Fleet Manager", Email: "manager@neurofleetx.com", Password: "manager123", Role: models.RoleManager},
			{ID: 3, Name: "Operator", Email: "operator@neurofleetx.com", Password: "operator123", Role: models.RoleOperator},
			{ID: 4, Name: "Viewer", Email: "viewer@neurofleetx.com", Password: "viewer123", Role: models.RoleViewer},
		},
		sessions:    make(map[string]int),
		maxAttempts: cfg.LockoutAttempts,
		lockout:     cfg.LockoutDuration,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login matches email+password against the roster. Reaching the failure
// limit locks all attempts out for the lockout duration; the counter
// resets on success or once the window has expired.
func (m *Manager) Login(email, password string) (models.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Before(m.lockedUntil) {
		metrics.LoginFailures.Inc()
		return models.User{}, "", ErrLocked
	}
	if !m.lockedUntil.IsZero() {
		// lockout expired
		m.lockedUntil = time.Time{}
		m.attempts = 0
	}

	for _, u := range m.users {
		if u.Email == email && u.Password == password {
			m.attempts = 0
			token := newToken()
			m.sessions[token] = u.ID
			return u, token, nil
		}
	}

	metrics.LoginFailures.Inc()
	m.attempts++
	if m.attempts >= m.maxAttempts {
		m.lockedUntil = now.Add(m.lockout)
		return models.User{}, "", ErrLocked
	}
	return models.User{}, "", ErrInvalidCredentials
}

// Signup appends a new viewer account unless the email is taken
func (m *Manager) Signup(name, email, password string) (models.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return models.User{}, "", ErrEmailTaken
		}
	}

	u := models.User{
		ID:       len(m.users) + 1,
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleViewer,
	}
	m.users = append(m.users, u)

	token := newToken()
	m.sessions[token] = u.ID
	return u, token, nil
}

// Logout drops the session token
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// UserForToken resolves a session token to its account
func (m *Manager) UserForToken(token string) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessions[token]
	if !ok {
		return models.User{}, false
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Attempts returns the current consecutive-failure count
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// RemainingAttempts returns how many failures remain before lockout
func (m *Manager) RemainingAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	left := m.maxAttempts - m.attempts
	if left < 0 {
		return 0
	}
	return left
}

// UserCount returns the roster size
func (m *Manager) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func newToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
