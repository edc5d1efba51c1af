// Package session replaces the old ambient "admin authenticated" flag
// with an explicit caller-held session. Whoever needs admin rights holds
// a Session and passes it in; there is no global state.
package session

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-console/internal/config"
)

// ErrBadCredentials is returned when login fails.
var ErrBadCredentials = errors.New("invalid credentials")

// Gate holds the shared admin credential against which logins are
// checked.
type Gate struct {
	username     string
	passwordHash string
}

// NewGate builds the credential gate from configuration. When no hash is
// configured the development default password "admin" is hashed at
// startup.
func NewGate(cfg config.AdminConfig) (Gate, error) {
	hash := cfg.PasswordHash
	if hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), cfg.BcryptCost)
		if err != nil {
			return Gate{}, err
		}
		hash = string(hashed)
	}
	return Gate{username: cfg.Username, passwordHash: hash}, nil
}

// Session tracks one caller's authentication state.
type Session struct {
	gate  Gate
	admin bool
}

// New creates an unauthenticated session against the gate.
func New(gate Gate) *Session {
	return &Session{gate: gate}
}

// Login transitions the session to admin on matching credentials. A
// failed login leaves the session unauthenticated.
func (s *Session) Login(username, password string) error {
	if username != s.gate.username {
		return ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.gate.passwordHash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	s.admin = true
	return nil
}

// Logout drops admin rights.
func (s *Session) Logout() {
	s.admin = false
}

// IsAdmin reports whether the session has authenticated as admin.
func (s *Session) IsAdmin() bool {
	return s.admin
}
