package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/domain"
)

// ErrNoToken indicates no session token is present.
var ErrNoToken = errors.New("no session token")

// ProfileFetcher resolves the profile behind the current token.
type ProfileFetcher interface {
	Me(ctx context.Context) (*domain.User, error)
}

// Store holds the bearer token for the running process and persists it to a
// fixed path so it survives restarts. It is the single source the gateway
// consults for the Authorization header.
type Store struct {
	mu     sync.RWMutex
	path   string
	token  string
	logger *zap.Logger
}

// NewStore builds a store backed by the token file at path. An existing
// token on disk is loaded eagerly; a missing file means logged out.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	} else if !os.IsNotExist(err) {
		logger.Warn("failed to read persisted token", zap.Error(err))
	}
	return s
}

// Save stores the token in memory and on disk.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Token returns the current bearer token, or empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear removes the token from memory and disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TokenClaims is the subset of JWT claims the client displays.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims parses the stored token without verifying its signature. The
// server is the only party that validates tokens; the client reads claims
// purely for display (who am I, when does this expire).
func (s *Store) Claims() (*TokenClaims, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	out := &TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// IsAuthenticated is derived, never cached: it asks the server for the
// profile behind the token. A revoked or stale token is detected by that
// call failing or returning an inactive profile.
func (s *Store) IsAuthenticated(ctx context.Context, api ProfileFetcher) bool {
	if s.Token() == "" {
		return false
	}
	user, err := api.Me(ctx)
	if err != nil {
		s.logger.Debug("profile check failed", zap.Error(err))
		return false
	}
	return user.IsActive
}
