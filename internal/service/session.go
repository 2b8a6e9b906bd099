package service

import (
	"context"

	"github.com/akarpov/newsline/internal/models"
)

// Session resolves inbound tokens to users. It is a read-only composition
// over the same repository the identity service writes through.
type Session struct {
	repo UserRepository
}

// NewSession constructs a Session resolver using the provided repository.
func NewSession(repo UserRepository) *Session {
	return &Session{repo: repo}
}

// Resolve maps a session token to its user. A missing, stale or dangling
// token yields (nil, nil) — no active session — never an error; only a
// store failure is reported as one.
func (s *Session) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	id, found, err := s.repo.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// u may be nil if the index points at a record that no longer exists;
	// that downgrades to anonymous rather than failing the request.
	return u, nil
}
