// Package service implements the business logic of the data layer,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/akarpov/newsline/internal/models"
	"github.com/akarpov/newsline/internal/password"
	"github.com/akarpov/newsline/internal/token"
)

// UserRepository defines the persistence operations required by the
// identity service and the session resolver.
type UserRepository interface {
	// NextID atomically allocates the next user id.
	NextID(ctx context.Context) (int64, error)
	// Save writes the full user record.
	Save(ctx context.Context, u *models.User) error
	// GetByID fetches a user record; (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// UsernameTaken reports whether the username index has an entry.
	UsernameTaken(ctx context.Context, username string) (bool, error)
	// ClaimUsername atomically writes the username index entry if absent;
	// false means the name is held by another user.
	ClaimUsername(ctx context.Context, username string, id int64) (bool, error)
	// ResolveUsername returns the id bound to a username.
	ResolveUsername(ctx context.Context, username string) (int64, bool, error)
	// ResolveToken returns the id bound to a session token.
	ResolveToken(ctx context.Context, token string) (int64, bool, error)
	// BindToken writes the token→id index entry.
	BindToken(ctx context.Context, token string, id int64) error
	// UnbindToken removes a token→id index entry; a no-op for tokens that
	// were never bound.
	UnbindToken(ctx context.Context, token string) error
	// SetAuthToken overwrites the auth field of the user record.
	SetAuthToken(ctx context.Context, id int64, token string) error
}

// Identity implements account creation, credential checks and session
// token rotation on top of a UserRepository.
type Identity struct {
	repo   UserRepository
	hasher *password.Hasher

	now      func() time.Time
	newToken func() (string, error)
}

// NewIdentity constructs an Identity service using the provided repository
// and password hasher.
func NewIdentity(repo UserRepository, hasher *password.Hasher) *Identity {
	return &Identity{
		repo:     repo,
		hasher:   hasher,
		now:      time.Now,
		newToken: token.Generate,
	}
}

// CreateUser registers a new account and returns its first session token.
//
// The username index write is atomic set-if-absent and is the source of
// truth for conflict detection; the preceding existence check is only a
// fast path that avoids burning an id on the common duplicate case. An id
// allocated by a call that then loses the claim is abandoned, never reused.
func (s *Identity) CreateUser(ctx context.Context, username, pass string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: username required", models.ErrValidation)
	}

	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		return "", models.ErrUsernameTaken
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return "", err
	}
	auth, err := s.newToken()
	if err != nil {
		return "", err
	}

	ok, err := s.repo.ClaimUsername(ctx, username, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", models.ErrUsernameTaken
	}

	u := &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: s.hasher.Hash(pass),
		CTime:        s.now().Unix(),
		Karma:        models.InitialKarma,
		AuthToken:    auth,
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return "", err
	}
	if err := s.repo.BindToken(ctx, auth, id); err != nil {
		return "", err
	}
	return auth, nil
}

// CheckCredentials verifies a username/password pair and returns the user's
// current session token. Unknown usernames and wrong passwords yield the
// same ErrInvalidCredentials so callers cannot tell accounts apart.
// The username comparison is case-insensitive; the password is exact.
func (s *Identity) CheckCredentials(ctx context.Context, username, pass string) (string, error) {
	id, found, err := s.repo.ResolveUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrInvalidCredentials
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if u == nil || u.PasswordHash != s.hasher.Hash(pass) {
		return "", models.ErrInvalidCredentials
	}
	return u.AuthToken, nil
}

// RotateToken replaces the user's session token with a fresh one and
// returns it. Every session issued under the previous token becomes
// invalid, which is how logout works.
func (s *Identity) RotateToken(ctx context.Context, userID int64) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", models.ErrNotFound
	}
	if err := s.repo.UnbindToken(ctx, u.AuthToken); err != nil {
		return "", err
	}
	auth, err := s.newToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.SetAuthToken(ctx, userID, auth); err != nil {
		return "", err
	}
	if err := s.repo.BindToken(ctx, auth, userID); err != nil {
		return "", err
	}
	return auth, nil
}

// GetByID returns the user with the given id, or ErrNotFound.
func (s *Identity) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.ErrNotFound
	}
	return u, nil
}

// GetByUsername returns the user with the given (case-insensitive)
// username, or ErrNotFound.
func (s *Identity) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	id, found, err := s.repo.ResolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}
	return s.GetByID(ctx, id)
}
