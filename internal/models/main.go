// Package models defines the core data structures for users and news items,
// along with the error taxonomy shared by all layers.
package models

import (
	"errors"
	"strconv"
)

var (
	// ErrUsernameTaken is returned when a registration collides with an
	// existing (case-insensitively equal) username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound is returned when a lookup by id, username or token yields
	// nothing. It is an expected outcome, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped with detail when caller-supplied arguments
	// violate an operation's preconditions.
	ErrValidation = errors.New("validation failed")
)

// InitialKarma is the reputation every new account starts with.
const InitialKarma = 10

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user. Uniqueness is
	// case-insensitive; the original casing is preserved here.
	Username string
	// PasswordHash is the salted digest of the user's password.
	PasswordHash string
	// CTime is the Unix timestamp of account creation.
	CTime int64
	// Karma is the user's reputation counter.
	Karma int64
	// About is an optional free-text self description.
	About string
	// Email is an optional contact address.
	Email string
	// AuthToken is the current session token. A user has exactly one live
	// token at a time; issuing a new one invalidates the previous.
	AuthToken string
}

// Fields returns the user as the field map persisted in the store.
// The field names are part of the stored-data contract and must not change.
func (u *User) Fields() map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"password": u.PasswordHash,
		"ctime":    u.CTime,
		"karma":    u.Karma,
		"about":    u.About,
		"email":    u.Email,
		"auth":     u.AuthToken,
	}
}

// UserFromFields rebuilds a User from a stored field map.
// Returns nil if the map is empty (record absent).
func UserFromFields(f map[string]string) *User {
	if len(f) == 0 {
		return nil
	}
	return &User{
		ID:           parseInt(f["id"]),
		Username:     f["username"],
		PasswordHash: f["password"],
		CTime:        parseInt(f["ctime"]),
		Karma:        parseInt(f["karma"]),
		About:        f["about"],
		Email:        f["email"],
		AuthToken:    f["auth"],
	}
}

// News represents a submitted news item.
type News struct {
	// ID is the unique identifier for the news item.
	ID int64
	// Title is the headline shown in listings.
	Title string
	// URL is either the submitted absolute URL or a synthesized
	// "text://" placeholder for self-posts.
	URL string
	// AuthorID is the id of the submitting user.
	AuthorID int64
	// CTime is the Unix timestamp of submission.
	CTime int64
	// Score and Rank belong to the ranking subsystem; this layer only
	// initializes them to zero.
	Score int64
	Rank  int64
}

// Fields returns the news item as the field map persisted in the store.
func (n *News) Fields() map[string]any {
	return map[string]any{
		"id":      n.ID,
		"title":   n.Title,
		"url":     n.URL,
		"user_id": n.AuthorID,
		"ctime":   n.CTime,
		"score":   n.Score,
		"rank":    n.Rank,
	}
}

// NewsFromFields rebuilds a News item from a stored field map.
// Returns nil if the map is empty.
func NewsFromFields(f map[string]string) *News {
	if len(f) == 0 {
		return nil
	}
	return &News{
		ID:       parseInt(f["id"]),
		Title:    f["title"],
		URL:      f["url"],
		AuthorID: parseInt(f["user_id"]),
		CTime:    parseInt(f["ctime"]),
		Score:    parseInt(f["score"]),
		Rank:     parseInt(f["rank"]),
	}
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
