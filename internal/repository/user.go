// Package repository provides Redis-backed persistence for users and news
// items. The key layout is shared with existing deployments and must be
// reproduced exactly: user:<id> and news:<id> hashes, username.to.id:<name>,
// auth:<token> and url+<url> string indexes, and the users.count/news.count
// counters.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/akarpov/newsline/internal/models"
)

const usersCountKey = "users.count"

func userKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

// usernameKey folds the username so that uniqueness and lookups are
// case-insensitive regardless of the caller's casing.
func usernameKey(username string) string {
	return "username.to.id:" + strings.ToLower(username)
}

func authKey(token string) string {
	return "auth:" + token
}

// RedisUserRepository implements user persistence against a Redis instance.
type RedisUserRepository struct {
	// RDB is the client handle used for all commands.
	RDB *redis.Client
}

// NewRedisUserRepository creates a RedisUserRepository using the provided client.
func NewRedisUserRepository(rdb *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{RDB: rdb}
}

// NextID atomically allocates the next user id. Allocated ids are never
// reused, even when the caller later abandons the id.
func (r *RedisUserRepository) NextID(ctx context.Context) (int64, error) {
	id, err := r.RDB.Incr(ctx, usersCountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", usersCountKey, err)
	}
	return id, nil
}

// Save writes the full user record.
func (r *RedisUserRepository) Save(ctx context.Context, u *models.User) error {
	if err := r.RDB.HSet(ctx, userKey(u.ID), u.Fields()).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", userKey(u.ID), err)
	}
	return nil
}

// GetByID fetches a user record. Returns (nil, nil) if the record is absent.
func (r *RedisUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	fields, err := r.RDB.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", userKey(id), err)
	}
	return models.UserFromFields(fields), nil
}

// UsernameTaken reports whether the uniqueness index already has an entry
// for the (case-folded) username.
func (r *RedisUserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	n, err := r.RDB.Exists(ctx, usernameKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", usernameKey(username), err)
	}
	return n > 0, nil
}

// ClaimUsername writes the uniqueness index entry if and only if it does not
// exist yet. The return value is the single source of truth for conflict
// detection: false means another writer holds the name.
func (r *RedisUserRepository) ClaimUsername(ctx context.Context, username string, id int64) (bool, error) {
	ok, err := r.RDB.SetNX(ctx, usernameKey(username), id, 0).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", usernameKey(username), err)
	}
	return ok, nil
}

// ResolveUsername looks up the id bound to a username. The second return
// value is false when no such user exists.
func (r *RedisUserRepository) ResolveUsername(ctx context.Context, username string) (int64, bool, error) {
	val, err := r.RDB.Get(ctx, usernameKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", usernameKey(username), err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse id for %s: %w", usernameKey(username), err)
	}
	return id, true, nil
}

// ResolveToken looks up the user id bound to a session token.
func (r *RedisUserRepository) ResolveToken(ctx context.Context, token string) (int64, bool, error) {
	val, err := r.RDB.Get(ctx, authKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get auth token: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse id for auth token: %w", err)
	}
	return id, true, nil
}

// BindToken writes the token→id index entry.
func (r *RedisUserRepository) BindToken(ctx context.Context, token string, id int64) error {
	if err := r.RDB.Set(ctx, authKey(token), id, 0).Err(); err != nil {
		return fmt.Errorf("set auth token: %w", err)
	}
	return nil
}

// UnbindToken deletes a token→id index entry. Deleting a token that was
// never bound is a no-op, so rotation works for users without a prior token.
func (r *RedisUserRepository) UnbindToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := r.RDB.Del(ctx, authKey(token)).Err(); err != nil {
		return fmt.Errorf("del auth token: %w", err)
	}
	return nil
}

// SetAuthToken overwrites the auth field of an existing user record.
func (r *RedisUserRepository) SetAuthToken(ctx context.Context, id int64, token string) error {
	if err := r.RDB.HSet(ctx, userKey(id), "auth", token).Err(); err != nil {
		return fmt.Errorf("hset %s auth: %w", userKey(id), err)
	}
	return nil
}
