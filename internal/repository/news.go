package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akarpov/newsline/internal/models"
)

const newsCountKey = "news.count"

func newsKey(id int64) string {
	return "news:" + strconv.FormatInt(id, 10)
}

// urlKey uses the url verbatim: self-posts never reach this index because
// their synthesized text:// urls are excluded from deduplication upstream.
func urlKey(url string) string {
	return "url+" + url
}

// RedisNewsRepository implements news persistence against a Redis instance.
type RedisNewsRepository struct {
	// RDB is the client handle used for all commands.
	RDB *redis.Client
}

// NewRedisNewsRepository creates a RedisNewsRepository using the provided client.
func NewRedisNewsRepository(rdb *redis.Client) *RedisNewsRepository {
	return &RedisNewsRepository{RDB: rdb}
}

// NextID atomically allocates the next news id, independent of the user
// id sequence.
func (r *RedisNewsRepository) NextID(ctx context.Context) (int64, error) {
	id, err := r.RDB.Incr(ctx, newsCountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", newsCountKey, err)
	}
	return id, nil
}

// Save writes the full news record.
func (r *RedisNewsRepository) Save(ctx context.Context, n *models.News) error {
	if err := r.RDB.HSet(ctx, newsKey(n.ID), n.Fields()).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", newsKey(n.ID), err)
	}
	return nil
}

// GetByID fetches a news record. Returns (nil, nil) if the record is absent.
func (r *RedisNewsRepository) GetByID(ctx context.Context, id int64) (*models.News, error) {
	fields, err := r.RDB.HGetAll(ctx, newsKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", newsKey(id), err)
	}
	return models.NewsFromFields(fields), nil
}

// ResolveURL looks up the id of the first news item posted with this url.
func (r *RedisNewsRepository) ResolveURL(ctx context.Context, url string) (int64, bool, error) {
	val, err := r.RDB.Get(ctx, urlKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", urlKey(url), err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse id for %s: %w", urlKey(url), err)
	}
	return id, true, nil
}

// ClaimURL writes the url→id dedup entry if and only if it does not exist
// yet; false means another item already claimed the url. A non-zero ttl
// limits the deduplication window; zero makes the entry permanent.
func (r *RedisNewsRepository) ClaimURL(ctx context.Context, url string, id int64, ttl time.Duration) (bool, error) {
	ok, err := r.RDB.SetNX(ctx, urlKey(url), id, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", urlKey(url), err)
	}
	return ok, nil
}
