package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpov/newsline/internal/models"
)

func setupNewsRepo(t *testing.T) (*RedisNewsRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisNewsRepository(rdb), mr
}

func TestNewsNextID_IndependentOfUsers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	users := NewRedisUserRepository(rdb)
	news := NewRedisNewsRepository(rdb)
	ctx := context.Background()

	uid, err := users.NextID(ctx)
	require.NoError(t, err)
	nid, err := news.NextID(ctx)
	require.NoError(t, err)

	// Both sequences start at 1: separate counters.
	assert.Equal(t, int64(1), uid)
	assert.Equal(t, int64(1), nid)
}

func TestNewsSaveAndGetByID(t *testing.T) {
	repo, _ := setupNewsRepo(t)
	ctx := context.Background()

	n := &models.News{
		ID:       1,
		Title:    "Redis 7 released",
		URL:      "https://redis.io/news/7",
		AuthorID: 3,
		CTime:    1700000000,
	}
	require.NoError(t, repo.Save(ctx, n))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, n, got)
	assert.Zero(t, got.Score)
	assert.Zero(t, got.Rank)
}

func TestClaimURL_FirstWriterWins(t *testing.T) {
	repo, mr := setupNewsRepo(t)
	ctx := context.Background()

	ok, err := repo.ClaimURL(ctx, "http://x.com/a", 1, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ClaimURL(ctx, "http://x.com/a", 2, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	id, found, err := repo.ResolveURL(ctx, "http://x.com/a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), id)

	// Key layout is part of the stored-data contract.
	got, err := mr.Get("url+http://x.com/a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestClaimURL_WindowExpires(t *testing.T) {
	repo, mr := setupNewsRepo(t)
	ctx := context.Background()

	ok, err := repo.ClaimURL(ctx, "http://x.com/b", 1, 48*time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 48*time.Hour, mr.TTL("url+http://x.com/b"))

	mr.FastForward(49 * time.Hour)

	_, found, err := repo.ResolveURL(ctx, "http://x.com/b")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err = repo.ClaimURL(ctx, "http://x.com/b", 2, 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolveURL_Absent(t *testing.T) {
	repo, _ := setupNewsRepo(t)

	_, found, err := repo.ResolveURL(context.Background(), "http://nowhere.example/")
	require.NoError(t, err)
	assert.False(t, found)
}
