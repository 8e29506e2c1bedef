package task

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-tasks-api/internal/database/dbtest"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

// unreachableRedis points at a port nothing listens on and gives up fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

// newCachedService returns a Service over a CachedStore backed by an
// in-process Redis, plus the raw repository and the Redis server.
func newCachedService(t *testing.T) (*Service, *Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewRepository(dbtest.New(t))
	return NewService(NewCachedStore(repo, client, time.Minute, logging.Discard())), repo, mr
}

func TestCachedStore_GetIsServedFromRedis(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateInput{Title: "Cached"})
	require.NoError(t, err)
	key := cacheKey(owner, created.ID)
	assert.False(t, mr.Exists(key))

	_, err = svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	// changed behind the cache's back, so a hit still shows the old title
	_, err = repo.Update(ctx, owner, created.ID, Changes{Title: strPtr("Direct"), UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Title)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedStore_WritesInvalidate(t *testing.T) {
	svc, _, mr := newCachedService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateInput{Title: "Before"})
	require.NoError(t, err)
	key := cacheKey(owner, created.ID)

	warm := func() {
		t.Helper()
		_, err := svc.Get(ctx, owner, created.ID)
		require.NoError(t, err)
		require.True(t, mr.Exists(key))
	}

	warm()
	_, err = svc.Update(ctx, owner, created.ID, UpdateInput{Title: strPtr("After")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)

	warm()
	toggled, err := svc.Toggle(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, toggled.Status)
	assert.False(t, mr.Exists(key))

	warm()
	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	assert.False(t, mr.Exists(key))

	_, err = svc.Get(ctx, owner, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedStore_UndecodableEntryFallsThrough(t *testing.T) {
	svc, _, mr := newCachedService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateInput{Title: "Real"})
	require.NoError(t, err)
	key := cacheKey(owner, created.ID)
	require.NoError(t, mr.Set(key, "{not json"))

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Real", got.Title)

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var cached Task
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, created.ID, cached.ID)
}

func TestCachedStore_StaleEntryDoesNotRevertUpdates(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateInput{Title: "v1", Description: strPtr("first")})
	require.NoError(t, err)
	key := cacheKey(owner, created.ID)

	_, err = svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	stale, err := mr.Get(key)
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, created.ID, UpdateInput{Title: strPtr("v2"), Description: strPtr("second")})
	require.NoError(t, err)

	// a read that raced the rename puts the old row back
	require.NoError(t, mr.Set(key, stale))

	updated, err := svc.Update(ctx, owner, created.ID, UpdateInput{Status: statusPtr(StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Title)

	toggled, err := svc.Toggle(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, toggled.Status)

	got, err := repo.GetByID(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "second", *got.Description)
	assert.Equal(t, StatusPending, got.Status)
}

func TestCachedStore_FallsThroughWhenRedisIsDown(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	store := NewCachedStore(repo, unreachableRedis(t), time.Minute, logging.Discard())
	svc := NewService(store)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateInput{Title: "Cached"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Title)

	toggled, err := svc.Toggle(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, toggled.Status)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	_, err = svc.Get(ctx, owner, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheKeyIsOwnerScoped(t *testing.T) {
	id := uuid.New()
	a, b := uuid.New(), uuid.New()

	assert.NotEqual(t, cacheKey(a, id), cacheKey(b, id))
	assert.Equal(t, "task:"+a.String()+":"+id.String(), cacheKey(a, id))
}
