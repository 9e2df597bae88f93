package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSubject struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Subject.Set(ctx, "list:all", []cachedSubject{{Code: "MTH", Name: "Mathematics"}}, time.Minute))
	assert.True(t, mr.Exists("subject:list:all"))

	var got []cachedSubject
	require.NoError(t, cm.Subject.Get(ctx, "list:all", &got))
	assert.Equal(t, []cachedSubject{{Code: "MTH", Name: "Mathematics"}}, got)

	err := cm.Subject.Get(ctx, "list:grade:P1", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_TTLExpires(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Subject.Set(ctx, "list:all", []cachedSubject{}, SubjectCacheConfig.TTL))
	mr.FastForward(SubjectCacheConfig.TTL + time.Second)

	var got []cachedSubject
	assert.ErrorIs(t, cm.Subject.Get(ctx, "list:all", &got), ErrCacheNotFound)
}

func TestCacheHelper_NilClientDegrades(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.False(t, cm.Enabled())
	assert.NoError(t, cm.Subject.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, cm.Subject.InvalidatePattern(ctx, "*"))

	var s string
	assert.ErrorIs(t, cm.Subject.Get(ctx, "k", &s), ErrCacheNotAvailable)
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
}

func TestInvalidateSubjectCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{SubjectListKey(""), SubjectListKey("P1"), SubjectListKey("S4")} {
		require.NoError(t, cm.Subject.Set(ctx, key, []cachedSubject{}, time.Minute))
	}
	require.NoError(t, cm.Subject.Set(ctx, "other", "x", time.Minute))

	InvalidateSubjectCache(ctx, cm)

	assert.False(t, mr.Exists("subject:list:all"))
	assert.False(t, mr.Exists("subject:list:grade:P1"))
	assert.False(t, mr.Exists("subject:list:grade:S4"))
	assert.True(t, mr.Exists("subject:other"))
}

func TestCacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []cachedSubject{{Code: "ENG", Name: "English"}}, nil
	}

	var first, second []cachedSubject
	require.NoError(t, cm.Subject.CacheOrExecute(ctx, "list:all", &first, time.Minute, fetch))
	require.NoError(t, cm.Subject.CacheOrExecute(ctx, "list:all", &second, time.Minute, fetch))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestCacheOrExecute_FetchErrorNotCached(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	boom := errors.New("db down")
	var dest []cachedSubject
	err := cm.Subject.CacheOrExecute(ctx, "list:all", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("subject:list:all"))
}

func TestCacheOrExecute_RedisDownFallsThrough(t *testing.T) {
	cm, mr := newTestManager(t)
	mr.Close()

	var dest []cachedSubject
	err := cm.Subject.CacheOrExecute(context.Background(), "list:all", &dest, time.Minute, func() (interface{}, error) {
		return []cachedSubject{{Code: "SCI"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "SCI", dest[0].Code)
}

func TestSubjectListKey(t *testing.T) {
	assert.Equal(t, "list:all", SubjectListKey(""))
	assert.Equal(t, "list:grade:P7", SubjectListKey("P7"))
}
