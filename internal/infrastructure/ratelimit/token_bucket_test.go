package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectRun(mock redismock.ClientMock, key string) *redismock.ExpectedSlice {
	sha := redis.NewScript(tokenBucketScript).Hash()
	return mock.ExpectEvalSha(sha, []string{keyPrefix + key}, 1.0, 5, int64(10_000))
}

func TestNewLimiter_Validation(t *testing.T) {
	db, _ := redismock.NewClientMock()

	_, err := NewLimiter(nil, 1, 5)
	assert.Error(t, err)
	_, err = NewLimiter(db, 0, 5)
	assert.Error(t, err)
	_, err = NewLimiter(db, 1, 0)
	assert.Error(t, err)
}

func TestLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l, err := NewLimiter(db, 1, 5)
	require.NoError(t, err)

	expectRun(mock, "user-1").SetVal([]interface{}{int64(1), "4"})

	ok, retry, err := l.Allow(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, retry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_Denied(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l, err := NewLimiter(db, 1, 5)
	require.NoError(t, err)

	expectRun(mock, "user-1").SetVal([]interface{}{int64(0), "0.25"})

	ok, retry, err := l.Allow(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 750*time.Millisecond, retry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l, err := NewLimiter(db, 1, 5)
	require.NoError(t, err)

	expectRun(mock, "user-1").SetErr(errors.New("connection refused"))

	ok, _, err := l.Allow(context.Background(), "user-1")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestLimiter_EmptyKey(t *testing.T) {
	db, _ := redismock.NewClientMock()
	l, err := NewLimiter(db, 1, 5)
	require.NoError(t, err)

	_, _, err = l.Allow(context.Background(), "")
	assert.Error(t, err)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, bucketTTL(1, 5))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}
