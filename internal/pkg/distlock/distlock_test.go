package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLock_Exclusive(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	locker := NewLocker(client, nil, time.Minute)
	assert.Equal(t, "redis", locker.Backend())

	first := locker.Lock("export:abc")
	second := locker.Lock("export:abc")

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("analytics:lock:export:abc"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire a held lock")

	// A non-owner release leaves the lock in place
	assert.ErrorIs(t, second.Release(ctx), ErrNotHeld)
	assert.True(t, mr.Exists("analytics:lock:export:abc"))

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("analytics:lock:export:abc"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ExpiresWithTTL(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "ttl", 2*time.Second)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(3 * time.Second)

	next := NewRedisLock(client, "ttl", 2*time.Second)
	ok, err = next.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// The expired holder must not delete its successor's lock
	assert.ErrorIs(t, lock.Release(ctx), ErrNotHeld)
	assert.True(t, mr.Exists("analytics:lock:ttl"))
}

func TestRedisLock_ServerDown(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	_, err := NewRedisLock(client, "down", time.Second).Acquire(context.Background())
	assert.Error(t, err)
}

func TestPGAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lock := NewPGAdvisoryLock(db, "export:abc")

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(lock.lockID).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(lock.lockID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, lock.Release(context.Background()))
	assert.Nil(t, lock.conn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGAdvisoryLock_Contended(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	locker := NewLocker(nil, db, time.Minute)
	assert.Equal(t, "postgres", locker.Backend())

	mock.ExpectQuery(`pg_try_advisory_lock`).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	lock := locker.Lock("busy")
	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// Nothing held, nothing to unlock
	require.NoError(t, lock.Release(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGAdvisoryLock_DeterministicID(t *testing.T) {
	a := NewPGAdvisoryLock(nil, "same-key")
	b := NewPGAdvisoryLock(nil, "same-key")
	c := NewPGAdvisoryLock(nil, "other-key")
	assert.Equal(t, a.lockID, b.lockID)
	assert.NotEqual(t, a.lockID, c.lockID)
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	locker := NewLocker(nil, nil, time.Minute)
	assert.Equal(t, "local", locker.Backend())

	a := locker.Lock("k")
	b := locker.Lock("k")

	ok, _ := a.Acquire(ctx)
	assert.True(t, ok)
	ok, _ = b.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, b.Release(ctx))
	ok, _ = b.Acquire(ctx)
	assert.False(t, ok, "release by a non-owner must not free the key")

	require.NoError(t, a.Release(ctx))
	ok, _ = b.Acquire(ctx)
	assert.True(t, ok)
}
