package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K ~string, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCacheManager[K, V]) Len() int {
	return m.Called().Int(0)
}

func newMock(t *testing.T) *mockCacheManager[string, snapshot] {
	m := &mockCacheManager[string, snapshot]{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// countingLoad returns a revision equal to the number of loads so far.
func countingLoad(calls *int) func(context.Context, string) (snapshot, error) {
	return func(_ context.Context, name string) (snapshot, error) {
		*calls++
		return snapshot{Revision: int64(*calls), Body: []byte(name)}, nil
	}
}

func TestLoader_Bypass(t *testing.T) {
	m := newMock(t)
	var calls int
	l := NewLoader(m, countingLoad(&calls), Bypass(true))

	got, hit, err := l.Get(context.Background(), "flow")
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, snapshot{Revision: 1, Body: []byte("flow")}, got)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Equal(t, Stats{Misses: 1}, l.Stats())
}

func TestLoader_Hit(t *testing.T) {
	m := newMock(t)
	cached := snapshot{Revision: 7}
	m.On("Get", mock.Anything, "flow").Return(cached, true).Once()
	var calls int
	l := NewLoader(m, countingLoad(&calls))

	got, hit, err := l.Get(context.Background(), "flow")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, cached, got)
	require.Zero(t, calls)
	require.Equal(t, Stats{Hits: 1}, l.Stats())
}

func TestLoader_MissFillsCache(t *testing.T) {
	m := newMock(t)
	want := snapshot{Revision: 1, Body: []byte("flow")}
	m.On("Get", mock.Anything, "flow").Return(snapshot{}, false).Once()
	m.On("Set", mock.Anything, "flow", want, time.Minute).Return().Once()
	var calls int
	l := NewLoader(m, countingLoad(&calls), WithTTL(time.Minute))

	got, hit, err := l.Get(context.Background(), "flow")
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, want, got)
}

func TestLoader_ErrorIsNotCached(t *testing.T) {
	m := newMock(t)
	m.On("Get", mock.Anything, "flow").Return(snapshot{}, false).Once()
	boom := errors.New("boom")
	l := NewLoader(m, func(context.Context, string) (snapshot, error) {
		return snapshot{}, boom
	})

	_, _, err := l.Get(context.Background(), "flow")
	require.ErrorIs(t, err, boom)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoader_SlidingExpiryRefreshes(t *testing.T) {
	m := newMock(t)
	cached := snapshot{Revision: 2}
	m.On("GetWithRefresh", mock.Anything, "flow", time.Minute).Return(cached, true).Once()
	var calls int
	l := NewLoader(m, countingLoad(&calls), WithTTL(time.Minute), WithSlidingExpiry())

	got, hit, err := l.Get(context.Background(), "flow")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, cached, got)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestLoader_InvalidateWithRealCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, snapshot]("snapshots", DefaultExpiration, DefaultCleanupInterval)
	var calls int
	l := NewLoader(cache, countingLoad(&calls))

	_, hit, err := l.Get(ctx, "flow")
	require.NoError(t, err)
	require.False(t, hit)
	_, hit, err = l.Get(ctx, "flow")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 1, calls)

	require.NoError(t, l.Invalidate(ctx, "flow"))
	got, _, err := l.Get(ctx, "flow")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, int64(2), got.Revision)
	require.Equal(t, Stats{Hits: 1, Misses: 2}, l.Stats())
}
