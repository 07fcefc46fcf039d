package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) DeletePrefix(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

func TestFailoverCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewFailoverCache(primary, fallback, nil)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "stores").Return([]byte("p"), true, nil).Once()

		val, ok, err := c.Get(ctx, "stores")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("p"), val)
		assert.False(t, c.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Get", ctx, "items:").Return(nil, false, errors.New("fail")).Once()
		fallback.On("Get", ctx, "items:").Return([]byte("f"), true, nil).Once()

		val, ok, err := c.Get(ctx, "items:")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("f"), val)
		assert.True(t, c.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		fallback.On("Set", ctx, "summary", []byte("s"), time.Minute).Return(nil).Once()

		assert.NoError(t, c.Set(ctx, "summary", []byte("s"), time.Minute))
		primary.AssertNotCalled(t, "Set", ctx, "summary", []byte("s"), time.Minute)
		fallback.AssertExpectations(t)
	})

	t.Run("DeletePrefixWhileDown", func(t *testing.T) {
		fallback.On("DeletePrefix", ctx, "prices:").Return(nil).Once()

		assert.NoError(t, c.DeletePrefix(ctx, "prices:"))
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Get", ctx, "stores").Return(nil, false, errors.New("still fail")).Once()
		fallback.On("Get", ctx, "stores").Return(nil, false, nil).Once()

		_, ok, err := c.Get(ctx, "stores")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, c.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("Recovery", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Set", ctx, "stores", []byte("p"), time.Minute).Return(nil).Once()

		assert.NoError(t, c.Set(ctx, "stores", []byte("p"), time.Minute))
		assert.False(t, c.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("DeletePrefixClearsBoth", func(t *testing.T) {
		fallback.On("DeletePrefix", ctx, "").Return(nil).Once()
		primary.On("DeletePrefix", ctx, "").Return(nil).Once()

		assert.NoError(t, c.DeletePrefix(ctx, ""))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
