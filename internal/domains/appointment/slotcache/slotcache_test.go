package slotcache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clinic/internal/domains/appointment/model"
	"clinic/internal/domains/appointment/slotcache"
	"clinic/shared/cache"
	cacheMocks "clinic/shared/cache/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	doctorID      = "doc-1"
	date          = "2030-01-07"
	generationKey = "appointment:slots_gen:doc-1:2030-01-07"
)

func TestGeneration(t *testing.T) {
	t.Run("stored counter", func(t *testing.T) {
		c := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		c.EXPECT().
			Get(gomock.Any(), generationKey, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				ptr, ok := value.(*int64)
				require.True(t, ok)

				*ptr = 7

				return nil
			})

		generation, ok := slotcache.Generation(context.Background(), c, doctorID, date)

		assert.True(t, ok)
		assert.Equal(t, int64(7), generation)
	})

	t.Run("never bumped day starts at zero", func(t *testing.T) {
		c := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		c.EXPECT().Get(gomock.Any(), generationKey, gomock.Any()).Return(fmt.Errorf("failed to get cache value: %w", cache.Nil))

		generation, ok := slotcache.Generation(context.Background(), c, doctorID, date)

		assert.True(t, ok)
		assert.Zero(t, generation)
	})

	t.Run("unreadable counter disables caching", func(t *testing.T) {
		c := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		c.EXPECT().Get(gomock.Any(), generationKey, gomock.Any()).Return(errors.New("dial tcp: refused"))

		_, ok := slotcache.Generation(context.Background(), c, doctorID, date)

		assert.False(t, ok)
	})
}

func TestBump(t *testing.T) {
	t.Run("drops the list under the new generation", func(t *testing.T) {
		c := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		gomock.InOrder(
			c.EXPECT().Increment(gomock.Any(), generationKey, model.SlotsGenerationTTL).Return(int64(3), nil),
			c.EXPECT().Delete(gomock.Any(), "appointment:slots:doc-1:2030-01-07:3").Return(nil),
		)

		generation, err := slotcache.Bump(context.Background(), c, doctorID, date)

		require.NoError(t, err)
		assert.Equal(t, int64(3), generation)
	})

	t.Run("increment failure", func(t *testing.T) {
		c := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		incrErr := errors.New("redis down")
		c.EXPECT().Increment(gomock.Any(), generationKey, gomock.Any()).Return(int64(0), incrErr)

		_, err := slotcache.Bump(context.Background(), c, doctorID, date)

		assert.ErrorIs(t, err, incrErr)
	})
}
