package slotcache

import (
	"context"
	"errors"
	"fmt"

	"clinic/internal/domains/appointment/model"
	"clinic/shared/cache"

	"github.com/rs/zerolog/log"
)

// Generation reads the generation of one doctor's day. A day that was never bumped is at 0.
// ok is false when the counter cannot be read, in which case the cache must be bypassed.
func Generation(ctx context.Context, c cache.RedisCache, doctorID, date string) (int64, bool) {
	var generation int64

	err := c.Get(ctx, model.SlotsGenerationKey(doctorID, date), &generation)

	switch {
	case err == nil:
		return generation, true
	case errors.Is(err, cache.Nil):
		return 0, true
	default:
		log.Warn().Err(err).Str("doctorID", doctorID).Str("date", date).Msg("slot generation unreadable, bypassing cache")

		return 0, false
	}
}

// Bump moves a doctor's day to a new generation. The list under the new generation is dropped
// as well, since an expired counter restarts and may land on a number used before.
func Bump(ctx context.Context, c cache.RedisCache, doctorID, date string) (int64, error) {
	generation, err := c.Increment(ctx, model.SlotsGenerationKey(doctorID, date), model.SlotsGenerationTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to bump slot generation: %w", err)
	}

	if err = c.Delete(ctx, model.SlotsCacheKey(doctorID, date, generation)); err != nil {
		return generation, fmt.Errorf("failed to drop slot list: %w", err)
	}

	return generation, nil
}
