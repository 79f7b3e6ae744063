package event

import (
	"context"
	"fmt"

	"clinic/infras/kafka"
	"clinic/internal/domains/appointment/slotcache"
	"clinic/shared/cache"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// SlotCacheListener drops cached slot lists named by lifecycle events. The API already
// invalidates on write; this covers instances whose own invalidation failed.
type SlotCacheListener struct {
	cache cache.RedisCache
}

func NewSlotCacheListener(cache cache.RedisCache) *SlotCacheListener {
	return &SlotCacheListener{cache: cache}
}

func (l *SlotCacheListener) Handle(ctx context.Context, message kafkaGo.Message) error {
	event, err := kafka.DecodeKafkaMessage[Event](message)
	if err != nil {
		// A payload that never decodes would block the partition; skip it.
		log.Warn().Err(err).Int64("offset", message.Offset).Msg("skipping undecodable appointment event")

		return nil
	}

	if event.DoctorID == "" || event.Date == "" {
		return nil
	}

	if event.Type != TypeBooked && !event.FreesSlot() {
		return nil
	}

	generation, err := slotcache.Bump(ctx, l.cache, event.DoctorID, event.Date)
	if err != nil {
		return fmt.Errorf("failed to drop slot cache for %s: %w", event.AppointmentID, err)
	}

	log.Debug().Str("type", event.Type).Str("doctor_id", event.DoctorID).Str("date", event.Date).Int64("generation", generation).Msg("slot cache dropped")

	return nil
}
