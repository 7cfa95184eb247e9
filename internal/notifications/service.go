package notifications

import (
	"context"

	"ridepass/internal/shared/config"
	"ridepass/pkg/logger"

	"github.com/google/uuid"
)

// Service fans lifecycle events out to the broker. A nil or disabled service
// is safe to call; publishes become no-ops so the domain flow never depends
// on Kafka availability.
type Service struct {
	producer Producer
	enabled  bool
	log      *logger.Logger
}

func NewService(producer Producer, cfg *config.Config, log *logger.Logger) *Service {
	enabled := cfg.Kafka.Enabled && producer != nil
	if !enabled {
		log.Warn("Event publishing disabled, lifecycle events will not be delivered")
	}
	return &Service{
		producer: producer,
		enabled:  enabled,
		log:      log,
	}
}

// Publish emits an event without surfacing delivery errors to the caller.
// Failures are logged; the reservation or payment write has already committed
// and must not be rolled back over a broker hiccup.
func (s *Service) Publish(ctx context.Context, eventType string, entityID, userID uuid.UUID, payload map[string]interface{}) {
	if s == nil || !s.enabled {
		return
	}

	event := NewEvent(eventType, entityID, userID, payload)
	if err := s.producer.PublishEvent(ctx, event); err != nil {
		s.log.Error("Failed to publish event",
			"type", eventType,
			"entity_id", entityID.String(),
			"error", err)
		return
	}
}

// Close shuts down the underlying producer
func (s *Service) Close() error {
	if s == nil || s.producer == nil {
		return nil
	}
	return s.producer.Close()
}
