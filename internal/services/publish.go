package services

import (
	"context"
	"log/slog"

	"github.com/ugandalearn/learn-service/internal/events"
)

// publishEvent sends event and logs a failure. The request has already
// succeeded by the time events are published.
func publishEvent(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.Type,
			"user_id", event.UserID,
			"error", err)
	}
}
