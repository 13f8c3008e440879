package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
)

// publishEvent never fails the caller. Delivery problems are only logged.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// invalidateDashboard drops cached dashboard aggregates after a write that
// changes them. A cache failure only costs freshness.
func invalidateDashboard(ctx context.Context, cacheService cache.CacheService, logger *slog.Logger) {
	if cacheService == nil {
		return
	}
	if err := cacheService.DeletePattern(ctx, dashboardCachePattern); err != nil {
		logger.Warn("Failed to invalidate dashboard cache", "error", err)
	}
}
