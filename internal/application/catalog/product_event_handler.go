package catalog

import (
	"context"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductEventLogger writes an audit line for every product change
type ProductEventLogger struct {
	logger *zap.Logger
}

// NewProductEventLogger creates a new ProductEventLogger
func NewProductEventLogger(logger *zap.Logger) *ProductEventLogger {
	return &ProductEventLogger{logger: logger.Named("product-audit")}
}

// Handle logs the event
func (h *ProductEventLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("product event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Int64("product_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns the product event types
func (h *ProductEventLogger) EventTypes() []string {
	return []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
	}
}

var _ shared.EventHandler = (*ProductEventLogger)(nil)
