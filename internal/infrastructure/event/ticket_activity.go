package event

import (
	"context"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/ticket"
	"go.uber.org/zap"
)

// TicketActivityLogger writes one structured log line per ticket event.
// It is the activity trail for voids, gifts, payments and closings.
type TicketActivityLogger struct {
	logger *zap.Logger
}

// NewTicketActivityLogger creates the handler
func NewTicketActivityLogger(logger *zap.Logger) *TicketActivityLogger {
	return &TicketActivityLogger{logger: logger.Named("ticket_activity")}
}

// EventTypes returns the ticket event types
func (h *TicketActivityLogger) EventTypes() []string {
	return []string{
		ticket.EventTypeTicketOpened,
		ticket.EventTypeOrderSubmitted,
		ticket.EventTypePaymentAdded,
		ticket.EventTypeTicketClosed,
		ticket.EventTypeLinesVoided,
		ticket.EventTypeLinesGifted,
	}
}

// Handle logs the event
func (h *TicketActivityLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("ticket_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *ticket.TicketOpenedEvent:
		fields = append(fields, zap.String("location", e.LocationName))
	case *ticket.OrderSubmittedEvent:
		fields = append(fields, zap.Int("order_number", e.OrderNumber), zap.Int("lines", len(e.LineIDs)))
	case *ticket.PaymentAddedEvent:
		fields = append(fields,
			zap.String("payment_type", string(e.PaymentType)),
			zap.String("amount", e.Amount.String()),
			zap.String("remaining", e.RemainingAmount.String()))
	case *ticket.TicketClosedEvent:
		fields = append(fields,
			zap.String("ticket_number", e.TicketNumber),
			zap.String("total", e.TotalAmount.String()))
	case *ticket.LinesChangedEvent:
		fields = append(fields,
			zap.Int("lines", len(e.LineIDs)),
			zap.Int("reason_id", e.ReasonID),
			zap.String("user_id", e.UserID.String()))
	}

	h.logger.Info("ticket activity", fields...)
	return nil
}

var _ shared.EventHandler = (*TicketActivityLogger)(nil)
