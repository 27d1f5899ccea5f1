package telemetry

import (
	"context"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/ticket"
	"go.opentelemetry.io/otel/metric"
)

// MeterName names the meter for ticket metrics
const MeterName = "github.com/pos/backend/ticket"

// TicketMetrics turns ticket events into counters and amount histograms. It
// subscribes to the event bus like any other handler.
type TicketMetrics struct {
	opened         *Counter
	ordersSent     *Counter
	linesSent      *Counter
	payments       *Counter
	paymentAmounts *Histogram
	closed         *Counter
	closedTotals   *Histogram
	lineChanges    *Counter
}

// NewTicketMetrics creates the instruments on meter
func NewTicketMetrics(meter metric.Meter) (*TicketMetrics, error) {
	var (
		m   TicketMetrics
		err error
	)
	if m.opened, err = NewCounter(meter, "pos.tickets.opened", "Tickets opened", "{ticket}"); err != nil {
		return nil, err
	}
	if m.ordersSent, err = NewCounter(meter, "pos.orders.submitted", "Orders sent to the kitchen", "{order}"); err != nil {
		return nil, err
	}
	if m.linesSent, err = NewCounter(meter, "pos.order_lines.submitted", "Lines sent to the kitchen", "{line}"); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, "pos.payments", "Payments tendered", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmounts, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos.payment.amount",
		Description: "Tendered payment amounts",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.closed, err = NewCounter(meter, "pos.tickets.closed", "Tickets closed", "{ticket}"); err != nil {
		return nil, err
	}
	if m.closedTotals, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos.ticket.total",
		Description: "Totals of closed tickets",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.lineChanges, err = NewCounter(meter, "pos.lines.changed", "Lines voided or gifted", "{line}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// EventTypes returns the ticket event types
func (m *TicketMetrics) EventTypes() []string {
	return []string{
		ticket.EventTypeTicketOpened,
		ticket.EventTypeOrderSubmitted,
		ticket.EventTypePaymentAdded,
		ticket.EventTypeTicketClosed,
		ticket.EventTypeLinesVoided,
		ticket.EventTypeLinesGifted,
	}
}

// Handle records the event
func (m *TicketMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ticket.TicketOpenedEvent:
		m.opened.Inc(ctx)
	case *ticket.OrderSubmittedEvent:
		m.ordersSent.Inc(ctx)
		m.linesSent.Add(ctx, int64(len(e.LineIDs)))
	case *ticket.PaymentAddedEvent:
		attr := AttrPaymentType.String(string(e.PaymentType))
		m.payments.Inc(ctx, attr)
		m.paymentAmounts.Record(ctx, e.Amount.InexactFloat64(), attr)
	case *ticket.TicketClosedEvent:
		m.closed.Inc(ctx)
		m.closedTotals.Record(ctx, e.TotalAmount.InexactFloat64())
	case *ticket.LinesChangedEvent:
		m.lineChanges.Add(ctx, int64(len(e.LineIDs)), AttrEventType.String(e.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*TicketMetrics)(nil)
