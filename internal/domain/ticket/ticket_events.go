package ticket

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeTicket is the aggregate type of ticket events
const AggregateTypeTicket = "Ticket"

// Event type constants
const (
	EventTypeTicketOpened   = "TicketOpened"
	EventTypeOrderSubmitted = "TicketOrderSubmitted"
	EventTypePaymentAdded   = "TicketPaymentAdded"
	EventTypeTicketClosed   = "TicketClosed"
	EventTypeLinesVoided    = "TicketLinesVoided"
	EventTypeLinesGifted    = "TicketLinesGifted"
)

// TicketOpenedEvent is raised when a new ticket is created
type TicketOpenedEvent struct {
	shared.BaseDomainEvent
	TicketID     uuid.UUID `json:"ticket_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	LocationName string    `json:"location_name"`
}

// EventType returns the event type name
func (e *TicketOpenedEvent) EventType() string {
	return EventTypeTicketOpened
}

func newTicketOpenedEvent(t *Ticket) *TicketOpenedEvent {
	return &TicketOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketOpened, AggregateTypeTicket, t.ID, t.now()),
		TicketID:        t.ID,
		DepartmentID:    t.DepartmentID,
		LocationName:    t.LocationName,
	}
}

// OrderSubmittedEvent is raised when new lines are merged and numbered for
// the kitchen
type OrderSubmittedEvent struct {
	shared.BaseDomainEvent
	TicketID    uuid.UUID   `json:"ticket_id"`
	OrderNumber int         `json:"order_number"`
	LineIDs     []uuid.UUID `json:"line_ids"`
}

// EventType returns the event type name
func (e *OrderSubmittedEvent) EventType() string {
	return EventTypeOrderSubmitted
}

func newOrderSubmittedEvent(t *Ticket, orderNumber int, lines []*LineItem) *OrderSubmittedEvent {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return &OrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderSubmitted, AggregateTypeTicket, t.ID, t.now()),
		TicketID:        t.ID,
		OrderNumber:     orderNumber,
		LineIDs:         ids,
	}
}

// PaymentAddedEvent is raised for every tendered payment
type PaymentAddedEvent struct {
	shared.BaseDomainEvent
	TicketID        uuid.UUID       `json:"ticket_id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	PaymentType     PaymentType     `json:"payment_type"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// EventType returns the event type name
func (e *PaymentAddedEvent) EventType() string {
	return EventTypePaymentAdded
}

func newPaymentAddedEvent(t *Ticket, p *Payment) *PaymentAddedEvent {
	return &PaymentAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAdded, AggregateTypeTicket, t.ID, t.now()),
		TicketID:        t.ID,
		PaymentID:       p.ID,
		PaymentType:     p.Type,
		Amount:          p.Amount,
		RemainingAmount: t.RemainingAmount,
	}
}

// TicketClosedEvent is raised when a fully paid ticket is closed
type TicketClosedEvent struct {
	shared.BaseDomainEvent
	TicketID     uuid.UUID       `json:"ticket_id"`
	TicketNumber string          `json:"ticket_number"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *TicketClosedEvent) EventType() string {
	return EventTypeTicketClosed
}

func newTicketClosedEvent(t *Ticket) *TicketClosedEvent {
	return &TicketClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketClosed, AggregateTypeTicket, t.ID, t.now()),
		TicketID:        t.ID,
		TicketNumber:    t.TicketNumber,
		TotalAmount:     t.TotalAmount,
	}
}

// LinesChangedEvent is raised when submitted lines are voided or gifted
type LinesChangedEvent struct {
	shared.BaseDomainEvent
	TicketID uuid.UUID   `json:"ticket_id"`
	LineIDs  []uuid.UUID `json:"line_ids"`
	ReasonID int         `json:"reason_id"`
	UserID   uuid.UUID   `json:"user_id"`
}

// EventType returns the event type name
func (e *LinesChangedEvent) EventType() string {
	return e.Type
}

func newLinesChangedEvent(t *Ticket, eventType string, lines []*LineItem, reasonID int, userID uuid.UUID) *LinesChangedEvent {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return &LinesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTicket, t.ID, t.now()),
		TicketID:        t.ID,
		LineIDs:         ids,
		ReasonID:        reasonID,
		UserID:          userID,
	}
}
