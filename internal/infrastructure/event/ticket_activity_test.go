package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTicketActivityLogger_LogsTicketEvents(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewTicketActivityLogger(zap.New(core)))

	clock := shared.NewFakeClock(time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC))
	tk := ticket.NewTicket(ticket.Department{ID: uuid.New(), Name: "Bar"}, "Table 9", ticket.WithClock(clock))
	item := &ticket.MenuItem{
		ID:       uuid.New(),
		Name:     "Beer",
		Portions: []ticket.Portion{{Name: "Pint", Multiplier: 1, Price: decimal.NewFromInt(6)}},
	}
	user := uuid.New()
	_, err := tk.AddLine(user, item, "", "", decimal.NewFromInt(1), nil)
	require.NoError(t, err)
	tk.Recalculate(decimal.Zero, user)
	_, err = tk.AddPayment(clock.Now(), decimal.NewFromInt(6), ticket.PaymentCash, user)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), tk.GetDomainEvents()...))

	entries := recorded.FilterMessage("ticket activity").All()
	require.Len(t, entries, 2)

	opened := entries[0].ContextMap()
	assert.Equal(t, ticket.EventTypeTicketOpened, opened["event_type"])
	assert.Equal(t, "Table 9", opened["location"])
	assert.Equal(t, tk.ID.String(), opened["ticket_id"])

	payment := entries[1].ContextMap()
	assert.Equal(t, ticket.EventTypePaymentAdded, payment["event_type"])
	assert.Equal(t, "CASH", payment["payment_type"])
	assert.Equal(t, "6", payment["amount"])
	assert.Equal(t, "0", payment["remaining"])
}

func TestTicketActivityLogger_IgnoresOtherEvents(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewTicketActivityLogger(zap.New(core)))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("MenuChanged")))
	assert.Zero(t, recorded.Len())
}
