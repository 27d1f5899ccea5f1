package ticket

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// TicketRepository defines the interface for ticket persistence
type TicketRepository interface {
	// FindByID loads a ticket with all of its lines, discounts, services,
	// payments and paid items
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// FindOpen lists unpaid tickets, newest first
	FindOpen(ctx context.Context, filter shared.Filter) ([]*Ticket, int64, error)

	// Save creates or updates the ticket. Updates fail with
	// shared.ErrConcurrencyConflict when the stored version differs from the
	// ticket's version. Lines returned by PopRemovedLines are deleted.
	Save(ctx context.Context, t *Ticket) error
}

// DepartmentRepository defines the interface for department persistence
type DepartmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Department, error)
	FindByName(ctx context.Context, name string) (*Department, error)
	Save(ctx context.Context, d *Department) error
}

// NumeratorRepository hands out sequential numbers by numerator name
type NumeratorRepository interface {
	Next(ctx context.Context, name string) (int, error)
}
