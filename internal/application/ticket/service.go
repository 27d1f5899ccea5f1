package ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default numerator names for departments that do not configure their own
const (
	DefaultTicketNumerator = "Ticket"
	DefaultOrderNumerator  = "Order"
)

// Config holds the arithmetic settings applied to every mutation
type Config struct {
	AutoRoundValue    decimal.Decimal
	Currency          valueobject.Currency
	DefaultDepartment string
}

// Service runs ticket operations. Every mutation loads the ticket, applies
// the change, recalculates, saves with a version check, publishes the
// ticket's domain events and logs the outcome.
type Service struct {
	tickets     ticket.TicketRepository
	departments ticket.DepartmentRepository
	catalog     ticket.MenuCatalog
	numerators  ticket.NumeratorRepository
	publisher   shared.EventPublisher
	clock       shared.Clock
	opts        []ticket.Option
	cfg         Config
	logger      *zap.Logger
}

// NewService creates a Service. opts are applied to newly opened tickets and
// must match the options the ticket repository applies on load.
func NewService(
	tickets ticket.TicketRepository,
	departments ticket.DepartmentRepository,
	catalog ticket.MenuCatalog,
	numerators ticket.NumeratorRepository,
	cfg Config,
	clock shared.Clock,
	log *zap.Logger,
	opts ...ticket.Option,
) *Service {
	if clock == nil {
		clock = shared.SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = valueobject.DefaultCurrency
	}
	return &Service{
		tickets:     tickets,
		departments: departments,
		catalog:     catalog,
		numerators:  numerators,
		clock:       clock,
		opts:        append([]ticket.Option{ticket.WithClock(clock)}, opts...),
		cfg:         cfg,
		logger:      log,
	}
}

// SetEventPublisher sets the publisher ticket events are sent to after a save
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

func (s *Service) log(ctx context.Context, ticketID uuid.UUID) *logger.ContextLogger {
	return logger.WithLogger(logger.WithTicketID(ctx, ticketID.String()), s.logger)
}

// Open creates a ticket in the requested or the default department
func (s *Service) Open(ctx context.Context, userID uuid.UUID, req OpenTicketRequest) (resp *TicketResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ticket", "open")
	defer func() { telemetry.EndSpan(span, err) }()

	dept, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	t := ticket.NewTicket(dept, req.LocationName, s.opts...)
	t.Note = req.Note
	return s.commit(ctx, userID, t, "open")
}

func (s *Service) resolveDepartment(ctx context.Context, id *uuid.UUID) (ticket.Department, error) {
	if id != nil {
		dept, err := s.departments.FindByID(ctx, *id)
		if err != nil {
			return ticket.Department{}, err
		}
		return *dept, nil
	}
	if s.cfg.DefaultDepartment == "" {
		return ticket.NoDepartment(), nil
	}
	dept, err := s.departments.FindByName(ctx, s.cfg.DefaultDepartment)
	if errors.Is(err, shared.ErrNotFound) {
		return ticket.NoDepartment(), nil
	}
	if err != nil {
		return ticket.Department{}, err
	}
	return *dept, nil
}

// department loads the ticket's department, or the empty one when the
// ticket has none or it was deleted
func (s *Service) department(ctx context.Context, t *ticket.Ticket) (ticket.Department, error) {
	if t.DepartmentID == uuid.Nil {
		return ticket.NoDepartment(), nil
	}
	dept, err := s.departments.FindByID(ctx, t.DepartmentID)
	if errors.Is(err, shared.ErrNotFound) {
		return ticket.NoDepartment(), nil
	}
	if err != nil {
		return ticket.Department{}, err
	}
	return *dept, nil
}

// Get returns a ticket
func (s *Service) Get(ctx context.Context, ticketID uuid.UUID) (*TicketResponse, error) {
	t, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	resp := ToTicketResponse(t, string(s.cfg.Currency))
	return &resp, nil
}

// GetMergedItems returns the settlement buckets of a ticket
func (s *Service) GetMergedItems(ctx context.Context, ticketID uuid.UUID) ([]MergedItemResponse, error) {
	t, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return ToMergedItemResponses(t.BuildMergedItems()), nil
}

// ListOpen pages through unpaid tickets
func (s *Service) ListOpen(ctx context.Context, filter ListFilter) ([]TicketSummaryResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}

	tickets, total, err := s.tickets.FindOpen(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToTicketSummaryResponses(tickets), total, nil
}

// AddItem adds a menu item using the department's price tag
func (s *Service) AddItem(ctx context.Context, userID, ticketID uuid.UUID, req AddItemRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "add_item", func(t *ticket.Ticket) error {
		item, err := s.catalog.GetMenuItem(ctx, req.MenuItemID)
		if err != nil {
			return err
		}
		dept, err := s.department(ctx, t)
		if err != nil {
			return err
		}
		quantity := req.Quantity
		if quantity.IsZero() {
			quantity = decimal.NewFromInt(1)
		}
		_, err = t.AddLine(userID, item, req.PortionName, dept.PriceTag, quantity, req.Properties)
		return err
	})
}

// VoidLines voids submitted lines. A partial quantity is split off first.
func (s *Service) VoidLines(ctx context.Context, userID, ticketID uuid.UUID, req LinesRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "void_lines", func(t *ticket.Ticket) error {
		lines, err := selectLines(t, req.Lines)
		if err != nil {
			return err
		}
		return t.VoidSelectedLines(lines, req.ReasonID, userID)
	})
}

// GiftLines gifts lines. A partial quantity is split off first.
func (s *Service) GiftLines(ctx context.Context, userID, ticketID uuid.UUID, req LinesRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "gift_lines", func(t *ticket.Ticket) error {
		lines, err := selectLines(t, req.Lines)
		if err != nil {
			return err
		}
		return t.GiftSelectedLines(lines, req.ReasonID, userID)
	})
}

// CancelLines reverts unsubmitted voids and gifts or removes unsubmitted lines
func (s *Service) CancelLines(ctx context.Context, userID, ticketID uuid.UUID, req LinesRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "cancel_lines", func(t *ticket.Ticket) error {
		lines := make([]*ticket.LineItem, 0, len(req.Lines))
		for _, sel := range req.Lines {
			l, ok := t.GetLine(sel.LineID)
			if !ok {
				return lineNotFound(sel.LineID)
			}
			lines = append(lines, l)
		}
		return t.CancelSelectedLines(lines)
	})
}

// selectLines resolves the selection. Lines selected with a quantity below
// their own are split and the split-off part is returned in their place.
func selectLines(t *ticket.Ticket, selections []LineSelectionInput) ([]*ticket.LineItem, error) {
	result := make([]*ticket.LineItem, 0, len(selections))
	partial := make([]*ticket.LineItem, 0)
	seen := make(map[uuid.UUID]struct{}, len(selections))
	for _, sel := range selections {
		if _, dup := seen[sel.LineID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_LINE", fmt.Sprintf("Line %s is selected more than once", sel.LineID))
		}
		seen[sel.LineID] = struct{}{}
		l, ok := t.GetLine(sel.LineID)
		if !ok {
			return nil, lineNotFound(sel.LineID)
		}
		if sel.Quantity == nil || sel.Quantity.GreaterThanOrEqual(l.Quantity) {
			result = append(result, l)
			continue
		}
		if !sel.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Selected quantity must be positive")
		}
		l.SelectedQuantity = *sel.Quantity
		partial = append(partial, l)
	}
	if len(partial) > 0 {
		extracted, err := t.ExtractSelectedLines(partial)
		if err != nil {
			return nil, err
		}
		result = append(result, extracted...)
	}
	return result, nil
}

func lineNotFound(id uuid.UUID) error {
	return shared.NewDomainError("LINE_NOT_FOUND", fmt.Sprintf("Line %s not found on ticket", id))
}

// SetDiscount sets a ticket or line discount
func (s *Service) SetDiscount(ctx context.Context, userID, ticketID uuid.UUID, req DiscountRequest) (*TicketResponse, error) {
	discountType, ok := ticket.ParseDiscountType(req.Type)
	if !ok || discountType == ticket.DiscountAuto {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Unknown discount type")
	}
	return s.mutate(ctx, userID, ticketID, "set_discount", func(t *ticket.Ticket) error {
		lineID := uuid.Nil
		if req.LineID != nil {
			lineID = *req.LineID
		}
		return t.SetDiscount(discountType, lineID, req.Amount, userID)
	})
}

// SetService sets a service charge
func (s *Service) SetService(ctx context.Context, userID, ticketID uuid.UUID, req ServiceRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "set_service", func(t *ticket.Ticket) error {
		return t.AddService(req.ServiceID, req.Name, ticket.CalculationMethod(req.Method), req.Amount)
	})
}

// RemoveService removes a service charge
func (s *Service) RemoveService(ctx context.Context, userID, ticketID, serviceID uuid.UUID) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "remove_service", func(t *ticket.Ticket) error {
		return t.RemoveService(serviceID)
	})
}

// AddPayment tenders a payment
func (s *Service) AddPayment(ctx context.Context, userID, ticketID uuid.UUID, req PaymentRequest) (*TicketResponse, error) {
	paymentType, ok := ticket.ParsePaymentType(req.Type)
	if !ok {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Unknown payment type")
	}
	return s.mutate(ctx, userID, ticketID, "add_payment", func(t *ticket.Ticket) error {
		_, err := t.AddPayment(s.clock.Now(), req.Amount, paymentType, userID)
		return err
	})
}

// PaySelectedItems pays for the selected merged items. The amount is capped
// at the remaining balance.
func (s *Service) PaySelectedItems(ctx context.Context, userID, ticketID uuid.UUID, req PaySelectedItemsRequest) (*TicketResponse, error) {
	paymentType, ok := ticket.ParsePaymentType(req.Type)
	if !ok {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Unknown payment type")
	}
	selections := make([]ticket.Selection, len(req.Items))
	for i, item := range req.Items {
		selections[i] = ticket.Selection{
			MenuItemID: item.MenuItemID,
			Price:      item.Price,
			Quantity:   item.Quantity,
		}
	}
	return s.mutate(ctx, userID, ticketID, "pay_selected_items", func(t *ticket.Ticket) error {
		_, err := t.SettleSelectedItems(selections, paymentType, userID)
		return err
	})
}

// SetTag sets a ticket tag
func (s *Service) SetTag(ctx context.Context, userID, ticketID uuid.UUID, req TagRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "set_tag", func(t *ticket.Ticket) error {
		return t.SetTagValue(req.Name, req.Value)
	})
}

// UpdateAccount assigns or clears the customer account
func (s *Service) UpdateAccount(ctx context.Context, userID, ticketID uuid.UUID, req AccountRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "update_account", func(t *ticket.Ticket) error {
		account := ticket.NoAccount()
		if req.AccountID != nil {
			account = ticket.Account{ID: *req.AccountID, Name: req.Name}
		}
		t.UpdateAccount(account)
		return nil
	})
}

// RecordPrint counts a print of the ticket on a printer
func (s *Service) RecordPrint(ctx context.Context, userID, ticketID uuid.UUID, req PrintRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "record_print", func(t *ticket.Ticket) error {
		t.RecordPrint(req.PrinterID)
		return nil
	})
}

// RefreshTaxes re-reads the tax template of every line's menu item
func (s *Service) RefreshTaxes(ctx context.Context, userID, ticketID uuid.UUID) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "refresh_taxes", func(t *ticket.Ticket) error {
		taxes := make(map[uuid.UUID]*ticket.TaxTemplate)
		for _, l := range t.Lines {
			if _, seen := taxes[l.MenuItemID]; seen {
				continue
			}
			item, err := s.catalog.GetMenuItem(ctx, l.MenuItemID)
			if err != nil {
				return err
			}
			taxes[l.MenuItemID] = item.Tax
		}
		t.UpdateTaxes(func(id uuid.UUID) *ticket.TaxTemplate { return taxes[id] })
		return nil
	})
}

// Submit sends new lines to the kitchen. New lines are merged and numbered
// with the department's order numerator, the ticket gets a number on its
// first submit, and every line is locked.
func (s *Service) Submit(ctx context.Context, userID, ticketID uuid.UUID, req SubmitRequest) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "submit", func(t *ticket.Ticket) error {
		if !t.CanSubmit() {
			return shared.NewDomainError("INVALID_STATE", "Ticket is already paid")
		}
		dept, err := s.department(ctx, t)
		if err != nil {
			return err
		}

		if len(t.GetUnlockedLines()) > 0 {
			orderNumber, err := s.numerators.Next(ctx, numeratorName(dept.OrderNumerator, DefaultOrderNumerator))
			if err != nil {
				return fmt.Errorf("next order number: %w", err)
			}
			t.MergeLinesAndUpdateOrderNumbers(orderNumber)
		}
		if t.TicketNumber == "" {
			number, err := s.numerators.Next(ctx, numeratorName(dept.TicketNumerator, DefaultTicketNumerator))
			if err != nil {
				return fmt.Errorf("next ticket number: %w", err)
			}
			t.TicketNumber = fmt.Sprintf("%d", number)
		}
		if req.Lock {
			t.RequestLock()
		}
		t.LockTicket()
		return nil
	})
}

func numeratorName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// Close marks a settled ticket as paid and keeps only the paid items that
// still match a payable line
func (s *Service) Close(ctx context.Context, userID, ticketID uuid.UUID) (*TicketResponse, error) {
	return s.mutate(ctx, userID, ticketID, "close", func(t *ticket.Ticket) error {
		t.Recalculate(s.cfg.AutoRoundValue, userID)
		if err := t.Close(); err != nil {
			return err
		}
		reconciled := make([]ticket.PaidItem, 0)
		for _, m := range t.BuildMergedItems() {
			reconciled = append(reconciled, m.PaidItems...)
		}
		t.UpdatePaidItems(reconciled)
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, userID, ticketID uuid.UUID, op string, fn func(t *ticket.Ticket) error) (resp *TicketResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ticket", op, telemetry.AttrTicketID.String(ticketID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	t, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		s.log(ctx, ticketID).Warn("Ticket operation rejected",
			zap.String("operation", op),
			zap.String("acting_user", userID.String()),
			zap.Error(err))
		return nil, err
	}
	return s.commit(ctx, userID, t, op)
}

func (s *Service) commit(ctx context.Context, userID uuid.UUID, t *ticket.Ticket, op string) (*TicketResponse, error) {
	t.Recalculate(s.cfg.AutoRoundValue, userID)

	events := append([]shared.DomainEvent(nil), t.GetDomainEvents()...)
	if err := s.tickets.Save(ctx, t); err != nil {
		s.log(ctx, t.ID).Warn("Ticket save failed",
			zap.String("operation", op),
			zap.Int("version", t.Version),
			zap.Error(err))
		return nil, err
	}
	t.ClearDomainEvents()

	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.log(ctx, t.ID).Error("Publishing ticket events failed", zap.Error(err))
		}
	}

	s.log(ctx, t.ID).Info("Ticket updated",
		zap.String("operation", op),
		zap.String("acting_user", userID.String()),
		zap.Stringer("total", s.money(t.TotalAmount)),
		zap.Stringer("remaining", s.money(t.RemainingAmount)),
		zap.Int("lines", t.GetItemCount()),
		zap.Int("version", t.Version))

	resp := ToTicketResponse(t, string(s.cfg.Currency))
	return &resp, nil
}

// money tags an amount with the configured currency. The currency is never
// empty after NewService, so NewMoney cannot fail.
func (s *Service) money(amount decimal.Decimal) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, s.cfg.Currency)
	return m
}
