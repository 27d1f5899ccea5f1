package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockTicketRepository is a mock implementation of ticket.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FindOpen(ctx context.Context, filter shared.Filter) ([]*ticket.Ticket, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ticket.Ticket), args.Get(1).(int64), args.Error(2)
}

func (m *MockTicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockDepartmentRepository is a mock implementation of ticket.DepartmentRepository
type MockDepartmentRepository struct {
	mock.Mock
}

func (m *MockDepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticket.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Department), args.Error(1)
}

func (m *MockDepartmentRepository) FindByName(ctx context.Context, name string) (*ticket.Department, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Department), args.Error(1)
}

func (m *MockDepartmentRepository) Save(ctx context.Context, d *ticket.Department) error {
	return m.Called(ctx, d).Error(0)
}

// MockMenuCatalog is a mock implementation of ticket.MenuCatalog
type MockMenuCatalog struct {
	mock.Mock
}

func (m *MockMenuCatalog) GetMenuItem(ctx context.Context, id uuid.UUID) (*ticket.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.MenuItem), args.Error(1)
}

// MockNumeratorRepository is a mock implementation of ticket.NumeratorRepository
type MockNumeratorRepository struct {
	mock.Mock
}

func (m *MockNumeratorRepository) Next(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type serviceFixture struct {
	svc         *Service
	tickets     *MockTicketRepository
	departments *MockDepartmentRepository
	catalog     *MockMenuCatalog
	numerators  *MockNumeratorRepository
	publisher   *MockEventPublisher
	clock       *shared.FakeClock
	logs        *observer.ObservedLogs
	user        uuid.UUID
}

func newFixture(t *testing.T, cfg Config) *serviceFixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	f := &serviceFixture{
		tickets:     new(MockTicketRepository),
		departments: new(MockDepartmentRepository),
		catalog:     new(MockMenuCatalog),
		numerators:  new(MockNumeratorRepository),
		publisher:   new(MockEventPublisher),
		clock:       shared.NewFakeClock(time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)),
		logs:        logs,
		user:        uuid.New(),
	}
	f.svc = NewService(f.tickets, f.departments, f.catalog, f.numerators, cfg, f.clock, zap.New(core))
	f.svc.SetEventPublisher(f.publisher)
	return f
}

// stored registers tk as the ticket returned by FindByID and accepts saves
func (f *serviceFixture) stored(tk *ticket.Ticket) {
	f.tickets.On("FindByID", mock.Anything, tk.ID).Return(tk, nil)
	f.tickets.On("Save", mock.Anything, tk).Return(nil).Run(func(args mock.Arguments) {
		saved := args.Get(1).(*ticket.Ticket)
		saved.Version++
	})
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *serviceFixture) openTicket(t *testing.T) *ticket.Ticket {
	t.Helper()
	tk := ticket.NewTicket(ticket.NoDepartment(), "Table 4", ticket.WithClock(f.clock))
	tk.ClearDomainEvents()
	f.stored(tk)
	return tk
}

func menuItem(name string, price string) *ticket.MenuItem {
	return &ticket.MenuItem{
		ID:   uuid.New(),
		Name: name,
		Portions: []ticket.Portion{
			{Name: "Normal", Multiplier: 1, Price: decimal.RequireFromString(price)},
		},
	}
}

func publishedTypes(p *MockEventPublisher) []string {
	types := make([]string, 0)
	for _, call := range p.Calls {
		if call.Method != "Publish" {
			continue
		}
		for _, e := range call.Arguments.Get(1).([]shared.DomainEvent) {
			types = append(types, e.EventType())
		}
	}
	return types
}

func TestService_Open(t *testing.T) {
	t.Run("default department by name", func(t *testing.T) {
		f := newFixture(t, Config{Currency: "USD", DefaultDepartment: "Restaurant"})
		dept := &ticket.Department{ID: uuid.New(), Name: "Restaurant", PriceTag: "Happy"}
		f.departments.On("FindByName", mock.Anything, "Restaurant").Return(dept, nil)
		f.tickets.On("Save", mock.Anything, mock.AnythingOfType("*ticket.Ticket")).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Open(context.Background(), f.user, OpenTicketRequest{LocationName: "Table 1", Note: "window"})
		require.NoError(t, err)
		assert.Equal(t, dept.ID, resp.DepartmentID)
		assert.Equal(t, "Table 1", resp.LocationName)
		assert.Equal(t, "window", resp.Note)
		assert.Equal(t, "USD", resp.Currency)
		assert.Equal(t, []string{ticket.EventTypeTicketOpened}, publishedTypes(f.publisher))
	})

	t.Run("missing default department falls back to none", func(t *testing.T) {
		f := newFixture(t, Config{DefaultDepartment: "Bar"})
		f.departments.On("FindByName", mock.Anything, "Bar").Return(nil, shared.ErrNotFound)
		f.tickets.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Open(context.Background(), f.user, OpenTicketRequest{})
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, resp.DepartmentID)
	})

	t.Run("unknown requested department", func(t *testing.T) {
		f := newFixture(t, Config{})
		id := uuid.New()
		f.departments.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Open(context.Background(), f.user, OpenTicketRequest{DepartmentID: &id})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.tickets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_AddItem(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Burger", "10")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)

	resp, err := f.svc.AddItem(context.Background(), f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].Quantity.Equal(decimal.NewFromInt(1)), "quantity defaults to one")
	assert.True(t, resp.Totals.Sum.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.Totals.Remaining.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, resp.Version)
}

func TestService_AddItem_UnknownMenuItem(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	id := uuid.New()
	f.catalog.On("GetMenuItem", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.AddItem(context.Background(), f.user, tk.ID, AddItemRequest{MenuItemID: id})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.tickets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	entries := f.logs.FilterMessage("Ticket operation rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "add_item", entries[0].ContextMap()["operation"])
}

func TestService_Submit(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Cola", "2.5")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)
	f.numerators.On("Next", mock.Anything, DefaultOrderNumerator).Return(7, nil).Once()
	f.numerators.On("Next", mock.Anything, DefaultTicketNumerator).Return(42, nil).Once()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
		require.NoError(t, err)
	}

	resp, err := f.svc.Submit(ctx, f.user, tk.ID, SubmitRequest{Lock: true})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.TicketNumber)
	assert.True(t, resp.Locked)
	require.Len(t, resp.Lines, 1, "unit lines of the same item merge")
	assert.True(t, resp.Lines[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 7, resp.Lines[0].OrderNumber)
	assert.True(t, resp.Lines[0].Locked)
	assert.True(t, resp.Totals.Sum.Equal(decimal.RequireFromString("7.5")))
	assert.Contains(t, publishedTypes(f.publisher), ticket.EventTypeOrderSubmitted)

	// nothing new: no numerator calls, ticket number kept
	resp, err = f.svc.Submit(ctx, f.user, tk.ID, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.TicketNumber)
	f.numerators.AssertExpectations(t)
}

func TestService_Submit_DepartmentNumerators(t *testing.T) {
	f := newFixture(t, Config{})
	dept := ticket.Department{ID: uuid.New(), Name: "Bar", TicketNumerator: "BarTickets", OrderNumerator: "BarOrders"}
	tk := ticket.NewTicket(dept, "Counter", ticket.WithClock(f.clock))
	f.stored(tk)
	f.departments.On("FindByID", mock.Anything, dept.ID).Return(&dept, nil)
	item := menuItem("Beer", "5")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)
	f.numerators.On("Next", mock.Anything, "BarOrders").Return(1, nil)
	f.numerators.On("Next", mock.Anything, "BarTickets").Return(100, nil)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	require.NoError(t, err)
	resp, err := f.svc.Submit(ctx, f.user, tk.ID, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.TicketNumber)
	assert.False(t, resp.Locked)
	f.numerators.AssertExpectations(t)
}

func TestService_PaymentAndClose(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Steak", "20")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	require.NoError(t, err)

	_, err = f.svc.Close(ctx, f.user, tk.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "UNPAID_BALANCE", de.Code)

	resp, err := f.svc.AddPayment(ctx, f.user, tk.ID, PaymentRequest{Type: "cash", Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)
	assert.True(t, resp.Totals.Remaining.IsZero())

	resp, err = f.svc.Close(ctx, f.user, tk.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsPaid)

	types := publishedTypes(f.publisher)
	assert.Contains(t, types, ticket.EventTypePaymentAdded)
	assert.Contains(t, types, ticket.EventTypeTicketClosed)

	_, err = f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	assert.Error(t, err, "paid tickets reject new lines")
}

func TestService_AddPayment_Validation(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	ctx := context.Background()

	_, err := f.svc.AddPayment(ctx, f.user, tk.ID, PaymentRequest{Type: "barter", Amount: decimal.NewFromInt(1)})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PAYMENT_TYPE", de.Code)

	_, err = f.svc.AddPayment(ctx, f.user, tk.ID, PaymentRequest{Type: "card", Amount: decimal.Zero})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_AMOUNT", de.Code)
}

func TestService_AutoRoundOnCommit(t *testing.T) {
	f := newFixture(t, Config{AutoRoundValue: decimal.RequireFromString("0.5")})
	tk := f.openTicket(t)
	item := menuItem("Coffee", "3.2")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)

	resp, err := f.svc.AddItem(context.Background(), f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	require.NoError(t, err)
	assert.True(t, resp.Totals.Remaining.Equal(decimal.NewFromInt(3)), "got %s", resp.Totals.Remaining)
}

func TestService_SetDiscount(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Pasta", "12")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)
	ctx := context.Background()

	_, err := f.svc.SetDiscount(ctx, f.user, tk.ID, DiscountRequest{Type: "AUTO", Amount: decimal.NewFromInt(1)})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_DISCOUNT_TYPE", de.Code)

	_, err = f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	require.NoError(t, err)
	resp, err := f.svc.SetDiscount(ctx, f.user, tk.ID, DiscountRequest{Type: "PERCENT", Amount: decimal.NewFromInt(25)})
	require.NoError(t, err)
	assert.True(t, resp.Totals.Sum.Equal(decimal.NewFromInt(9)), "got %s", resp.Totals.Sum)
}

func TestService_VoidLines_PartialQuantity(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Wings", "6")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)
	f.numerators.On("Next", mock.Anything, mock.Anything).Return(1, nil)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID, Quantity: decimal.NewFromInt(3)})
	require.NoError(t, err)
	resp, err := f.svc.Submit(ctx, f.user, tk.ID, SubmitRequest{})
	require.NoError(t, err)
	lineID := resp.Lines[0].ID

	one := decimal.NewFromInt(1)
	resp, err = f.svc.VoidLines(ctx, f.user, tk.ID, LinesRequest{
		Lines:    []LineSelectionInput{{LineID: lineID, Quantity: &one}},
		ReasonID: 2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)

	var original, voided LineResponse
	for _, l := range resp.Lines {
		if l.ID == lineID {
			original = l
		} else {
			voided = l
		}
	}
	assert.True(t, original.Quantity.Equal(decimal.NewFromInt(2)))
	assert.False(t, original.Voided)
	assert.True(t, voided.Quantity.Equal(one))
	assert.True(t, voided.Voided)
	assert.Equal(t, 2, voided.ReasonID)
	assert.True(t, resp.Totals.Sum.Equal(decimal.NewFromInt(12)), "got %s", resp.Totals.Sum)
	assert.Contains(t, publishedTypes(f.publisher), ticket.EventTypeLinesVoided)
}

func TestService_VoidLines_UnknownLine(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)

	_, err := f.svc.VoidLines(context.Background(), f.user, tk.ID, LinesRequest{
		Lines: []LineSelectionInput{{LineID: uuid.New()}},
	})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "LINE_NOT_FOUND", de.Code)
}

func TestService_VoidLines_DuplicateSelection(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Wings", "6")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil)
	f.numerators.On("Next", mock.Anything, mock.Anything).Return(1, nil)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID, Quantity: decimal.NewFromInt(3)})
	require.NoError(t, err)
	resp, err := f.svc.Submit(ctx, f.user, tk.ID, SubmitRequest{})
	require.NoError(t, err)
	lineID := resp.Lines[0].ID

	one := decimal.NewFromInt(1)
	_, err = f.svc.VoidLines(ctx, f.user, tk.ID, LinesRequest{
		Lines: []LineSelectionInput{{LineID: lineID, Quantity: &one}, {LineID: lineID, Quantity: &one}},
	})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "DUPLICATE_LINE", de.Code)
	assert.NotContains(t, publishedTypes(f.publisher), ticket.EventTypeLinesVoided)
}

func TestService_SaveConflict(t *testing.T) {
	f := newFixture(t, Config{})
	tk := ticket.NewTicket(ticket.NoDepartment(), "Bar", ticket.WithClock(f.clock))
	tk.ClearDomainEvents()
	f.tickets.On("FindByID", mock.Anything, tk.ID).Return(tk, nil)
	f.tickets.On("Save", mock.Anything, tk).Return(shared.ErrConcurrencyConflict)

	_, err := f.svc.SetTag(context.Background(), f.user, tk.ID, TagRequest{Name: "Waiter", Value: "Ann"})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.logs.FilterMessage("Ticket save failed").Len())
}

func TestService_PublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, Config{})
	f.tickets.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := f.svc.Open(context.Background(), f.user, OpenTicketRequest{LocationName: "Patio"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("Publishing ticket events failed").Len())
}

func TestService_TagsAccountAndPrint(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	ctx := context.Background()

	resp, err := f.svc.SetTag(ctx, f.user, tk.ID, TagRequest{Name: "Waiter", Value: "Ann"})
	require.NoError(t, err)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "Ann", resp.Tags[0].Value)

	accountID := uuid.New()
	resp, err = f.svc.UpdateAccount(ctx, f.user, tk.ID, AccountRequest{AccountID: &accountID, Name: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, resp.AccountID)
	assert.Equal(t, "Acme", resp.AccountName)

	resp, err = f.svc.UpdateAccount(ctx, f.user, tk.ID, AccountRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.AccountID)

	resp, err = f.svc.RecordPrint(ctx, f.user, tk.ID, PrintRequest{PrinterID: 3})
	require.NoError(t, err)
	assert.Equal(t, "3:1", resp.PrintJobs)
}

func TestService_RefreshTaxes(t *testing.T) {
	f := newFixture(t, Config{})
	tk := f.openTicket(t)
	item := menuItem("Wine", "10")
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(item, nil).Once()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, tk.ID, AddItemRequest{MenuItemID: item.ID})
	require.NoError(t, err)

	taxed := *item
	taxed.Tax = &ticket.TaxTemplate{ID: uuid.New(), Name: "VAT", Rate: decimal.NewFromInt(10)}
	f.catalog.On("GetMenuItem", mock.Anything, item.ID).Return(&taxed, nil)

	resp, err := f.svc.RefreshTaxes(ctx, f.user, tk.ID)
	require.NoError(t, err)
	assert.True(t, resp.Totals.Tax.Equal(decimal.NewFromInt(1)), "got %s", resp.Totals.Tax)
	assert.True(t, resp.Totals.Sum.Equal(decimal.NewFromInt(11)), "got %s", resp.Totals.Sum)
}

func TestService_ListOpen(t *testing.T) {
	f := newFixture(t, Config{})
	tk := ticket.NewTicket(ticket.NoDepartment(), "Table 9", ticket.WithClock(f.clock))
	f.tickets.On("FindOpen", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 5
	})).Return([]*ticket.Ticket{tk}, int64(6), nil)

	items, total, err := f.svc.ListOpen(context.Background(), ListFilter{Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Table 9", items[0].LocationName)
}
