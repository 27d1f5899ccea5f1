package ticket

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var (
	errLineNotFound = shared.NewDomainError("LINE_NOT_FOUND", "Line item does not belong to the ticket")
	errTicketPaid   = shared.NewDomainError("INVALID_STATE", "Ticket is already paid")
)

// Totals is the full calculation breakdown of a ticket
type Totals struct {
	PlainSum        decimal.Decimal
	PercentDiscount decimal.Decimal
	FlatDiscount    decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Services        decimal.Decimal
	Sum             decimal.Decimal
	Payments        decimal.Decimal
	Remaining       decimal.Decimal
}

// Ticket is the aggregate root for one customer order. It owns the line
// items, discounts, service charges, payments and paid items of the order,
// and keeps per-printer print counts and tags in their encoded form.
//
// A ticket is mutated by a single session at a time. Version and UpdatedAt
// let repositories detect stale writes.
type Ticket struct {
	shared.BaseAggregateRoot
	TicketNumber    string
	DepartmentID    uuid.UUID
	LocationName    string
	AccountID       uuid.UUID
	AccountName     string
	Note            string
	IsPaid          bool
	Locked          bool
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
	LastOrderDate   time.Time
	LastPaymentDate time.Time
	Lines           []*LineItem
	Discounts       []*Discount
	Services        []*ServiceEntry
	Payments        []*Payment
	PaidItems       []PaidItem

	printJobData string
	printCounts  map[int]int
	tagData      string
	tags         *TagStore
	removedLines []*LineItem
	shouldLock   bool
	rounding     *valueobject.Rounding
	clock        shared.Clock
}

// Option configures a ticket
type Option func(*Ticket)

// WithClock sets the clock used for timestamps
func WithClock(c shared.Clock) Option {
	return func(t *Ticket) {
		t.clock = c
	}
}

// WithRounding sets the decimal rounding policy
func WithRounding(r valueobject.Rounding) Option {
	return func(t *Ticket) {
		t.rounding = &r
	}
}

// NewTicket opens a ticket in the given department. The department's
// service templates are attached to the ticket.
func NewTicket(department Department, locationName string, opts ...Option) *Ticket {
	t := &Ticket{}
	t.Configure(opts...)

	t.BaseAggregateRoot = shared.NewBaseAggregateRoot(t.clock)
	t.DepartmentID = department.ID
	t.LocationName = locationName
	t.TotalAmount = decimal.Zero
	t.RemainingAmount = decimal.Zero
	t.LastOrderDate = t.CreatedAt
	t.LastPaymentDate = t.CreatedAt
	t.Lines = make([]*LineItem, 0)
	t.Discounts = make([]*Discount, 0)
	t.Services = make([]*ServiceEntry, 0)
	t.Payments = make([]*Payment, 0)

	for _, st := range department.ServiceTemplates {
		t.Services = append(t.Services, &ServiceEntry{
			ServiceID:        st.ServiceID,
			Name:             st.Name,
			Method:           st.Method,
			Amount:           st.Amount,
			CalculatedAmount: decimal.Zero,
		})
	}

	t.AddDomainEvent(newTicketOpenedEvent(t))
	return t
}

// Configure applies options to a ticket, typically one rebuilt by a repository
func (t *Ticket) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = shared.SystemClock()
	}
}

// RestoreEncoded sets the persisted print-job and tag strings. Decoding is
// deferred until first use.
func (t *Ticket) RestoreEncoded(printJobData, tagData string) {
	t.printJobData = printJobData
	t.printCounts = nil
	t.tagData = tagData
	t.tags = nil
}

func (t *Ticket) now() time.Time {
	if t.clock == nil {
		return time.Now()
	}
	return t.clock.Now()
}

func (t *Ticket) round() valueobject.Rounding {
	if t.rounding == nil {
		return valueobject.DefaultRounding
	}
	return *t.rounding
}

func (t *Ticket) touch() {
	t.UpdatedAt = t.now()
}

// ============================================================
// Lines
// ============================================================

// CanSubmit reports whether the ticket still accepts orders
func (t *Ticket) CanSubmit() bool {
	return !t.IsPaid
}

// AddLine adds a line for the menu item and unlocks the ticket
func (t *Ticket) AddLine(userID uuid.UUID, item *MenuItem, portionName, priceTag string, quantity decimal.Decimal, defaultProperties []string) (*LineItem, error) {
	if !t.CanSubmit() {
		return nil, errTicketPaid
	}

	line := newLineItem(userID, t.now())
	if err := line.UpdateFromMenuItem(userID, item, portionName, priceTag, quantity, defaultProperties, t.now()); err != nil {
		return nil, err
	}

	t.Locked = false
	t.Lines = append(t.Lines, line)
	t.TotalAmount = t.GetSum()
	t.touch()
	return line, nil
}

// GetLine finds a line by id
func (t *Ticket) GetLine(id uuid.UUID) (*LineItem, bool) {
	for _, l := range t.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// RemoveLine removes the line. Persisted lines are queued for deletion.
func (t *Ticket) RemoveLine(line *LineItem) error {
	if !t.contains(line) {
		return errLineNotFound
	}
	t.removeLine(line)
	t.touch()
	return nil
}

func (t *Ticket) removeLine(line *LineItem) {
	for i, l := range t.Lines {
		if l == line {
			t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
			break
		}
	}
	if line.IsPersisted() {
		t.removedLines = append(t.removedLines, line)
	}
}

// PopRemovedLines returns the persisted lines removed since the last call
// and clears the pending set
func (t *Ticket) PopRemovedLines() []*LineItem {
	result := t.removedLines
	t.removedLines = nil
	return result
}

func (t *Ticket) contains(line *LineItem) bool {
	if line == nil {
		return false
	}
	for _, l := range t.Lines {
		if l == line {
			return true
		}
	}
	return false
}

// GetItemCount returns the number of lines
func (t *Ticket) GetItemCount() int {
	return len(t.Lines)
}

// GetUnlockedLines returns lines not yet locked by a submit
func (t *Ticket) GetUnlockedLines() []*LineItem {
	result := make([]*LineItem, 0)
	for _, l := range t.Lines {
		if !l.Locked {
			result = append(result, l)
		}
	}
	return result
}

// VoidLine toggles the void state of a line.
//
// A submitted line becomes voided and unlocked. An unlocked voided line is
// restored to locked. A gifted line loses its gift. Any other unlocked line
// is removed.
func (t *Ticket) VoidLine(line *LineItem, reasonID int, userID uuid.UUID) error {
	if !t.contains(line) {
		return errLineNotFound
	}
	t.Locked = false
	switch {
	case line.Locked && !line.Voided && !line.Gifted:
		line.Voided = true
		line.ModifiedUserID = userID
		line.ModifiedAt = t.now()
		line.ReasonID = reasonID
		line.Locked = false
	case line.Voided && !line.Locked:
		line.ReasonID = 0
		line.Voided = false
		line.Locked = true
	case line.Gifted:
		line.ReasonID = 0
		line.Gifted = false
	case !line.Locked:
		t.removeLine(line)
	}
	t.touch()
	return nil
}

// CancelLine reverts an unsubmitted void or gift, or removes an unlocked line
func (t *Ticket) CancelLine(line *LineItem) error {
	if !t.contains(line) {
		return errLineNotFound
	}
	t.Locked = false
	switch {
	case line.Voided && !line.Locked:
		line.ReasonID = 0
		line.Voided = false
		line.Locked = true
	case line.Gifted && !line.Locked:
		line.ReasonID = 0
		line.Gifted = false
		line.Locked = true
	case !line.Locked:
		t.removeLine(line)
	}
	t.touch()
	return nil
}

// GiftLine marks the line as gifted
func (t *Ticket) GiftLine(line *LineItem, reasonID int, userID uuid.UUID) error {
	if !t.contains(line) {
		return errLineNotFound
	}
	t.Locked = false
	line.Gifted = true
	line.ModifiedUserID = userID
	line.ModifiedAt = t.now()
	line.ReasonID = reasonID
	t.touch()
	return nil
}

// distinctLines reports whether no line appears twice in lines
func distinctLines(lines []*LineItem) bool {
	seen := make(map[*LineItem]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			return false
		}
		seen[l] = struct{}{}
	}
	return true
}

// CanRemoveSelectedLines reports whether the selected value fits in the
// remaining amount. A selection listing a line twice is rejected.
func (t *Ticket) CanRemoveSelectedLines(lines []*LineItem) bool {
	if !distinctLines(lines) {
		return false
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.SelectedValue())
	}
	return total.LessThanOrEqual(t.GetRemainingAmount())
}

// CanVoidSelectedLines requires submitted lines that are neither voided nor gifted
func (t *Ticket) CanVoidSelectedLines(lines []*LineItem) bool {
	if !t.CanRemoveSelectedLines(lines) {
		return false
	}
	for _, l := range lines {
		if !t.contains(l) || l.Voided || l.Gifted || !l.Locked {
			return false
		}
	}
	return true
}

// CanGiftSelectedLines requires lines that are neither voided nor gifted
func (t *Ticket) CanGiftSelectedLines(lines []*LineItem) bool {
	if !t.CanRemoveSelectedLines(lines) {
		return false
	}
	for _, l := range lines {
		if !t.contains(l) || l.Voided || l.Gifted {
			return false
		}
	}
	return true
}

// CanCancelSelectedLines requires a non-empty selection of unsubmitted or gifted lines
func (t *Ticket) CanCancelSelectedLines(lines []*LineItem) bool {
	if len(lines) == 0 || !distinctLines(lines) {
		return false
	}
	for _, l := range lines {
		if !t.contains(l) || (l.Locked && !l.Gifted) {
			return false
		}
	}
	return true
}

// VoidSelectedLines voids every selected line
func (t *Ticket) VoidSelectedLines(lines []*LineItem, reasonID int, userID uuid.UUID) error {
	if !t.CanVoidSelectedLines(lines) {
		return shared.NewDomainError("INVALID_STATE", "Selected lines cannot be voided")
	}
	for _, l := range lines {
		if err := t.VoidLine(l, reasonID, userID); err != nil {
			return err
		}
	}
	t.AddDomainEvent(newLinesChangedEvent(t, EventTypeLinesVoided, lines, reasonID, userID))
	return nil
}

// GiftSelectedLines gifts every selected line
func (t *Ticket) GiftSelectedLines(lines []*LineItem, reasonID int, userID uuid.UUID) error {
	if !t.CanGiftSelectedLines(lines) {
		return shared.NewDomainError("INVALID_STATE", "Selected lines cannot be gifted")
	}
	for _, l := range lines {
		if err := t.GiftLine(l, reasonID, userID); err != nil {
			return err
		}
	}
	t.AddDomainEvent(newLinesChangedEvent(t, EventTypeLinesGifted, lines, reasonID, userID))
	return nil
}

// CancelSelectedLines cancels every selected line
func (t *Ticket) CancelSelectedLines(lines []*LineItem) error {
	if !t.CanCancelSelectedLines(lines) {
		return shared.NewDomainError("INVALID_STATE", "Selected lines cannot be cancelled")
	}
	for _, l := range lines {
		if err := t.CancelLine(l); err != nil {
			return err
		}
	}
	return nil
}

// CloneLine appends a copy of the line with zero quantity
func (t *Ticket) CloneLine(line *LineItem) (*LineItem, error) {
	if !t.contains(line) {
		return nil, errLineNotFound
	}
	c := line.clone()
	c.Quantity = decimal.Zero
	t.Lines = append(t.Lines, c)
	t.touch()
	return c, nil
}

// ExtractSelectedLines splits each partially selected line in two: the
// selected quantity moves to a new line and the original keeps the rest.
// Fully selected lines are left as they are. Only the new lines are returned.
func (t *Ticket) ExtractSelectedLines(lines []*LineItem) ([]*LineItem, error) {
	for _, l := range lines {
		if !t.contains(l) {
			return nil, errLineNotFound
		}
		if !l.SelectedQuantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Selected quantity must be positive")
		}
	}

	result := make([]*LineItem, 0)
	for _, l := range lines {
		if l.SelectedQuantity.GreaterThanOrEqual(l.Quantity) {
			continue
		}
		c, err := t.CloneLine(l)
		if err != nil {
			return nil, err
		}
		c.Quantity = l.SelectedQuantity
		l.Quantity = l.Quantity.Sub(l.SelectedQuantity)
		l.SelectedQuantity = decimal.Zero
		result = append(result, c)
	}
	return result, nil
}

// MergeLinesAndUpdateOrderNumbers collapses the lines added since the last
// submit and stamps every unlocked, unnumbered line with orderNumber.
// Running it again without new lines changes nothing.
func (t *Ticket) MergeLinesAndUpdateOrderNumbers(orderNumber int) {
	t.LastOrderDate = t.now()

	newLines := make([]*LineItem, 0)
	for _, l := range t.Lines {
		if !l.Locked && !l.IsPersisted() {
			newLines = append(newLines, l)
		}
	}

	kept := make(map[*LineItem]bool)
	for _, l := range mergeNewLines(newLines) {
		kept[l] = true
	}
	for _, l := range newLines {
		if !kept[l] {
			t.removeLine(l)
		}
	}

	numbered := make([]*LineItem, 0)
	for _, l := range t.Lines {
		if !l.Locked && l.OrderNumber == 0 {
			l.OrderNumber = orderNumber
			numbered = append(numbered, l)
		}
	}
	if len(numbered) > 0 {
		t.AddDomainEvent(newOrderSubmittedEvent(t, orderNumber, numbered))
	}
	t.touch()
}

// RequestLock makes the next LockTicket lock the ticket itself
func (t *Ticket) RequestLock() {
	t.shouldLock = true
}

// LockTicket locks every unlocked line, and the ticket when a lock was requested
func (t *Ticket) LockTicket() {
	for _, l := range t.Lines {
		if !l.Locked {
			l.Locked = true
		}
	}
	if t.shouldLock {
		t.Locked = true
	}
	t.shouldLock = false
	t.touch()
}

// UpdateTaxes reassigns the tax template of every line. lookup may return
// nil to clear the tax of a menu item.
func (t *Ticket) UpdateTaxes(lookup func(menuItemID uuid.UUID) *TaxTemplate) {
	for _, l := range t.Lines {
		l.applyTax(lookup(l.MenuItemID))
	}
	t.touch()
}

// ApplyTaxTemplate assigns one tax template to every line
func (t *Ticket) ApplyTaxTemplate(tmpl *TaxTemplate) {
	t.UpdateTaxes(func(uuid.UUID) *TaxTemplate { return tmpl })
}

// ============================================================
// Discounts and services
// ============================================================

// AddTicketDiscount sets the ticket-wide discount of the given type. A zero
// amount removes it.
func (t *Ticket) AddTicketDiscount(discountType DiscountType, amount decimal.Decimal, userID uuid.UUID) error {
	return t.SetDiscount(discountType, uuid.Nil, amount, userID)
}

// SetDiscount sets the discount of the given type for a line, or for the
// ticket when lineID is uuid.Nil. There is at most one discount per type and
// target; a zero amount removes it.
func (t *Ticket) SetDiscount(discountType DiscountType, lineID uuid.UUID, amount decimal.Decimal, userID uuid.UUID) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Unknown discount type")
	}
	if lineID != uuid.Nil {
		if _, ok := t.GetLine(lineID); !ok {
			return errLineNotFound
		}
	}

	idx := -1
	for i, d := range t.Discounts {
		if d.Type == discountType && d.LineID == lineID {
			idx = i
			break
		}
	}

	switch {
	case amount.IsZero() && idx >= 0:
		t.Discounts = append(t.Discounts[:idx], t.Discounts[idx+1:]...)
	case amount.IsZero():
	case idx >= 0:
		t.Discounts[idx].Amount = amount
		t.Discounts[idx].UserID = userID
	default:
		t.Discounts = append(t.Discounts, &Discount{
			Type:           discountType,
			LineID:         lineID,
			Amount:         amount,
			DiscountAmount: decimal.Zero,
			UserID:         userID,
		})
	}
	t.touch()
	return nil
}

// RemoveDiscount removes the discount of the given type and target
func (t *Ticket) RemoveDiscount(discountType DiscountType, lineID uuid.UUID) error {
	return t.SetDiscount(discountType, lineID, decimal.Zero, uuid.Nil)
}

// GetDiscount finds the discount of the given type and target
func (t *Ticket) GetDiscount(discountType DiscountType, lineID uuid.UUID) (*Discount, bool) {
	for _, d := range t.Discounts {
		if d.Type == discountType && d.LineID == lineID {
			return d, true
		}
	}
	return nil, false
}

// AddService sets the service charge with the given id. A zero amount removes it.
func (t *Ticket) AddService(serviceID uuid.UUID, name string, method CalculationMethod, amount decimal.Decimal) error {
	if serviceID == uuid.Nil {
		return shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_CALCULATION_METHOD", "Unknown calculation method")
	}

	idx := -1
	for i, s := range t.Services {
		if s.ServiceID == serviceID {
			idx = i
			break
		}
	}

	switch {
	case amount.IsZero() && idx >= 0:
		t.Services = append(t.Services[:idx], t.Services[idx+1:]...)
	case amount.IsZero():
	case idx >= 0:
		t.Services[idx].Name = name
		t.Services[idx].Method = method
		t.Services[idx].Amount = amount
	default:
		t.Services = append(t.Services, &ServiceEntry{
			ServiceID:        serviceID,
			Name:             name,
			Method:           method,
			Amount:           amount,
			CalculatedAmount: decimal.Zero,
		})
	}
	t.touch()
	return nil
}

// RemoveService removes the service charge with the given id
func (t *Ticket) RemoveService(serviceID uuid.UUID) error {
	for i, s := range t.Services {
		if s.ServiceID == serviceID {
			t.Services = append(t.Services[:i], t.Services[i+1:]...)
			t.touch()
			return nil
		}
	}
	return shared.NewDomainError("SERVICE_NOT_FOUND", "Service not found on ticket")
}

// ============================================================
// Calculation
// ============================================================

// Totals computes the full breakdown and refreshes the computed amounts
// cached on discounts and services
func (t *Ticket) Totals() Totals {
	r := t.round()
	plain := t.GetPlainSum()

	discounts := CalculateDiscounts(t.Discounts, plain, t.lineTotal, r)
	for i, d := range t.Discounts {
		d.DiscountAmount = discounts.Amounts[i]
	}

	tax := CalculateTax(t.Lines, plain, discounts.PercentTotal)
	base := plain.Sub(discounts.PercentTotal)

	services := CalculateServices(t.Services, base, tax, r)
	for i, s := range t.Services {
		s.CalculatedAmount = services.Amounts[i]
	}

	sum := base.Add(services.Total).Add(tax).Sub(discounts.FlatTotal)
	payments := t.GetPaymentAmount()

	return Totals{
		PlainSum:        plain,
		PercentDiscount: discounts.PercentTotal,
		FlatDiscount:    discounts.FlatTotal,
		Discount:        discounts.Total,
		Tax:             tax,
		Services:        services.Total,
		Sum:             sum,
		Payments:        payments,
		Remaining:       r.Round(sum.Sub(payments)),
	}
}

func (t *Ticket) lineTotal(id uuid.UUID) (decimal.Decimal, bool) {
	l, ok := t.GetLine(id)
	if !ok {
		return decimal.Zero, false
	}
	return l.Total(), true
}

// GetPlainSum is the total of lines that are neither voided nor gifted
func (t *Ticket) GetPlainSum() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Lines {
		if l.countsTowardTotal() {
			sum = sum.Add(l.Total())
		}
	}
	return sum
}

// GetSum is the grand total: plain sum less percent discounts, plus
// services and tax, less all other discounts
func (t *Ticket) GetSum() decimal.Decimal {
	return t.Totals().Sum
}

// GetTotalDiscounts is the sum of all computed discounts
func (t *Ticket) GetTotalDiscounts() decimal.Decimal {
	return t.Totals().Discount
}

// GetDiscountAndRoundingTotal is the discount shown on receipts, including
// the automatic rounding discount
func (t *Ticket) GetDiscountAndRoundingTotal() decimal.Decimal {
	return t.GetTotalDiscounts()
}

// GetTaxTotal is the tax added on top of tax-exclusive prices
func (t *Ticket) GetTaxTotal() decimal.Decimal {
	return t.Totals().Tax
}

// GetServicesTotal is the sum of computed service charges
func (t *Ticket) GetServicesTotal() decimal.Decimal {
	return t.Totals().Services
}

// GetTotalGiftAmount is the value of gifted lines
func (t *Ticket) GetTotalGiftAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Lines {
		if l.Gifted && !l.Voided {
			sum = sum.Add(l.Total())
		}
	}
	return sum
}

// GetPaymentAmount is the sum of all payments
func (t *Ticket) GetPaymentAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// GetAccountPaymentAmount is the amount charged to the customer account
func (t *Ticket) GetAccountPaymentAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.Payments {
		if p.Type == PaymentAccount {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// GetNonAccountPaymentAmount is the amount tendered by any means other than the account
func (t *Ticket) GetNonAccountPaymentAmount() decimal.Decimal {
	return t.GetPaymentAmount().Sub(t.GetAccountPaymentAmount())
}

// GetRemainingAmount is the rounded grand total less payments. It may be negative.
func (t *Ticket) GetRemainingAmount() decimal.Decimal {
	return t.Totals().Remaining
}

// Recalculate refreshes the automatic rounding discount and the cached
// totals. With a non-zero step the remaining amount is snapped to a
// multiple of autoRoundValue (half away from zero for a positive step,
// toward zero for a negative one) and the difference becomes the automatic
// discount. A negative remaining amount is absorbed entirely by the
// automatic discount.
func (t *Ticket) Recalculate(autoRoundValue decimal.Decimal, userID uuid.UUID) {
	if !autoRoundValue.IsZero() {
		t.setAutoDiscount(decimal.Zero, userID)
		remaining := t.GetRemainingAmount()
		switch remaining.Sign() {
		case 1:
			target := valueobject.SnapToStep(remaining, autoRoundValue)
			t.setAutoDiscount(remaining.Sub(target), userID)
		case -1:
			t.setAutoDiscount(remaining, userID)
		}
	}

	totals := t.Totals()
	t.RemainingAmount = totals.Remaining
	t.TotalAmount = totals.Sum
}

func (t *Ticket) setAutoDiscount(amount decimal.Decimal, userID uuid.UUID) {
	// DiscountAuto is always valid and targets the ticket, so this cannot fail.
	_ = t.SetDiscount(DiscountAuto, uuid.Nil, amount, userID)
}

// ============================================================
// Payments
// ============================================================

// AddPayment records a payment. When the remaining amount reaches exactly
// zero the paid items are cleared.
func (t *Ticket) AddPayment(date time.Time, amount decimal.Decimal, paymentType PaymentType, userID uuid.UUID) (*Payment, error) {
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Unknown payment type")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be zero")
	}

	p := &Payment{
		ID:     uuid.New(),
		Amount: amount,
		Date:   date,
		Type:   paymentType,
		UserID: userID,
	}
	t.Payments = append(t.Payments, p)
	t.LastPaymentDate = t.now()
	t.RemainingAmount = t.GetRemainingAmount()
	if t.RemainingAmount.IsZero() {
		t.PaidItems = nil
	}
	t.touch()

	t.AddDomainEvent(newPaymentAddedEvent(t, p))
	return p, nil
}

// BuildMergedItems groups the payable lines for split settlement
func (t *Ticket) BuildMergedItems() []*MergedItem {
	return buildMergedItems(t.Lines, t.PaidItems)
}

// UpdatePaidItems replaces the paid items with a reconciled list
func (t *Ticket) UpdatePaidItems(items []PaidItem) {
	t.PaidItems = append([]PaidItem(nil), items...)
	t.touch()
}

// SettleSelectedItems pays for the selected quantities of merged groups.
// Quantities are capped at what is still unsettled in each group and the
// payment is capped at the remaining amount. While a balance remains the
// selections are kept as paid items.
func (t *Ticket) SettleSelectedItems(selections []Selection, paymentType PaymentType, userID uuid.UUID) (*Payment, error) {
	merged := t.BuildMergedItems()
	selected := decimal.Zero

	for _, sel := range selections {
		var group *MergedItem
		for _, m := range merged {
			if m.MenuItemID == sel.MenuItemID && m.Price.Equal(sel.Price) {
				group = m
				break
			}
		}
		if group == nil {
			return nil, shared.NewDomainError("MERGED_ITEM_NOT_FOUND", "No payable item matches the selection")
		}

		remaining := group.RemainingQuantity()
		if !remaining.IsPositive() {
			continue
		}
		quantity := sel.Quantity
		if !quantity.IsPositive() {
			quantity = decimal.NewFromInt(1)
		}
		if quantity.GreaterThan(remaining) {
			quantity = remaining
		}
		selected = selected.Add(group.Price.Mul(quantity))
		group.IncQuantity(quantity)
	}

	if due := t.GetRemainingAmount(); selected.GreaterThan(due) {
		selected = due
	}
	selected = t.round().Round(selected)
	if !selected.IsPositive() {
		return nil, shared.NewDomainError("NOTHING_TO_PAY", "Selected items are already paid")
	}

	p, err := t.AddPayment(t.now(), selected, paymentType, userID)
	if err != nil {
		return nil, err
	}
	if !t.RemainingAmount.IsZero() {
		paid := make([]PaidItem, 0)
		for _, m := range merged {
			m.PersistPaidItems()
			paid = append(paid, m.PaidItems...)
		}
		t.UpdatePaidItems(paid)
	}
	return p, nil
}

// Close marks a settled ticket as paid
func (t *Ticket) Close() error {
	if t.IsPaid {
		return errTicketPaid
	}
	if t.GetRemainingAmount().IsPositive() {
		return shared.NewDomainError("UNPAID_BALANCE", "Ticket has a remaining balance")
	}
	t.IsPaid = true
	t.RemainingAmount = t.GetRemainingAmount()
	t.TotalAmount = t.GetSum()
	t.touch()
	t.AddDomainEvent(newTicketClosedEvent(t))
	return nil
}

// UpdateAccount assigns the customer account. The empty account clears it.
func (t *Ticket) UpdateAccount(account Account) {
	if account.IsEmpty() {
		t.AccountID = uuid.Nil
		t.AccountName = ""
	} else {
		t.AccountID = account.ID
		t.AccountName = strings.TrimSpace(account.Name)
	}
	t.touch()
}

// ============================================================
// Print jobs and tags
// ============================================================

func (t *Ticket) printJobs() map[int]int {
	if t.printCounts == nil {
		t.printCounts = DecodePrintJobs(t.printJobData)
	}
	return t.printCounts
}

// RecordPrint increments the print count of a printer
func (t *Ticket) RecordPrint(printerID int) {
	counts := t.printJobs()
	counts[printerID]++
	t.printJobData = EncodePrintJobs(counts)
	t.touch()
}

// GetPrintCount returns how often the ticket was sent to a printer
func (t *Ticket) GetPrintCount(printerID int) int {
	return t.printJobs()[printerID]
}

// DidPrintJobExecute reports whether the ticket was ever sent to a printer
func (t *Ticket) DidPrintJobExecute(printerID int) bool {
	return t.GetPrintCount(printerID) > 0
}

// EncodedPrintJobs returns the persisted print-job string
func (t *Ticket) EncodedPrintJobs() string {
	return t.printJobData
}

func (t *Ticket) tagStore() *TagStore {
	if t.tags == nil {
		t.tags = DecodeTags(t.tagData)
	}
	return t.tags
}

// SetTagValue stores a tag value. An empty value removes the tag.
func (t *Ticket) SetTagValue(name, value string) error {
	store := t.tagStore()
	if err := store.Set(name, value, t.now()); err != nil {
		return err
	}
	t.tagData = store.Encode()
	t.touch()
	return nil
}

// GetTagValue returns the value of a tag, or "" when it is not set
func (t *Ticket) GetTagValue(name string) string {
	if t.tagData == "" {
		return ""
	}
	return t.tagStore().Get(name)
}

// GetTagData renders the tags as "name: value" lines
func (t *Ticket) GetTagData() string {
	if t.tagData == "" {
		return ""
	}
	return t.tagStore().Display()
}

// TagValues returns the decoded tags in insertion order
func (t *Ticket) TagValues() []TagValue {
	return t.tagStore().Values()
}

// EncodedTags returns the persisted tag string
func (t *Ticket) EncodedTags() string {
	return t.tagData
}
