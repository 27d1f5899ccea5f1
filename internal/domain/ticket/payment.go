package ticket

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType is the tender used for a payment
type PaymentType string

const (
	PaymentCash    PaymentType = "CASH"
	PaymentCard    PaymentType = "CARD"
	PaymentVoucher PaymentType = "VOUCHER"
	PaymentAccount PaymentType = "ACCOUNT"
	PaymentOther   PaymentType = "OTHER"
)

// IsValid checks if the type is a known PaymentType
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentCash, PaymentCard, PaymentVoucher, PaymentAccount, PaymentOther:
		return true
	}
	return false
}

// ParsePaymentType parses a case-insensitive payment type name
func ParsePaymentType(s string) (PaymentType, bool) {
	t := PaymentType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// Payment is an append-only tender record
type Payment struct {
	ID     uuid.UUID
	Amount decimal.Decimal
	Date   time.Time
	Type   PaymentType
	UserID uuid.UUID
}

// PaidItem records how much of a merged group has been settled
type PaidItem struct {
	MenuItemID uuid.UUID
	Price      decimal.Decimal
	Quantity   decimal.Decimal
}

func (p PaidItem) matches(menuItemID uuid.UUID, price decimal.Decimal) bool {
	return p.MenuItemID == menuItemID && p.Price.Equal(price)
}

// MergedItem groups lines with the same menu item and unit price so they
// can be settled piecewise across several payments.
type MergedItem struct {
	MenuItemID   uuid.UUID
	Description  string
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	PaidItems    []PaidItem
	NewPaidItems []PaidItem
}

// PaidQuantity is the settled quantity including pending selections
func (m *MergedItem) PaidQuantity() decimal.Decimal {
	q := decimal.Zero
	for _, p := range m.PaidItems {
		q = q.Add(p.Quantity)
	}
	for _, p := range m.NewPaidItems {
		q = q.Add(p.Quantity)
	}
	return q
}

// RemainingQuantity is the quantity not yet settled or selected
func (m *MergedItem) RemainingQuantity() decimal.Decimal {
	return m.Quantity.Sub(m.PaidQuantity())
}

// Total is the unsettled value of the group. Pending selections are not deducted.
func (m *MergedItem) Total() decimal.Decimal {
	total := m.Price.Mul(m.Quantity)
	for _, p := range m.PaidItems {
		total = total.Sub(p.Price.Mul(p.Quantity))
	}
	return total
}

// IncQuantity selects quantity for settlement
func (m *MergedItem) IncQuantity(quantity decimal.Decimal) {
	m.NewPaidItems = append(m.NewPaidItems, PaidItem{
		MenuItemID: m.MenuItemID,
		Price:      m.Price,
		Quantity:   quantity,
	})
}

// PersistPaidItems folds pending selections into the settled list
func (m *MergedItem) PersistPaidItems() {
	for _, np := range m.NewPaidItems {
		found := false
		for i := range m.PaidItems {
			if m.PaidItems[i].matches(np.MenuItemID, np.Price) {
				m.PaidItems[i].Quantity = m.PaidItems[i].Quantity.Add(np.Quantity)
				found = true
				break
			}
		}
		if !found {
			m.PaidItems = append(m.PaidItems, np)
		}
	}
	m.NewPaidItems = nil
}

// CancelPaidItems drops pending selections
func (m *MergedItem) CancelPaidItems() {
	m.NewPaidItems = nil
}

// buildMergedItems groups countable lines by menu item and unit price and
// attaches the paid items recorded for each group. Paid items without a
// matching group are dropped.
func buildMergedItems(lines []*LineItem, paid []PaidItem) []*MergedItem {
	result := make([]*MergedItem, 0)
	find := func(menuItemID uuid.UUID, price decimal.Decimal) *MergedItem {
		for _, m := range result {
			if m.MenuItemID == menuItemID && m.Price.Equal(price) {
				return m
			}
		}
		return nil
	}

	for _, l := range lines {
		if !l.countsTowardTotal() {
			continue
		}
		price := l.ItemPrice()
		m := find(l.MenuItemID, price)
		if m == nil {
			m = &MergedItem{
				MenuItemID:  l.MenuItemID,
				Description: describeLine(l),
				Price:       price,
				Quantity:    decimal.Zero,
			}
			result = append(result, m)
		}
		m.Quantity = m.Quantity.Add(l.Quantity)
	}

	for _, p := range paid {
		if m := find(p.MenuItemID, p.Price); m != nil {
			m.PaidItems = append(m.PaidItems, p)
		}
	}
	return result
}

func describeLine(l *LineItem) string {
	if l.PortionCount > 1 && l.PortionName != "" {
		return l.MenuItemName + "." + l.PortionName
	}
	return l.MenuItemName
}

// Selection picks a quantity of a merged group for settlement. A zero
// quantity selects one unit.
type Selection struct {
	MenuItemID uuid.UUID
	Price      decimal.Decimal
	Quantity   decimal.Decimal
}
