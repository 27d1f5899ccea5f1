package ticket

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineProperty is a property selected on a line item
type LineProperty struct {
	Name      string
	Price     decimal.Decimal
	TaxAmount decimal.Decimal
	Quantity  decimal.Decimal // multiplier applied to Price and TaxAmount
}

// Total returns the price contribution of the property for one unit of the line
func (p LineProperty) Total() decimal.Decimal {
	return p.Price.Mul(p.quantity())
}

// TaxTotal returns the tax contribution of the property for one unit of the line
func (p LineProperty) TaxTotal() decimal.Decimal {
	return p.TaxAmount.Mul(p.quantity())
}

func (p LineProperty) quantity() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.Quantity
}

// LineItem is one ordered menu item on a ticket
type LineItem struct {
	ID               uuid.UUID
	MenuItemID       uuid.UUID
	MenuItemName     string
	PortionName      string
	PortionCount     int
	PriceTag         string
	Quantity         decimal.Decimal
	Price            decimal.Decimal // unit price without properties
	TaxTemplateID    uuid.UUID
	TaxRate          decimal.Decimal
	TaxAmount        decimal.Decimal // per unit
	TaxIncluded      bool
	Properties       []LineProperty
	Voided           bool
	Gifted           bool
	Locked           bool
	ReasonID         int
	OrderNumber      int // 0 until the line is submitted
	SelectedQuantity decimal.Decimal
	CreatingUserID   uuid.UUID
	CreatedAt        time.Time
	ModifiedUserID   uuid.UUID
	ModifiedAt       time.Time

	persisted bool
}

func newLineItem(userID uuid.UUID, now time.Time) *LineItem {
	return &LineItem{
		ID:             uuid.New(),
		Quantity:       decimal.NewFromInt(1),
		CreatingUserID: userID,
		CreatedAt:      now,
		ModifiedUserID: userID,
		ModifiedAt:     now,
	}
}

// IsPersisted reports whether the line has been stored by a repository
func (l *LineItem) IsPersisted() bool {
	return l.persisted
}

// MarkPersisted is called by repositories after the line is stored or loaded
func (l *LineItem) MarkPersisted() {
	l.persisted = true
}

// WasSubmitted reports whether the line has been sent to the kitchen, either
// numbered by a merge or locked by a submit
func (l *LineItem) WasSubmitted() bool {
	return l.Locked || l.OrderNumber != 0
}

// UpdateFromMenuItem copies price and tax data from the catalog entry and
// selects the default properties by name. Unknown property names are ignored.
func (l *LineItem) UpdateFromMenuItem(userID uuid.UUID, item *MenuItem, portionName, priceTag string, quantity decimal.Decimal, defaultProperties []string, now time.Time) error {
	if item == nil {
		return shared.NewDomainError("MENU_ITEM_NOT_FOUND", "Menu item cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	portion, ok := item.Portion(portionName)
	if !ok {
		return shared.NewDomainError("PORTION_NOT_FOUND", "Portion not found for menu item "+item.Name)
	}

	l.MenuItemID = item.ID
	l.MenuItemName = item.Name
	l.PortionName = portion.Name
	l.PortionCount = len(item.Portions)
	l.PriceTag = priceTag
	l.Quantity = quantity
	l.Price = portion.PriceFor(priceTag)
	l.applyTax(item.Tax)

	l.Properties = l.Properties[:0]
	for _, name := range defaultProperties {
		if prop, found := item.Property(name); found {
			l.ToggleProperty(prop, item.Tax)
		}
	}

	l.ModifiedUserID = userID
	l.ModifiedAt = now
	return nil
}

// ToggleProperty selects the property, or removes it when already selected
func (l *LineItem) ToggleProperty(prop MenuItemProperty, tax *TaxTemplate) {
	for i, p := range l.Properties {
		if p.Name == prop.Name {
			l.Properties = append(l.Properties[:i], l.Properties[i+1:]...)
			return
		}
	}
	l.Properties = append(l.Properties, LineProperty{
		Name:      prop.Name,
		Price:     prop.Price,
		TaxAmount: tax.TaxFor(prop.Price),
		Quantity:  decimal.NewFromInt(1),
	})
}

func (l *LineItem) applyTax(tax *TaxTemplate) {
	if tax == nil {
		l.TaxTemplateID = uuid.Nil
		l.TaxRate = decimal.Zero
		l.TaxIncluded = false
		l.TaxAmount = decimal.Zero
	} else {
		l.TaxTemplateID = tax.ID
		l.TaxRate = tax.Rate
		l.TaxIncluded = tax.TaxIncluded
		l.TaxAmount = tax.TaxFor(l.Price)
	}
	for i := range l.Properties {
		l.Properties[i].TaxAmount = tax.TaxFor(l.Properties[i].Price)
	}
}

// ItemPrice is the unit price including selected properties
func (l *LineItem) ItemPrice() decimal.Decimal {
	price := l.Price
	for _, p := range l.Properties {
		price = price.Add(p.Total())
	}
	return price
}

// Total returns (price + property prices) * quantity. Voided and gifted
// lines are not excluded here.
func (l *LineItem) Total() decimal.Decimal {
	return l.ItemPrice().Mul(l.Quantity)
}

// ItemValue is Total, or zero for a voided line
func (l *LineItem) ItemValue() decimal.Decimal {
	if l.Voided {
		return decimal.Zero
	}
	return l.Total()
}

// SelectedValue is the value of the selected quantity, or the whole item value
// when nothing is selected
func (l *LineItem) SelectedValue() decimal.Decimal {
	if l.SelectedQuantity.GreaterThan(decimal.Zero) {
		if l.Voided {
			return decimal.Zero
		}
		return l.ItemPrice().Mul(l.SelectedQuantity)
	}
	return l.ItemValue()
}

// UnitTax is the line tax plus property taxes for one unit
func (l *LineItem) UnitTax() decimal.Decimal {
	tax := l.TaxAmount
	for _, p := range l.Properties {
		tax = tax.Add(p.TaxTotal())
	}
	return tax
}

// HasProperties reports whether any property is selected
func (l *LineItem) HasProperties() bool {
	return len(l.Properties) > 0
}

// countsTowardTotal reports whether the line is part of the plain subtotal
func (l *LineItem) countsTowardTotal() bool {
	return !l.Voided && !l.Gifted
}

// clone copies the line under a new identity. The copy is not persisted.
func (l *LineItem) clone() *LineItem {
	c := *l
	c.ID = uuid.New()
	c.persisted = false
	c.Properties = append([]LineProperty(nil), l.Properties...)
	return &c
}
