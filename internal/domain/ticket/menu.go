package ticket

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxTemplate describes how a menu item is taxed
type TaxTemplate struct {
	ID          uuid.UUID
	Name        string
	Rate        decimal.Decimal // percentage points
	TaxIncluded bool            // price already contains the tax
}

// TaxFor returns the per-unit tax contained in, or added on top of, price
func (t *TaxTemplate) TaxFor(price decimal.Decimal) decimal.Decimal {
	if t == nil || t.Rate.IsZero() {
		return decimal.Zero
	}
	if t.TaxIncluded {
		return price.Mul(t.Rate).Div(hundred.Add(t.Rate))
	}
	return price.Mul(t.Rate).Div(hundred)
}

// Portion is a sellable size of a menu item. Prices holds overrides keyed
// by price tag (happy hour, delivery, ...).
type Portion struct {
	Name       string
	Multiplier int
	Price      decimal.Decimal
	Prices     map[string]decimal.Decimal
}

// PriceFor returns the price for the given tag, falling back to the base price
func (p Portion) PriceFor(priceTag string) decimal.Decimal {
	if priceTag != "" {
		if price, ok := p.Prices[priceTag]; ok {
			return price
		}
	}
	return p.Price
}

// MenuItemProperty is a selectable modifier such as "extra cheese"
type MenuItemProperty struct {
	Name  string
	Price decimal.Decimal
}

// MenuItem is a catalog entry a line item is created from
type MenuItem struct {
	ID         uuid.UUID
	Name       string
	GroupCode  string
	Portions   []Portion
	Properties []MenuItemProperty
	Tax        *TaxTemplate
}

// Portion finds a portion by name. An empty name selects the first portion.
func (m *MenuItem) Portion(name string) (Portion, bool) {
	if len(m.Portions) == 0 {
		return Portion{}, false
	}
	if name == "" {
		return m.Portions[0], true
	}
	for _, p := range m.Portions {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Portion{}, false
}

// Property finds a property by name
func (m *MenuItem) Property(name string) (MenuItemProperty, bool) {
	for _, p := range m.Properties {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return MenuItemProperty{}, false
}

// MenuCatalog resolves menu items for new line items
type MenuCatalog interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
}

var hundred = decimal.NewFromInt(100)
