package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
)

// TaxTemplateModel is the persistence model for a tax template
type TaxTemplateModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	TaxIncluded bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxTemplateModel) TableName() string {
	return "tax_templates"
}

// ToDomain converts the row to a domain TaxTemplate
func (m *TaxTemplateModel) ToDomain() *ticket.TaxTemplate {
	return &ticket.TaxTemplate{
		ID:          m.ID,
		Name:        m.Name,
		Rate:        m.Rate,
		TaxIncluded: m.TaxIncluded,
	}
}

type menuProperty struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItemModel is the persistence model for a menu catalog entry
type MenuItemModel struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key"`
	Name          string             `gorm:"type:varchar(200);not null"`
	GroupCode     string             `gorm:"type:varchar(100);index"`
	TaxTemplateID *uuid.UUID         `gorm:"type:uuid"`
	TaxTemplate   *TaxTemplateModel  `gorm:"foreignKey:TaxTemplateID"`
	Portions      []MenuPortionModel `gorm:"foreignKey:MenuItemID;references:ID"`
	Properties    []menuProperty     `gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time          `gorm:"not null"`
	UpdatedAt     time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// ToDomain converts the row to a domain MenuItem. Portions must be
// preloaded in position order.
func (m *MenuItemModel) ToDomain() *ticket.MenuItem {
	item := &ticket.MenuItem{
		ID:         m.ID,
		Name:       m.Name,
		GroupCode:  m.GroupCode,
		Portions:   make([]ticket.Portion, len(m.Portions)),
		Properties: make([]ticket.MenuItemProperty, len(m.Properties)),
	}
	for i, p := range m.Portions {
		item.Portions[i] = p.ToDomain()
	}
	for i, p := range m.Properties {
		item.Properties[i] = ticket.MenuItemProperty{Name: p.Name, Price: p.Price}
	}
	if m.TaxTemplate != nil {
		item.Tax = m.TaxTemplate.ToDomain()
	}
	return item
}

// MenuItemModelFromDomain creates a new persistence model from a domain MenuItem
func MenuItemModelFromDomain(item *ticket.MenuItem) *MenuItemModel {
	m := &MenuItemModel{
		ID:         item.ID,
		Name:       item.Name,
		GroupCode:  item.GroupCode,
		Portions:   make([]MenuPortionModel, len(item.Portions)),
		Properties: make([]menuProperty, len(item.Properties)),
	}
	for i, p := range item.Portions {
		m.Portions[i] = MenuPortionModel{
			ID:         uuid.New(),
			MenuItemID: item.ID,
			Position:   i,
			Name:       p.Name,
			Multiplier: p.Multiplier,
			Price:      p.Price,
			Prices:     p.Prices,
		}
	}
	for i, p := range item.Properties {
		m.Properties[i] = menuProperty{Name: p.Name, Price: p.Price}
	}
	if item.Tax != nil {
		id := item.Tax.ID
		m.TaxTemplateID = &id
		m.TaxTemplate = &TaxTemplateModel{
			ID:          item.Tax.ID,
			Name:        item.Tax.Name,
			Rate:        item.Tax.Rate,
			TaxIncluded: item.Tax.TaxIncluded,
		}
	}
	return m
}

// MenuPortionModel is a sellable size of a menu item with price-tag overrides
type MenuPortionModel struct {
	ID         uuid.UUID                  `gorm:"type:uuid;primary_key"`
	MenuItemID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Position   int                        `gorm:"not null"`
	Name       string                     `gorm:"type:varchar(100);not null"`
	Multiplier int                        `gorm:"not null"`
	Price      decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	Prices     map[string]decimal.Decimal `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (MenuPortionModel) TableName() string {
	return "menu_portions"
}

// ToDomain converts the row to a domain Portion
func (m *MenuPortionModel) ToDomain() ticket.Portion {
	return ticket.Portion{
		Name:       m.Name,
		Multiplier: m.Multiplier,
		Price:      m.Price,
		Prices:     m.Prices,
	}
}
