package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
)

type serviceTemplate struct {
	ServiceID uuid.UUID                `json:"service_id"`
	Name      string                   `json:"name"`
	Method    ticket.CalculationMethod `json:"method"`
	Amount    decimal.Decimal          `json:"amount"`
}

// DepartmentModel is the persistence model for a department
type DepartmentModel struct {
	ID               uuid.UUID         `gorm:"type:uuid;primary_key"`
	Name             string            `gorm:"type:varchar(100);not null;uniqueIndex"`
	TicketNumerator  string            `gorm:"type:varchar(100)"`
	OrderNumerator   string            `gorm:"type:varchar(100)"`
	PriceTag         string            `gorm:"type:varchar(50)"`
	ServiceTemplates []serviceTemplate `gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time         `gorm:"not null"`
	UpdatedAt        time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DepartmentModel) TableName() string {
	return "departments"
}

// ToDomain converts the row to a domain Department
func (m *DepartmentModel) ToDomain() *ticket.Department {
	d := &ticket.Department{
		ID:               m.ID,
		Name:             m.Name,
		TicketNumerator:  m.TicketNumerator,
		OrderNumerator:   m.OrderNumerator,
		PriceTag:         m.PriceTag,
		ServiceTemplates: make([]ticket.ServiceTemplate, len(m.ServiceTemplates)),
	}
	for i, s := range m.ServiceTemplates {
		d.ServiceTemplates[i] = ticket.ServiceTemplate{
			ServiceID: s.ServiceID,
			Name:      s.Name,
			Method:    s.Method,
			Amount:    s.Amount,
		}
	}
	return d
}

// FromDomain populates the row from a domain Department
func (m *DepartmentModel) FromDomain(d *ticket.Department) {
	m.ID = d.ID
	m.Name = d.Name
	m.TicketNumerator = d.TicketNumerator
	m.OrderNumerator = d.OrderNumerator
	m.PriceTag = d.PriceTag
	m.ServiceTemplates = make([]serviceTemplate, len(d.ServiceTemplates))
	for i, s := range d.ServiceTemplates {
		m.ServiceTemplates[i] = serviceTemplate{
			ServiceID: s.ServiceID,
			Name:      s.Name,
			Method:    s.Method,
			Amount:    s.Amount,
		}
	}
}

// NumeratorModel holds the last number handed out for a numerator name
type NumeratorModel struct {
	Name      string    `gorm:"type:varchar(100);primaryKey"`
	Number    int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumeratorModel) TableName() string {
	return "numerators"
}
