package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
)

// TicketModel is the persistence model for the Ticket aggregate root.
type TicketModel struct {
	AggregateModel
	TicketNumber    string              `gorm:"type:varchar(50);index"`
	DepartmentID    uuid.UUID           `gorm:"type:uuid;index"`
	LocationName    string              `gorm:"type:varchar(100)"`
	AccountID       uuid.UUID           `gorm:"type:uuid;index"`
	AccountName     string              `gorm:"type:varchar(200)"`
	Note            string              `gorm:"type:text"`
	IsPaid          bool                `gorm:"not null;index"`
	Locked          bool                `gorm:"not null"`
	TotalAmount     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	RemainingAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	LastOrderDate   time.Time           `gorm:"not null"`
	LastPaymentDate time.Time           `gorm:"not null"`
	PrintJobData    string              `gorm:"type:varchar(500)"`
	TagData         string              `gorm:"type:text"`
	Lines           []LineItemModel     `gorm:"foreignKey:TicketID;references:ID"`
	Discounts       []DiscountModel     `gorm:"foreignKey:TicketID;references:ID"`
	Services        []ServiceEntryModel `gorm:"foreignKey:TicketID;references:ID"`
	Payments        []PaymentModel      `gorm:"foreignKey:TicketID;references:ID"`
	PaidItems       []PaidItemModel     `gorm:"foreignKey:TicketID;references:ID"`
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "tickets"
}

// ToDomain converts the persistence model to a domain Ticket. Child rows
// must be preloaded and ordered by position.
func (m *TicketModel) ToDomain(opts ...ticket.Option) *ticket.Ticket {
	t := &ticket.Ticket{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TicketNumber:      m.TicketNumber,
		DepartmentID:      m.DepartmentID,
		LocationName:      m.LocationName,
		AccountID:         m.AccountID,
		AccountName:       m.AccountName,
		Note:              m.Note,
		IsPaid:            m.IsPaid,
		Locked:            m.Locked,
		TotalAmount:       m.TotalAmount,
		RemainingAmount:   m.RemainingAmount,
		LastOrderDate:     m.LastOrderDate,
		LastPaymentDate:   m.LastPaymentDate,
		Lines:             make([]*ticket.LineItem, len(m.Lines)),
		Discounts:         make([]*ticket.Discount, len(m.Discounts)),
		Services:          make([]*ticket.ServiceEntry, len(m.Services)),
		Payments:          make([]*ticket.Payment, len(m.Payments)),
		PaidItems:         make([]ticket.PaidItem, len(m.PaidItems)),
	}
	t.Configure(opts...)
	t.RestoreEncoded(m.PrintJobData, m.TagData)

	for i := range m.Lines {
		t.Lines[i] = m.Lines[i].ToDomain()
	}
	for i := range m.Discounts {
		t.Discounts[i] = m.Discounts[i].ToDomain()
	}
	for i := range m.Services {
		t.Services[i] = m.Services[i].ToDomain()
	}
	for i := range m.Payments {
		t.Payments[i] = m.Payments[i].ToDomain()
	}
	for i := range m.PaidItems {
		t.PaidItems[i] = m.PaidItems[i].ToDomain()
	}
	return t
}

// FromDomain populates the ticket row and its children from a domain Ticket.
func (m *TicketModel) FromDomain(t *ticket.Ticket) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TicketNumber = t.TicketNumber
	m.DepartmentID = t.DepartmentID
	m.LocationName = t.LocationName
	m.AccountID = t.AccountID
	m.AccountName = t.AccountName
	m.Note = t.Note
	m.IsPaid = t.IsPaid
	m.Locked = t.Locked
	m.TotalAmount = t.TotalAmount
	m.RemainingAmount = t.RemainingAmount
	m.LastOrderDate = t.LastOrderDate
	m.LastPaymentDate = t.LastPaymentDate
	m.PrintJobData = t.EncodedPrintJobs()
	m.TagData = t.EncodedTags()

	m.Lines = make([]LineItemModel, len(t.Lines))
	for i, l := range t.Lines {
		m.Lines[i].FromDomain(t.ID, i, l)
	}
	m.Discounts = make([]DiscountModel, len(t.Discounts))
	for i, d := range t.Discounts {
		m.Discounts[i].FromDomain(t.ID, i, d)
	}
	m.Services = make([]ServiceEntryModel, len(t.Services))
	for i, s := range t.Services {
		m.Services[i].FromDomain(t.ID, i, s)
	}
	m.Payments = make([]PaymentModel, len(t.Payments))
	for i, p := range t.Payments {
		m.Payments[i].FromDomain(t.ID, p)
	}
	m.PaidItems = make([]PaidItemModel, len(t.PaidItems))
	for i, p := range t.PaidItems {
		m.PaidItems[i] = PaidItemModel{
			TicketID:   t.ID,
			MenuItemID: p.MenuItemID,
			Price:      p.Price,
			Quantity:   p.Quantity,
		}
	}
}

// TicketModelFromDomain creates a new persistence model from a domain Ticket.
func TicketModelFromDomain(t *ticket.Ticket) *TicketModel {
	m := &TicketModel{}
	m.FromDomain(t)
	return m
}

// lineProperty is the JSON shape of a selected line property
type lineProperty struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LineItemModel is the persistence model for a ticket line.
type LineItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	TicketID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position         int             `gorm:"not null"`
	MenuItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemName     string          `gorm:"type:varchar(200);not null"`
	PortionName      string          `gorm:"type:varchar(100)"`
	PortionCount     int             `gorm:"not null"`
	PriceTag         string          `gorm:"type:varchar(50)"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxTemplateID    uuid.UUID       `gorm:"type:uuid"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	TaxIncluded      bool            `gorm:"not null"`
	Properties       []lineProperty  `gorm:"type:jsonb;serializer:json"`
	Voided           bool            `gorm:"not null"`
	Gifted           bool            `gorm:"not null"`
	Locked           bool            `gorm:"not null"`
	ReasonID         int             `gorm:"not null"`
	OrderNumber      int             `gorm:"not null;index"`
	SelectedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatingUserID   uuid.UUID       `gorm:"type:uuid"`
	CreatedAt        time.Time       `gorm:"not null"`
	ModifiedUserID   uuid.UUID       `gorm:"type:uuid"`
	ModifiedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "ticket_lines"
}

// ToDomain converts the row to a domain line
func (m *LineItemModel) ToDomain() *ticket.LineItem {
	l := &ticket.LineItem{
		ID:               m.ID,
		MenuItemID:       m.MenuItemID,
		MenuItemName:     m.MenuItemName,
		PortionName:      m.PortionName,
		PortionCount:     m.PortionCount,
		PriceTag:         m.PriceTag,
		Quantity:         m.Quantity,
		Price:            m.Price,
		TaxTemplateID:    m.TaxTemplateID,
		TaxRate:          m.TaxRate,
		TaxAmount:        m.TaxAmount,
		TaxIncluded:      m.TaxIncluded,
		Properties:       make([]ticket.LineProperty, len(m.Properties)),
		Voided:           m.Voided,
		Gifted:           m.Gifted,
		Locked:           m.Locked,
		ReasonID:         m.ReasonID,
		OrderNumber:      m.OrderNumber,
		SelectedQuantity: m.SelectedQuantity,
		CreatingUserID:   m.CreatingUserID,
		CreatedAt:        m.CreatedAt,
		ModifiedUserID:   m.ModifiedUserID,
		ModifiedAt:       m.ModifiedAt,
	}
	for i, p := range m.Properties {
		l.Properties[i] = ticket.LineProperty{
			Name:      p.Name,
			Price:     p.Price,
			TaxAmount: p.TaxAmount,
			Quantity:  p.Quantity,
		}
	}
	// Unsubmitted lines load as new so the next submit can still merge them.
	if l.WasSubmitted() {
		l.MarkPersisted()
	}
	return l
}

// FromDomain populates the row from a domain line at the given position
func (m *LineItemModel) FromDomain(ticketID uuid.UUID, position int, l *ticket.LineItem) {
	m.ID = l.ID
	m.TicketID = ticketID
	m.Position = position
	m.MenuItemID = l.MenuItemID
	m.MenuItemName = l.MenuItemName
	m.PortionName = l.PortionName
	m.PortionCount = l.PortionCount
	m.PriceTag = l.PriceTag
	m.Quantity = l.Quantity
	m.Price = l.Price
	m.TaxTemplateID = l.TaxTemplateID
	m.TaxRate = l.TaxRate
	m.TaxAmount = l.TaxAmount
	m.TaxIncluded = l.TaxIncluded
	m.Properties = make([]lineProperty, len(l.Properties))
	for i, p := range l.Properties {
		m.Properties[i] = lineProperty{
			Name:      p.Name,
			Price:     p.Price,
			TaxAmount: p.TaxAmount,
			Quantity:  p.Quantity,
		}
	}
	m.Voided = l.Voided
	m.Gifted = l.Gifted
	m.Locked = l.Locked
	m.ReasonID = l.ReasonID
	m.OrderNumber = l.OrderNumber
	m.SelectedQuantity = l.SelectedQuantity
	m.CreatingUserID = l.CreatingUserID
	m.CreatedAt = l.CreatedAt
	m.ModifiedUserID = l.ModifiedUserID
	m.ModifiedAt = l.ModifiedAt
}

// DiscountModel is keyed by ticket, type and target line
type DiscountModel struct {
	TicketID       uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Type           ticket.DiscountType `gorm:"primaryKey;autoIncrement:false"`
	LineID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Position       int                 `gorm:"not null"`
	Amount         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	UserID         uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DiscountModel) TableName() string {
	return "ticket_discounts"
}

// ToDomain converts the row to a domain Discount
func (m *DiscountModel) ToDomain() *ticket.Discount {
	return &ticket.Discount{
		Type:           m.Type,
		LineID:         m.LineID,
		Amount:         m.Amount,
		DiscountAmount: m.DiscountAmount,
		UserID:         m.UserID,
	}
}

// FromDomain populates the row from a domain Discount
func (m *DiscountModel) FromDomain(ticketID uuid.UUID, position int, d *ticket.Discount) {
	m.TicketID = ticketID
	m.Type = d.Type
	m.LineID = d.LineID
	m.Position = position
	m.Amount = d.Amount
	m.DiscountAmount = d.DiscountAmount
	m.UserID = d.UserID
}

// ServiceEntryModel is keyed by ticket and service
type ServiceEntryModel struct {
	TicketID         uuid.UUID                `gorm:"type:uuid;primaryKey"`
	ServiceID        uuid.UUID                `gorm:"type:uuid;primaryKey"`
	Position         int                      `gorm:"not null"`
	Name             string                   `gorm:"type:varchar(100)"`
	Method           ticket.CalculationMethod `gorm:"not null"`
	Amount           decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	CalculatedAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ServiceEntryModel) TableName() string {
	return "ticket_services"
}

// ToDomain converts the row to a domain ServiceEntry
func (m *ServiceEntryModel) ToDomain() *ticket.ServiceEntry {
	return &ticket.ServiceEntry{
		ServiceID:        m.ServiceID,
		Name:             m.Name,
		Method:           m.Method,
		Amount:           m.Amount,
		CalculatedAmount: m.CalculatedAmount,
	}
}

// FromDomain populates the row from a domain ServiceEntry
func (m *ServiceEntryModel) FromDomain(ticketID uuid.UUID, position int, s *ticket.ServiceEntry) {
	m.TicketID = ticketID
	m.ServiceID = s.ServiceID
	m.Position = position
	m.Name = s.Name
	m.Method = s.Method
	m.Amount = s.Amount
	m.CalculatedAmount = s.CalculatedAmount
}

// PaymentModel is the persistence model for an append-only payment
type PaymentModel struct {
	ID       uuid.UUID          `gorm:"type:uuid;primary_key"`
	TicketID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Date     time.Time          `gorm:"not null"`
	Type     ticket.PaymentType `gorm:"type:varchar(20);not null"`
	UserID   uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "ticket_payments"
}

// ToDomain converts the row to a domain Payment
func (m *PaymentModel) ToDomain() *ticket.Payment {
	return &ticket.Payment{
		ID:     m.ID,
		Amount: m.Amount,
		Date:   m.Date,
		Type:   m.Type,
		UserID: m.UserID,
	}
}

// FromDomain populates the row from a domain Payment
func (m *PaymentModel) FromDomain(ticketID uuid.UUID, p *ticket.Payment) {
	m.ID = p.ID
	m.TicketID = ticketID
	m.Amount = p.Amount
	m.Date = p.Date
	m.Type = p.Type
	m.UserID = p.UserID
}

// PaidItemModel stores settled quantities per menu item and price
type PaidItemModel struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	TicketID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PaidItemModel) TableName() string {
	return "ticket_paid_items"
}

// ToDomain converts the row to a domain PaidItem
func (m *PaidItemModel) ToDomain() ticket.PaidItem {
	return ticket.PaidItem{
		MenuItemID: m.MenuItemID,
		Price:      m.Price,
		Quantity:   m.Quantity,
	}
}
