package ticket

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceTemplate is a service charge applied to every new ticket of a department
type ServiceTemplate struct {
	ServiceID uuid.UUID
	Name      string
	Method    CalculationMethod
	Amount    decimal.Decimal
}

// Department groups tickets that share numbering, pricing and default services
type Department struct {
	ID               uuid.UUID
	Name             string
	TicketNumerator  string
	OrderNumerator   string
	PriceTag         string
	ServiceTemplates []ServiceTemplate
}

// NoDepartment returns an empty department for tickets opened outside any department
func NoDepartment() Department {
	return Department{}
}

// Account is the customer account a ticket is charged to
type Account struct {
	ID   uuid.UUID
	Name string
}

// NoAccount returns the empty account. Assigning it clears the ticket account.
func NoAccount() Account {
	return Account{}
}

// IsEmpty reports whether a is the empty account
func (a Account) IsEmpty() bool {
	return a.ID == uuid.Nil
}
