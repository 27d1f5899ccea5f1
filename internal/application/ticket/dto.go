package ticket

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// OpenTicketRequest opens a ticket. Without a department the configured
// default department is used.
type OpenTicketRequest struct {
	DepartmentID *uuid.UUID `json:"department_id"`
	LocationName string     `json:"location_name" binding:"max=100"`
	Note         string     `json:"note" binding:"max=500"`
}

// AddItemRequest adds a menu item to a ticket
type AddItemRequest struct {
	MenuItemID  uuid.UUID       `json:"menu_item_id" binding:"required"`
	PortionName string          `json:"portion_name" binding:"max=50"`
	Quantity    decimal.Decimal `json:"quantity"`
	Properties  []string        `json:"properties" binding:"dive,max=100"`
}

// LineSelectionInput selects a line, optionally only part of its quantity
type LineSelectionInput struct {
	LineID   uuid.UUID        `json:"line_id" binding:"required"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// LinesRequest applies a void, gift or cancel to a set of lines
type LinesRequest struct {
	Lines    []LineSelectionInput `json:"lines" binding:"required,min=1,dive"`
	ReasonID int                  `json:"reason_id" binding:"min=0"`
}

// DiscountRequest sets a ticket or line discount. A zero amount removes it.
type DiscountRequest struct {
	Type   string          `json:"type" binding:"required,oneof=PERCENT AMOUNT TIP"`
	LineID *uuid.UUID      `json:"line_id"`
	Amount decimal.Decimal `json:"amount"`
}

// ServiceRequest sets a service charge. A zero amount removes it.
type ServiceRequest struct {
	ServiceID uuid.UUID       `json:"service_id" binding:"required"`
	Name      string          `json:"name" binding:"required,max=100"`
	Method    int             `json:"method" binding:"min=0,max=3"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentRequest tenders a payment
type PaymentRequest struct {
	Type   string          `json:"type" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// SelectionInput picks a quantity of a merged item for settlement
type SelectionInput struct {
	MenuItemID uuid.UUID       `json:"menu_item_id" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// PaySelectedItemsRequest pays for selected merged items
type PaySelectedItemsRequest struct {
	Type  string           `json:"type" binding:"required"`
	Items []SelectionInput `json:"items" binding:"required,min=1,dive"`
}

// TagRequest sets a ticket tag. An empty value removes it.
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Value string `json:"value" binding:"max=200"`
}

// AccountRequest assigns the customer account. A nil AccountID clears it.
type AccountRequest struct {
	AccountID *uuid.UUID `json:"account_id"`
	Name      string     `json:"name" binding:"max=200"`
}

// PrintRequest records that the ticket was sent to a printer
type PrintRequest struct {
	PrinterID int `json:"printer_id" binding:"min=1"`
}

// SubmitRequest sends new lines to the kitchen. Lock also locks the ticket.
type SubmitRequest struct {
	Lock bool `json:"lock"`
}

// ListFilter pages through open tickets
type ListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// TotalsResponse is the calculation breakdown of a ticket
type TotalsResponse struct {
	PlainSum          decimal.Decimal `json:"plain_sum"`
	Discounts         decimal.Decimal `json:"discounts"`
	Tax               decimal.Decimal `json:"tax"`
	Services          decimal.Decimal `json:"services"`
	Gifts             decimal.Decimal `json:"gifts"`
	Sum               decimal.Decimal `json:"sum"`
	Payments          decimal.Decimal `json:"payments"`
	AccountPayments   decimal.Decimal `json:"account_payments"`
	Remaining         decimal.Decimal `json:"remaining"`
	DiscountAndRounds decimal.Decimal `json:"discount_and_rounding"`
}

// LinePropertyResponse is a modifier on a line
type LinePropertyResponse struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// LineResponse is one line item
type LineResponse struct {
	ID           uuid.UUID              `json:"id"`
	MenuItemID   uuid.UUID              `json:"menu_item_id"`
	MenuItemName string                 `json:"menu_item_name"`
	PortionName  string                 `json:"portion_name"`
	PriceTag     string                 `json:"price_tag,omitempty"`
	Quantity     decimal.Decimal        `json:"quantity"`
	Price        decimal.Decimal        `json:"price"`
	TaxRate      decimal.Decimal        `json:"tax_rate"`
	Total        decimal.Decimal        `json:"total"`
	Properties   []LinePropertyResponse `json:"properties"`
	Voided       bool                   `json:"voided"`
	Gifted       bool                   `json:"gifted"`
	Locked       bool                   `json:"locked"`
	ReasonID     int                    `json:"reason_id,omitempty"`
	OrderNumber  int                    `json:"order_number"`
	CreatedAt    time.Time              `json:"created_at"`
}

// DiscountResponse is a discount with its computed amount
type DiscountResponse struct {
	Type           string          `json:"type"`
	LineID         *uuid.UUID      `json:"line_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// ServiceResponse is a service charge with its computed amount
type ServiceResponse struct {
	ServiceID        uuid.UUID       `json:"service_id"`
	Name             string          `json:"name"`
	Method           int             `json:"method"`
	Amount           decimal.Decimal `json:"amount"`
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
}

// PaymentResponse is a tendered payment
type PaymentResponse struct {
	ID     uuid.UUID       `json:"id"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// PaidItemResponse is a settled quantity of a merged item
type PaidItemResponse struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// MergedItemResponse is a settlement bucket
type MergedItemResponse struct {
	MenuItemID        uuid.UUID       `json:"menu_item_id"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Quantity          decimal.Decimal `json:"quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Total             decimal.Decimal `json:"total"`
}

// TagResponse is a ticket tag
type TagResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TicketResponse is the full view of a ticket
type TicketResponse struct {
	ID              uuid.UUID          `json:"id"`
	TicketNumber    string             `json:"ticket_number"`
	DepartmentID    uuid.UUID          `json:"department_id"`
	LocationName    string             `json:"location_name"`
	AccountID       *uuid.UUID         `json:"account_id,omitempty"`
	AccountName     string             `json:"account_name,omitempty"`
	Note            string             `json:"note"`
	IsPaid          bool               `json:"is_paid"`
	Locked          bool               `json:"locked"`
	Currency        string             `json:"currency"`
	Totals          TotalsResponse     `json:"totals"`
	Lines           []LineResponse     `json:"lines"`
	Discounts       []DiscountResponse `json:"discounts"`
	Services        []ServiceResponse  `json:"services"`
	Payments        []PaymentResponse  `json:"payments"`
	PaidItems       []PaidItemResponse `json:"paid_items"`
	Tags            []TagResponse      `json:"tags"`
	PrintJobs       string             `json:"print_jobs"`
	LastOrderDate   time.Time          `json:"last_order_date"`
	LastPaymentDate time.Time          `json:"last_payment_date"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Version         int                `json:"version"`
}

// TicketSummaryResponse is a ticket in list views
type TicketSummaryResponse struct {
	ID              uuid.UUID       `json:"id"`
	TicketNumber    string          `json:"ticket_number"`
	LocationName    string          `json:"location_name"`
	AccountName     string          `json:"account_name,omitempty"`
	ItemCount       int             `json:"item_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Locked          bool            `json:"locked"`
	LastOrderDate   time.Time       `json:"last_order_date"`
}

// ToTicketResponse converts a ticket to its API view
func ToTicketResponse(t *ticket.Ticket, currency string) TicketResponse {
	totals := t.Totals()

	resp := TicketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		DepartmentID: t.DepartmentID,
		LocationName: t.LocationName,
		Note:         t.Note,
		IsPaid:       t.IsPaid,
		Locked:       t.Locked,
		Currency:     currency,
		Totals: TotalsResponse{
			PlainSum:          totals.PlainSum,
			Discounts:         totals.Discount,
			Tax:               totals.Tax,
			Services:          totals.Services,
			Gifts:             t.GetTotalGiftAmount(),
			Sum:               totals.Sum,
			Payments:          totals.Payments,
			AccountPayments:   t.GetAccountPaymentAmount(),
			Remaining:         totals.Remaining,
			DiscountAndRounds: t.GetDiscountAndRoundingTotal(),
		},
		Lines:           make([]LineResponse, 0, len(t.Lines)),
		Discounts:       make([]DiscountResponse, 0, len(t.Discounts)),
		Services:        make([]ServiceResponse, 0, len(t.Services)),
		Payments:        make([]PaymentResponse, 0, len(t.Payments)),
		PaidItems:       make([]PaidItemResponse, 0, len(t.PaidItems)),
		Tags:            make([]TagResponse, 0),
		PrintJobs:       t.EncodedPrintJobs(),
		LastOrderDate:   t.LastOrderDate,
		LastPaymentDate: t.LastPaymentDate,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Version:         t.Version,
	}
	if t.AccountID != uuid.Nil {
		id := t.AccountID
		resp.AccountID = &id
		resp.AccountName = t.AccountName
	}

	for _, l := range t.Lines {
		resp.Lines = append(resp.Lines, toLineResponse(l))
	}
	for _, d := range t.Discounts {
		dr := DiscountResponse{
			Type:           d.Type.String(),
			Amount:         d.Amount,
			DiscountAmount: d.DiscountAmount,
		}
		if d.LineID != uuid.Nil {
			id := d.LineID
			dr.LineID = &id
		}
		resp.Discounts = append(resp.Discounts, dr)
	}
	for _, s := range t.Services {
		resp.Services = append(resp.Services, ServiceResponse{
			ServiceID:        s.ServiceID,
			Name:             s.Name,
			Method:           int(s.Method),
			Amount:           s.Amount,
			CalculatedAmount: s.CalculatedAmount,
		})
	}
	for _, p := range t.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:     p.ID,
			Type:   string(p.Type),
			Amount: p.Amount,
			Date:   p.Date,
		})
	}
	for _, p := range t.PaidItems {
		resp.PaidItems = append(resp.PaidItems, PaidItemResponse{
			MenuItemID: p.MenuItemID,
			Price:      p.Price,
			Quantity:   p.Quantity,
		})
	}
	if t.EncodedTags() != "" {
		for _, tv := range t.TagValues() {
			resp.Tags = append(resp.Tags, TagResponse{Name: tv.Name, Value: tv.Value})
		}
	}
	return resp
}

func toLineResponse(l *ticket.LineItem) LineResponse {
	lr := LineResponse{
		ID:           l.ID,
		MenuItemID:   l.MenuItemID,
		MenuItemName: l.MenuItemName,
		PortionName:  l.PortionName,
		PriceTag:     l.PriceTag,
		Quantity:     l.Quantity,
		Price:        l.Price,
		TaxRate:      l.TaxRate,
		Total:        l.Total(),
		Properties:   make([]LinePropertyResponse, 0, len(l.Properties)),
		Voided:       l.Voided,
		Gifted:       l.Gifted,
		Locked:       l.Locked,
		ReasonID:     l.ReasonID,
		OrderNumber:  l.OrderNumber,
		CreatedAt:    l.CreatedAt,
	}
	for _, p := range l.Properties {
		lr.Properties = append(lr.Properties, LinePropertyResponse{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
		})
	}
	return lr
}

// ToTicketSummaryResponses converts tickets to list items
func ToTicketSummaryResponses(tickets []*ticket.Ticket) []TicketSummaryResponse {
	result := make([]TicketSummaryResponse, len(tickets))
	for i, t := range tickets {
		result[i] = TicketSummaryResponse{
			ID:              t.ID,
			TicketNumber:    t.TicketNumber,
			LocationName:    t.LocationName,
			AccountName:     t.AccountName,
			ItemCount:       t.GetItemCount(),
			TotalAmount:     t.TotalAmount,
			RemainingAmount: t.RemainingAmount,
			Locked:          t.Locked,
			LastOrderDate:   t.LastOrderDate,
		}
	}
	return result
}

// ToMergedItemResponses converts settlement buckets
func ToMergedItemResponses(items []*ticket.MergedItem) []MergedItemResponse {
	result := make([]MergedItemResponse, len(items))
	for i, m := range items {
		result[i] = MergedItemResponse{
			MenuItemID:        m.MenuItemID,
			Description:       m.Description,
			Price:             m.Price,
			Quantity:          m.Quantity,
			RemainingQuantity: m.RemainingQuantity(),
			Total:             m.Total(),
		}
	}
	return result
}
