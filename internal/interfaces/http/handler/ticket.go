package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ticketapp "github.com/pos/backend/internal/application/ticket"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/interfaces/http/router"
)

// TicketService is the application service behind the ticket endpoints
type TicketService interface {
	Open(ctx context.Context, userID uuid.UUID, req ticketapp.OpenTicketRequest) (*ticketapp.TicketResponse, error)
	Get(ctx context.Context, ticketID uuid.UUID) (*ticketapp.TicketResponse, error)
	GetMergedItems(ctx context.Context, ticketID uuid.UUID) ([]ticketapp.MergedItemResponse, error)
	ListOpen(ctx context.Context, filter ticketapp.ListFilter) ([]ticketapp.TicketSummaryResponse, int64, error)
	AddItem(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.AddItemRequest) (*ticketapp.TicketResponse, error)
	VoidLines(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.LinesRequest) (*ticketapp.TicketResponse, error)
	GiftLines(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.LinesRequest) (*ticketapp.TicketResponse, error)
	CancelLines(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.LinesRequest) (*ticketapp.TicketResponse, error)
	SetDiscount(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.DiscountRequest) (*ticketapp.TicketResponse, error)
	SetService(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.ServiceRequest) (*ticketapp.TicketResponse, error)
	RemoveService(ctx context.Context, userID, ticketID, serviceID uuid.UUID) (*ticketapp.TicketResponse, error)
	AddPayment(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.PaymentRequest) (*ticketapp.TicketResponse, error)
	PaySelectedItems(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.PaySelectedItemsRequest) (*ticketapp.TicketResponse, error)
	SetTag(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.TagRequest) (*ticketapp.TicketResponse, error)
	UpdateAccount(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.AccountRequest) (*ticketapp.TicketResponse, error)
	RecordPrint(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.PrintRequest) (*ticketapp.TicketResponse, error)
	RefreshTaxes(ctx context.Context, userID, ticketID uuid.UUID) (*ticketapp.TicketResponse, error)
	Submit(ctx context.Context, userID, ticketID uuid.UUID, req ticketapp.SubmitRequest) (*ticketapp.TicketResponse, error)
	Close(ctx context.Context, userID, ticketID uuid.UUID) (*ticketapp.TicketResponse, error)
}

// TicketHandler handles ticket API endpoints
type TicketHandler struct {
	BaseHandler
	tickets TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// RegisterRoutes mounts the ticket endpoints under /tickets
func (h *TicketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("tickets", "/tickets").
		POST("", h.Open).
		GET("", h.ListOpen).
		GET("/:id", h.Get).
		GET("/:id/merged-items", h.GetMergedItems).
		POST("/:id/items", h.AddItem).
		POST("/:id/void", h.VoidLines).
		POST("/:id/gift", h.GiftLines).
		POST("/:id/cancel", h.CancelLines).
		POST("/:id/discounts", h.SetDiscount).
		POST("/:id/services", h.SetService).
		DELETE("/:id/services/:serviceId", h.RemoveService).
		POST("/:id/payments", h.AddPayment).
		POST("/:id/pay-items", h.PaySelectedItems).
		PUT("/:id/tags", h.SetTag).
		PUT("/:id/account", h.UpdateAccount).
		POST("/:id/print", h.RecordPrint).
		POST("/:id/refresh-taxes", h.RefreshTaxes).
		POST("/:id/submit", h.Submit).
		POST("/:id/close", h.Close).
		RegisterRoutes(rg)
}

// ticketAction is a mutation of one ticket by the authenticated operator
type ticketAction func(ctx context.Context, userID, ticketID uuid.UUID) (*ticketapp.TicketResponse, error)

// run resolves the operator and the :id parameter, then runs action and
// writes its result
func (h *TicketHandler) run(c *gin.Context, action ticketAction) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Operator not identified")
		return
	}
	ticketID, ok := h.ticketID(c)
	if !ok {
		return
	}

	resp, err := action(c.Request.Context(), userID, ticketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *TicketHandler) ticketID(c *gin.Context) (uuid.UUID, bool) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return uuid.Nil, false
	}
	c.Request = c.Request.WithContext(logger.WithTicketID(c.Request.Context(), ticketID.String()))
	return ticketID, true
}

// bindAndRun binds the JSON body into Req and passes it to call
func bindAndRun[Req any](h *TicketHandler, c *gin.Context,
	call func(ctx context.Context, userID, ticketID uuid.UUID, req Req) (*ticketapp.TicketResponse, error),
) {
	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.run(c, func(ctx context.Context, userID, ticketID uuid.UUID) (*ticketapp.TicketResponse, error) {
		return call(ctx, userID, ticketID, req)
	})
}

// Open godoc
// @Summary      Open a ticket
// @Description  Open a ticket in the given or the default department
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request body ticketapp.OpenTicketRequest true "Ticket to open"
// @Success      201 {object} APIResponse[ticketapp.TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets [post]
func (h *TicketHandler) Open(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Operator not identified")
		return
	}

	var req ticketapp.OpenTicketRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	resp, err := h.tickets.Open(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListOpen godoc
// @Summary      List open tickets
// @Tags         tickets
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]ticketapp.TicketSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets [get]
func (h *TicketHandler) ListOpen(c *gin.Context) {
	var filter ticketapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	tickets, total, err := h.tickets.ListOpen(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	h.SuccessWithMeta(c, tickets, total, page, filter.PageSize)
}

// Get godoc
// @Summary      Get a ticket
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	ticketID, ok := h.ticketID(c)
	if !ok {
		return
	}
	resp, err := h.tickets.Get(c.Request.Context(), ticketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetMergedItems godoc
// @Summary      Get settlement buckets
// @Description  Non-voided lines grouped by menu item and price, with the quantity still unpaid
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[[]ticketapp.MergedItemResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/merged-items [get]
func (h *TicketHandler) GetMergedItems(c *gin.Context) {
	ticketID, ok := h.ticketID(c)
	if !ok {
		return
	}
	items, err := h.tickets.GetMergedItems(c.Request.Context(), ticketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddItem godoc
// @Summary      Add a menu item
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.AddItemRequest true "Item to add"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/items [post]
func (h *TicketHandler) AddItem(c *gin.Context) {
	bindAndRun(h, c, h.tickets.AddItem)
}

// VoidLines godoc
// @Summary      Void submitted lines
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.LinesRequest true "Lines to void"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/void [post]
func (h *TicketHandler) VoidLines(c *gin.Context) {
	bindAndRun(h, c, h.tickets.VoidLines)
}

// GiftLines godoc
// @Summary      Gift lines
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.LinesRequest true "Lines to gift"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/gift [post]
func (h *TicketHandler) GiftLines(c *gin.Context) {
	bindAndRun(h, c, h.tickets.GiftLines)
}

// CancelLines godoc
// @Summary      Cancel unsubmitted lines
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.LinesRequest true "Lines to cancel"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/cancel [post]
func (h *TicketHandler) CancelLines(c *gin.Context) {
	bindAndRun(h, c, h.tickets.CancelLines)
}

// SetDiscount godoc
// @Summary      Set a discount or tip
// @Description  A zero amount removes the discount
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.DiscountRequest true "Discount"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/discounts [post]
func (h *TicketHandler) SetDiscount(c *gin.Context) {
	bindAndRun(h, c, h.tickets.SetDiscount)
}

// SetService godoc
// @Summary      Set a service charge
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.ServiceRequest true "Service charge"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/services [post]
func (h *TicketHandler) SetService(c *gin.Context) {
	bindAndRun(h, c, h.tickets.SetService)
}

// RemoveService godoc
// @Summary      Remove a service charge
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        serviceId path string true "Service ID"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/services/{serviceId} [delete]
func (h *TicketHandler) RemoveService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		h.BadRequest(c, "Invalid service ID format")
		return
	}
	h.run(c, func(ctx context.Context, userID, ticketID uuid.UUID) (*ticketapp.TicketResponse, error) {
		return h.tickets.RemoveService(ctx, userID, ticketID, serviceID)
	})
}

// AddPayment godoc
// @Summary      Tender a payment
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.PaymentRequest true "Payment"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/payments [post]
func (h *TicketHandler) AddPayment(c *gin.Context) {
	bindAndRun(h, c, h.tickets.AddPayment)
}

// PaySelectedItems godoc
// @Summary      Pay for selected items
// @Description  Settles selected quantities of merged items and tenders their value
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.PaySelectedItemsRequest true "Selection"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/pay-items [post]
func (h *TicketHandler) PaySelectedItems(c *gin.Context) {
	bindAndRun(h, c, h.tickets.PaySelectedItems)
}

// SetTag godoc
// @Summary      Set a ticket tag
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.TagRequest true "Tag"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/tags [put]
func (h *TicketHandler) SetTag(c *gin.Context) {
	bindAndRun(h, c, h.tickets.SetTag)
}

// UpdateAccount godoc
// @Summary      Assign the customer account
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.AccountRequest true "Account"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/account [put]
func (h *TicketHandler) UpdateAccount(c *gin.Context) {
	bindAndRun(h, c, h.tickets.UpdateAccount)
}

// RecordPrint godoc
// @Summary      Record a print job
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.PrintRequest true "Printer"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/print [post]
func (h *TicketHandler) RecordPrint(c *gin.Context) {
	bindAndRun(h, c, h.tickets.RecordPrint)
}

// RefreshTaxes godoc
// @Summary      Reload tax rates from the menu
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/refresh-taxes [post]
func (h *TicketHandler) RefreshTaxes(c *gin.Context) {
	h.run(c, h.tickets.RefreshTaxes)
}

// Submit godoc
// @Summary      Send new lines to the kitchen
// @Description  Merges and numbers new lines, assigns the ticket number on first submit and optionally locks the ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body ticketapp.SubmitRequest false "Submit options"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets/{id}/submit [post]
func (h *TicketHandler) Submit(c *gin.Context) {
	var req ticketapp.SubmitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	h.run(c, func(ctx context.Context, userID, ticketID uuid.UUID) (*ticketapp.TicketResponse, error) {
		return h.tickets.Submit(ctx, userID, ticketID, req)
	})
}

// Close godoc
// @Summary      Close a settled ticket
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[ticketapp.TicketResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/close [post]
func (h *TicketHandler) Close(c *gin.Context) {
	h.run(c, h.tickets.Close)
}

var _ TicketService = (*ticketapp.Service)(nil)
