package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/application/service"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/request"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/response"
)

// InvoiceHandler handles invoice lifecycle HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles creating a draft invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.CreateInvoiceInput{
		CustomerID:    req.CustomerID,
		SeriesCode:    req.SeriesCode,
		Currency:      req.Currency,
		PaymentType:   enum.PaymentType(req.PaymentType),
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		InternalNotes: req.InternalNotes,
		Lines:         toLineInputs(req.Lines),
	}
	if req.InvoiceDate != nil {
		input.InvoiceDate = *req.InvoiceDate
	}
	if req.Rounding != nil {
		input.Rounding = *req.Rounding
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting a single invoice with lines and payments
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	var req request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid filter parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: getPagination(c),
		Search:     req.Search,
		SeriesCode: req.SeriesCode,
	}
	if req.Status != "" {
		status := enum.InvoiceStatus(req.Status)
		if !status.IsValid() {
			response.BadRequest(c, "Unknown invoice status")
			return
		}
		params.Status = &status
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &customerID
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			response.BadRequest(c, "Invalid date_from, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			response.BadRequest(c, "Invalid date_to, expected YYYY-MM-DD")
			return
		}
		params.EndDate = &to
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// ListDue handles listing invoices with an outstanding balance
func (h *InvoiceHandler) ListDue(c *gin.Context) {
	result, err := h.invoiceService.ListDueInvoices(c.Request.Context(), getPagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Due invoices retrieved successfully", result)
}

// Update handles patching a draft invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	patch := &service.UpdateInvoiceInput{
		DueDate:       req.DueDate,
		Rounding:      req.Rounding,
		Notes:         req.Notes,
		InternalNotes: req.InternalNotes,
	}
	if req.PaymentType != nil {
		paymentType := enum.PaymentType(*req.PaymentType)
		patch.PaymentType = &paymentType
	}
	if req.Lines != nil {
		patch.Lines = toLineInputs(req.Lines)
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// Issue handles issuing a draft invoice, assigning its number
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice issued successfully", invoice)
}

// Cancel handles cancelling an invoice. The count of cash session
// postings that were not reversed is returned alongside the invoice.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, postedMovements, err := h.invoiceService.CancelInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled successfully", gin.H{
		"invoice":          invoice,
		"posted_movements": postedMovements,
	})
}

// Receipt handles composing the printable receipt payload
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	receipt, err := h.invoiceService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// ListSeries handles listing the known numbering series
func (h *InvoiceHandler) ListSeries(c *gin.Context) {
	series, err := h.invoiceService.ListSeries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Series retrieved successfully", series)
}

func toLineInputs(lines []request.InvoiceLineRequest) []service.LineInput {
	inputs := make([]service.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, service.LineInput{
			ProductID:       l.ProductID,
			Description:     l.Description,
			Qty:             l.Qty,
			Unit:            l.Unit,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
			TaxRate:         l.TaxRate,
		})
	}
	return inputs
}
