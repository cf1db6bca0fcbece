package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/application/service"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/request"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/response"
)

// PaymentHandler handles payment registration HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Preview handles computing the effect of a payment without committing
func (h *PaymentHandler) Preview(c *gin.Context) {
	input, ok := h.bindPaymentInput(c)
	if !ok {
		return
	}

	preview, err := h.paymentService.PreviewPayment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment preview computed", preview)
}

// Register handles registering a payment against an issued invoice
func (h *PaymentHandler) Register(c *gin.Context) {
	input, ok := h.bindPaymentInput(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.RegisterPayment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment registered successfully", payment)
}

// List handles listing the payments of an invoice
func (h *PaymentHandler) List(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", payments)
}

// Get handles getting a single payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment retrieved successfully", payment)
}

func (h *PaymentHandler) bindPaymentInput(c *gin.Context) (*service.RegisterPaymentInput, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return nil, false
	}

	var req request.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	input := &service.RegisterPaymentInput{
		InvoiceID:          invoiceID,
		Amount:             req.Amount,
		Method:             enum.PaymentMethod(req.Method),
		Reference:          req.Reference,
		Notes:              req.Notes,
		CashBoxID:          req.CashBoxID,
		ReceivedBy:         *userID,
		ConfirmOverpayment: req.ConfirmOverpayment,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}
	return input, true
}
