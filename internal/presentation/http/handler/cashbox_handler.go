package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/application/service"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/request"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/response"
)

// CashBoxHandler handles cash box and session HTTP requests
type CashBoxHandler struct {
	cashBoxService *service.CashBoxService
}

// NewCashBoxHandler creates a new cash box handler
func NewCashBoxHandler(cashBoxService *service.CashBoxService) *CashBoxHandler {
	return &CashBoxHandler{cashBoxService: cashBoxService}
}

// Create handles registering a new cash box
func (h *CashBoxHandler) Create(c *gin.Context) {
	var req request.CreateCashBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.CreateCashBoxInput{
		Code:                   req.Code,
		Name:                   req.Name,
		Location:               req.Location,
		AssignedUserID:         req.AssignedUserID,
		RequiresOpeningClosing: true,
	}
	if req.RequiresOpeningClosing != nil {
		input.RequiresOpeningClosing = *req.RequiresOpeningClosing
	}

	box, err := h.cashBoxService.CreateCashBox(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash box created successfully", box)
}

// List handles listing cash boxes
func (h *CashBoxHandler) List(c *gin.Context) {
	result, err := h.cashBoxService.ListCashBoxes(c.Request.Context(), getPagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Cash boxes retrieved successfully", result)
}

// Get handles getting a cash box with its current session
func (h *CashBoxHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cash box ID")
		return
	}

	box, err := h.cashBoxService.GetCashBox(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash box retrieved successfully", box)
}

// OpenSession handles opening a session on a closed cash box
func (h *CashBoxHandler) OpenSession(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cash box ID")
		return
	}

	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	session, err := h.cashBoxService.OpenSession(c.Request.Context(), id, req.InitialAmount, *userID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash session opened successfully", session)
}

// AddMovement handles appending a manual movement to the open session
func (h *CashBoxHandler) AddMovement(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cash box ID")
		return
	}

	var req request.AddMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	movement, err := h.cashBoxService.AddMovement(
		c.Request.Context(), id, enum.MovementType(req.Type), req.Amount, req.Reference, req.Note, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Movement recorded successfully", movement)
}

// CloseSession handles sealing the open session with a counted amount
func (h *CashBoxHandler) CloseSession(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cash box ID")
		return
	}

	var req request.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	session, err := h.cashBoxService.CloseSession(c.Request.Context(), id, req.CountedAmount, *userID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash session closed successfully", session)
}

// GetSession handles getting a session with its movement ledger
func (h *CashBoxHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.cashBoxService.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Session retrieved successfully", session)
}

// ListSessions handles listing the session history of a cash box
func (h *CashBoxHandler) ListSessions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cash box ID")
		return
	}

	result, err := h.cashBoxService.ListSessions(c.Request.Context(), id, getPagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sessions retrieved successfully", result)
}
