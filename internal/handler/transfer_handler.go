package handler

import (
	"net/http"
	"time"

	"transferhub/internal/middleware"
	"transferhub/internal/model"
	"transferhub/internal/repository"
	"transferhub/internal/service"
	"transferhub/pkg/apperr"
	"transferhub/pkg/pagination"
	"transferhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransferHandler struct {
	transferService service.TransferService
}

func NewTransferHandler(transferService service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

func (h *TransferHandler) RegisterRoutes(router *gin.RouterGroup) {
	transfers := router.Group("/api/transfer-requests")
	transfers.Use(middleware.RequireActor())
	{
		transfers.POST("", h.Create)
		transfers.GET("", h.List)
		transfers.GET("/summary", h.Summary)
		transfers.GET("/:id", h.Get)
		transfers.POST("/:id/send", h.ApproveAndSend)
		transfers.POST("/:id/reject", h.Reject)
		transfers.POST("/:id/ready", h.MarkReady)
		transfers.POST("/:id/deliver-start", h.StartDelivery)
		transfers.POST("/:id/delivered", h.MarkDelivered)
		transfers.POST("/:id/receive", h.ConfirmReceipt)
		transfers.POST("/:id/cancel", h.Cancel)
		transfers.POST("/:id/complete", h.Complete)
	}
}

// Create opens a new transfer request in PENDING
// @Summary      Create transfer request
// @Tags         transfers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CreateTransferDTO  true  "Transfer request"
// @Success      201      {object}  response.Response{data=model.TransferRequest}
// @Router       /api/transfer-requests [post]
func (h *TransferHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing identity context"))
		return
	}

	var req service.CreateTransferDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	transfer, err := h.transferService.Create(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, transfer))
}

// List returns transfer requests filtered by status, priority and location
// @Summary      List transfer requests
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        status       query  string  false  "Filter by status"
// @Param        priority     query  string  false  "Filter by priority"
// @Param        location_id  query  string  false  "Filter by either endpoint"
// @Param        page         query  int     false  "Page number (default 1)"
// @Param        limit        query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response
// @Router       /api/transfer-requests [get]
func (h *TransferHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.TransferFilter{
		Page:  params.Page,
		Limit: params.Limit,
	}
	if raw := c.Query("status"); raw != "" {
		status := model.ParseTransferStatus(raw)
		if status == model.TransferUnknown {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown status filter: "+raw))
			return
		}
		filter.Status = status
	}
	if raw := c.Query("priority"); raw != "" {
		if !model.KnownTransferPriority(raw) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown priority filter: "+raw))
			return
		}
		filter.Priority = model.ParseTransferPriority(raw)
	}
	if raw := c.Query("location_id"); raw != "" {
		locationID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid location_id"))
			return
		}
		filter.LocationID = locationID
	}

	transfers, total, err := h.transferService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   transfers,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// Summary returns aggregate counts and value totals
// @Summary      Transfer summary
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        start        query  string  false  "Range start (RFC3339)"
// @Param        end          query  string  false  "Range end (RFC3339)"
// @Param        location_id  query  string  false  "Filter by either endpoint"
// @Success      200  {object}  response.Response{data=model.TransferSummary}
// @Router       /api/transfer-requests/summary [get]
func (h *TransferHandler) Summary(c *gin.Context) {
	var filter repository.SummaryFilter
	if raw := c.Query("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start time"))
			return
		}
		filter.Start = start
	}
	if raw := c.Query("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end time"))
			return
		}
		filter.End = end
	}
	if raw := c.Query("location_id"); raw != "" {
		locationID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid location_id"))
			return
		}
		filter.LocationID = locationID
	}

	summary, err := h.transferService.Summary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// Get returns one transfer request with its timeline
// @Summary      Get transfer request
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Transfer id"
// @Success      200  {object}  response.Response{data=model.TransferRequest}
// @Router       /api/transfer-requests/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := h.transferID(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// ApproveAndSend approves a pending transfer and assigns its carrier
func (h *TransferHandler) ApproveAndSend(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req service.ApproveTransferDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	transfer, err := h.transferService.ApproveAndSend(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// Reject declines a pending transfer with a reason
func (h *TransferHandler) Reject(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req service.RejectTransferDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	transfer, err := h.transferService.Reject(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// MarkReady records packing completion at the source location
func (h *TransferHandler) MarkReady(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req service.MarkReadyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		req.PackedBy = ""
	}

	transfer, err := h.transferService.MarkReady(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// StartDelivery hands the shipment to the assigned carrier
func (h *TransferHandler) StartDelivery(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req service.StartDeliveryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		req.EstimatedDeliveryAt = nil
	}

	transfer, err := h.transferService.StartDelivery(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// MarkDelivered records arrival at the destination
func (h *TransferHandler) MarkDelivered(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.MarkDelivered(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// ConfirmReceipt reconciles received and damaged quantities at the destination
func (h *TransferHandler) ConfirmReceipt(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req service.ConfirmReceiptDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	transfer, err := h.transferService.ConfirmReceipt(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// Cancel withdraws a pending transfer, requester only
func (h *TransferHandler) Cancel(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req service.CancelTransferDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	transfer, err := h.transferService.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// Complete retries the system-driven completion after a reconciled receipt
func (h *TransferHandler) Complete(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.Complete(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// --- helpers ---

func (h *TransferHandler) transferID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid transfer id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *TransferHandler) actorAndID(c *gin.Context) (model.Actor, uuid.UUID, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing identity context"))
		return model.Actor{}, uuid.Nil, false
	}
	id, ok := h.transferID(c)
	if !ok {
		return model.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

// writeError translates workflow errors to HTTP responses with a
// machine-readable code.
func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.ErrorCode(status, apperr.Code(err), err.Error()))
}
