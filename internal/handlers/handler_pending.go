package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/koboledger/kobo/internal/core/domain"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type pendingHandler struct {
	pendingService portssvc.PendingSvcFacade
}

func registerPendingRoutes(rg *gin.RouterGroup, pendingService portssvc.PendingSvcFacade) {
	h := &pendingHandler{pendingService: pendingService}

	pending := rg.Group("/pending-transactions")
	{
		pending.POST("", h.submit)
		pending.GET("", h.list)
		pending.POST("/:pendingID/approve", h.approve)
		pending.POST("/:pendingID/reject", h.reject)
	}
}

// submit godoc
// @Summary Stage a transaction for approval
// @Description Captures a balanced leg group under a reserved transaction number, pending checker review
// @Tags pending
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param txn body dto.SubmitPendingRequest true "Staged transaction"
// @Success 201 {object} domain.PendingTransaction
// @Failure 400 {object} map[string]string "Legs do not balance"
// @Security BearerAuth
// @Router /branches/{branchID}/pending-transactions [post]
func (h *pendingHandler) submit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.SubmitPendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pt, err := h.pendingService.Submit(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, pt)
}

// list godoc
// @Summary List staged transactions
// @Tags pending
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param status query string false "Filter by status (PENDING, APPROVED, REJECTED)"
// @Success 200 {array} domain.PendingTransaction
// @Security BearerAuth
// @Router /branches/{branchID}/pending-transactions [get]
func (h *pendingHandler) list(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	status := domain.PendingStatus(c.Query("status"))
	items, err := h.pendingService.List(c.Request.Context(), p, c.Param("branchID"), status)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// approve godoc
// @Summary Approve a staged transaction
// @Description Posts the staged legs to the ledger under the reserved transaction number
// @Tags pending
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param pendingID path string true "Pending transaction ID"
// @Success 200 {object} domain.PendingTransaction
// @Failure 403 {object} map[string]string "Checker may not approve own submission"
// @Failure 409 {object} map[string]string "Already decided"
// @Security BearerAuth
// @Router /branches/{branchID}/pending-transactions/{pendingID}/approve [post]
func (h *pendingHandler) approve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	pt, err := h.pendingService.Approve(c.Request.Context(), p, c.Param("branchID"), c.Param("pendingID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

// reject godoc
// @Summary Reject a staged transaction
// @Tags pending
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param pendingID path string true "Pending transaction ID"
// @Param rejection body dto.RejectPendingRequest true "Rejection reason"
// @Success 200 {object} domain.PendingTransaction
// @Failure 409 {object} map[string]string "Already decided"
// @Security BearerAuth
// @Router /branches/{branchID}/pending-transactions/{pendingID}/reject [post]
func (h *pendingHandler) reject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.RejectPendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pt, err := h.pendingService.Reject(c.Request.Context(), p, c.Param("branchID"), c.Param("pendingID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}
