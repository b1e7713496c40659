package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type merchantHandler struct {
	merchantService portssvc.MerchantSvcFacade
}

func registerMerchantRoutes(rg *gin.RouterGroup, merchantService portssvc.MerchantSvcFacade) {
	h := &merchantHandler{merchantService: merchantService}

	rg.POST("/merchants", h.register)

	merchants := rg.Group("/merchant-transactions")
	{
		merchants.POST("/deposits", h.deposit)
		merchants.POST("/withdrawals", h.withdraw)
	}
}

// register godoc
// @Summary Register a merchant float
// @Description Creates a merchant under the branch; requires a plan that includes merchants
// @Tags merchants
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param merchant body dto.CreateMerchantRequest true "Merchant details"
// @Success 201 {object} domain.Merchant
// @Failure 403 {object} map[string]string "Plan does not include merchants"
// @Security BearerAuth
// @Router /branches/{branchID}/merchants [post]
func (h *merchantHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	merchant, err := h.merchantService.Register(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, merchant)
}

// deposit godoc
// @Summary Merchant deposit into a customer account
// @Description Moves value from the merchant float to the customer, within the merchant's limits
// @Tags merchants
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param txn body dto.MerchantTxnRequest true "Transaction details"
// @Success 201 {object} dto.PostingResponse
// @Failure 400 {object} map[string]string "Limit exceeded"
// @Failure 422 {object} map[string]string "Float balance insufficient"
// @Security BearerAuth
// @Router /branches/{branchID}/merchant-transactions/deposits [post]
func (h *merchantHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.MerchantTxnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.merchantService.Deposit(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// withdraw godoc
// @Summary Merchant withdrawal from a customer account
// @Description Moves value from the customer to the merchant float, within the merchant's limits
// @Tags merchants
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param txn body dto.MerchantTxnRequest true "Transaction details"
// @Success 201 {object} dto.PostingResponse
// @Failure 422 {object} map[string]string "Customer balance insufficient"
// @Security BearerAuth
// @Router /branches/{branchID}/merchant-transactions/withdrawals [post]
func (h *merchantHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.MerchantTxnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.merchantService.Withdraw(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}
