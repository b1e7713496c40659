package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type customerHandler struct {
	customerService portssvc.CustomerSvcFacade
}

func registerCustomerRoutes(rg *gin.RouterGroup, customerService portssvc.CustomerSvcFacade) {
	h := &customerHandler{customerService: customerService}

	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("", h.listCustomers)
		customers.GET("/:glNo/:acNo", h.getCustomer)
		customers.PUT("/:glNo/:acNo", h.updateCustomer)
		customers.POST("/:glNo/:acNo/rebuild-balance", h.rebuildBalance)
	}
	rg.POST("/deposits", h.deposit)
	rg.POST("/withdrawals", h.withdraw)
}

// createCustomer godoc
// @Summary Register a customer account
// @Description Creates a customer under a GL; the account number is allocated sequentially
// @Tags customers
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} domain.Customer
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "GL not found"
// @Security BearerAuth
// @Router /branches/{branchID}/customers [post]
func (h *customerHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// listCustomers godoc
// @Summary List customer accounts
// @Tags customers
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo query string false "Restrict to one GL"
// @Success 200 {array} domain.Customer
// @Security BearerAuth
// @Router /branches/{branchID}/customers [get]
func (h *customerHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	customers, err := h.customerService.ListCustomers(c.Request.Context(), p, c.Param("branchID"), c.Query("glNo"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// updateCustomer godoc
// @Summary Update customer contact details
// @Tags customers
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "GL number"
// @Param acNo path string true "Account number"
// @Param customer body dto.UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} map[string]string "Customer not found"
// @Security BearerAuth
// @Router /branches/{branchID}/customers/{glNo}/{acNo} [put]
func (h *customerHandler) updateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), p, c.Param("branchID"), c.Param("glNo"), c.Param("acNo"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// getCustomer godoc
// @Summary Get a customer account
// @Tags customers
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "GL number"
// @Param acNo path string true "Account number"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} map[string]string "Customer not found"
// @Security BearerAuth
// @Router /branches/{branchID}/customers/{glNo}/{acNo} [get]
func (h *customerHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), p, c.Param("branchID"), c.Param("glNo"), c.Param("acNo"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// rebuildBalance godoc
// @Summary Rebuild a customer balance cache from the ledger
// @Tags customers
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "GL number"
// @Param acNo path string true "Account number"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{branchID}/customers/{glNo}/{acNo}/rebuild-balance [post]
func (h *customerHandler) rebuildBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	balance, err := h.customerService.RebuildBalance(c.Request.Context(), p, c.Param("branchID"), c.Param("glNo"), c.Param("acNo"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// deposit godoc
// @Summary Deposit cash into a customer account
// @Description Posts a balanced customer/till pair under code DP
// @Tags customers
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param txn body dto.CashTxnRequest true "Deposit details"
// @Success 201 {object} dto.PostingResponse
// @Failure 409 {object} map[string]string "Branch session closed"
// @Security BearerAuth
// @Router /branches/{branchID}/deposits [post]
func (h *customerHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CashTxnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.customerService.Deposit(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// withdraw godoc
// @Summary Withdraw cash from a customer account
// @Description Posts a balanced customer/till pair under code WD; refused when funds are insufficient
// @Tags customers
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param txn body dto.CashTxnRequest true "Withdrawal details"
// @Success 201 {object} dto.PostingResponse
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /branches/{branchID}/withdrawals [post]
func (h *customerHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CashTxnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.customerService.Withdraw(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}
