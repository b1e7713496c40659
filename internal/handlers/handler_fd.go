package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type fdHandler struct {
	fdService portssvc.FDSvcFacade
}

func registerFDRoutes(rg *gin.RouterGroup, fdService portssvc.FDSvcFacade) {
	h := &fdHandler{fdService: fdService}

	rg.POST("/fd-products", h.createProduct)

	deposits := rg.Group("/fixed-deposits")
	{
		deposits.POST("", h.open)
		deposits.GET("", h.listByAccount)
		deposits.GET("/:fdID", h.get)
		deposits.POST("/:fdID/withdraw", h.withdraw)
		deposits.POST("/:fdID/premature-withdraw", h.prematureWithdraw)
		deposits.POST("/:fdID/renew", h.renew)
		deposits.POST("/:fdID/lien", h.markLien)
		deposits.DELETE("/:fdID/lien", h.removeLien)
	}
}

// createProduct godoc
// @Summary Create a fixed-deposit product
// @Description Registers lock-in, penalty, TDS and senior-citizen policy for deposits
// @Tags fixed-deposits
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param product body dto.CreateFDProductRequest true "Product policy"
// @Success 201 {object} domain.FDProduct
// @Failure 403 {object} map[string]string "Plan does not include fixed deposits"
// @Security BearerAuth
// @Router /branches/{branchID}/fd-products [post]
func (h *fdHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateFDProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	product, err := h.fdService.CreateProduct(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// listByAccount godoc
// @Summary List deposits held by a customer account
// @Tags fixed-deposits
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo query string true "FD product GL"
// @Param acNo query string true "Account number"
// @Success 200 {array} domain.FixedDeposit
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits [get]
func (h *fdHandler) listByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	glNo, acNo := c.Query("glNo"), c.Query("acNo")
	if glNo == "" || acNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "glNo and acNo are required"})
		return
	}

	deposits, err := h.fdService.ListByAccount(c.Request.Context(), p, c.Param("branchID"), glNo, acNo)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

// open godoc
// @Summary Open a fixed deposit
// @Description Funds a deposit from a customer account and issues a certificate number
// @Tags fixed-deposits
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param deposit body dto.OpenFDRequest true "Deposit parameters"
// @Success 201 {object} domain.FixedDeposit
// @Failure 403 {object} map[string]string "Plan does not include fixed deposits"
// @Failure 422 {object} map[string]string "Insufficient funds in funding account"
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits [post]
func (h *fdHandler) open(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.OpenFDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fd, err := h.fdService.Open(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, fd)
}

// get godoc
// @Summary Get a fixed deposit
// @Tags fixed-deposits
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param fdID path string true "Deposit ID"
// @Success 200 {object} domain.FixedDeposit
// @Failure 404 {object} map[string]string "Deposit not found"
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits/{fdID} [get]
func (h *fdHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	fd, err := h.fdService.Get(c.Request.Context(), p, c.Param("branchID"), c.Param("fdID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, fd)
}

// withdraw godoc
// @Summary Pay out a matured fixed deposit
// @Tags fixed-deposits
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param fdID path string true "Deposit ID"
// @Success 201 {object} dto.PostingResponse
// @Failure 409 {object} map[string]string "Deposit not matured or lien marked"
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits/{fdID}/withdraw [post]
func (h *fdHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	trxNo, err := h.fdService.Withdraw(c.Request.Context(), p, c.Param("branchID"), c.Param("fdID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// prematureWithdraw godoc
// @Summary Close a deposit before maturity
// @Description Pays interest for the months held less the premature penalty
// @Tags fixed-deposits
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param fdID path string true "Deposit ID"
// @Param request body dto.PrematureFDRequest true "Closure date and penalty override"
// @Success 201 {object} dto.PostingResponse
// @Failure 409 {object} map[string]string "Lock-in period not served"
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits/{fdID}/premature-withdraw [post]
func (h *fdHandler) prematureWithdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.PrematureFDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.fdService.PrematureWithdraw(c.Request.Context(), p, c.Param("branchID"), c.Param("fdID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// renew godoc
// @Summary Renew a matured deposit into a new instance
// @Tags fixed-deposits
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param fdID path string true "Deposit ID"
// @Param renewal body dto.RenewFDRequest true "Renewal type and new terms"
// @Success 201 {object} domain.FixedDeposit
// @Failure 409 {object} map[string]string "Deposit not renewable"
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits/{fdID}/renew [post]
func (h *fdHandler) renew(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.RenewFDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fd, err := h.fdService.Renew(c.Request.Context(), p, c.Param("branchID"), c.Param("fdID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, fd)
}

// markLien godoc
// @Summary Mark a lien on a deposit
// @Tags fixed-deposits
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param fdID path string true "Deposit ID"
// @Param lien body dto.LienRequest true "Lien amount and reference"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Manager role required"
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits/{fdID}/lien [post]
func (h *fdHandler) markLien(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.LienRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.fdService.MarkLien(c.Request.Context(), p, c.Param("branchID"), c.Param("fdID"), req); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "lien marked"})
}

// removeLien godoc
// @Summary Remove the lien from a deposit
// @Tags fixed-deposits
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param fdID path string true "Deposit ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{branchID}/fixed-deposits/{fdID}/lien [delete]
func (h *fdHandler) removeLien(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.fdService.RemoveLien(c.Request.Context(), p, c.Param("branchID"), c.Param("fdID")); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "lien removed"})
}
