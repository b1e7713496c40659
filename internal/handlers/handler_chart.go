package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type chartHandler struct {
	chartService portssvc.ChartSvcFacade
}

func registerChartRoutes(rg *gin.RouterGroup, chartService portssvc.ChartSvcFacade) {
	h := &chartHandler{chartService: chartService}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:glNo", h.getAccount)
		accounts.PUT("/:glNo", h.updateAccount)
		accounts.DELETE("/:glNo", h.deleteAccount)
	}
}

// createAccount godoc
// @Summary Create a chart of accounts entry
// @Tags accounts
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} domain.Account
// @Failure 400 {object} map[string]string "Invalid GL number or type mismatch"
// @Failure 409 {object} map[string]string "GL number or name already taken"
// @Security BearerAuth
// @Router /branches/{branchID}/accounts [post]
func (h *chartHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.chartService.CreateAccount(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// listAccounts godoc
// @Summary List the chart of accounts of a branch
// @Tags accounts
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {array} domain.Account
// @Security BearerAuth
// @Router /branches/{branchID}/accounts [get]
func (h *chartHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	accounts, err := h.chartService.ListAccounts(c.Request.Context(), p, c.Param("branchID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// getAccount godoc
// @Summary Get one GL account
// @Tags accounts
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "GL number"
// @Success 200 {object} domain.Account
// @Failure 404 {object} map[string]string "GL not found"
// @Security BearerAuth
// @Router /branches/{branchID}/accounts/{glNo} [get]
func (h *chartHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	account, err := h.chartService.GetAccount(c.Request.Context(), p, c.Param("branchID"), c.Param("glNo"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// updateAccount godoc
// @Summary Update a GL account
// @Description Renames or rebinds a GL; refused once the GL is referenced by postings
// @Tags accounts
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "GL number"
// @Param account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} domain.Account
// @Failure 409 {object} map[string]string "GL is referenced"
// @Security BearerAuth
// @Router /branches/{branchID}/accounts/{glNo} [put]
func (h *chartHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.chartService.UpdateAccount(c.Request.Context(), p, c.Param("branchID"), c.Param("glNo"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// deleteAccount godoc
// @Summary Delete a GL account
// @Description Removes an unreferenced leaf GL
// @Tags accounts
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "GL number"
// @Success 204
// @Failure 409 {object} map[string]string "GL has children or is referenced"
// @Security BearerAuth
// @Router /branches/{branchID}/accounts/{glNo} [delete]
func (h *chartHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.chartService.DeleteAccount(c.Request.Context(), p, c.Param("branchID"), c.Param("glNo")); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
