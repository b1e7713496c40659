package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type vendorHandler struct {
	vendorService portssvc.VendorSvcFacade
}

func registerVendorRoutes(rg *gin.RouterGroup, vendorService portssvc.VendorSvcFacade) {
	h := &vendorHandler{vendorService: vendorService}

	rg.POST("/companies", h.createCompany)
	rg.POST("/branches", h.createBranch)
	rg.GET("/branches/:branchID", h.getBranch)
}

// createCompany godoc
// @Summary Register a company
// @Description Creates a tenant group under which branches are licensed
// @Tags vendor
// @Accept json
// @Produce json
// @Param company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} domain.Company
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not a vendor admin"
// @Security BearerAuth
// @Router /companies [post]
func (h *vendorHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	company, err := h.vendorService.CreateCompany(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

// createBranch godoc
// @Summary Register a branch
// @Description Creates a branch, opens its session row and seeds the default chart of accounts
// @Tags vendor
// @Accept json
// @Produce json
// @Param branch body dto.CreateBranchRequest true "Branch details"
// @Success 201 {object} domain.Branch
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not a vendor admin"
// @Failure 409 {object} map[string]string "Branch code already taken"
// @Security BearerAuth
// @Router /branches [post]
func (h *vendorHandler) createBranch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	branch, err := h.vendorService.CreateBranch(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

// getBranch godoc
// @Summary Get a branch
// @Tags vendor
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {object} domain.Branch
// @Failure 404 {object} map[string]string "Branch not found"
// @Security BearerAuth
// @Router /branches/{branchID} [get]
func (h *vendorHandler) getBranch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	branch, err := h.vendorService.GetBranch(c.Request.Context(), p, c.Param("branchID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}
