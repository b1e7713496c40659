package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// RegisterLedgerRoutes registers the posting endpoints on a branch group.
// Exported so the handler tests can mount it on a bare router.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &ledgerHandler{ledgerService: ledgerService}

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/journals", h.postJournal)
		ledger.GET("/balance", h.balance)
		ledger.GET("/statement", h.statement)
		ledger.GET("/postings/:trxNo", h.getPostings)
		ledger.POST("/postings/:trxNo/reverse", h.reverse)
	}
}

// postJournal godoc
// @Summary Post a general journal
// @Description Appends a balanced multi-leg posting group under code GL
// @Tags ledger
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param journal body dto.PostJournalRequest true "Journal legs, signed amounts summing to zero"
// @Success 201 {object} dto.PostingResponse
// @Failure 400 {object} map[string]string "Legs do not balance"
// @Failure 409 {object} map[string]string "Branch session closed"
// @Security BearerAuth
// @Router /branches/{branchID}/ledger/journals [post]
func (h *ledgerHandler) postJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.ledgerService.PostJournal(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// balance godoc
// @Summary Account balance as of a date
// @Tags ledger
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo query string true "GL number"
// @Param acNo query string false "Account number, empty for GL total"
// @Param asOf query string false "Date (2006-01-02), defaults to now"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{branchID}/ledger/balance [get]
func (h *ledgerHandler) balance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	glNo := c.Query("glNo")
	if glNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "glNo is required"})
		return
	}
	var asOf time.Time
	if v := c.Query("asOf"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be formatted 2006-01-02"})
			return
		}
		asOf = parsed
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), p, c.Param("branchID"), glNo, c.Query("acNo"), asOf)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"glNo": glNo, "acNo": c.Query("acNo"), "balance": balance})
}

// statement godoc
// @Summary Statement of account over a date range
// @Tags ledger
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo query string true "GL number"
// @Param acNo query string true "Account number"
// @Param from query string true "Start date (2006-01-02)"
// @Param to query string true "End date (2006-01-02)"
// @Success 200 {object} domain.Statement
// @Security BearerAuth
// @Router /branches/{branchID}/ledger/statement [get]
func (h *ledgerHandler) statement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.StatementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	statement, err := h.ledgerService.Statement(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

// getPostings godoc
// @Summary List the legs of a posting group
// @Tags ledger
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param trxNo path string true "Transaction number"
// @Success 200 {array} domain.Posting
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /branches/{branchID}/ledger/postings/{trxNo} [get]
func (h *ledgerHandler) getPostings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	postings, err := h.ledgerService.GetPostings(c.Request.Context(), p, c.Param("branchID"), c.Param("trxNo"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, postings)
}

// reverse godoc
// @Summary Reverse a posting group
// @Description Flips every leg of the group to reversed; repeating the call is a no-op
// @Tags ledger
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param trxNo path string true "Transaction number"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Group belongs to an earlier session date"
// @Security BearerAuth
// @Router /branches/{branchID}/ledger/postings/{trxNo}/reverse [post]
func (h *ledgerHandler) reverse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	trxNo := c.Param("trxNo")
	if err := h.ledgerService.Reverse(c.Request.Context(), p, c.Param("branchID"), trxNo); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trxNo": trxNo, "status": "reversed"})
}
