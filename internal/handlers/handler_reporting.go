package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/middleware"
)

type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/profit-and-loss", h.profitAndLoss)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/till-sheet", h.tillSheet)
		reports.GET("/loan-outstanding", h.loanOutstanding)
		reports.GET("/par", h.par)
		reports.GET("/expected-repayments", h.expectedRepayments)
	}
}

// dateRange parses the from/to query parameters. A missing from defaults to
// the zero time, a missing to defaults to today.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error
	if s := c.Query("from"); s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return from, to, false
		}
	}
	if s := c.Query("to"); s != "" {
		to, err = time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return from, to, false
		}
	} else {
		to = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return from, to, true
}

func asOfDate(c *gin.Context) (time.Time, bool) {
	if s := c.Query("asOf"); s != "" {
		asOf, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
			return time.Time{}, false
		}
		return asOf, true
	}
	return time.Now().UTC().Truncate(24 * time.Hour), true
}

// trialBalance godoc
// @Summary Trial balance
// @Description Per-GL debit and credit totals over the period, with group subtotals
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.TrialBalance
// @Security BearerAuth
// @Router /branches/{branchID}/reports/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), p, c.Param("branchID"), from, to)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// profitAndLoss godoc
// @Summary Profit and loss statement
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.PAndLReport
// @Security BearerAuth
// @Router /branches/{branchID}/reports/profit-and-loss [get]
func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), p, c.Param("branchID"), from, to)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// balanceSheet godoc
// @Summary Balance sheet
// @Description Assets against liabilities and equity, with retained earnings folded in
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.BalanceSheetReport
// @Security BearerAuth
// @Router /branches/{branchID}/reports/balance-sheet [get]
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), p, c.Param("branchID"), from, to)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// tillSheet godoc
// @Summary Till sheet
// @Description Journal listing with running totals, optionally narrowed by teller or transaction code
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param userID query string false "Filter by posting user"
// @Param code query string false "Filter by transaction code"
// @Param byAppDate query bool false "Filter on application date instead of session date"
// @Success 200 {object} domain.TillSheet
// @Security BearerAuth
// @Router /branches/{branchID}/reports/till-sheet [get]
func (h *reportingHandler) tillSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	filter := portsrepo.JournalFilter{
		BranchID:  c.Param("branchID"),
		UserID:    c.Query("userID"),
		Code:      domain.TrxCode(c.Query("code")),
		From:      from,
		To:        to,
		ByAppDate: c.Query("byAppDate") == "true",
	}
	report, err := h.reportingService.TillSheet(c.Request.Context(), p, filter)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// loanOutstanding godoc
// @Summary Loan outstanding report
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param asOf query string false "Reporting date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} domain.LoanOutstandingRow
// @Security BearerAuth
// @Router /branches/{branchID}/reports/loan-outstanding [get]
func (h *reportingHandler) loanOutstanding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.LoanOutstanding(c.Request.Context(), p, c.Param("branchID"), asOf)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// par godoc
// @Summary Portfolio at risk
// @Description Outstanding exposure grouped into provisioning bands by days overdue
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param asOf query string false "Reporting date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.PARReport
// @Security BearerAuth
// @Router /branches/{branchID}/reports/par [get]
func (h *reportingHandler) par(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}

	report, err := h.reportingService.PAR(c.Request.Context(), p, c.Param("branchID"), asOf)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// expectedRepayments godoc
// @Summary Expected repayments
// @Description Scheduled installments falling due in the window
// @Tags reports
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} domain.ExpectedRepaymentRow
// @Security BearerAuth
// @Router /branches/{branchID}/reports/expected-repayments [get]
func (h *reportingHandler) expectedRepayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.ExpectedRepayments(c.Request.Context(), p, c.Param("branchID"), from, to)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
