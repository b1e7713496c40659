package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := &loanHandler{loanService: loanService}

	loans := rg.Group("/loans")
	{
		loans.POST("", h.apply)
		loans.GET("", h.listLive)
		key := loans.Group("/:glNo/:acNo/:cycle")
		{
			key.GET("", h.get)
			key.PUT("", h.modify)
			key.POST("/approve", h.approve)
			key.POST("/reject", h.reject)
			key.POST("/reverse-approval", h.reverseApproval)
			key.POST("/disburse", h.disburse)
			key.POST("/repay", h.repay)
			key.POST("/write-off", h.writeOff)
			key.POST("/reverse-disbursement", h.reverseDisbursement)
			key.GET("/schedule", h.schedule)
			key.GET("/history", h.history)
			key.GET("/arrears", h.arrears)
		}
	}
}

func loanKeyFromPath(c *gin.Context) (dto.LoanKey, bool) {
	cycle, err := strconv.Atoi(c.Param("cycle"))
	if err != nil || cycle < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cycle must be a positive integer"})
		return dto.LoanKey{}, false
	}
	return dto.LoanKey{GLNo: c.Param("glNo"), AcNo: c.Param("acNo"), Cycle: cycle}, true
}

// apply godoc
// @Summary Apply for a loan
// @Description Opens a loan application in pending state; the cycle is allocated automatically
// @Tags loans
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param loan body dto.ApplyLoanRequest true "Loan parameters"
// @Success 201 {object} domain.Loan
// @Failure 400 {object} map[string]string "Parameters cannot be amortised"
// @Failure 409 {object} map[string]string "A previous cycle is still open"
// @Security BearerAuth
// @Router /branches/{branchID}/loans [post]
func (h *loanHandler) apply(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	loan, err := h.loanService.Apply(c.Request.Context(), p, c.Param("branchID"), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// listLive godoc
// @Summary List live loans
// @Description Returns the approved and disbursed loans of the branch
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {array} domain.Loan
// @Security BearerAuth
// @Router /branches/{branchID}/loans [get]
func (h *loanHandler) listLive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	loans, err := h.loanService.ListLive(c.Request.Context(), p, c.Param("branchID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

// get godoc
// @Summary Get a loan
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Success 200 {object} domain.Loan
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle} [get]
func (h *loanHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}

	loan, err := h.loanService.Get(c.Request.Context(), p, c.Param("branchID"), key)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// modify godoc
// @Summary Modify a pending loan application
// @Tags loans
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Param changes body dto.ModifyLoanRequest true "Fields to change"
// @Success 200 {object} domain.Loan
// @Failure 409 {object} map[string]string "Loan is no longer modifiable"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle} [put]
func (h *loanHandler) modify(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}
	var req dto.ModifyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	loan, err := h.loanService.Modify(c.Request.Context(), p, c.Param("branchID"), key, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// approve godoc
// @Summary Approve a pending loan
// @Tags loans
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Param approval body dto.ApproveLoanRequest true "Approval date"
// @Success 200 {object} domain.Loan
// @Failure 403 {object} map[string]string "Manager role required"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/approve [post]
func (h *loanHandler) approve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}
	var req dto.ApproveLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	loan, err := h.loanService.Approve(c.Request.Context(), p, c.Param("branchID"), key, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// reject godoc
// @Summary Reject a pending loan
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Success 200 {object} domain.Loan
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/reject [post]
func (h *loanHandler) reject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}

	loan, err := h.loanService.Reject(c.Request.Context(), p, c.Param("branchID"), key)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// reverseApproval godoc
// @Summary Return an approved undisbursed loan to pending
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Success 200 {object} domain.Loan
// @Failure 409 {object} map[string]string "Loan already disbursed"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/reverse-approval [post]
func (h *loanHandler) reverseApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}

	loan, err := h.loanService.ReverseApproval(c.Request.Context(), p, c.Param("branchID"), key)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// disburse godoc
// @Summary Disburse an approved loan
// @Description Books the full schedule interest and pays net cash through the till
// @Tags loans
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Param disbursement body dto.DisburseLoanRequest true "Till, fee, VAT, date"
// @Success 201 {object} dto.PostingResponse
// @Failure 400 {object} map[string]string "Product GL bindings missing"
// @Failure 409 {object} map[string]string "Branch session closed or loan not approved"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/disburse [post]
func (h *loanHandler) disburse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}
	var req dto.DisburseLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.loanService.Disburse(c.Request.Context(), p, c.Param("branchID"), key, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// repay godoc
// @Summary Record a loan repayment
// @Tags loans
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Param repayment body dto.RepayLoanRequest true "Repayment split"
// @Success 201 {object} dto.PostingResponse
// @Failure 400 {object} map[string]string "Split exceeds outstanding exposure"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/repay [post]
func (h *loanHandler) repay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}
	var req dto.RepayLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.loanService.Repay(c.Request.Context(), p, c.Param("branchID"), key, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// writeOff godoc
// @Summary Write off a live loan
// @Tags loans
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Param writeOff body dto.WriteOffLoanRequest true "Write-off split"
// @Success 201 {object} dto.PostingResponse
// @Failure 403 {object} map[string]string "Manager role required"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/write-off [post]
func (h *loanHandler) writeOff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}
	var req dto.WriteOffLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trxNo, err := h.loanService.WriteOff(c.Request.Context(), p, c.Param("branchID"), key, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostingResponse{TrxNo: trxNo})
}

// reverseDisbursement godoc
// @Summary Reverse a same-day disbursement
// @Description Flips the disbursement group, removes the booked schedule and returns the loan to approved
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string "Repayments already posted"
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/reverse-disbursement [post]
func (h *loanHandler) reverseDisbursement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}

	if err := h.loanService.ReverseDisbursement(c.Request.Context(), p, c.Param("branchID"), key); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reversed"})
}

// schedule godoc
// @Summary Amortisation schedule of a loan
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Success 200 {array} dto.ScheduleRow
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/schedule [get]
func (h *loanHandler) schedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}

	rows, err := h.loanService.Schedule(c.Request.Context(), p, c.Param("branchID"), key)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// history godoc
// @Summary Expected and paid installment history of a loan
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Success 200 {array} domain.LoanHist
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/history [get]
func (h *loanHandler) history(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}

	hist, err := h.loanService.History(c.Request.Context(), p, c.Param("branchID"), key)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// arrears godoc
// @Summary Days overdue and arrears bucket of a loan
// @Tags loans
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param glNo path string true "Loan product GL"
// @Param acNo path string true "Customer account number"
// @Param cycle path int true "Loan cycle"
// @Param asOf query string false "Date (2006-01-02), defaults to today"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{branchID}/loans/{glNo}/{acNo}/{cycle}/arrears [get]
func (h *loanHandler) arrears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	key, ok := loanKeyFromPath(c)
	if !ok {
		return
	}
	asOf := time.Now().UTC()
	if v := c.Query("asOf"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be formatted 2006-01-02"})
			return
		}
		asOf = parsed
	}

	days, bucket, err := h.loanService.DaysOverdue(c.Request.Context(), p, c.Param("branchID"), key, asOf)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daysOverdue": days, "bucket": bucket})
}
