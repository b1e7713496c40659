package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

type sessionHandler struct {
	sessionService portssvc.SessionSvcFacade
}

func registerSessionRoutes(rg *gin.RouterGroup, sessionService portssvc.SessionSvcFacade) {
	h := &sessionHandler{sessionService: sessionService}

	session := rg.Group("/session")
	{
		session.GET("", h.getSession)
		session.POST("/open", h.openSession)
		session.POST("/close", h.closeSession)
		session.POST("/end-of-session", h.endOfSession)
	}
}

// getSession godoc
// @Summary Get the branch session gate
// @Tags session
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {object} domain.BranchSession
// @Security BearerAuth
// @Router /branches/{branchID}/session [get]
func (h *sessionHandler) getSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), p, c.Param("branchID"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// openSession godoc
// @Summary Open the branch session for posting
// @Tags session
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Manager role required"
// @Security BearerAuth
// @Router /branches/{branchID}/session/open [post]
func (h *sessionHandler) openSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.sessionService.OpenSession(c.Request.Context(), p, c.Param("branchID")); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "open"})
}

// closeSession godoc
// @Summary Close the branch session
// @Description Blocks all postings for the branch until reopened
// @Tags session
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Manager role required"
// @Security BearerAuth
// @Router /branches/{branchID}/session/close [post]
func (h *sessionHandler) closeSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.sessionService.CloseSession(c.Request.Context(), p, c.Param("branchID")); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// endOfSession godoc
// @Summary Run end of session and advance the business date
// @Description Optionally runs the EOS batches (deposit accrual, maturity marking), then moves the session date forward
// @Tags session
// @Accept json
// @Produce json
// @Param branchID path string true "Branch ID"
// @Param request body dto.AdvanceSessionRequest true "Next date and batch flag"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Next date not after current session date"
// @Security BearerAuth
// @Router /branches/{branchID}/session/end-of-session [post]
func (h *sessionHandler) endOfSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.AdvanceSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.sessionService.EndOfSession(c.Request.Context(), p, c.Param("branchID"), req); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "advanced", "sessionDate": req.NextDate.Format("2006-01-02")})
}
