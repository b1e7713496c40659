package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/koboledger/kobo/cmd/docs"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/middleware"
	"github.com/koboledger/kobo/pkg/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Register public authentication routes
	registerAuthRoutes(r, services.Auth)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Vendor-level administration sits at the group root
	registerVendorRoutes(v1, services.Vendor)

	// Everything else is branch scoped
	branch := v1.Group("/branches/:branchID")
	registerChartRoutes(branch, services.Chart)
	registerCustomerRoutes(branch, services.Customer)
	RegisterLedgerRoutes(branch, services.Ledger)
	registerSessionRoutes(branch, services.Session)
	registerLoanRoutes(branch, services.Loan)
	registerFDRoutes(branch, services.FD)
	registerMerchantRoutes(branch, services.Merchant)
	registerPendingRoutes(branch, services.Pending)
	registerReportingRoutes(branch, services.Reporting)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
