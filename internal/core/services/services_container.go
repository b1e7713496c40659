package services

import (
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/pkg/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.Notifier) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Tenant scope resolution first, everything downstream depends on it.
	container.Tenant = NewTenantService(repos.BranchRepo)

	container.Auth = NewAuthService(repos.UserRepo, repos.BranchRepo, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration)
	container.Chart = NewChartService(repos.AccountRepo, container.Tenant)
	container.Vendor = NewVendorService(repos.CompanyRepo, repos.BranchRepo, repos.SessionRepo, repos.CustomerRepo, container.Chart)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.SessionRepo, repos.AccountRepo, container.Tenant)
	container.Customer = NewCustomerService(repos.CustomerRepo, repos.AccountRepo, container.Ledger, container.Tenant, notifier)
	container.Loan = NewLoanService(repos.LoanRepo, repos.AccountRepo, repos.CustomerRepo, repos.SessionRepo, container.Tenant, notifier)
	container.FD = NewFDService(repos.FDRepo, repos.AccountRepo, repos.BranchRepo, repos.SessionRepo, container.Ledger, container.Tenant, notifier)
	container.Session = NewSessionService(repos.SessionRepo, container.Tenant, container.FD)
	container.Merchant = NewMerchantService(repos.MerchantRepo, repos.BranchRepo, repos.SessionRepo, container.Ledger, container.Tenant)
	container.Pending = NewPendingService(repos.PendingRepo, repos.LedgerRepo, repos.SessionRepo, repos.AccountRepo, container.Tenant)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.LoanRepo, container.Tenant)

	return container
}
