package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
// Vendor-database repositories (company, branch, user) and client-database
// repositories live side by side; they are backed by different pools.
type RepositoryProvider struct {
	CompanyRepo   CompanyRepository
	BranchRepo    BranchRepository
	UserRepo      UserRepository
	SessionRepo   SessionRepository
	AccountRepo   AccountRepository
	CustomerRepo  CustomerRepository
	LedgerRepo    LedgerRepository
	LoanRepo      LoanRepository
	FDRepo        FDRepository
	MerchantRepo  MerchantRepository
	PendingRepo   PendingRepository
	ReportingRepo ReportingRepository
}
