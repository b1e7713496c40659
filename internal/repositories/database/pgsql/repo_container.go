package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository to its pool. Company, branch
// and user data live in the vendor database; everything transactional lives
// in the client database.
func NewRepositoryProvider(vendorPool, clientPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CompanyRepo:   newPgxCompanyRepository(vendorPool),
		BranchRepo:    newPgxBranchRepository(vendorPool),
		UserRepo:      newPgxUserRepository(vendorPool),
		SessionRepo:   newPgxSessionRepository(clientPool),
		AccountRepo:   newPgxAccountRepository(clientPool),
		CustomerRepo:  newPgxCustomerRepository(clientPool),
		LedgerRepo:    newPgxLedgerRepository(clientPool),
		LoanRepo:      newPgxLoanRepository(clientPool),
		FDRepo:        newPgxFDRepository(clientPool),
		MerchantRepo:  newPgxMerchantRepository(clientPool),
		PendingRepo:   newPgxPendingRepository(clientPool),
		ReportingRepo: newPgxReportingRepository(clientPool),
	}
}
