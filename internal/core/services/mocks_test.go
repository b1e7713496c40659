package services_test

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock BranchRepository ---
type MockBranchRepository struct {
	mock.Mock
}

var _ portsrepo.BranchRepository = (*MockBranchRepository)(nil)

func (m *MockBranchRepository) SaveBranch(ctx context.Context, branch domain.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindBranchByCode(ctx context.Context, branchCode string) (*domain.Branch, error) {
	args := m.Called(ctx, branchCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchRepository) ListBranchesByCompany(ctx context.Context, companyID string) ([]domain.Branch, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Branch), args.Error(1)
}

// --- Mock SessionRepository ---
type MockSessionRepository struct {
	mock.Mock
}

var _ portsrepo.SessionRepository = (*MockSessionRepository)(nil)

func (m *MockSessionRepository) CreateSession(ctx context.Context, session domain.BranchSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindSession(ctx context.Context, branchID string) (*domain.BranchSession, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BranchSession), args.Error(1)
}

func (m *MockSessionRepository) SetStatus(ctx context.Context, branchID string, status domain.SessionStatus, userID string) error {
	args := m.Called(ctx, branchID, status, userID)
	return args.Error(0)
}

func (m *MockSessionRepository) AdvanceDate(ctx context.Context, branchID string, next time.Time, userID string) error {
	args := m.Called(ctx, branchID, next, userID)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByGL(ctx context.Context, branchID, glNo string) (*domain.Account, error) {
	args := m.Called(ctx, branchID, glNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByGLs(ctx context.Context, branchID string, glNos []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, branchID, glNos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, scope domain.TenantScope, branchID string) ([]domain.Account, error) {
	args := m.Called(ctx, scope, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasChildren(ctx context.Context, branchID, glNo string) (bool, error) {
	args := m.Called(ctx, branchID, glNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) IsReferenced(ctx context.Context, branchID, glNo string) (bool, error) {
	args := m.Called(ctx, branchID, glNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, branchID, glNo string) error {
	args := m.Called(ctx, branchID, glNo)
	return args.Error(0)
}

// --- Mock CustomerRepository ---
type MockCustomerRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerRepository = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindCustomer(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) (*domain.Customer, error) {
	args := m.Called(ctx, scope, branchID, glNo, acNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context, scope domain.TenantScope, branchID, glNo string) ([]domain.Customer, error) {
	args := m.Called(ctx, scope, branchID, glNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) RebuildBalance(ctx context.Context, branchID, glNo, acNo string) (decimal.Decimal, error) {
	args := m.Called(ctx, branchID, glNo, acNo)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepository = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindPostingsByTrxNo(ctx context.Context, scope domain.TenantScope, branchID, trxNo string) ([]domain.Posting, error) {
	args := m.Called(ctx, scope, branchID, trxNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

func (m *MockLedgerRepository) Balance(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, scope, branchID, glNo, acNo, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) StatementRows(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, from, to time.Time) (decimal.Decimal, []domain.StatementRow, error) {
	args := m.Called(ctx, scope, branchID, glNo, acNo, from, to)
	if args.Get(1) == nil {
		return args.Get(0).(decimal.Decimal), nil, args.Error(2)
	}
	return args.Get(0).(decimal.Decimal), args.Get(1).([]domain.StatementRow), args.Error(2)
}

func (m *MockLedgerRepository) AppendPosting(ctx context.Context, branchID string, code domain.TrxCode, userID string, legs []domain.Leg) (string, error) {
	args := m.Called(ctx, branchID, code, userID, legs)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) AppendPostingWithTrxNo(ctx context.Context, branchID, trxNo string, code domain.TrxCode, userID string, legs []domain.Leg) error {
	args := m.Called(ctx, branchID, trxNo, code, userID, legs)
	return args.Error(0)
}

func (m *MockLedgerRepository) AllocateTrxNo(ctx context.Context, branchID string, code domain.TrxCode) (string, error) {
	args := m.Called(ctx, branchID, code)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) ReverseGroup(ctx context.Context, branchID, trxNo, userID string) error {
	args := m.Called(ctx, branchID, trxNo, userID)
	return args.Error(0)
}

// --- Mock LoanRepository ---
type MockLoanRepository struct {
	mock.Mock
}

var _ portsrepo.LoanRepository = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) FindLoan(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, cycle int) (*domain.Loan, error) {
	args := m.Called(ctx, scope, branchID, glNo, acNo, cycle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListLoansByAccount(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) ([]domain.Loan, error) {
	args := m.Called(ctx, scope, branchID, glNo, acNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListLiveLoans(ctx context.Context, scope domain.TenantScope, branchIDs []string) ([]domain.Loan, error) {
	args := m.Called(ctx, scope, branchIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) NextCycle(ctx context.Context, branchID, glNo, acNo string) (int, error) {
	args := m.Called(ctx, branchID, glNo, acNo)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) ListHist(ctx context.Context, branchID, glNo, acNo string, cycle int) ([]domain.LoanHist, error) {
	args := m.Called(ctx, branchID, glNo, acNo, cycle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanHist), args.Error(1)
}

func (m *MockLoanRepository) ListDueInstallments(ctx context.Context, scope domain.TenantScope, branchIDs []string, from, to time.Time) ([]domain.ExpectedRepaymentRow, error) {
	args := m.Called(ctx, scope, branchIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpectedRepaymentRow), args.Error(1)
}

func (m *MockLoanRepository) ListProvisionBands(ctx context.Context, branchID string) ([]domain.LoanProvision, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanProvision), args.Error(1)
}

func (m *MockLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) Disburse(ctx context.Context, loan domain.Loan, legs []domain.Leg, hist []domain.LoanHist) (string, error) {
	args := m.Called(ctx, loan, legs, hist)
	return args.String(0), args.Error(1)
}

func (m *MockLoanRepository) Repay(ctx context.Context, loan domain.Loan, legs []domain.Leg, hist domain.LoanHist, code domain.TrxCode) (string, error) {
	args := m.Called(ctx, loan, legs, hist, code)
	return args.String(0), args.Error(1)
}

func (m *MockLoanRepository) ReverseDisbursement(ctx context.Context, loan domain.Loan, trxNo, userID string) error {
	args := m.Called(ctx, loan, trxNo, userID)
	return args.Error(0)
}

// --- Mock MerchantRepository ---
type MockMerchantRepository struct {
	mock.Mock
}

var _ portsrepo.MerchantRepository = (*MockMerchantRepository)(nil)

func (m *MockMerchantRepository) SaveMerchant(ctx context.Context, merchant domain.Merchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) FindMerchant(ctx context.Context, scope domain.TenantScope, branchID, merchantID string) (*domain.Merchant, error) {
	args := m.Called(ctx, scope, branchID, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) SumCompletedForDay(ctx context.Context, merchantID string, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, merchantID, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMerchantRepository) SaveTransactionWithLegs(ctx context.Context, trx domain.MerchantTransaction, legs []domain.Leg) (string, error) {
	args := m.Called(ctx, trx, legs)
	return args.String(0), args.Error(1)
}

// --- Mock PendingRepository ---
type MockPendingRepository struct {
	mock.Mock
}

var _ portsrepo.PendingRepository = (*MockPendingRepository)(nil)

func (m *MockPendingRepository) SavePending(ctx context.Context, pending domain.PendingTransaction) error {
	args := m.Called(ctx, pending)
	return args.Error(0)
}

func (m *MockPendingRepository) FindPendingByID(ctx context.Context, scope domain.TenantScope, branchID, pendingID string) (*domain.PendingTransaction, error) {
	args := m.Called(ctx, scope, branchID, pendingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingTransaction), args.Error(1)
}

func (m *MockPendingRepository) ListPending(ctx context.Context, scope domain.TenantScope, branchID string, status domain.PendingStatus) ([]domain.PendingTransaction, error) {
	args := m.Called(ctx, scope, branchID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingTransaction), args.Error(1)
}

func (m *MockPendingRepository) UpdatePendingStatus(ctx context.Context, pendingID string, status domain.PendingStatus, reason, checkerID string, decidedAt time.Time) error {
	args := m.Called(ctx, pendingID, status, reason, checkerID, decidedAt)
	return args.Error(0)
}

// --- Mock FDRepository ---
type MockFDRepository struct {
	mock.Mock
}

var _ portsrepo.FDRepository = (*MockFDRepository)(nil)

func (m *MockFDRepository) FindDeposit(ctx context.Context, scope domain.TenantScope, branchID, fdID string) (*domain.FixedDeposit, error) {
	args := m.Called(ctx, scope, branchID, fdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FixedDeposit), args.Error(1)
}

func (m *MockFDRepository) ListDepositsByAccount(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) ([]domain.FixedDeposit, error) {
	args := m.Called(ctx, scope, branchID, glNo, acNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FixedDeposit), args.Error(1)
}

func (m *MockFDRepository) NextDepositCycle(ctx context.Context, branchID, glNo, acNo string) (int, error) {
	args := m.Called(ctx, branchID, glNo, acNo)
	return args.Int(0), args.Error(1)
}

func (m *MockFDRepository) ListActiveDeposits(ctx context.Context, branchID string) ([]domain.FixedDeposit, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FixedDeposit), args.Error(1)
}

func (m *MockFDRepository) FindProduct(ctx context.Context, branchID, productID string) (*domain.FDProduct, error) {
	args := m.Called(ctx, branchID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FDProduct), args.Error(1)
}

func (m *MockFDRepository) LastAccrual(ctx context.Context, fdID string) (*domain.FDInterestAccrual, error) {
	args := m.Called(ctx, fdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FDInterestAccrual), args.Error(1)
}

func (m *MockFDRepository) OpenDeposit(ctx context.Context, fd domain.FixedDeposit, legs []domain.Leg) (string, error) {
	args := m.Called(ctx, fd, legs)
	return args.String(0), args.Error(1)
}

func (m *MockFDRepository) CloseDeposit(ctx context.Context, fd domain.FixedDeposit, legs []domain.Leg, code domain.TrxCode) (string, error) {
	args := m.Called(ctx, fd, legs, code)
	return args.String(0), args.Error(1)
}

func (m *MockFDRepository) UpdateDeposit(ctx context.Context, fd domain.FixedDeposit) error {
	args := m.Called(ctx, fd)
	return args.Error(0)
}

func (m *MockFDRepository) SaveAccrual(ctx context.Context, accrual domain.FDInterestAccrual) error {
	args := m.Called(ctx, accrual)
	return args.Error(0)
}

func (m *MockFDRepository) SaveRenewal(ctx context.Context, hist domain.FDRenewalHistory) error {
	args := m.Called(ctx, hist)
	return args.Error(0)
}

func (m *MockFDRepository) SaveProduct(ctx context.Context, product domain.FDProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockFDRepository) MarkMatured(ctx context.Context, branchID string, asOf time.Time) (int, error) {
	args := m.Called(ctx, branchID, asOf)
	return args.Int(0), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, scope domain.TenantScope, branchID string, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, scope, branchID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetTillRows(ctx context.Context, scope domain.TenantScope, filter portsrepo.JournalFilter) ([]domain.TillRow, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TillRow), args.Error(1)
}

func (m *MockReportingRepository) GetLoanOutstanding(ctx context.Context, scope domain.TenantScope, branchID string, asOf time.Time) ([]domain.LoanOutstandingRow, error) {
	args := m.Called(ctx, scope, branchID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanOutstandingRow), args.Error(1)
}

// --- Mock LedgerSvcFacade (used by the merchant service) ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) Post(ctx context.Context, p domain.Principal, branchID string, code domain.TrxCode, legs []domain.Leg) (string, error) {
	args := m.Called(ctx, p, branchID, code, legs)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) PostJournal(ctx context.Context, p domain.Principal, branchID string, req dto.PostJournalRequest) (string, error) {
	args := m.Called(ctx, p, branchID, req)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) Balance(ctx context.Context, p domain.Principal, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, p, branchID, glNo, acNo, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) Statement(ctx context.Context, p domain.Principal, branchID string, req dto.StatementRequest) (*domain.Statement, error) {
	args := m.Called(ctx, p, branchID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}

func (m *MockLedgerService) Reverse(ctx context.Context, p domain.Principal, branchID, trxNo string) error {
	args := m.Called(ctx, p, branchID, trxNo)
	return args.Error(0)
}

func (m *MockLedgerService) GetPostings(ctx context.Context, p domain.Principal, branchID, trxNo string) ([]domain.Posting, error) {
	args := m.Called(ctx, p, branchID, trxNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

// --- Mock FDSvcFacade (used by the session service EOS batches) ---
type MockFDService struct {
	mock.Mock
}

var _ portssvc.FDSvcFacade = (*MockFDService)(nil)

func (m *MockFDService) CreateProduct(ctx context.Context, p domain.Principal, branchID string, req dto.CreateFDProductRequest) (*domain.FDProduct, error) {
	args := m.Called(ctx, p, branchID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FDProduct), args.Error(1)
}

func (m *MockFDService) ListByAccount(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) ([]domain.FixedDeposit, error) {
	args := m.Called(ctx, p, branchID, glNo, acNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FixedDeposit), args.Error(1)
}

func (m *MockFDService) Open(ctx context.Context, p domain.Principal, branchID string, req dto.OpenFDRequest) (*domain.FixedDeposit, error) {
	args := m.Called(ctx, p, branchID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FixedDeposit), args.Error(1)
}

func (m *MockFDService) Get(ctx context.Context, p domain.Principal, branchID, fdID string) (*domain.FixedDeposit, error) {
	args := m.Called(ctx, p, branchID, fdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FixedDeposit), args.Error(1)
}

func (m *MockFDService) Withdraw(ctx context.Context, p domain.Principal, branchID, fdID string) (string, error) {
	args := m.Called(ctx, p, branchID, fdID)
	return args.String(0), args.Error(1)
}

func (m *MockFDService) PrematureWithdraw(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.PrematureFDRequest) (string, error) {
	args := m.Called(ctx, p, branchID, fdID, req)
	return args.String(0), args.Error(1)
}

func (m *MockFDService) Renew(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.RenewFDRequest) (*domain.FixedDeposit, error) {
	args := m.Called(ctx, p, branchID, fdID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FixedDeposit), args.Error(1)
}

func (m *MockFDService) MarkLien(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.LienRequest) error {
	args := m.Called(ctx, p, branchID, fdID, req)
	return args.Error(0)
}

func (m *MockFDService) RemoveLien(ctx context.Context, p domain.Principal, branchID, fdID string) error {
	args := m.Called(ctx, p, branchID, fdID)
	return args.Error(0)
}

func (m *MockFDService) AccrueDaily(ctx context.Context, branchID string, sesDate time.Time) (int, error) {
	args := m.Called(ctx, branchID, sesDate)
	return args.Int(0), args.Error(1)
}

func (m *MockFDService) MarkMatured(ctx context.Context, branchID string, sesDate time.Time) (int, error) {
	args := m.Called(ctx, branchID, sesDate)
	return args.Int(0), args.Error(1)
}

// --- Stub Notifier ---
type stubNotifier struct {
	events []string
}

func (n *stubNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	n.events = append(n.events, event)
}
