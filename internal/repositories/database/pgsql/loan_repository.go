package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
)

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates the client-database loan repository.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepository {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LoanRepository = (*PgxLoanRepository)(nil)

const loanColumns = `
	loan_id, branch_id, gl_no, ac_no, cycle, loan_amount, interest_rate,
	num_install, payment_freq, interest_method, appli_date, approval_date,
	disbursement_date, loan_officer, business_sector, approval_status,
	disb_status, total_loan, total_interest, cust_gl_no,
	created_at, created_by, last_updated_at, last_updated_by`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	err := row.Scan(
		&l.LoanID, &l.BranchID, &l.GLNo, &l.AcNo, &l.Cycle, &l.LoanAmount, &l.InterestRate,
		&l.NumInstall, &l.PaymentFreq, &l.InterestMethod, &l.AppliDate, &l.ApprovalDate,
		&l.DisbursementDate, &l.LoanOfficer, &l.BusinessSector, &l.ApprovalStatus,
		&l.DisbStatus, &l.TotalLoan, &l.TotalInterest, &l.CustGLNo,
		&l.CreatedAt, &l.CreatedBy, &l.LastUpdatedAt, &l.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLoans(rows pgx.Rows) ([]domain.Loan, error) {
	defer rows.Close()
	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan", err)
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read loans", err)
	}
	return loans, nil
}

func (r *PgxLoanRepository) FindLoan(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, cycle int) (*domain.Loan, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + loanColumns + ` FROM loans WHERE branch_id = $1 AND gl_no = $2 AND ac_no = $3 AND cycle = $4;`
	loan, err := scanLoan(r.Pool.QueryRow(ctx, query, branchID, glNo, acNo, cycle))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: loan %s/%s cycle %d", apperrors.ErrNotFound, glNo, acNo, cycle)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find loan", err)
	}
	return loan, nil
}

func (r *PgxLoanRepository) ListLoansByAccount(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) ([]domain.Loan, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + loanColumns + ` FROM loans WHERE branch_id = $1 AND gl_no = $2 AND ac_no = $3 ORDER BY cycle;`
	rows, err := r.Pool.Query(ctx, query, branchID, glNo, acNo)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loans", err)
	}
	return collectLoans(rows)
}

func (r *PgxLoanRepository) ListLiveLoans(ctx context.Context, scope domain.TenantScope, branchIDs []string) ([]domain.Loan, error) {
	for _, id := range branchIDs {
		if !scope.Contains(id) {
			return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, id)
		}
	}
	query := `
		SELECT` + loanColumns + `
		FROM loans
		WHERE branch_id = ANY($1) AND approval_status = $2 AND disb_status = $3 AND total_loan > 0
		ORDER BY branch_id, gl_no, ac_no, cycle;
	`
	rows, err := r.Pool.Query(ctx, query, branchIDs, domain.ApprovalApproved, domain.Disbursed)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query live loans", err)
	}
	return collectLoans(rows)
}

func (r *PgxLoanRepository) NextCycle(ctx context.Context, branchID, glNo, acNo string) (int, error) {
	query := `SELECT COALESCE(MAX(cycle), 0) + 1 FROM loans WHERE branch_id = $1 AND gl_no = $2 AND ac_no = $3;`
	var cycle int
	if err := r.Pool.QueryRow(ctx, query, branchID, glNo, acNo).Scan(&cycle); err != nil {
		return 0, apperrors.NewAppError(500, "failed to read next loan cycle", err)
	}
	return cycle, nil
}

const loanHistColumns = `
	branch_id, gl_no, ac_no, cycle, period, trx_type, trx_date, principal,
	interest, penalty, trx_no`

func collectLoanHist(rows pgx.Rows) ([]domain.LoanHist, error) {
	defer rows.Close()
	var hist []domain.LoanHist
	for rows.Next() {
		var h domain.LoanHist
		err := rows.Scan(
			&h.BranchID, &h.GLNo, &h.AcNo, &h.Cycle, &h.Period, &h.TrxType,
			&h.TrxDate, &h.Principal, &h.Interest, &h.Penalty, &h.TrxNo,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan history", err)
		}
		hist = append(hist, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read loan history", err)
	}
	return hist, nil
}

func (r *PgxLoanRepository) ListHist(ctx context.Context, branchID, glNo, acNo string, cycle int) ([]domain.LoanHist, error) {
	query := `
		SELECT` + loanHistColumns + `
		FROM loan_hist
		WHERE branch_id = $1 AND gl_no = $2 AND ac_no = $3 AND cycle = $4
		ORDER BY trx_date, period;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, glNo, acNo, cycle)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loan history", err)
	}
	return collectLoanHist(rows)
}

func (r *PgxLoanRepository) ListDueInstallments(ctx context.Context, scope domain.TenantScope, branchIDs []string, from, to time.Time) ([]domain.ExpectedRepaymentRow, error) {
	for _, id := range branchIDs {
		if !scope.Contains(id) {
			return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, id)
		}
	}
	query := `
		SELECT gl_no, ac_no, cycle, period, trx_date, principal, interest
		FROM loan_hist
		WHERE branch_id = ANY($1) AND trx_type = $2 AND trx_date >= $3 AND trx_date <= $4
		ORDER BY trx_date, gl_no, ac_no, period;
	`
	rows, err := r.Pool.Query(ctx, query, branchIDs, domain.HistExpected, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query due installments", err)
	}
	defer rows.Close()

	var out []domain.ExpectedRepaymentRow
	for rows.Next() {
		var row domain.ExpectedRepaymentRow
		if err := rows.Scan(&row.GLNo, &row.AcNo, &row.Cycle, &row.Period, &row.DueDate, &row.Principal, &row.Interest); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan due installment", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read due installments", err)
	}
	return out, nil
}

func (r *PgxLoanRepository) ListProvisionBands(ctx context.Context, branchID string) ([]domain.LoanProvision, error) {
	query := `
		SELECT provision_id, branch_id, min_days, max_days, rate,
			created_at, created_by, last_updated_at, last_updated_by
		FROM loan_provisions
		WHERE branch_id = $1
		ORDER BY min_days;
	`
	rows, err := r.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query provision bands", err)
	}
	defer rows.Close()

	var bands []domain.LoanProvision
	for rows.Next() {
		var b domain.LoanProvision
		err := rows.Scan(
			&b.ProvisionID, &b.BranchID, &b.MinDays, &b.MaxDays, &b.Rate,
			&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan provision band", err)
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read provision bands", err)
	}
	return bands, nil
}

const insertLoanQuery = `
	INSERT INTO loans (
		loan_id, branch_id, gl_no, ac_no, cycle, loan_amount, interest_rate,
		num_install, payment_freq, interest_method, appli_date, approval_date,
		disbursement_date, loan_officer, business_sector, approval_status,
		disb_status, total_loan, total_interest, cust_gl_no,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24);
`

func loanArgs(l domain.Loan) []any {
	return []any{
		l.LoanID, l.BranchID, l.GLNo, l.AcNo, l.Cycle, l.LoanAmount, l.InterestRate,
		l.NumInstall, l.PaymentFreq, l.InterestMethod, l.AppliDate, l.ApprovalDate,
		l.DisbursementDate, l.LoanOfficer, l.BusinessSector, l.ApprovalStatus,
		l.DisbStatus, l.TotalLoan, l.TotalInterest, l.CustGLNo,
		l.CreatedAt, l.CreatedBy, l.LastUpdatedAt, l.LastUpdatedBy,
	}
}

func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	if _, err := r.Pool.Exec(ctx, insertLoanQuery, loanArgs(loan)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: loan %s/%s cycle %d", apperrors.ErrDuplicateKey, loan.GLNo, loan.AcNo, loan.Cycle)
		}
		return apperrors.NewAppError(500, "failed to save loan", err)
	}
	return nil
}

const updateLoanQuery = `
	UPDATE loans
	SET loan_amount = $1, interest_rate = $2, num_install = $3,
		payment_freq = $4, interest_method = $5, approval_date = $6,
		disbursement_date = $7, loan_officer = $8, business_sector = $9,
		approval_status = $10, disb_status = $11, total_loan = $12,
		total_interest = $13, cust_gl_no = $14,
		last_updated_at = $15, last_updated_by = $16
	WHERE branch_id = $17 AND gl_no = $18 AND ac_no = $19 AND cycle = $20;
`

func updateLoanArgs(l domain.Loan) []any {
	return []any{
		l.LoanAmount, l.InterestRate, l.NumInstall,
		l.PaymentFreq, l.InterestMethod, l.ApprovalDate,
		l.DisbursementDate, l.LoanOfficer, l.BusinessSector,
		l.ApprovalStatus, l.DisbStatus, l.TotalLoan,
		l.TotalInterest, l.CustGLNo,
		l.LastUpdatedAt, l.LastUpdatedBy,
		l.BranchID, l.GLNo, l.AcNo, l.Cycle,
	}
}

func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	tag, err := r.Pool.Exec(ctx, updateLoanQuery, updateLoanArgs(loan)...)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update loan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s/%s cycle %d", apperrors.ErrNotFound, loan.GLNo, loan.AcNo, loan.Cycle)
	}
	return nil
}

const insertLoanHistQuery = `
	INSERT INTO loan_hist (
		branch_id, gl_no, ac_no, cycle, period, trx_type, trx_date, principal,
		interest, penalty, trx_no
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

func insertLoanHistInTx(ctx context.Context, tx pgx.Tx, hist []domain.LoanHist, trxNo string) error {
	batch := &pgx.Batch{}
	for _, h := range hist {
		batch.Queue(insertLoanHistQuery,
			h.BranchID, h.GLNo, h.AcNo, h.Cycle, h.Period, h.TrxType, h.TrxDate,
			h.Principal, h.Interest, h.Penalty, trxNo,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range hist {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: loan history row", apperrors.ErrDuplicateKey)
			}
			return apperrors.NewAppError(500, "failed to insert loan history", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to flush loan history", err)
	}
	return nil
}

func (r *PgxLoanRepository) Disburse(ctx context.Context, loan domain.Loan, legs []domain.Leg, hist []domain.LoanHist) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, loan.BranchID, domain.CodeLoanDisbursement)
	if err != nil {
		return "", err
	}
	if _, err := appendPostingInTx(ctx, tx, loan.BranchID, trxNo, domain.CodeLoanDisbursement, loan.LastUpdatedBy, legs); err != nil {
		return "", err
	}
	if err := insertLoanHistInTx(ctx, tx, hist, trxNo); err != nil {
		return "", err
	}
	tag, err := tx.Exec(ctx, updateLoanQuery, updateLoanArgs(loan)...)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to mark loan disbursed", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("%w: loan %s/%s cycle %d", apperrors.ErrNotFound, loan.GLNo, loan.AcNo, loan.Cycle)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}

func (r *PgxLoanRepository) Repay(ctx context.Context, loan domain.Loan, legs []domain.Leg, hist domain.LoanHist, code domain.TrxCode) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, loan.BranchID, code)
	if err != nil {
		return "", err
	}
	if _, err := appendPostingInTx(ctx, tx, loan.BranchID, trxNo, code, loan.LastUpdatedBy, legs); err != nil {
		return "", err
	}
	if err := insertLoanHistInTx(ctx, tx, []domain.LoanHist{hist}, trxNo); err != nil {
		return "", err
	}
	tag, err := tx.Exec(ctx, updateLoanQuery, updateLoanArgs(loan)...)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to update loan totals", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("%w: loan %s/%s cycle %d", apperrors.ErrNotFound, loan.GLNo, loan.AcNo, loan.Cycle)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}

func (r *PgxLoanRepository) ReverseDisbursement(ctx context.Context, loan domain.Loan, trxNo, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	session, err := lockSession(ctx, tx, loan.BranchID)
	if err != nil {
		return err
	}
	if _, err := reverseGroupInTx(ctx, tx, loan.BranchID, trxNo, userID, session.SessionDate); err != nil {
		return err
	}

	histQuery := `
		DELETE FROM loan_hist
		WHERE branch_id = $1 AND gl_no = $2 AND ac_no = $3 AND cycle = $4 AND trx_no = $5;
	`
	if _, err := tx.Exec(ctx, histQuery, loan.BranchID, loan.GLNo, loan.AcNo, loan.Cycle, trxNo); err != nil {
		return apperrors.NewAppError(500, "failed to delete schedule history", err)
	}

	tag, err := tx.Exec(ctx, updateLoanQuery, updateLoanArgs(loan)...)
	if err != nil {
		return apperrors.NewAppError(500, "failed to revert loan state", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s/%s cycle %d", apperrors.ErrNotFound, loan.GLNo, loan.AcNo, loan.Cycle)
	}
	return r.Commit(ctx, tx)
}
