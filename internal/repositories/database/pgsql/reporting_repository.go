package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates the client-database report read side.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, scope domain.TenantScope, branchID string, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `
		SELECT a.gl_no, a.gl_name, a.account_type,
			COALESCE(SUM(CASE WHEN m.amount < 0 THEN -m.amount ELSE 0 END), 0) AS debit,
			COALESCE(SUM(CASE WHEN m.amount > 0 THEN m.amount ELSE 0 END), 0) AS credit,
			COALESCE(SUM(m.amount), 0) AS balance
		FROM accounts a
		LEFT JOIN memtrans m
			ON m.cust_branch_id = a.branch_id AND m.gl_no = a.gl_no
			AND m.status = $2 AND m.ses_date >= $3 AND m.ses_date <= $4
		WHERE a.branch_id = $1
		GROUP BY a.gl_no, a.gl_name, a.account_type
		ORDER BY a.gl_no;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, domain.EntryActive, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance", err)
	}
	defer rows.Close()

	var out []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.GLNo, &row.GLName, &row.AccountType, &row.Debit, &row.Credit, &row.Balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read trial balance", err)
	}
	return out, nil
}

func (r *PgxReportingRepository) GetTillRows(ctx context.Context, scope domain.TenantScope, filter portsrepo.JournalFilter) ([]domain.TillRow, error) {
	if !scope.Contains(filter.BranchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, filter.BranchID)
	}
	dateColumn := "ses_date"
	if filter.ByAppDate {
		dateColumn = "app_date"
	}
	query := fmt.Sprintf(`
		SELECT id, trx_no, code, gl_no, ac_no, description, ses_date, app_date,
			user_id, amount
		FROM memtrans
		WHERE branch_id = $1 AND status = $2
			AND %s >= $3 AND %s <= $4
			AND ($5 = '' OR user_id = $5)
			AND ($6 = '' OR code = $6)
		ORDER BY %s, id;
	`, dateColumn, dateColumn, dateColumn)
	rows, err := r.Pool.Query(ctx, query,
		filter.BranchID, domain.EntryActive, filter.From, filter.To,
		filter.UserID, filter.Code,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query till rows", err)
	}
	defer rows.Close()

	var out []domain.TillRow
	for rows.Next() {
		var row domain.TillRow
		var amount decimal.Decimal
		err := rows.Scan(
			&row.PostingID, &row.TrxNo, &row.Code, &row.GLNo, &row.AcNo,
			&row.Description, &row.SesDate, &row.AppDate, &row.UserID, &amount,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan till row", err)
		}
		if amount.IsNegative() {
			row.Debit = amount.Neg()
		} else {
			row.Credit = amount
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read till rows", err)
	}
	return out, nil
}

func (r *PgxReportingRepository) GetLoanOutstanding(ctx context.Context, scope domain.TenantScope, branchID string, asOf time.Time) ([]domain.LoanOutstandingRow, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	// Arrears start at the earliest installment with no matching repayment
	// row; one LP row covers one installment whatever its amount.
	query := `
		SELECT l.branch_id, l.gl_no, l.ac_no, l.cycle,
			COALESCE(c.name, ''), l.loan_amount, l.total_loan, l.total_interest,
			COALESCE(od.days_overdue, 0)
		FROM loans l
		LEFT JOIN customers c
			ON c.branch_id = l.branch_id AND c.gl_no = l.gl_no AND c.ac_no = l.ac_no
		LEFT JOIN LATERAL (
			SELECT $4::date - due.trx_date AS days_overdue
			FROM (
				SELECT trx_date, ROW_NUMBER() OVER (ORDER BY trx_date, id) AS rn
				FROM loan_hist
				WHERE branch_id = l.branch_id AND gl_no = l.gl_no
					AND ac_no = l.ac_no AND cycle = l.cycle
					AND trx_type = $5 AND trx_date <= $4::date
			) due
			WHERE due.rn = 1 + (
				SELECT COUNT(*) FROM loan_hist p
				WHERE p.branch_id = l.branch_id AND p.gl_no = l.gl_no
					AND p.ac_no = l.ac_no AND p.cycle = l.cycle AND p.trx_type = $6
			)
		) od ON TRUE
		WHERE l.branch_id = $1 AND l.approval_status = $2 AND l.disb_status = $3
			AND l.total_loan > 0 AND l.disbursement_date <= $4::date
		ORDER BY l.gl_no, l.ac_no, l.cycle;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, domain.ApprovalApproved, domain.Disbursed, asOf,
		domain.HistExpected, domain.HistPayment)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query outstanding loans", err)
	}
	defer rows.Close()

	var out []domain.LoanOutstandingRow
	for rows.Next() {
		var row domain.LoanOutstandingRow
		err := rows.Scan(
			&row.BranchID, &row.GLNo, &row.AcNo, &row.Cycle,
			&row.CustomerName, &row.LoanAmount, &row.OutPrincipal, &row.OutInterest,
			&row.DaysOverdue,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan outstanding loan", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read outstanding loans", err)
	}
	return out, nil
}
