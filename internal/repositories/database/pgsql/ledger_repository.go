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

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates the client-database ledger repository.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

const postingColumns = `
	id, trx_no, branch_id, cust_branch_id, gl_no, ac_no, amount, leg_type,
	account_type, code, description, ses_date, app_date, sys_date, status,
	user_id, cycle`

func (r *PgxLedgerRepository) AppendPosting(ctx context.Context, branchID string, code domain.TrxCode, userID string, legs []domain.Leg) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, branchID, code)
	if err != nil {
		return "", err
	}
	if _, err := appendPostingInTx(ctx, tx, branchID, trxNo, code, userID, legs); err != nil {
		return "", err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}

func (r *PgxLedgerRepository) AppendPostingWithTrxNo(ctx context.Context, branchID, trxNo string, code domain.TrxCode, userID string, legs []domain.Leg) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := appendPostingInTx(ctx, tx, branchID, trxNo, code, userID, legs); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) AllocateTrxNo(ctx context.Context, branchID string, code domain.TrxCode) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, branchID, code)
	if err != nil {
		return "", err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}

func (r *PgxLedgerRepository) ReverseGroup(ctx context.Context, branchID, trxNo, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	session, err := lockSession(ctx, tx, branchID)
	if err != nil {
		return err
	}
	if _, err := reverseGroupInTx(ctx, tx, branchID, trxNo, userID, session.SessionDate); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) FindPostingsByTrxNo(ctx context.Context, scope domain.TenantScope, branchID, trxNo string) ([]domain.Posting, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + postingColumns + ` FROM memtrans WHERE branch_id = $1 AND trx_no = $2 ORDER BY id;`
	rows, err := r.Pool.Query(ctx, query, branchID, trxNo)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query postings", err)
	}
	postings, err := collectPostings(rows)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return nil, fmt.Errorf("%w: trx %s", apperrors.ErrNotFound, trxNo)
	}
	return postings, nil
}

func (r *PgxLedgerRepository) Balance(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error) {
	if !scope.Contains(branchID) {
		return decimal.Zero, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM memtrans
		WHERE cust_branch_id = $1 AND gl_no = $2 AND status = $3 AND ses_date <= $4
			AND ($5 = '' OR ac_no = $5);
	`
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, branchID, glNo, domain.EntryActive, asOf, acNo).Scan(&balance)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to compute balance", err)
	}
	return balance, nil
}

func (r *PgxLedgerRepository) StatementRows(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, from, to time.Time) (decimal.Decimal, []domain.StatementRow, error) {
	if !scope.Contains(branchID) {
		return decimal.Zero, nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	openingQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM memtrans
		WHERE cust_branch_id = $1 AND gl_no = $2 AND status = $3 AND ses_date < $4
			AND ($5 = '' OR ac_no = $5);
	`
	var opening decimal.Decimal
	err := r.Pool.QueryRow(ctx, openingQuery, branchID, glNo, domain.EntryActive, from, acNo).Scan(&opening)
	if err != nil {
		return decimal.Zero, nil, apperrors.NewAppError(500, "failed to compute opening balance", err)
	}

	rowsQuery := `
		SELECT id, trx_no, ses_date, description, amount
		FROM memtrans
		WHERE cust_branch_id = $1 AND gl_no = $2 AND status = $3
			AND ses_date >= $4 AND ses_date <= $5
			AND ($6 = '' OR ac_no = $6)
		ORDER BY ses_date, id;
	`
	rows, err := r.Pool.Query(ctx, rowsQuery, branchID, glNo, domain.EntryActive, from, to, acNo)
	if err != nil {
		return decimal.Zero, nil, apperrors.NewAppError(500, "failed to query statement rows", err)
	}
	defer rows.Close()

	var out []domain.StatementRow
	for rows.Next() {
		var row domain.StatementRow
		var amount decimal.Decimal
		if err := rows.Scan(&row.PostingID, &row.TrxNo, &row.SesDate, &row.Description, &amount); err != nil {
			return decimal.Zero, nil, apperrors.NewAppError(500, "failed to scan statement row", err)
		}
		if amount.IsNegative() {
			row.Debit = amount.Neg()
		} else {
			row.Credit = amount
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, nil, apperrors.NewAppError(500, "failed to read statement rows", err)
	}
	return opening, out, nil
}
