package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates the client-database chart of accounts
// repository.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, branch_id, gl_no, gl_name, account_type, currency,
	double_entry_type, header_gl_no,
	interest_gl_no, int_receivable_gl_no, unearned_int_inc_gl_no, pen_gl_no,
	app_fee_inc_gl_no, loan_vat_gl_no, write_off_gl_no, write_off_int_gl_no,
	fixed_dep_int_gl_no, fd_int_receivable_gl_no, fd_unearned_int_gl_no,
	fixed_dep_pen_inc_gl_no, tds_payable_gl_no,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID, &a.BranchID, &a.GLNo, &a.GLName, &a.AccountType, &a.Currency,
		&a.DoubleEntryType, &a.HeaderGLNo,
		&a.Loan.InterestGLNo, &a.Loan.IntReceivableGLNo, &a.Loan.UnearnedIntIncGLNo, &a.Loan.PenGLNo,
		&a.Loan.AppFeeIncGLNo, &a.Loan.LoanVATGLNo, &a.Loan.WriteOffGLNo, &a.Loan.WriteOffIntGLNo,
		&a.FD.FixedDepIntGLNo, &a.FD.FDIntReceivableGLNo, &a.FD.FDUnearnedIntGLNo,
		&a.FD.FixedDepPenIncGLNo, &a.FD.TDSPayableGLNo,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgxAccountRepository) FindAccountByGL(ctx context.Context, branchID, glNo string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE branch_id = $1 AND gl_no = $2;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, branchID, glNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: GL %s", apperrors.ErrNotFound, glNo)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find account", err)
	}
	return account, nil
}

func (r *PgxAccountRepository) FindAccountsByGLs(ctx context.Context, branchID string, glNos []string) (map[string]domain.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE branch_id = $1 AND gl_no = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, branchID, glNos)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(glNos))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account", err)
		}
		accounts[account.GLNo] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read accounts", err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, scope domain.TenantScope, branchID string) ([]domain.Account, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + accountColumns + ` FROM accounts WHERE branch_id = $1 ORDER BY gl_no;`
	rows, err := r.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read accounts", err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) HasChildren(ctx context.Context, branchID, glNo string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE branch_id = $1 AND header_gl_no = $2);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, branchID, glNo).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check account children", err)
	}
	return exists, nil
}

func (r *PgxAccountRepository) IsReferenced(ctx context.Context, branchID, glNo string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM customers WHERE branch_id = $1 AND gl_no = $2)
			OR EXISTS (SELECT 1 FROM loans WHERE branch_id = $1 AND gl_no = $2)
			OR EXISTS (SELECT 1 FROM memtrans WHERE branch_id = $1 AND gl_no = $2);
	`
	var referenced bool
	if err := r.Pool.QueryRow(ctx, query, branchID, glNo).Scan(&referenced); err != nil {
		return false, apperrors.NewAppError(500, "failed to check account references", err)
	}
	return referenced, nil
}

const insertAccountQuery = `
	INSERT INTO accounts (
		account_id, branch_id, gl_no, gl_name, account_type, currency,
		double_entry_type, header_gl_no,
		interest_gl_no, int_receivable_gl_no, unearned_int_inc_gl_no, pen_gl_no,
		app_fee_inc_gl_no, loan_vat_gl_no, write_off_gl_no, write_off_int_gl_no,
		fixed_dep_int_gl_no, fd_int_receivable_gl_no, fd_unearned_int_gl_no,
		fixed_dep_pen_inc_gl_no, tds_payable_gl_no,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25);
`

func accountArgs(a domain.Account) []any {
	return []any{
		a.AccountID, a.BranchID, a.GLNo, a.GLName, a.AccountType, a.Currency,
		a.DoubleEntryType, a.HeaderGLNo,
		a.Loan.InterestGLNo, a.Loan.IntReceivableGLNo, a.Loan.UnearnedIntIncGLNo, a.Loan.PenGLNo,
		a.Loan.AppFeeIncGLNo, a.Loan.LoanVATGLNo, a.Loan.WriteOffGLNo, a.Loan.WriteOffIntGLNo,
		a.FD.FixedDepIntGLNo, a.FD.FDIntReceivableGLNo, a.FD.FDUnearnedIntGLNo,
		a.FD.FixedDepPenIncGLNo, a.FD.TDSPayableGLNo,
		a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
	}
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, err := r.Pool.Exec(ctx, insertAccountQuery, accountArgs(account)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: GL %s (%s)", apperrors.ErrDuplicateKey, account.GLNo, account.GLName)
		}
		return apperrors.NewAppError(500, "failed to save account", err)
	}
	return nil
}

func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	batch := &pgx.Batch{}
	for _, account := range accounts {
		batch.Queue(insertAccountQuery, accountArgs(account)...)
	}
	results := tx.SendBatch(ctx, batch)
	for range accounts {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: chart already seeded", apperrors.ErrDuplicateKey)
			}
			return apperrors.NewAppError(500, "failed to insert chart accounts", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to flush chart accounts", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET gl_name = $1, currency = $2, double_entry_type = $3,
			interest_gl_no = $4, int_receivable_gl_no = $5, unearned_int_inc_gl_no = $6,
			pen_gl_no = $7, app_fee_inc_gl_no = $8, loan_vat_gl_no = $9,
			write_off_gl_no = $10, write_off_int_gl_no = $11,
			fixed_dep_int_gl_no = $12, fd_int_receivable_gl_no = $13, fd_unearned_int_gl_no = $14,
			fixed_dep_pen_inc_gl_no = $15, tds_payable_gl_no = $16,
			last_updated_at = $17, last_updated_by = $18
		WHERE branch_id = $19 AND gl_no = $20;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.GLName, account.Currency, account.DoubleEntryType,
		account.Loan.InterestGLNo, account.Loan.IntReceivableGLNo, account.Loan.UnearnedIntIncGLNo,
		account.Loan.PenGLNo, account.Loan.AppFeeIncGLNo, account.Loan.LoanVATGLNo,
		account.Loan.WriteOffGLNo, account.Loan.WriteOffIntGLNo,
		account.FD.FixedDepIntGLNo, account.FD.FDIntReceivableGLNo, account.FD.FDUnearnedIntGLNo,
		account.FD.FixedDepPenIncGLNo, account.FD.TDSPayableGLNo,
		account.LastUpdatedAt, account.LastUpdatedBy,
		account.BranchID, account.GLNo,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: GL name %s", apperrors.ErrDuplicateKey, account.GLName)
		}
		return apperrors.NewAppError(500, "failed to update account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: GL %s", apperrors.ErrNotFound, account.GLNo)
	}
	return nil
}

func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, branchID, glNo string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE branch_id = $1 AND gl_no = $2;`, branchID, glNo)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: GL %s", apperrors.ErrNotFound, glNo)
	}
	return nil
}
