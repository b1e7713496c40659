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
	"github.com/shopspring/decimal"
)

type PgxCustomerRepository struct {
	BaseRepository
}

// newPgxCustomerRepository creates the client-database customer repository.
func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepository {
	return &PgxCustomerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CustomerRepository = (*PgxCustomerRepository)(nil)

const customerColumns = `
	customer_id, branch_id, gl_no, ac_no, label, name, phone, email, address,
	notify_sms, notify_email, balance,
	created_at, created_by, last_updated_at, last_updated_by`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.CustomerID, &c.BranchID, &c.GLNo, &c.AcNo, &c.Label, &c.Name, &c.Phone,
		&c.Email, &c.Address, &c.NotifySMS, &c.NotifyEmail, &c.Balance,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgxCustomerRepository) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	// Serialise number allocation under (branch, gl) on the GL row itself so
	// two concurrent opens cannot both read the same max.
	lockQuery := `SELECT gl_no FROM accounts WHERE branch_id = $1 AND gl_no = $2 FOR UPDATE;`
	var glNo string
	err = tx.QueryRow(ctx, lockQuery, customer.BranchID, customer.GLNo).Scan(&glNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: GL %s", apperrors.ErrNotFound, customer.GLNo)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock GL for allocation", err)
	}

	maxQuery := `
		SELECT COALESCE(MAX(ac_no::bigint), 0)
		FROM customers
		WHERE branch_id = $1 AND gl_no = $2;
	`
	var max int64
	if err := tx.QueryRow(ctx, maxQuery, customer.BranchID, customer.GLNo).Scan(&max); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read max account number", err)
	}
	customer.AcNo = fmt.Sprintf("%05d", max+1)

	insertQuery := `
		INSERT INTO customers (
			customer_id, branch_id, gl_no, ac_no, label, name, phone, email,
			address, notify_sms, notify_email, balance,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, insertQuery,
		customer.CustomerID, customer.BranchID, customer.GLNo, customer.AcNo,
		customer.Label, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.NotifySMS, customer.NotifyEmail, customer.Balance,
		customer.CreatedAt, customer.CreatedBy, customer.LastUpdatedAt, customer.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: account %s/%s", apperrors.ErrDuplicateKey, customer.GLNo, customer.AcNo)
		}
		return nil, apperrors.NewAppError(500, "failed to create customer", err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *PgxCustomerRepository) FindCustomer(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) (*domain.Customer, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + customerColumns + ` FROM customers WHERE branch_id = $1 AND gl_no = $2 AND ac_no = $3;`
	customer, err := scanCustomer(r.Pool.QueryRow(ctx, query, branchID, glNo, acNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s/%s", apperrors.ErrNotFound, glNo, acNo)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find customer", err)
	}
	return customer, nil
}

func (r *PgxCustomerRepository) ListCustomers(ctx context.Context, scope domain.TenantScope, branchID, glNo string) ([]domain.Customer, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + customerColumns + ` FROM customers WHERE branch_id = $1 AND ($2 = '' OR gl_no = $2) ORDER BY gl_no, ac_no;`
	rows, err := r.Pool.Query(ctx, query, branchID, glNo)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query customers", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan customer", err)
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read customers", err)
	}
	return customers, nil
}

func (r *PgxCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, address = $4,
			notify_sms = $5, notify_email = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE branch_id = $9 AND gl_no = $10 AND ac_no = $11;
	`
	tag, err := r.Pool.Exec(ctx, query,
		customer.Name, customer.Phone, customer.Email, customer.Address,
		customer.NotifySMS, customer.NotifyEmail,
		customer.LastUpdatedAt, customer.LastUpdatedBy,
		customer.BranchID, customer.GLNo, customer.AcNo,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s/%s", apperrors.ErrNotFound, customer.GLNo, customer.AcNo)
	}
	return nil
}

func (r *PgxCustomerRepository) RebuildBalance(ctx context.Context, branchID, glNo, acNo string) (decimal.Decimal, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	sumQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM memtrans
		WHERE cust_branch_id = $1 AND gl_no = $2 AND ac_no = $3 AND status = $4;
	`
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, branchID, glNo, acNo, domain.EntryActive).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum ledger legs", err)
	}

	updateQuery := `
		UPDATE customers SET balance = $1
		WHERE branch_id = $2 AND gl_no = $3 AND ac_no = $4;
	`
	tag, err := tx.Exec(ctx, updateQuery, balance, branchID, glNo, acNo)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to write rebuilt balance", err)
	}
	if tag.RowsAffected() == 0 {
		return decimal.Zero, fmt.Errorf("%w: account %s/%s", apperrors.ErrNotFound, glNo, acNo)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
