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

type PgxFDRepository struct {
	BaseRepository
}

// newPgxFDRepository creates the client-database fixed deposit repository.
func newPgxFDRepository(pool *pgxpool.Pool) portsrepo.FDRepository {
	return &PgxFDRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FDRepository = (*PgxFDRepository)(nil)

const fdColumns = `
	fd_id, branch_id, fixed_gl_no, fixed_ac_no, cycle, product_id, principal,
	rate, tenure_months, start_date, maturity_date, interest_type,
	compound_frequency, interest_option, status, interest_amount,
	maturity_amount, tds_applicable, tds_rate, senior_citizen,
	senior_extra_rate, nominee_name, nominee_relation, lien_marked,
	lien_amount, lien_reference, certificate_no, cust_gl_no, cust_ac_no,
	created_at, created_by, last_updated_at, last_updated_by`

func scanFixedDeposit(row pgx.Row) (*domain.FixedDeposit, error) {
	var fd domain.FixedDeposit
	err := row.Scan(
		&fd.FDID, &fd.BranchID, &fd.FixedGLNo, &fd.FixedAcNo, &fd.Cycle, &fd.ProductID, &fd.Principal,
		&fd.Rate, &fd.TenureMonths, &fd.StartDate, &fd.MaturityDate, &fd.InterestType,
		&fd.CompoundFrequency, &fd.InterestOption, &fd.Status, &fd.InterestAmount,
		&fd.MaturityAmount, &fd.TDSApplicable, &fd.TDSRate, &fd.SeniorCitizen,
		&fd.SeniorExtraRate, &fd.NomineeName, &fd.NomineeRelation, &fd.LienMarked,
		&fd.LienAmount, &fd.LienReference, &fd.CertificateNo, &fd.CustGLNo, &fd.CustAcNo,
		&fd.CreatedAt, &fd.CreatedBy, &fd.LastUpdatedAt, &fd.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &fd, nil
}

func collectFixedDeposits(rows pgx.Rows) ([]domain.FixedDeposit, error) {
	defer rows.Close()
	var deposits []domain.FixedDeposit
	for rows.Next() {
		fd, err := scanFixedDeposit(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fixed deposit", err)
		}
		deposits = append(deposits, *fd)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read fixed deposits", err)
	}
	return deposits, nil
}

func (r *PgxFDRepository) FindDeposit(ctx context.Context, scope domain.TenantScope, branchID, fdID string) (*domain.FixedDeposit, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + fdColumns + ` FROM fixed_deposits WHERE branch_id = $1 AND fd_id = $2;`
	fd, err := scanFixedDeposit(r.Pool.QueryRow(ctx, query, branchID, fdID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: fixed deposit %s", apperrors.ErrNotFound, fdID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find fixed deposit", err)
	}
	return fd, nil
}

func (r *PgxFDRepository) ListDepositsByAccount(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) ([]domain.FixedDeposit, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + fdColumns + ` FROM fixed_deposits WHERE branch_id = $1 AND fixed_gl_no = $2 AND fixed_ac_no = $3 ORDER BY cycle;`
	rows, err := r.Pool.Query(ctx, query, branchID, glNo, acNo)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query fixed deposits", err)
	}
	return collectFixedDeposits(rows)
}

func (r *PgxFDRepository) NextDepositCycle(ctx context.Context, branchID, glNo, acNo string) (int, error) {
	query := `SELECT COALESCE(MAX(cycle), 0) + 1 FROM fixed_deposits WHERE branch_id = $1 AND fixed_gl_no = $2 AND fixed_ac_no = $3;`
	var cycle int
	if err := r.Pool.QueryRow(ctx, query, branchID, glNo, acNo).Scan(&cycle); err != nil {
		return 0, apperrors.NewAppError(500, "failed to read next deposit cycle", err)
	}
	return cycle, nil
}

func (r *PgxFDRepository) ListActiveDeposits(ctx context.Context, branchID string) ([]domain.FixedDeposit, error) {
	query := `SELECT` + fdColumns + ` FROM fixed_deposits WHERE branch_id = $1 AND status = $2 ORDER BY fd_id;`
	rows, err := r.Pool.Query(ctx, query, branchID, domain.FDActive)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query active deposits", err)
	}
	return collectFixedDeposits(rows)
}

func (r *PgxFDRepository) FindProduct(ctx context.Context, branchID, productID string) (*domain.FDProduct, error) {
	query := `
		SELECT product_id, branch_id, name, min_lock_in_days, penalty_rate,
			tds_rate, senior_extra,
			created_at, created_by, last_updated_at, last_updated_by
		FROM fd_products
		WHERE branch_id = $1 AND product_id = $2;
	`
	var p domain.FDProduct
	err := r.Pool.QueryRow(ctx, query, branchID, productID).Scan(
		&p.ProductID, &p.BranchID, &p.Name, &p.MinLockInDays, &p.PenaltyRate,
		&p.TDSRate, &p.SeniorExtra,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: deposit product %s", apperrors.ErrNotFound, productID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find deposit product", err)
	}
	return &p, nil
}

func (r *PgxFDRepository) LastAccrual(ctx context.Context, fdID string) (*domain.FDInterestAccrual, error) {
	query := `
		SELECT accrual_id, fd_id, accrual_date, accrued_amount, cumulative_accrued, is_paid
		FROM fd_accruals
		WHERE fd_id = $1
		ORDER BY accrual_date DESC
		LIMIT 1;
	`
	var a domain.FDInterestAccrual
	err := r.Pool.QueryRow(ctx, query, fdID).Scan(
		&a.AccrualID, &a.FDID, &a.AccrualDate, &a.AccruedAmount, &a.CumulativeAccrued, &a.IsPaid,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no accruals for deposit %s", apperrors.ErrNotFound, fdID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find last accrual", err)
	}
	return &a, nil
}

const insertFDQuery = `
	INSERT INTO fixed_deposits (
		fd_id, branch_id, fixed_gl_no, fixed_ac_no, cycle, product_id, principal,
		rate, tenure_months, start_date, maturity_date, interest_type,
		compound_frequency, interest_option, status, interest_amount,
		maturity_amount, tds_applicable, tds_rate, senior_citizen,
		senior_extra_rate, nominee_name, nominee_relation, lien_marked,
		lien_amount, lien_reference, certificate_no, cust_gl_no, cust_ac_no,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29,
		$30, $31, $32, $33);
`

func fdArgs(fd domain.FixedDeposit) []any {
	return []any{
		fd.FDID, fd.BranchID, fd.FixedGLNo, fd.FixedAcNo, fd.Cycle, fd.ProductID, fd.Principal,
		fd.Rate, fd.TenureMonths, fd.StartDate, fd.MaturityDate, fd.InterestType,
		fd.CompoundFrequency, fd.InterestOption, fd.Status, fd.InterestAmount,
		fd.MaturityAmount, fd.TDSApplicable, fd.TDSRate, fd.SeniorCitizen,
		fd.SeniorExtraRate, fd.NomineeName, fd.NomineeRelation, fd.LienMarked,
		fd.LienAmount, fd.LienReference, fd.CertificateNo, fd.CustGLNo, fd.CustAcNo,
		fd.CreatedAt, fd.CreatedBy, fd.LastUpdatedAt, fd.LastUpdatedBy,
	}
}

const updateFDQuery = `
	UPDATE fixed_deposits
	SET status = $1, interest_amount = $2, maturity_amount = $3,
		lien_marked = $4, lien_amount = $5, lien_reference = $6,
		nominee_name = $7, nominee_relation = $8,
		last_updated_at = $9, last_updated_by = $10
	WHERE branch_id = $11 AND fd_id = $12;
`

func updateFDArgs(fd domain.FixedDeposit) []any {
	return []any{
		fd.Status, fd.InterestAmount, fd.MaturityAmount,
		fd.LienMarked, fd.LienAmount, fd.LienReference,
		fd.NomineeName, fd.NomineeRelation,
		fd.LastUpdatedAt, fd.LastUpdatedBy,
		fd.BranchID, fd.FDID,
	}
}

func (r *PgxFDRepository) OpenDeposit(ctx context.Context, fd domain.FixedDeposit, legs []domain.Leg) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, fd.BranchID, domain.CodeFixedDeposit)
	if err != nil {
		return "", err
	}
	if _, err := appendPostingInTx(ctx, tx, fd.BranchID, trxNo, domain.CodeFixedDeposit, fd.CreatedBy, legs); err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, insertFDQuery, fdArgs(fd)...); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: fixed deposit %s", apperrors.ErrDuplicateKey, fd.CertificateNo)
		}
		return "", apperrors.NewAppError(500, "failed to insert fixed deposit", err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}

func (r *PgxFDRepository) CloseDeposit(ctx context.Context, fd domain.FixedDeposit, legs []domain.Leg, code domain.TrxCode) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, fd.BranchID, code)
	if err != nil {
		return "", err
	}
	if _, err := appendPostingInTx(ctx, tx, fd.BranchID, trxNo, code, fd.LastUpdatedBy, legs); err != nil {
		return "", err
	}
	tag, err := tx.Exec(ctx, updateFDQuery, updateFDArgs(fd)...)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to close fixed deposit", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("%w: fixed deposit %s", apperrors.ErrNotFound, fd.FDID)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}

func (r *PgxFDRepository) UpdateDeposit(ctx context.Context, fd domain.FixedDeposit) error {
	tag, err := r.Pool.Exec(ctx, updateFDQuery, updateFDArgs(fd)...)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update fixed deposit", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fixed deposit %s", apperrors.ErrNotFound, fd.FDID)
	}
	return nil
}

func (r *PgxFDRepository) SaveAccrual(ctx context.Context, accrual domain.FDInterestAccrual) error {
	query := `
		INSERT INTO fd_accruals (
			accrual_id, fd_id, accrual_date, accrued_amount, cumulative_accrued, is_paid
		)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		accrual.AccrualID, accrual.FDID, accrual.AccrualDate,
		accrual.AccruedAmount, accrual.CumulativeAccrued, accrual.IsPaid,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: accrual for %s on %s", apperrors.ErrDuplicateKey, accrual.FDID, accrual.AccrualDate.Format("2006-01-02"))
		}
		return apperrors.NewAppError(500, "failed to save accrual", err)
	}
	return nil
}

func (r *PgxFDRepository) SaveRenewal(ctx context.Context, hist domain.FDRenewalHistory) error {
	query := `
		INSERT INTO fd_renewals (
			renewal_id, branch_id, old_fd_id, new_fd_id, renewal_type, principal, renewed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		hist.RenewalID, hist.BranchID, hist.OldFDID, hist.NewFDID,
		hist.RenewalType, hist.Principal, hist.RenewedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save renewal history", err)
	}
	return nil
}

func (r *PgxFDRepository) SaveProduct(ctx context.Context, product domain.FDProduct) error {
	query := `
		INSERT INTO fd_products (
			product_id, branch_id, name, min_lock_in_days, penalty_rate,
			tds_rate, senior_extra,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		product.ProductID, product.BranchID, product.Name, product.MinLockInDays,
		product.PenaltyRate, product.TDSRate, product.SeniorExtra,
		product.CreatedAt, product.CreatedBy, product.LastUpdatedAt, product.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: deposit product %s", apperrors.ErrDuplicateKey, product.Name)
		}
		return apperrors.NewAppError(500, "failed to save deposit product", err)
	}
	return nil
}

func (r *PgxFDRepository) MarkMatured(ctx context.Context, branchID string, asOf time.Time) (int, error) {
	query := `
		UPDATE fixed_deposits
		SET status = $1, last_updated_at = $2
		WHERE branch_id = $3 AND status = $4 AND maturity_date <= $5;
	`
	tag, err := r.Pool.Exec(ctx, query, domain.FDMatured, time.Now().UTC(), branchID, domain.FDActive, asOf)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to mark matured deposits", err)
	}
	return int(tag.RowsAffected()), nil
}
