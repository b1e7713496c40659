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
	"github.com/shopspring/decimal"
)

type PgxMerchantRepository struct {
	BaseRepository
}

// newPgxMerchantRepository creates the client-database merchant repository.
func newPgxMerchantRepository(pool *pgxpool.Pool) portsrepo.MerchantRepository {
	return &PgxMerchantRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MerchantRepository = (*PgxMerchantRepository)(nil)

func (r *PgxMerchantRepository) SaveMerchant(ctx context.Context, merchant domain.Merchant) error {
	query := `
		INSERT INTO merchants (
			merchant_id, branch_id, name, phone, float_gl_no, float_ac_no,
			single_trx_limit, daily_trx_limit, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		merchant.MerchantID, merchant.BranchID, merchant.Name, merchant.Phone,
		merchant.FloatGLNo, merchant.FloatAcNo,
		merchant.SingleTransactionLimit, merchant.DailyTransactionLimit, merchant.IsActive,
		merchant.CreatedAt, merchant.CreatedBy, merchant.LastUpdatedAt, merchant.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: merchant %s", apperrors.ErrDuplicateKey, merchant.Name)
		}
		return apperrors.NewAppError(500, "failed to save merchant", err)
	}
	return nil
}

func (r *PgxMerchantRepository) FindMerchant(ctx context.Context, scope domain.TenantScope, branchID, merchantID string) (*domain.Merchant, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `
		SELECT merchant_id, branch_id, name, phone, float_gl_no, float_ac_no,
			single_trx_limit, daily_trx_limit, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		FROM merchants
		WHERE branch_id = $1 AND merchant_id = $2;
	`
	var m domain.Merchant
	err := r.Pool.QueryRow(ctx, query, branchID, merchantID).Scan(
		&m.MerchantID, &m.BranchID, &m.Name, &m.Phone, &m.FloatGLNo, &m.FloatAcNo,
		&m.SingleTransactionLimit, &m.DailyTransactionLimit, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: merchant %s", apperrors.ErrNotFound, merchantID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find merchant", err)
	}
	return &m, nil
}

func (r *PgxMerchantRepository) SumCompletedForDay(ctx context.Context, merchantID string, day time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM merchant_transactions
		WHERE merchant_id = $1 AND trx_date = $2 AND status = $3;
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, merchantID, day, domain.MerchantTrxCompleted).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum merchant activity", err)
	}
	return total, nil
}

func (r *PgxMerchantRepository) SaveTransactionWithLegs(ctx context.Context, trx domain.MerchantTransaction, legs []domain.Leg) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	trxNo, err := allocateTrxNoInTx(ctx, tx, trx.BranchID, trx.Code)
	if err != nil {
		return "", err
	}
	if _, err := appendPostingInTx(ctx, tx, trx.BranchID, trxNo, trx.Code, trx.CreatedBy, legs); err != nil {
		return "", err
	}

	query := `
		INSERT INTO merchant_transactions (
			id, merchant_id, branch_id, trx_no, code, amount, status, trx_date,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, query,
		trx.ID, trx.MerchantID, trx.BranchID, trxNo, trx.Code, trx.Amount,
		trx.Status, trx.TrxDate,
		trx.CreatedAt, trx.CreatedBy, trx.LastUpdatedAt, trx.LastUpdatedBy,
	)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to save merchant transaction", err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return trxNo, nil
}
