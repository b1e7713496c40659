package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
)

type PgxPendingRepository struct {
	BaseRepository
}

// newPgxPendingRepository creates the client-database maker-checker staging
// repository. Legs are stored as a jsonb document; they are opaque to SQL
// until the posting happens through the ledger repository.
func newPgxPendingRepository(pool *pgxpool.Pool) portsrepo.PendingRepository {
	return &PgxPendingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PendingRepository = (*PgxPendingRepository)(nil)

const pendingColumns = `
	pending_id, branch_id, trx_no, code, legs, status, reason, maker_id,
	checker_id, decided_at,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPending(row pgx.Row) (*domain.PendingTransaction, error) {
	var p domain.PendingTransaction
	var legs []byte
	err := row.Scan(
		&p.PendingID, &p.BranchID, &p.TrxNo, &p.Code, &legs, &p.Status, &p.Reason,
		&p.MakerID, &p.CheckerID, &p.DecidedAt,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(legs, &p.Legs); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode staged legs", err)
	}
	return &p, nil
}

func (r *PgxPendingRepository) SavePending(ctx context.Context, pending domain.PendingTransaction) error {
	legs, err := json.Marshal(pending.Legs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode staged legs", err)
	}
	query := `
		INSERT INTO pending_transactions (
			pending_id, branch_id, trx_no, code, legs, status, reason, maker_id,
			checker_id, decided_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = r.Pool.Exec(ctx, query,
		pending.PendingID, pending.BranchID, pending.TrxNo, pending.Code, legs,
		pending.Status, pending.Reason, pending.MakerID,
		pending.CheckerID, pending.DecidedAt,
		pending.CreatedAt, pending.CreatedBy, pending.LastUpdatedAt, pending.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateTrx, pending.TrxNo)
		}
		return apperrors.NewAppError(500, "failed to stage transaction", err)
	}
	return nil
}

func (r *PgxPendingRepository) FindPendingByID(ctx context.Context, scope domain.TenantScope, branchID, pendingID string) (*domain.PendingTransaction, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `SELECT` + pendingColumns + ` FROM pending_transactions WHERE branch_id = $1 AND pending_id = $2;`
	pending, err := scanPending(r.Pool.QueryRow(ctx, query, branchID, pendingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: pending transaction %s", apperrors.ErrNotFound, pendingID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find pending transaction", err)
	}
	return pending, nil
}

func (r *PgxPendingRepository) ListPending(ctx context.Context, scope domain.TenantScope, branchID string, status domain.PendingStatus) ([]domain.PendingTransaction, error) {
	if !scope.Contains(branchID) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	query := `
		SELECT` + pendingColumns + `
		FROM pending_transactions
		WHERE branch_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, branchID, status)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending transactions", err)
	}
	defer rows.Close()

	var out []domain.PendingTransaction
	for rows.Next() {
		pending, err := scanPending(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan pending transaction", err)
		}
		out = append(out, *pending)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read pending transactions", err)
	}
	return out, nil
}

func (r *PgxPendingRepository) UpdatePendingStatus(ctx context.Context, pendingID string, status domain.PendingStatus, reason, checkerID string, decidedAt time.Time) error {
	query := `
		UPDATE pending_transactions
		SET status = $1, reason = $2, checker_id = $3, decided_at = $4,
			last_updated_at = $4, last_updated_by = $3
		WHERE pending_id = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, status, reason, checkerID, decidedAt, pendingID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update pending transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending transaction %s", apperrors.ErrNotFound, pendingID)
	}
	return nil
}
