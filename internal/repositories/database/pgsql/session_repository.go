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

type PgxSessionRepository struct {
	BaseRepository
}

// newPgxSessionRepository creates the branch session gate repository.
func newPgxSessionRepository(pool *pgxpool.Pool) portsrepo.SessionRepository {
	return &PgxSessionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SessionRepository = (*PgxSessionRepository)(nil)

func (r *PgxSessionRepository) CreateSession(ctx context.Context, session domain.BranchSession) error {
	query := `
		INSERT INTO branch_sessions (
			branch_id, session_date, session_status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		session.BranchID, session.SessionDate, session.SessionStatus,
		session.CreatedAt, session.CreatedBy, session.LastUpdatedAt, session.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session for branch %s", apperrors.ErrDuplicateKey, session.BranchID)
		}
		return apperrors.NewAppError(500, "failed to create branch session", err)
	}
	return nil
}

func (r *PgxSessionRepository) FindSession(ctx context.Context, branchID string) (*domain.BranchSession, error) {
	query := `
		SELECT branch_id, session_date, session_status,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM branch_sessions
		WHERE branch_id = $1;
	`
	var s domain.BranchSession
	err := r.Pool.QueryRow(ctx, query, branchID).Scan(
		&s.BranchID, &s.SessionDate, &s.SessionStatus,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: session for branch %s", apperrors.ErrNotFound, branchID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find branch session", err)
	}
	return &s, nil
}

func (r *PgxSessionRepository) SetStatus(ctx context.Context, branchID string, status domain.SessionStatus, userID string) error {
	query := `
		UPDATE branch_sessions
		SET session_status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE branch_id = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, status, time.Now().UTC(), userID, branchID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update session status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session for branch %s", apperrors.ErrNotFound, branchID)
	}
	return nil
}

// AdvanceDate moves the session date forward and reopens the branch. The row
// is locked so a concurrent posting cannot slide in between the check and the
// move.
func (r *PgxSessionRepository) AdvanceDate(ctx context.Context, branchID string, next time.Time, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var current time.Time
	err = tx.QueryRow(ctx, `SELECT session_date FROM branch_sessions WHERE branch_id = $1 FOR UPDATE;`, branchID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: session for branch %s", apperrors.ErrNotFound, branchID)
	}
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock branch session", err)
	}
	if !next.After(current) {
		return fmt.Errorf("%w: next date %s does not advance past %s",
			apperrors.ErrInvalidDate, next.Format("2006-01-02"), current.Format("2006-01-02"))
	}

	_, err = tx.Exec(ctx, `
		UPDATE branch_sessions
		SET session_date = $1, session_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE branch_id = $5;
	`, next, domain.SessionOpen, time.Now().UTC(), userID, branchID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to advance session date", err)
	}
	return r.Commit(ctx, tx)
}
