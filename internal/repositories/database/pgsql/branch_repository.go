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

type PgxBranchRepository struct {
	BaseRepository
}

// newPgxBranchRepository creates the vendor-database branch repository.
func newPgxBranchRepository(pool *pgxpool.Pool) portsrepo.BranchRepository {
	return &PgxBranchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BranchRepository = (*PgxBranchRepository)(nil)

const branchColumns = `
	branch_id, company_id, branch_code, name, plan, head_office, expire_date,
	created_at, created_by, last_updated_at, last_updated_by`

func scanBranch(row pgx.Row) (*domain.Branch, error) {
	var b domain.Branch
	err := row.Scan(
		&b.BranchID, &b.CompanyID, &b.BranchCode, &b.Name, &b.Plan, &b.HeadOffice, &b.ExpireDate,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PgxBranchRepository) SaveBranch(ctx context.Context, branch domain.Branch) error {
	query := `
		INSERT INTO branches (
			branch_id, company_id, branch_code, name, plan, head_office, expire_date,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		branch.BranchID, branch.CompanyID, branch.BranchCode, branch.Name, branch.Plan,
		branch.HeadOffice, branch.ExpireDate,
		branch.CreatedAt, branch.CreatedBy, branch.LastUpdatedAt, branch.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: branch code %s", apperrors.ErrDuplicateKey, branch.BranchCode)
		}
		return apperrors.NewAppError(500, "failed to save branch", err)
	}
	return nil
}

func (r *PgxBranchRepository) FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error) {
	branch, err := scanBranch(r.Pool.QueryRow(ctx, `SELECT`+branchColumns+` FROM branches WHERE branch_id = $1;`, branchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrNotFound, branchID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find branch", err)
	}
	return branch, nil
}

func (r *PgxBranchRepository) FindBranchByCode(ctx context.Context, branchCode string) (*domain.Branch, error) {
	branch, err := scanBranch(r.Pool.QueryRow(ctx, `SELECT`+branchColumns+` FROM branches WHERE branch_code = $1;`, branchCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: branch code %s", apperrors.ErrNotFound, branchCode)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find branch by code", err)
	}
	return branch, nil
}

func (r *PgxBranchRepository) ListBranchesByCompany(ctx context.Context, companyID string) ([]domain.Branch, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+branchColumns+` FROM branches WHERE company_id = $1 ORDER BY branch_code;`, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list branches", err)
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan branch", err)
		}
		branches = append(branches, *b)
	}
	return branches, rows.Err()
}
