package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
)

// PendingRepository stages maker-checker transactions. TrxNo is unique
// across the staging and posted space.
type PendingRepository interface {
	SavePending(ctx context.Context, pending domain.PendingTransaction) error
	FindPendingByID(ctx context.Context, scope domain.TenantScope, branchID, pendingID string) (*domain.PendingTransaction, error)
	ListPending(ctx context.Context, scope domain.TenantScope, branchID string, status domain.PendingStatus) ([]domain.PendingTransaction, error)
	UpdatePendingStatus(ctx context.Context, pendingID string, status domain.PendingStatus, reason, checkerID string, decidedAt time.Time) error
}
