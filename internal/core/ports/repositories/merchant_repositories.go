package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MerchantRepository manages merchant float accounts and their audit rows.
type MerchantRepository interface {
	SaveMerchant(ctx context.Context, merchant domain.Merchant) error
	FindMerchant(ctx context.Context, scope domain.TenantScope, branchID, merchantID string) (*domain.Merchant, error)
	// SumCompletedForDay totals completed merchant transactions on a session
	// date, for the daily-limit check.
	SumCompletedForDay(ctx context.Context, merchantID string, day time.Time) (decimal.Decimal, error)
	// SaveTransactionWithLegs posts the balanced float/customer pair and the
	// audit row in one transaction. Returns the trx_no.
	SaveTransactionWithLegs(ctx context.Context, trx domain.MerchantTransaction, legs []domain.Leg) (string, error)
}
