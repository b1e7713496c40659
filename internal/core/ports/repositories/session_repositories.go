package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
)

// SessionRepository manages the per-branch session gate in the client
// database. Posting transactions lock the session row FOR UPDATE so the gate
// and the legs commit or roll back together.
type SessionRepository interface {
	CreateSession(ctx context.Context, session domain.BranchSession) error
	FindSession(ctx context.Context, branchID string) (*domain.BranchSession, error)
	// SetStatus opens or closes the session without moving the date.
	SetStatus(ctx context.Context, branchID string, status domain.SessionStatus, userID string) error
	// AdvanceDate moves session_date forward to next and reopens the session.
	// Refuses dates that do not move forward.
	AdvanceDate(ctx context.Context, branchID string, next time.Time, userID string) error
}
