package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL error code raised on duplicate keys.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// lockSession reads the branch session row FOR UPDATE so every posting in the
// transaction observes (and serialises on) the same gate.
func lockSession(ctx context.Context, tx pgx.Tx, branchID string) (*domain.BranchSession, error) {
	query := `
		SELECT branch_id, session_date, session_status
		FROM branch_sessions
		WHERE branch_id = $1
		FOR UPDATE;
	`
	var s domain.BranchSession
	err := tx.QueryRow(ctx, query, branchID).Scan(&s.BranchID, &s.SessionDate, &s.SessionStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: session for branch %s", apperrors.ErrNotFound, branchID)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock branch session", err)
	}
	if !s.IsOpen() {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}
	return &s, nil
}

// allocateTrxNoInTx bumps the per-(branch, code) counter and formats the
// transaction number as code plus a zero-padded sequence.
func allocateTrxNoInTx(ctx context.Context, tx pgx.Tx, branchID string, code domain.TrxCode) (string, error) {
	query := `
		INSERT INTO trx_counters (branch_id, code, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (branch_id, code)
		DO UPDATE SET counter = trx_counters.counter + 1
		RETURNING counter;
	`
	var counter int64
	if err := tx.QueryRow(ctx, query, branchID, code).Scan(&counter); err != nil {
		return "", apperrors.NewAppError(500, "failed to allocate trx number", err)
	}
	return fmt.Sprintf("%s%07d", code, counter), nil
}

// registerTrxNo claims the number in the ledger_trx registry. A duplicate
// claim surfaces as ErrDuplicateTrx.
func registerTrxNo(ctx context.Context, tx pgx.Tx, branchID, trxNo string, code domain.TrxCode) error {
	query := `
		INSERT INTO ledger_trx (branch_id, trx_no, code, created_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.Exec(ctx, query, branchID, trxNo, code, time.Now().UTC()); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateTrx, trxNo)
		}
		return apperrors.NewAppError(500, "failed to register trx number", err)
	}
	return nil
}

// insertLegs writes the memtrans rows of one posting group, all stamped with
// the session date, and applies the customer balance cache deltas. Every
// group must sum to zero, including the composite ones built outside the
// journal path.
func insertLegs(ctx context.Context, tx pgx.Tx, branchID, trxNo string, code domain.TrxCode, userID string, sesDate time.Time, legs []domain.Leg) error {
	sum := decimal.Zero
	for _, leg := range legs {
		sum = sum.Add(leg.Amount)
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: trx %s sums to %s", apperrors.ErrUnbalancedPosting, trxNo, sum)
	}

	sysDate := time.Now().UTC()
	query := `
		INSERT INTO memtrans (
			trx_no, branch_id, cust_branch_id, gl_no, ac_no, amount, leg_type,
			account_type, code, description, ses_date, app_date, sys_date,
			status, user_id, cycle
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	batch := &pgx.Batch{}
	for _, leg := range legs {
		custBranch := leg.CustBranchID
		if custBranch == "" {
			custBranch = branchID
		}
		batch.Queue(query,
			trxNo, branchID, custBranch, leg.GLNo, leg.AcNo, leg.Amount, leg.Type,
			leg.AccountType, code, leg.Description, sesDate, leg.AppDate, sysDate,
			domain.EntryActive, userID, leg.Cycle,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range legs {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert posting legs", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to flush posting legs", err)
	}

	return applyBalanceDeltas(ctx, tx, branchID, legs, userID, sysDate)
}

// applyBalanceDeltas adds each leg's signed amount to the customer balance
// cache of its (branch, gl, ac). GL-only legs carry no ac_no and are skipped.
func applyBalanceDeltas(ctx context.Context, tx pgx.Tx, branchID string, legs []domain.Leg, userID string, now time.Time) error {
	query := `
		UPDATE customers
		SET balance = balance + $1, last_updated_at = $2, last_updated_by = $3
		WHERE branch_id = $4 AND gl_no = $5 AND ac_no = $6;
	`
	for _, leg := range legs {
		if leg.AcNo == "" {
			continue
		}
		custBranch := leg.CustBranchID
		if custBranch == "" {
			custBranch = branchID
		}
		if _, err := tx.Exec(ctx, query, leg.Amount, now, userID, custBranch, leg.GLNo, leg.AcNo); err != nil {
			return apperrors.NewAppError(500, "failed to update customer balance cache", err)
		}
	}
	return nil
}

// collectPostings drains a memtrans result set selected with postingColumns.
func collectPostings(rows pgx.Rows) ([]domain.Posting, error) {
	defer rows.Close()
	var postings []domain.Posting
	for rows.Next() {
		var p domain.Posting
		err := rows.Scan(
			&p.PostingID, &p.TrxNo, &p.BranchID, &p.CustBranchID, &p.GLNo, &p.AcNo,
			&p.Amount, &p.Type, &p.AccountType, &p.Code, &p.Description,
			&p.SesDate, &p.AppDate, &p.SysDate, &p.Status, &p.UserID, &p.Cycle,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan posting", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read postings", err)
	}
	return postings, nil
}

// reverseGroupInTx flips all active legs of a trx group to H inside an
// existing transaction and unwinds the customer balance caches. The caller
// must already hold the session lock. Returns the legs that were flipped;
// an empty slice means the group was reversed before.
func reverseGroupInTx(ctx context.Context, tx pgx.Tx, branchID, trxNo, userID string, sessionDate time.Time) ([]domain.Posting, error) {
	query := `
		SELECT id, trx_no, branch_id, cust_branch_id, gl_no, ac_no, amount, leg_type,
			account_type, code, description, ses_date, app_date, sys_date, status,
			user_id, cycle
		FROM memtrans
		WHERE branch_id = $1 AND trx_no = $2
		ORDER BY id;
	`
	rows, err := tx.Query(ctx, query, branchID, trxNo)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query posting group", err)
	}
	group, err := collectPostings(rows)
	if err != nil {
		return nil, err
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%w: trx %s", apperrors.ErrNotFound, trxNo)
	}

	var active []domain.Posting
	for _, p := range group {
		if p.Status == domain.EntryActive {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}
	for _, p := range active {
		if p.SesDate.Before(sessionDate) {
			return nil, fmt.Errorf("%w: trx %s posted on an earlier session date", apperrors.ErrInvalidDate, trxNo)
		}
	}

	flipQuery := `
		UPDATE memtrans
		SET status = $1, description = 'Reversal: ' || description
		WHERE branch_id = $2 AND trx_no = $3 AND status = $4;
	`
	if _, err := tx.Exec(ctx, flipQuery, domain.EntryReversed, branchID, trxNo, domain.EntryActive); err != nil {
		return nil, apperrors.NewAppError(500, "failed to reverse posting group", err)
	}

	now := time.Now().UTC()
	for _, p := range active {
		if p.AcNo == "" {
			continue
		}
		leg := domain.Leg{GLNo: p.GLNo, AcNo: p.AcNo, Amount: p.Amount.Neg(), CustBranchID: p.CustBranchID}
		if err := applyBalanceDeltas(ctx, tx, branchID, []domain.Leg{leg}, userID, now); err != nil {
			return nil, err
		}
	}
	return active, nil
}

// appendPostingInTx runs the whole append protocol inside an existing
// transaction: lock the session, claim the number, insert the legs.
func appendPostingInTx(ctx context.Context, tx pgx.Tx, branchID, trxNo string, code domain.TrxCode, userID string, legs []domain.Leg) (time.Time, error) {
	session, err := lockSession(ctx, tx, branchID)
	if err != nil {
		return time.Time{}, err
	}
	if err := registerTrxNo(ctx, tx, branchID, trxNo, code); err != nil {
		return time.Time{}, err
	}
	if err := insertLegs(ctx, tx, branchID, trxNo, code, userID, session.SessionDate, legs); err != nil {
		return time.Time{}, err
	}
	return session.SessionDate, nil
}
