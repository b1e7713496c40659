package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found within
// the caller's tenant scope.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicateKey indicates a unique natural key conflict (GL number, account
// number, certificate number, ...).
var ErrDuplicateKey = errors.New("resource already exists")

// ErrForbidden indicates the principal lacks the role for the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrTenantViolation indicates an attempted read or write outside the
// principal's visible branch set.
var ErrTenantViolation = errors.New("branch not within tenant scope")

// ErrSessionClosed indicates a write was attempted while the target branch
// session is closed.
var ErrSessionClosed = errors.New("branch session is closed")

// ErrInvalidDate indicates a business date that violates session-date
// discipline (app_date after session_date, schedule before disbursement, ...).
var ErrInvalidDate = errors.New("invalid business date")

// ErrUnbalancedPosting indicates the legs of a posting do not sum to zero.
var ErrUnbalancedPosting = errors.New("posting legs do not balance to zero")

// ErrDuplicateTrx indicates a transaction number was reused.
var ErrDuplicateTrx = errors.New("transaction number already used")

// ErrInsufficientFunds indicates a withdrawal exceeds the available balance
// net of any lien.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrLoanParametersMissing indicates required GL product bindings are absent
// on the loan's chart account.
var ErrLoanParametersMissing = errors.New("loan product GL bindings missing")

// ErrIllegalTransition indicates the loan or fixed deposit state does not
// admit the requested operation.
var ErrIllegalTransition = errors.New("state does not admit this operation")

// ErrLicenseExpired indicates the branch is past its licence expiry date.
var ErrLicenseExpired = errors.New("branch licence has expired")

// AppError carries an HTTP-ish status code alongside a wrapped cause. Used by
// repositories for infrastructure failures that have no domain sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
