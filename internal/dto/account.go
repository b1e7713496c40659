package dto

import (
	"github.com/koboledger/kobo/internal/core/domain"
)

// CreateAccountRequest creates a chart-of-accounts entry.
type CreateAccountRequest struct {
	GLNo            string                 `json:"glNo" binding:"required,glno"`
	GLName          string                 `json:"glName" binding:"required"`
	AccountType     domain.AccountType     `json:"accountType" binding:"required"`
	Currency        string                 `json:"currency"`
	DoubleEntryType domain.DoubleEntryType `json:"doubleEntryType"`
	Loan            *domain.LoanBindings   `json:"loan"`
	FD              *domain.FDBindings     `json:"fd"`
}

// UpdateAccountRequest updates mutable chart fields. Nil means unchanged.
type UpdateAccountRequest struct {
	GLName          *string                 `json:"glName"`
	DoubleEntryType *domain.DoubleEntryType `json:"doubleEntryType"`
	Loan            *domain.LoanBindings    `json:"loan"`
	FD              *domain.FDBindings      `json:"fd"`
}

// UpdateCustomerRequest changes customer contact details. Nil means
// unchanged.
type UpdateCustomerRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	NotifySMS   *bool   `json:"notifySMS"`
	NotifyEmail *bool   `json:"notifyEmail"`
}

// CreateCustomerRequest registers a customer account under a GL.
type CreateCustomerRequest struct {
	GLNo        string               `json:"glNo" binding:"required,glno"`
	Label       domain.CustomerLabel `json:"label" binding:"required"`
	Name        string               `json:"name" binding:"required"`
	Phone       string               `json:"phone"`
	Email       string               `json:"email"`
	Address     string               `json:"address"`
	NotifySMS   bool                 `json:"notifySMS"`
	NotifyEmail bool                 `json:"notifyEmail"`
}
