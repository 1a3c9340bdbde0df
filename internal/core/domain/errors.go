package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
)

// LoanErrors
var (
	ErrApplicationNotFound    = errors.New("loan application not found")
	ErrInvalidStateTransition = errors.New("invalid application state transition")
	ErrApplicationNotEditable = errors.New("application can only be edited in draft")
	ErrPrerequisiteNotMet     = errors.New("required payment has not been completed")
	ErrAlreadyDisbursed       = errors.New("application already disbursed")
	ErrAmountBelowMinimum     = errors.New("requested amount below minimum")
	ErrInvalidRepaymentPeriod = errors.New("repayment period out of range")
	ErrCountyNotFound         = errors.New("county not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrFeeAlreadyPaid         = errors.New("fee already settled for this application")
	ErrApprovedAmountRequired = errors.New("approved amount required")
)
