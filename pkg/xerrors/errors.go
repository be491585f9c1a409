package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParsePGErrorCode extracts the SQLSTATE from a pgx error, "unknown" otherwise.
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Registration / Login
var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidPhone       = errors.New("phone number must be exactly 8 digits")
	ErrInvalidPostcode    = errors.New("postal code must be exactly 6 digits")
)

// OTP
var (
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrExpiredOTP         = errors.New("expired OTP")
	ErrTooManyOTPRequests = errors.New("too many OTP requests")
	ErrOTPSessionExpired  = errors.New("OTP session expired or invalid")
	ErrOTPRequired        = errors.New("this action requires OTP confirmation")
)

// Applications / KYC
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrInvalidProductType   = errors.New("invalid product type")
	ErrDuplicateApplication = errors.New("an application or active account for this product already exists")
	ErrDeclarationRequired  = errors.New("you must agree to the declaration")
	ErrKYCDocumentRequired  = errors.New("KYC document is required")
	ErrInvalidIDType        = errors.New("invalid ID type selected")
	ErrInvalidIDNumber      = errors.New("invalid ID number format")
	ErrBelowMinimumDeposit  = errors.New("deposit is below the product minimum balance")
	ErrInvalidCreditLimit   = errors.New("invalid credit limit")
	ErrNoActiveSavings      = errors.New("an active savings account is required before applying for a credit card")
	ErrNotPending           = errors.New("application is no longer pending")
)

// Ledger
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSelfTransfer        = errors.New("cannot transfer to the same account")
	ErrAccountNotActive    = errors.New("account is not active")
	ErrAccountNotFound     = errors.New("account not found")
)

// Consultations
var (
	ErrSlotInPast          = errors.New("date cannot be in the past")
	ErrOutsideBusinessHour = errors.New("start time must be between 09:00 and 17:00")
	ErrDuplicateSlot       = errors.New("a session at this date and time already exists")
	ErrSlotUnavailable     = errors.New("session already booked or unavailable")
	ErrBookingConflict     = errors.New("you already have a consultation booked at this time")
	ErrCalendarNotLinked   = errors.New("advisor has not connected their calendar")
)
