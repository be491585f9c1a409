package domain

import (
	"regexp"
	"time"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

type IDType string

const (
	IDTypeNRIC     IDType = "nric"
	IDTypePassport IDType = "passport"
)

var (
	nricPattern     = regexp.MustCompile(`^[STFG]\d{7}[A-Z]$`)
	passportPattern = regexp.MustCompile(`^[A-Z]{1,2}\d{6,8}$`)
)

// ValidIDNumber reports whether number matches the format for the given type.
// Unknown types are always invalid.
func ValidIDNumber(t IDType, number string) bool {
	switch t {
	case IDTypeNRIC:
		return nricPattern.MatchString(number)
	case IDTypePassport:
		return passportPattern.MatchString(number)
	}
	return false
}

// KYCDocument is attached 1:1 to an account or a credit card (never both).
// Its status mirrors the parent's approval status.
type KYCDocument struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	AccountID    *int64    `json:"account_id,omitempty" db:"account_id"`
	CardID       *int64    `json:"card_id,omitempty" db:"card_id"`
	IDType       IDType    `json:"id_type" db:"id_type"`
	IDNumber     string    `json:"id_number" db:"id_number"`
	DocumentPath string    `json:"document_path" db:"document_path"`
	Status       KYCStatus `json:"status" db:"status"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}
