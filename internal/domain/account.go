package domain

import "time"

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusActive   ApplicationStatus = "active"
	StatusRejected ApplicationStatus = "rejected"
)

type Account struct {
	ID            int64             `json:"id" db:"id"`
	UserID        int64             `json:"user_id" db:"user_id"`
	ProductID     int64             `json:"product_id" db:"product_id"`
	AccountNumber string            `json:"account_number" db:"account_number"`
	Balance       float64           `json:"balance" db:"balance"`
	Status        ApplicationStatus `json:"status" db:"status"`
	OpenedAt      time.Time         `json:"opened_at" db:"opened_at"`

	// joined columns, populated by list queries
	ProductName string      `json:"product_name,omitempty" db:"-"`
	ProductType ProductType `json:"product_type,omitempty" db:"-"`
	Username    string      `json:"username,omitempty" db:"-"`
	UserEmail   string      `json:"user_email,omitempty" db:"-"`
	KYC         *KYCDocument `json:"kyc,omitempty" db:"-"`
}

type CreditCard struct {
	ID                 int64             `json:"id" db:"id"`
	UserID             int64             `json:"user_id" db:"user_id"`
	ProductID          int64             `json:"product_id" db:"product_id"`
	CardNumber         string            `json:"card_number" db:"card_number"`
	ExpiryDate         time.Time         `json:"expiry_date" db:"expiry_date"`
	CreditLimit        float64           `json:"credit_limit" db:"credit_limit"`
	OutstandingBalance float64           `json:"outstanding_balance" db:"outstanding_balance"`
	Status             ApplicationStatus `json:"status" db:"status"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`

	ProductName string       `json:"product_name,omitempty" db:"-"`
	Username    string       `json:"username,omitempty" db:"-"`
	UserEmail   string       `json:"user_email,omitempty" db:"-"`
	KYC         *KYCDocument `json:"kyc,omitempty" db:"-"`
}
