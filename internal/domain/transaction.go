package domain

import "time"

type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionTransfer TransactionType = "transfer"
)

// Transaction is an append-only ledger row. BalanceAfter is the account
// balance as of this entry.
type Transaction struct {
	ID           int64           `json:"id" db:"id"`
	AccountID    int64           `json:"account_id" db:"account_id"`
	Reference    string          `json:"reference" db:"reference"`
	Type         TransactionType `json:"type" db:"type"`
	Amount       float64         `json:"amount" db:"amount"`
	BalanceAfter float64         `json:"balance_after" db:"balance_after"`
	Description  string          `json:"description" db:"description"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	AccountNumber string `json:"account_number,omitempty" db:"-"`
	ProductName   string `json:"product_name,omitempty" db:"-"`
}

// DailyCount is a per-day transaction tally for the report chart.
type DailyCount struct {
	Date  time.Time `json:"date" db:"date"`
	Count int64     `json:"count" db:"count"`
}
