package domain

import "time"

type ProductType string

const (
	ProductSavings      ProductType = "savings"
	ProductFixedDeposit ProductType = "fixed_deposit"
	ProductCreditCard   ProductType = "credit_card"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductSavings, ProductFixedDeposit, ProductCreditCard:
		return true
	}
	return false
}

// Product is an immutable catalog entry. Which numeric columns apply depends
// on the type: savings and fixed deposits carry a minimum balance (deposits
// also a tenure), credit cards carry an annual fee; the rest stay NULL.
type Product struct {
	ID           int64       `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Type         ProductType `json:"type" db:"type"`
	Description  string      `json:"description" db:"description"`
	InterestRate float64     `json:"interest_rate" db:"interest_rate"`
	AnnualFee    *float64    `json:"annual_fee,omitempty" db:"annual_fee"`
	MinBalance   *float64    `json:"min_balance,omitempty" db:"min_balance"`
	TenureMonths *int        `json:"tenure_months,omitempty" db:"tenure_months"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// Normalize nulls out the fields that do not apply to the product type and
// reports whether the required ones are present.
func (p *Product) Normalize() bool {
	switch p.Type {
	case ProductSavings:
		if p.MinBalance == nil {
			return false
		}
		p.AnnualFee = nil
		p.TenureMonths = nil
	case ProductFixedDeposit:
		if p.MinBalance == nil || p.TenureMonths == nil {
			return false
		}
		p.AnnualFee = nil
	case ProductCreditCard:
		if p.AnnualFee == nil {
			return false
		}
		p.MinBalance = nil
		p.TenureMonths = nil
	default:
		return false
	}
	return p.Name != "" && p.Description != ""
}
