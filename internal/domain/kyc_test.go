package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIDNumber(t *testing.T) {
	tests := []struct {
		idType IDType
		number string
		want   bool
	}{
		{IDTypeNRIC, "S1234567A", true},
		{IDTypeNRIC, "T7654321Z", true},
		{IDTypeNRIC, "F1234567B", true},
		{IDTypeNRIC, "G1234567C", true},
		{IDTypeNRIC, "A1234567A", false}, // bad prefix
		{IDTypeNRIC, "S123456A", false},  // seven digits required
		{IDTypeNRIC, "S1234567a", false}, // lowercase checksum
		{IDTypePassport, "K1234567", true},
		{IDTypePassport, "AB123456", true},
		{IDTypePassport, "A12345678", true},
		{IDTypePassport, "A12345", false},     // too few digits
		{IDTypePassport, "ABC123456", false},  // too many letters
		{IDTypePassport, "1234567", false},    // no letter
		{IDType("other"), "S1234567A", false}, // unknown type never valid
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidIDNumber(tt.idType, tt.number), "%s %s", tt.idType, tt.number)
	}
}

func TestProductNormalize(t *testing.T) {
	min := 500.0
	fee := 120.0
	tenure := 12

	p := Product{Name: "S", Description: "d", Type: ProductSavings, MinBalance: &min, AnnualFee: &fee, TenureMonths: &tenure}
	assert.True(t, p.Normalize())
	assert.Nil(t, p.AnnualFee)
	assert.Nil(t, p.TenureMonths)

	p = Product{Name: "F", Description: "d", Type: ProductFixedDeposit, MinBalance: &min}
	assert.False(t, p.Normalize()) // tenure missing

	p = Product{Name: "C", Description: "d", Type: ProductCreditCard, AnnualFee: &fee, MinBalance: &min}
	assert.True(t, p.Normalize())
	assert.Nil(t, p.MinBalance)
}
