package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestProductCreateNormalizesByType(t *testing.T) {
	uc := NewProductUsecase(newFakeProductRepo())
	ctx := context.Background()

	savings := &domain.Product{
		Name: "Everyday Savings", Type: domain.ProductSavings, Description: "d",
		InterestRate: 1.5, MinBalance: fptr(500),
		AnnualFee: fptr(99), TenureMonths: iptr(12), // do not apply to savings
	}
	require.NoError(t, uc.Create(ctx, savings))
	assert.Nil(t, savings.AnnualFee)
	assert.Nil(t, savings.TenureMonths)
	assert.Equal(t, 500.0, *savings.MinBalance)

	card := &domain.Product{
		Name: "Platinum", Type: domain.ProductCreditCard, Description: "d",
		InterestRate: 24.9, AnnualFee: fptr(120), MinBalance: fptr(500),
	}
	require.NoError(t, uc.Create(ctx, card))
	assert.Nil(t, card.MinBalance)
	assert.Equal(t, 120.0, *card.AnnualFee)
}

func TestProductCreateRejectsMissingTypeFields(t *testing.T) {
	uc := NewProductUsecase(newFakeProductRepo())
	ctx := context.Background()

	tests := []struct {
		name    string
		product *domain.Product
	}{
		{"savings without min balance", &domain.Product{Name: "S", Type: domain.ProductSavings, Description: "d", InterestRate: 1}},
		{"fixed deposit without tenure", &domain.Product{Name: "F", Type: domain.ProductFixedDeposit, Description: "d", InterestRate: 3, MinBalance: fptr(1000)}},
		{"card without annual fee", &domain.Product{Name: "C", Type: domain.ProductCreditCard, Description: "d", InterestRate: 24}},
		{"unknown type", &domain.Product{Name: "X", Type: "loan", Description: "d", InterestRate: 5}},
		{"empty name", &domain.Product{Name: "", Type: domain.ProductSavings, Description: "d", InterestRate: 1, MinBalance: fptr(500)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, uc.Create(ctx, tt.product), xerrors.ErrInvalidProductType)
		})
	}
}

func TestProductUpdateAndDelete(t *testing.T) {
	repo := newFakeProductRepo()
	uc := NewProductUsecase(repo)
	ctx := context.Background()

	p := &domain.Product{Name: "12M Fixed", Type: domain.ProductFixedDeposit, Description: "d", InterestRate: 3.2, MinBalance: fptr(1000), TenureMonths: iptr(12)}
	require.NoError(t, uc.Create(ctx, p))

	p.InterestRate = 3.5
	require.NoError(t, uc.Update(ctx, p))

	got, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.InterestRate)

	require.NoError(t, uc.Delete(ctx, p.ID))
	_, err = uc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, xerrors.ErrProductNotFound)
}

func TestProductUpdateUnknownID(t *testing.T) {
	uc := NewProductUsecase(newFakeProductRepo())

	p := &domain.Product{ID: 42, Name: "S", Type: domain.ProductSavings, Description: "d", InterestRate: 1, MinBalance: fptr(500)}
	assert.ErrorIs(t, uc.Update(context.Background(), p), xerrors.ErrProductNotFound)
}
