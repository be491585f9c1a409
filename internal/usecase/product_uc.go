package usecase

import (
	"context"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type ProductUsecase struct {
	products repository.ProductRepository
}

func NewProductUsecase(products repository.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

func (uc *ProductUsecase) List(ctx context.Context) ([]*domain.Product, error) {
	return uc.products.List(ctx)
}

func (uc *ProductUsecase) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return uc.products.GetByID(ctx, id)
}

// Create validates the type-dependent fields and stores the product. Fields
// that do not apply to the type are discarded, not rejected.
func (uc *ProductUsecase) Create(ctx context.Context, p *domain.Product) error {
	if !p.Type.Valid() {
		return xerrors.ErrInvalidProductType
	}
	if !p.Normalize() {
		return xerrors.ErrInvalidProductType
	}
	return uc.products.Create(ctx, p)
}

func (uc *ProductUsecase) Update(ctx context.Context, p *domain.Product) error {
	if _, err := uc.products.GetByID(ctx, p.ID); err != nil {
		return err
	}
	if !p.Type.Valid() || !p.Normalize() {
		return xerrors.ErrInvalidProductType
	}
	return uc.products.Update(ctx, p)
}

func (uc *ProductUsecase) Delete(ctx context.Context, id int64) error {
	return uc.products.Delete(ctx, id)
}
