package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type productRepo struct {
	db *pgxpool.Pool
}

func NewProductRepo(db *pgxpool.Pool) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, type, description, interest_rate, annual_fee, min_balance, tenure_months, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Description, &p.InterestRate,
		&p.AnnualFee, &p.MinBalance, &p.TenureMonths, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO products (name, type, description, interest_rate, annual_fee, min_balance, tenure_months)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, p.Name, p.Type, p.Description, p.InterestRate, p.AnnualFee, p.MinBalance, p.TenureMonths).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *productRepo) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET name=$1, type=$2, description=$3, interest_rate=$4,
			annual_fee=$5, min_balance=$6, tenure_months=$7
		WHERE id=$8
	`, p.Name, p.Type, p.Description, p.InterestRate, p.AnnualFee, p.MinBalance, p.TenureMonths, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrProductNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrProductNotFound
	}
	return nil
}
