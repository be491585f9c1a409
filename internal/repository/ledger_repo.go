package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
)

// BalanceUpdate is one half of a balance movement computed by the usecase.
type BalanceUpdate struct {
	AccountID  int64
	NewBalance float64
}

type LedgerRepository interface {
	// Apply persists the balance updates and their ledger rows in a single
	// transaction: either every row lands or none does.
	Apply(ctx context.Context, updates []BalanceUpdate, entries []*domain.Transaction) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Transaction, error)
}

type ledgerRepo struct {
	db *pgxpool.Pool
}

func NewLedgerRepo(db *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Apply(ctx context.Context, updates []BalanceUpdate, entries []*domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		if _, err := tx.Exec(ctx, `UPDATE accounts SET balance=$1 WHERE id=$2`, u.NewBalance, u.AccountID); err != nil {
			return err
		}
	}
	for _, e := range entries {
		err := tx.QueryRow(ctx, `
			INSERT INTO transactions (account_id, reference, type, amount, balance_after, description)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id, created_at
		`, e.AccountID, e.Reference, e.Type, e.Amount, e.BalanceAfter, e.Description).
			Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ledgerRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.account_id, t.reference, t.type, t.amount, t.balance_after, t.description,
			t.created_at, a.account_number, p.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN products p ON p.id = a.product_id
		WHERE a.user_id=$1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Reference, &t.Type, &t.Amount, &t.BalanceAfter,
			&t.Description, &t.CreatedAt, &t.AccountNumber, &t.ProductName); err != nil {
			return nil, err
		}
		entries = append(entries, &t)
	}
	return entries, rows.Err()
}
