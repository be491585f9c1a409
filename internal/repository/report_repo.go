package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
)

// ReportRepository serves the read-only aggregates behind the admin report.
type ReportRepository interface {
	Counts(ctx context.Context) (*domain.ReportCounts, error)
	TransactionsPerDay(ctx context.Context, since time.Time) ([]*domain.DailyCount, error)
}

type reportRepo struct {
	db *pgxpool.Pool
}

func NewReportRepo(db *pgxpool.Pool) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Counts(ctx context.Context) (*domain.ReportCounts, error) {
	var c domain.ReportCounts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM accounts WHERE status='active'),
			(SELECT COUNT(*) FROM accounts WHERE status='pending'),
			(SELECT COUNT(*) FROM credit_cards WHERE status='active'),
			(SELECT COUNT(*) FROM credit_cards WHERE status='pending'),
			(SELECT COUNT(*) FROM consultations),
			(SELECT COUNT(*) FROM consultations WHERE status='completed'),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COALESCE(SUM(balance),0) FROM accounts WHERE status='active')
	`).Scan(&c.TotalUsers, &c.ActiveAccounts, &c.PendingAccounts, &c.ActiveCards, &c.PendingCards,
		&c.TotalConsultations, &c.CompletedConsultations, &c.TotalTransactions, &c.TotalActiveBalance)
	if err != nil {
		return nil, err
	}
	c.GeneratedAt = time.Now()
	return &c, nil
}

func (r *reportRepo) TransactionsPerDay(ctx context.Context, since time.Time) ([]*domain.DailyCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DATE(created_at) AS day, COUNT(*)
		FROM transactions
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.DailyCount
	for rows.Next() {
		var d domain.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
