package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type CardRepository interface {
	CreateWithKYC(ctx context.Context, c *domain.CreditCard, k *domain.KYCDocument) error
	GetByID(ctx context.Context, id int64) (*domain.CreditCard, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.CreditCard, error)
	ListPending(ctx context.Context) ([]*domain.CreditCard, error)
	HasLiveApplication(ctx context.Context, userID, productID int64) (bool, error)
	// Approve activates the card with the admin-granted limit and verifies KYC.
	Approve(ctx context.Context, id int64, approvedLimit float64) error
	SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus, kyc domain.KYCStatus) error
	Delete(ctx context.Context, id int64) error
}

type cardRepo struct {
	db *pgxpool.Pool
}

func NewCardRepo(db *pgxpool.Pool) CardRepository {
	return &cardRepo{db: db}
}

func (r *cardRepo) CreateWithKYC(ctx context.Context, c *domain.CreditCard, k *domain.KYCDocument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO credit_cards (user_id, product_id, card_number, expiry_date, credit_limit, outstanding_balance, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, c.UserID, c.ProductID, c.CardNumber, c.ExpiryDate, c.CreditLimit, c.OutstandingBalance, c.Status).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return err
	}

	k.CardID = &c.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO kyc_documents (user_id, card_id, id_type, id_number, document_path, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, uploaded_at
	`, k.UserID, k.CardID, k.IDType, k.IDNumber, k.DocumentPath, k.Status).Scan(&k.ID, &k.UploadedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *cardRepo) GetByID(ctx context.Context, id int64) (*domain.CreditCard, error) {
	var c domain.CreditCard
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.card_number, c.expiry_date, c.credit_limit,
			c.outstanding_balance, c.status, c.created_at, p.name
		FROM credit_cards c
		JOIN products p ON p.id = c.product_id
		WHERE c.id=$1
	`, id).Scan(&c.ID, &c.UserID, &c.ProductID, &c.CardNumber, &c.ExpiryDate, &c.CreditLimit,
		&c.OutstandingBalance, &c.Status, &c.CreatedAt, &c.ProductName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.CreditCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.card_number, c.expiry_date, c.credit_limit,
			c.outstanding_balance, c.status, c.created_at, p.name,
			k.id, k.id_type, k.id_number, k.document_path, k.status
		FROM credit_cards c
		JOIN products p ON p.id = c.product_id
		LEFT JOIN kyc_documents k ON k.card_id = c.id
		WHERE c.user_id=$1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCards(rows, false)
}

func (r *cardRepo) ListPending(ctx context.Context) ([]*domain.CreditCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.card_number, c.expiry_date, c.credit_limit,
			c.outstanding_balance, c.status, c.created_at, p.name,
			k.id, k.id_type, k.id_number, k.document_path, k.status,
			u.username, u.email
		FROM credit_cards c
		JOIN products p ON p.id = c.product_id
		JOIN users u ON u.id = c.user_id
		LEFT JOIN kyc_documents k ON k.card_id = c.id
		WHERE c.status='pending'
		ORDER BY c.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCards(rows, true)
}

func collectCards(rows pgx.Rows, withUser bool) ([]*domain.CreditCard, error) {
	var cards []*domain.CreditCard
	for rows.Next() {
		var (
			c       domain.CreditCard
			kycID   *int64
			idType  *domain.IDType
			idNum   *string
			docPath *string
			kStatus *domain.KYCStatus
		)
		dest := []any{
			&c.ID, &c.UserID, &c.ProductID, &c.CardNumber, &c.ExpiryDate, &c.CreditLimit,
			&c.OutstandingBalance, &c.Status, &c.CreatedAt, &c.ProductName,
			&kycID, &idType, &idNum, &docPath, &kStatus,
		}
		if withUser {
			dest = append(dest, &c.Username, &c.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if kycID != nil {
			c.KYC = &domain.KYCDocument{
				ID: *kycID, UserID: c.UserID, CardID: &c.ID,
				IDType: *idType, IDNumber: *idNum, DocumentPath: *docPath, Status: *kStatus,
			}
		}
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}

func (r *cardRepo) HasLiveApplication(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credit_cards
			WHERE user_id=$1 AND product_id=$2 AND status IN ('pending','active')
		)
	`, userID, productID).Scan(&exists)
	return exists, err
}

func (r *cardRepo) Approve(ctx context.Context, id int64, approvedLimit float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE credit_cards SET credit_limit=$1, status='active' WHERE id=$2
	`, approvedLimit, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE kyc_documents SET status='verified' WHERE card_id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *cardRepo) SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus, kyc domain.KYCStatus) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE credit_cards SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE kyc_documents SET status=$1 WHERE card_id=$2`, kyc, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *cardRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM kyc_documents WHERE card_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM credit_cards WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return tx.Commit(ctx)
}
