package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type AccountRepository interface {
	// CreateWithKYC inserts the account and its KYC document in one transaction.
	CreateWithKYC(ctx context.Context, a *domain.Account, k *domain.KYCDocument) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error)
	ListPending(ctx context.Context) ([]*domain.Account, error)
	HasLiveApplication(ctx context.Context, userID, productID int64) (bool, error)
	HasActiveSavings(ctx context.Context, userID int64) (bool, error)
	// SetStatus flips the account and its KYC document together.
	SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus, kyc domain.KYCStatus) error
	// Delete removes the account and its KYC document.
	Delete(ctx context.Context, id int64) error
}

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepo(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) CreateWithKYC(ctx context.Context, a *domain.Account, k *domain.KYCDocument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO accounts (user_id, product_id, account_number, balance, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, opened_at
	`, a.UserID, a.ProductID, a.AccountNumber, a.Balance, a.Status).Scan(&a.ID, &a.OpenedAt)
	if err != nil {
		return err
	}

	k.AccountID = &a.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO kyc_documents (user_id, account_id, id_type, id_number, document_path, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, uploaded_at
	`, k.UserID, k.AccountID, k.IDType, k.IDNumber, k.DocumentPath, k.Status).Scan(&k.ID, &k.UploadedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(ctx, `
		SELECT a.id, a.user_id, a.product_id, a.account_number, a.balance, a.status, a.opened_at,
			p.name, p.type
		FROM accounts a
		JOIN products p ON p.id = a.product_id
		WHERE a.id=$1
	`, id).Scan(&a.ID, &a.UserID, &a.ProductID, &a.AccountNumber, &a.Balance, &a.Status,
		&a.OpenedAt, &a.ProductName, &a.ProductType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.user_id, a.product_id, a.account_number, a.balance, a.status, a.opened_at,
			p.name, p.type,
			k.id, k.id_type, k.id_number, k.document_path, k.status
		FROM accounts a
		JOIN products p ON p.id = a.product_id
		LEFT JOIN kyc_documents k ON k.account_id = a.id
		WHERE a.user_id=$1
		ORDER BY a.opened_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows, false)
}

func (r *accountRepo) ListPending(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.user_id, a.product_id, a.account_number, a.balance, a.status, a.opened_at,
			p.name, p.type,
			k.id, k.id_type, k.id_number, k.document_path, k.status,
			u.username, u.email
		FROM accounts a
		JOIN products p ON p.id = a.product_id
		JOIN users u ON u.id = a.user_id
		LEFT JOIN kyc_documents k ON k.account_id = a.id
		WHERE a.status='pending'
		ORDER BY a.opened_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows, true)
}

func collectAccounts(rows pgx.Rows, withUser bool) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		var (
			a       domain.Account
			kycID   *int64
			idType  *domain.IDType
			idNum   *string
			docPath *string
			kStatus *domain.KYCStatus
		)
		dest := []any{
			&a.ID, &a.UserID, &a.ProductID, &a.AccountNumber, &a.Balance, &a.Status, &a.OpenedAt,
			&a.ProductName, &a.ProductType,
			&kycID, &idType, &idNum, &docPath, &kStatus,
		}
		if withUser {
			dest = append(dest, &a.Username, &a.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if kycID != nil {
			a.KYC = &domain.KYCDocument{
				ID: *kycID, UserID: a.UserID, AccountID: &a.ID,
				IDType: *idType, IDNumber: *idNum, DocumentPath: *docPath, Status: *kStatus,
			}
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *accountRepo) HasLiveApplication(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE user_id=$1 AND product_id=$2 AND status IN ('pending','active')
		)
	`, userID, productID).Scan(&exists)
	return exists, err
}

func (r *accountRepo) HasActiveSavings(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts a
			JOIN products p ON p.id = a.product_id
			WHERE a.user_id=$1 AND a.status='active' AND p.type='savings'
		)
	`, userID).Scan(&exists)
	return exists, err
}

func (r *accountRepo) SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus, kyc domain.KYCStatus) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE accounts SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE kyc_documents SET status=$1 WHERE account_id=$2`, kyc, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *accountRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM kyc_documents WHERE account_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}
	return tx.Commit(ctx)
}
