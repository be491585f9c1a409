package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type OTPRepository interface {
	// InvalidateUnused marks every unconsumed token for (user, purpose) as
	// used, so only the newest issued code is ever valid.
	InvalidateUnused(ctx context.Context, userID int64, purpose domain.OTPPurpose) error
	Create(ctx context.Context, t *domain.OTPToken) error
	// FindUnused returns the newest unconsumed token matching the code.
	// Expiry is checked by the caller.
	FindUnused(ctx context.Context, userID int64, purpose domain.OTPPurpose, code string) (*domain.OTPToken, error)
	MarkUsed(ctx context.Context, id int64) error
}

type otpRepo struct {
	db *pgxpool.Pool
}

func NewOTPRepo(db *pgxpool.Pool) OTPRepository {
	return &otpRepo{db: db}
}

func (r *otpRepo) InvalidateUnused(ctx context.Context, userID int64, purpose domain.OTPPurpose) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otp_tokens SET is_used=TRUE
		WHERE user_id=$1 AND purpose=$2 AND is_used=FALSE
	`, userID, purpose)
	return err
}

func (r *otpRepo) Create(ctx context.Context, t *domain.OTPToken) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO otp_tokens (user_id, code, purpose, expires_at, is_used)
		VALUES ($1,$2,$3,$4,FALSE)
		RETURNING id, created_at
	`, t.UserID, t.Code, t.Purpose, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt)
}

func (r *otpRepo) FindUnused(ctx context.Context, userID int64, purpose domain.OTPPurpose, code string) (*domain.OTPToken, error) {
	var t domain.OTPToken
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, code, purpose, expires_at, is_used, created_at
		FROM otp_tokens
		WHERE user_id=$1 AND purpose=$2 AND code=$3 AND is_used=FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, purpose, code).Scan(&t.ID, &t.UserID, &t.Code, &t.Purpose, &t.ExpiresAt, &t.IsUsed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrInvalidOTP
		}
		return nil, err
	}
	return &t, nil
}

func (r *otpRepo) MarkUsed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE otp_tokens SET is_used=TRUE WHERE id=$1`, id)
	return err
}

type PendingActionRepository interface {
	// Upsert replaces any live marker for (user, purpose).
	Upsert(ctx context.Context, p *domain.PendingAction) error
	Get(ctx context.Context, userID int64, purpose domain.OTPPurpose) (*domain.PendingAction, error)
	Delete(ctx context.Context, userID int64, purpose domain.OTPPurpose) error
}

type pendingActionRepo struct {
	db *pgxpool.Pool
}

func NewPendingActionRepo(db *pgxpool.Pool) PendingActionRepository {
	return &pendingActionRepo{db: db}
}

func (r *pendingActionRepo) Upsert(ctx context.Context, p *domain.PendingAction) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO pending_actions (user_id, purpose, target_id, payload, expires_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, purpose) DO UPDATE
			SET target_id=EXCLUDED.target_id, payload=EXCLUDED.payload,
				expires_at=EXCLUDED.expires_at, created_at=NOW()
		RETURNING id, created_at
	`, p.UserID, p.Purpose, p.TargetID, p.Payload, p.ExpiresAt).Scan(&p.ID, &p.CreatedAt)
}

func (r *pendingActionRepo) Get(ctx context.Context, userID int64, purpose domain.OTPPurpose) (*domain.PendingAction, error) {
	var p domain.PendingAction
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, purpose, target_id, payload, expires_at, created_at
		FROM pending_actions
		WHERE user_id=$1 AND purpose=$2
	`, userID, purpose).Scan(&p.ID, &p.UserID, &p.Purpose, &p.TargetID, &p.Payload, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrOTPSessionExpired
		}
		return nil, err
	}
	return &p, nil
}

func (r *pendingActionRepo) Delete(ctx context.Context, userID int64, purpose domain.OTPPurpose) error {
	_, err := r.db.Exec(ctx, `DELETE FROM pending_actions WHERE user_id=$1 AND purpose=$2`, userID, purpose)
	return err
}
