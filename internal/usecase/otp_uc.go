package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/mailer"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// RequestLimiter throttles OTP issuance per user and purpose.
type RequestLimiter interface {
	CanRequest(ctx context.Context, userID int64, purpose string) error
}

// OTPUsecase issues and validates single-use confirmation codes and keeps
// the pending-action marker that gates the confirmation page.
type OTPUsecase struct {
	otps    repository.OTPRepository
	pending repository.PendingActionRepository
	limiter RequestLimiter
	sender  mailer.Sender
	ttl     time.Duration
	now     func() time.Time
}

func NewOTPUsecase(otps repository.OTPRepository, pending repository.PendingActionRepository, limiter RequestLimiter, sender mailer.Sender, ttl time.Duration) *OTPUsecase {
	return &OTPUsecase{
		otps:    otps,
		pending: pending,
		limiter: limiter,
		sender:  sender,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue invalidates any unconsumed code for (user, purpose), stores a fresh
// one and emails it. Only the newest code is ever accepted.
func (uc *OTPUsecase) Issue(ctx context.Context, user *domain.User, purpose domain.OTPPurpose) error {
	if err := uc.limiter.CanRequest(ctx, user.ID, string(purpose)); err != nil {
		return err
	}

	if err := uc.otps.InvalidateUnused(ctx, user.ID, purpose); err != nil {
		return fmt.Errorf("invalidate previous codes: %w", err)
	}

	token := &domain.OTPToken{
		UserID:    user.ID,
		Code:      newOTPCode(),
		Purpose:   purpose,
		ExpiresAt: uc.now().Add(uc.ttl),
	}
	if err := uc.otps.Create(ctx, token); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if err := uc.sender.Send(user.Email, "Your confirmation code", mailer.OTPBody(user.FirstName, token.Code, uc.ttl)); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// Begin opens (or refreshes) the confirmation window for an action and
// issues a code. payload carries staged form data for actions that apply
// changes on confirm, nil otherwise.
func (uc *OTPUsecase) Begin(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, targetID int64, payload []byte) error {
	action := &domain.PendingAction{
		UserID:    user.ID,
		Purpose:   purpose,
		TargetID:  targetID,
		Payload:   payload,
		ExpiresAt: uc.now().Add(uc.ttl),
	}
	if err := uc.pending.Upsert(ctx, action); err != nil {
		return fmt.Errorf("record pending action: %w", err)
	}
	return uc.Issue(ctx, user, purpose)
}

// Pending returns the live confirmation marker, or ErrOTPSessionExpired when
// none exists or it has lapsed. The confirmation page must not render
// without it.
func (uc *OTPUsecase) Pending(ctx context.Context, userID int64, purpose domain.OTPPurpose) (*domain.PendingAction, error) {
	action, err := uc.pending.Get(ctx, userID, purpose)
	if err != nil {
		return nil, err
	}
	if action.Expired(uc.now()) {
		_ = uc.pending.Delete(ctx, userID, purpose)
		return nil, xerrors.ErrOTPSessionExpired
	}
	return action, nil
}

// Validate consumes the code: it succeeds only for the newest unused,
// unexpired token and marks it used so a replay fails.
func (uc *OTPUsecase) Validate(ctx context.Context, userID int64, purpose domain.OTPPurpose, code string) error {
	token, err := uc.otps.FindUnused(ctx, userID, purpose, code)
	if err != nil {
		return err
	}
	if token.Expired(uc.now()) {
		return xerrors.ErrExpiredOTP
	}
	return uc.otps.MarkUsed(ctx, token.ID)
}

// Resend refreshes the confirmation window and issues a new code. The
// previous code dies with the reissue.
func (uc *OTPUsecase) Resend(ctx context.Context, user *domain.User, purpose domain.OTPPurpose) error {
	action, err := uc.Pending(ctx, user.ID, purpose)
	if err != nil {
		return err
	}
	return uc.Begin(ctx, user, purpose, action.TargetID, action.Payload)
}

// Finish clears the marker after the guarded action ran.
func (uc *OTPUsecase) Finish(ctx context.Context, userID int64, purpose domain.OTPPurpose) {
	if err := uc.pending.Delete(ctx, userID, purpose); err != nil {
		log.Printf("[WARN] clear pending action user=%d purpose=%s: %v", userID, purpose, err)
	}
}
