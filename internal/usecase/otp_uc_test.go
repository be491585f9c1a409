package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

func newOTPFixture() (*OTPUsecase, *fakeOTPRepo, *fakePendingRepo, *fakeLimiter, *fakeSender) {
	otps := &fakeOTPRepo{}
	pending := newFakePendingRepo()
	limiter := &fakeLimiter{}
	sender := &fakeSender{}
	uc := NewOTPUsecase(otps, pending, limiter, sender, 5*time.Minute)
	return uc, otps, pending, limiter, sender
}

func testUser() *domain.User {
	return &domain.User{ID: 1, Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Tan", Role: domain.RoleCustomer}
}

func TestOTPIssueInvalidatesPreviousCodes(t *testing.T) {
	uc, otps, _, _, sender := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Issue(ctx, user, domain.PurposeAccountCancel))
	first := otps.latest(user.ID, domain.PurposeAccountCancel).Code

	require.NoError(t, uc.Issue(ctx, user, domain.PurposeAccountCancel))
	second := otps.latest(user.ID, domain.PurposeAccountCancel).Code

	// only the newest code may validate
	err := uc.Validate(ctx, user.ID, domain.PurposeAccountCancel, first)
	if first != second {
		assert.ErrorIs(t, err, xerrors.ErrInvalidOTP)
	}
	assert.NoError(t, uc.Validate(ctx, user.ID, domain.PurposeAccountCancel, second))
	assert.Len(t, sender.sent, 2)
}

func TestOTPValidateIsSingleUse(t *testing.T) {
	uc, otps, _, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Issue(ctx, user, domain.PurposeCardCancel))
	code := otps.latest(user.ID, domain.PurposeCardCancel).Code

	require.NoError(t, uc.Validate(ctx, user.ID, domain.PurposeCardCancel, code))
	assert.ErrorIs(t, uc.Validate(ctx, user.ID, domain.PurposeCardCancel, code), xerrors.ErrInvalidOTP)
}

func TestOTPValidateRejectsExpiredCode(t *testing.T) {
	uc, otps, _, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Issue(ctx, user, domain.PurposeProfileUpdate))
	code := otps.latest(user.ID, domain.PurposeProfileUpdate).Code

	uc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	assert.ErrorIs(t, uc.Validate(ctx, user.ID, domain.PurposeProfileUpdate, code), xerrors.ErrExpiredOTP)
}

func TestOTPValidateRejectsWrongPurpose(t *testing.T) {
	uc, otps, _, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Issue(ctx, user, domain.PurposeAccountCancel))
	code := otps.latest(user.ID, domain.PurposeAccountCancel).Code

	assert.ErrorIs(t, uc.Validate(ctx, user.ID, domain.PurposeCardCancel, code), xerrors.ErrInvalidOTP)
}

func TestOTPIssueRespectsRateLimit(t *testing.T) {
	uc, _, _, limiter, sender := newOTPFixture()
	limiter.err = xerrors.ErrTooManyOTPRequests

	err := uc.Issue(context.Background(), testUser(), domain.PurposeAccountCancel)
	assert.ErrorIs(t, err, xerrors.ErrTooManyOTPRequests)
	assert.Empty(t, sender.sent)
}

func TestOTPBeginRecordsPendingAction(t *testing.T) {
	uc, _, _, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, user, domain.PurposeAccountCancel, 42, nil))

	action, err := uc.Pending(ctx, user.ID, domain.PurposeAccountCancel)
	require.NoError(t, err)
	assert.EqualValues(t, 42, action.TargetID)
	assert.True(t, action.Matches(domain.PurposeAccountCancel, 42, time.Now()))
}

func TestOTPPendingExpiresIndependentlyOfToken(t *testing.T) {
	uc, _, _, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, user, domain.PurposeAccountCancel, 42, nil))

	uc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	_, err := uc.Pending(ctx, user.ID, domain.PurposeAccountCancel)
	assert.ErrorIs(t, err, xerrors.ErrOTPSessionExpired)
}

func TestOTPPendingMissingWithoutBegin(t *testing.T) {
	uc, _, _, _, _ := newOTPFixture()

	_, err := uc.Pending(context.Background(), 1, domain.PurposeAccountCancel)
	assert.ErrorIs(t, err, xerrors.ErrOTPSessionExpired)
}

func TestOTPResendKeepsTargetAndRefreshesWindow(t *testing.T) {
	uc, otps, pending, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, user, domain.PurposeCardCancel, 7, []byte(`{"k":"v"}`)))
	firstAction, err := pending.Get(ctx, user.ID, domain.PurposeCardCancel)
	require.NoError(t, err)

	require.NoError(t, uc.Resend(ctx, user, domain.PurposeCardCancel))

	action, err := pending.Get(ctx, user.ID, domain.PurposeCardCancel)
	require.NoError(t, err)
	assert.EqualValues(t, 7, action.TargetID)
	assert.JSONEq(t, `{"k":"v"}`, string(action.Payload))
	assert.False(t, action.ExpiresAt.Before(firstAction.ExpiresAt))

	// previous token is dead after the reissue
	assert.GreaterOrEqual(t, len(otps.tokens), 2)
	assert.True(t, otps.tokens[0].IsUsed)
}

func TestOTPFinishClearsPendingAction(t *testing.T) {
	uc, _, _, _, _ := newOTPFixture()
	user := testUser()
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, user, domain.PurposeAccountCancel, 42, nil))
	uc.Finish(ctx, user.ID, domain.PurposeAccountCancel)

	_, err := uc.Pending(ctx, user.ID, domain.PurposeAccountCancel)
	assert.ErrorIs(t, err, xerrors.ErrOTPSessionExpired)
}

func TestOTPIssueFailsWhenEmailFails(t *testing.T) {
	uc, _, _, _, sender := newOTPFixture()
	sender.err = assert.AnError

	err := uc.Issue(context.Background(), testUser(), domain.PurposeAccountCancel)
	assert.Error(t, err)
}
