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

type cardFixture struct {
	uc       *CardUsecase
	cards    *fakeCardRepo
	accounts *fakeAccountRepo
	otpRepo  *fakeOTPRepo
	product  *domain.Product
}

func newCardFixture(t *testing.T) *cardFixture {
	t.Helper()
	cards := newFakeCardRepo()
	accounts := newFakeAccountRepo()
	products := newFakeProductRepo()
	otpRepo := &fakeOTPRepo{}
	otps := NewOTPUsecase(otpRepo, newFakePendingRepo(), &fakeLimiter{}, &fakeSender{}, 5*time.Minute)

	fee := 120.0
	product := &domain.Product{Name: "Platinum Card", Type: domain.ProductCreditCard, Description: "d", InterestRate: 24.9, AnnualFee: &fee}
	require.NoError(t, products.Create(context.Background(), product))

	return &cardFixture{
		uc:       NewCardUsecase(cards, accounts, products, otps),
		cards:    cards,
		accounts: accounts,
		otpRepo:  otpRepo,
		product:  product,
	}
}

// seedActiveSavings gives the user the active savings account a card
// application requires.
func (f *cardFixture) seedActiveSavings(t *testing.T, userID int64) {
	t.Helper()
	a := &domain.Account{UserID: userID, ProductID: 99, AccountNumber: "RP000000001", Balance: 1000, Status: domain.StatusActive}
	require.NoError(t, f.accounts.CreateWithKYC(context.Background(), a, &domain.KYCDocument{UserID: userID}))
}

func validCardApplication(userID, productID int64) CardApplication {
	return CardApplication{
		UserID:       userID,
		ProductID:    productID,
		DesiredLimit: 5000,
		Declaration:  true,
		IDType:       domain.IDTypeNRIC,
		IDNumber:     "S1234567A",
		DocumentPath: "kyc/doc.pdf",
	}
}

func TestCardApplyCreatesPendingCard(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	f.seedActiveSavings(t, 1)

	card, err := f.uc.Apply(ctx, validCardApplication(1, f.product.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, card.Status)
	assert.Regexp(t, `^\d{16}$`, card.CardNumber)
	assert.Equal(t, 5000.0, card.CreditLimit)
	assert.Zero(t, card.OutstandingBalance)
	assert.WithinDuration(t, time.Now().AddDate(3, 0, 0), card.ExpiryDate, time.Minute)
}

func TestCardApplyRequiresActiveSavings(t *testing.T) {
	f := newCardFixture(t)

	_, err := f.uc.Apply(context.Background(), validCardApplication(1, f.product.ID))
	assert.ErrorIs(t, err, xerrors.ErrNoActiveSavings)
}

func TestCardApplyPendingSavingsDoesNotCount(t *testing.T) {
	f := newCardFixture(t)
	a := &domain.Account{UserID: 1, ProductID: 99, AccountNumber: "RP000000001", Status: domain.StatusPending}
	require.NoError(t, f.accounts.CreateWithKYC(context.Background(), a, &domain.KYCDocument{UserID: 1}))

	_, err := f.uc.Apply(context.Background(), validCardApplication(1, f.product.ID))
	assert.ErrorIs(t, err, xerrors.ErrNoActiveSavings)
}

func TestCardApplyValidation(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	f.seedActiveSavings(t, 1)

	tests := []struct {
		name   string
		mutate func(*CardApplication)
		want   error
	}{
		{"zero limit", func(a *CardApplication) { a.DesiredLimit = 0 }, xerrors.ErrInvalidCreditLimit},
		{"negative limit", func(a *CardApplication) { a.DesiredLimit = -100 }, xerrors.ErrInvalidCreditLimit},
		{"no declaration", func(a *CardApplication) { a.Declaration = false }, xerrors.ErrDeclarationRequired},
		{"no document", func(a *CardApplication) { a.DocumentPath = "" }, xerrors.ErrKYCDocumentRequired},
		{"bad passport", func(a *CardApplication) { a.IDType = domain.IDTypePassport; a.IDNumber = "12345" }, xerrors.ErrInvalidIDNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCardApplication(1, f.product.ID)
			tt.mutate(&in)
			_, err := f.uc.Apply(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCardApplyBlocksDuplicate(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	f.seedActiveSavings(t, 1)

	_, err := f.uc.Apply(ctx, validCardApplication(1, f.product.ID))
	require.NoError(t, err)

	_, err = f.uc.Apply(ctx, validCardApplication(1, f.product.ID))
	assert.ErrorIs(t, err, xerrors.ErrDuplicateApplication)
}

func TestCardApproveSetsGrantedLimit(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	f.seedActiveSavings(t, 1)

	card, err := f.uc.Apply(ctx, validCardApplication(1, f.product.ID))
	require.NoError(t, err)

	// admin grants less than asked
	require.NoError(t, f.uc.Approve(ctx, card.ID, 3000))

	got, err := f.cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, 3000.0, got.CreditLimit)
	assert.Equal(t, domain.KYCVerified, f.cards.kyc[card.ID].Status)
}

func TestCardApproveRejectsBadLimit(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	f.seedActiveSavings(t, 1)

	card, err := f.uc.Apply(ctx, validCardApplication(1, f.product.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Approve(ctx, card.ID, 0), xerrors.ErrInvalidCreditLimit)
}

func TestCardReject(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	f.seedActiveSavings(t, 1)

	card, err := f.uc.Apply(ctx, validCardApplication(1, f.product.ID))
	require.NoError(t, err)

	require.NoError(t, f.uc.Reject(ctx, card.ID))

	got, err := f.cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Equal(t, domain.KYCRejected, f.cards.kyc[card.ID].Status)

	assert.ErrorIs(t, f.uc.Approve(ctx, card.ID, 3000), xerrors.ErrNotPending)
}

func TestCardCancelActiveViaOTP(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	user := testUser()
	f.seedActiveSavings(t, user.ID)

	card, err := f.uc.Apply(ctx, validCardApplication(user.ID, f.product.ID))
	require.NoError(t, err)
	require.NoError(t, f.uc.Approve(ctx, card.ID, 5000))

	assert.ErrorIs(t, f.uc.DeletePending(ctx, user.ID, card.ID), xerrors.ErrOTPRequired)

	require.NoError(t, f.uc.BeginCancel(ctx, user, card.ID))
	code := f.otpRepo.latest(user.ID, domain.PurposeCardCancel).Code
	require.NoError(t, f.uc.CompleteCancel(ctx, user.ID, code))

	_, err = f.cards.GetByID(ctx, card.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
