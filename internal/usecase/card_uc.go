package usecase

import (
	"context"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// CardUsecase mirrors the account application workflow for credit cards,
// with the extra standing requirement of an active savings account.
type CardUsecase struct {
	cards    repository.CardRepository
	accounts repository.AccountRepository
	products repository.ProductRepository
	otps     *OTPUsecase
}

func NewCardUsecase(cards repository.CardRepository, accounts repository.AccountRepository, products repository.ProductRepository, otps *OTPUsecase) *CardUsecase {
	return &CardUsecase{cards: cards, accounts: accounts, products: products, otps: otps}
}

type CardApplication struct {
	UserID       int64
	ProductID    int64
	DesiredLimit float64
	Declaration  bool
	IDType       domain.IDType
	IDNumber     string
	DocumentPath string
}

const cardValidityYears = 3

func (uc *CardUsecase) Apply(ctx context.Context, in CardApplication) (*domain.CreditCard, error) {
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Type != domain.ProductCreditCard {
		return nil, xerrors.ErrInvalidProductType
	}
	if !in.Declaration {
		return nil, xerrors.ErrDeclarationRequired
	}
	if in.DocumentPath == "" {
		return nil, xerrors.ErrKYCDocumentRequired
	}
	if in.IDType != domain.IDTypeNRIC && in.IDType != domain.IDTypePassport {
		return nil, xerrors.ErrInvalidIDType
	}
	if !domain.ValidIDNumber(in.IDType, in.IDNumber) {
		return nil, xerrors.ErrInvalidIDNumber
	}
	if in.DesiredLimit <= 0 {
		return nil, xerrors.ErrInvalidCreditLimit
	}

	hasSavings, err := uc.accounts.HasActiveSavings(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !hasSavings {
		return nil, xerrors.ErrNoActiveSavings
	}

	dup, err := uc.cards.HasLiveApplication(ctx, in.UserID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, xerrors.ErrDuplicateApplication
	}

	card := &domain.CreditCard{
		UserID:      in.UserID,
		ProductID:   in.ProductID,
		CardNumber:  newCardNumber(),
		ExpiryDate:  time.Now().AddDate(cardValidityYears, 0, 0),
		CreditLimit: in.DesiredLimit,
		Status:      domain.StatusPending,
	}
	kyc := &domain.KYCDocument{
		UserID:       in.UserID,
		IDType:       in.IDType,
		IDNumber:     in.IDNumber,
		DocumentPath: in.DocumentPath,
		Status:       domain.KYCPending,
	}
	if err := uc.cards.CreateWithKYC(ctx, card, kyc); err != nil {
		return nil, err
	}
	return card, nil
}

func (uc *CardUsecase) ListMine(ctx context.Context, userID int64) ([]*domain.CreditCard, error) {
	return uc.cards.ListByUser(ctx, userID)
}

func (uc *CardUsecase) ListPending(ctx context.Context) ([]*domain.CreditCard, error) {
	return uc.cards.ListPending(ctx)
}

// Approve activates a pending card with the limit the admin granted, which
// may differ from what the customer asked for.
func (uc *CardUsecase) Approve(ctx context.Context, cardID int64, approvedLimit float64) error {
	if approvedLimit <= 0 {
		return xerrors.ErrInvalidCreditLimit
	}
	card, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.Status != domain.StatusPending {
		return xerrors.ErrNotPending
	}
	return uc.cards.Approve(ctx, cardID, approvedLimit)
}

func (uc *CardUsecase) Reject(ctx context.Context, cardID int64) error {
	card, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.Status != domain.StatusPending {
		return xerrors.ErrNotPending
	}
	return uc.cards.SetStatus(ctx, cardID, domain.StatusRejected, domain.KYCRejected)
}

func (uc *CardUsecase) DeletePending(ctx context.Context, userID, cardID int64) error {
	card, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.UserID != userID {
		return xerrors.ErrNotFound
	}
	if card.Status == domain.StatusActive {
		return xerrors.ErrOTPRequired
	}
	return uc.cards.Delete(ctx, cardID)
}

func (uc *CardUsecase) BeginCancel(ctx context.Context, user *domain.User, cardID int64) error {
	card, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.UserID != user.ID {
		return xerrors.ErrNotFound
	}
	if card.Status != domain.StatusActive {
		return xerrors.ErrAccountNotActive
	}
	return uc.otps.Begin(ctx, user, domain.PurposeCardCancel, cardID, nil)
}

func (uc *CardUsecase) CompleteCancel(ctx context.Context, userID int64, code string) error {
	action, err := uc.otps.Pending(ctx, userID, domain.PurposeCardCancel)
	if err != nil {
		return err
	}
	if err := uc.otps.Validate(ctx, userID, domain.PurposeCardCancel, code); err != nil {
		return err
	}

	card, err := uc.cards.GetByID(ctx, action.TargetID)
	if err != nil {
		return err
	}
	if card.UserID != userID {
		return xerrors.ErrNotFound
	}
	if err := uc.cards.Delete(ctx, action.TargetID); err != nil {
		return err
	}
	uc.otps.Finish(ctx, userID, domain.PurposeCardCancel)
	return nil
}
