package usecase

import (
	"context"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// AccountUsecase covers the savings and fixed-deposit application workflow
// from customer submission through admin decision and cancellation.
type AccountUsecase struct {
	accounts repository.AccountRepository
	products repository.ProductRepository
	otps     *OTPUsecase
}

func NewAccountUsecase(accounts repository.AccountRepository, products repository.ProductRepository, otps *OTPUsecase) *AccountUsecase {
	return &AccountUsecase{accounts: accounts, products: products, otps: otps}
}

// AccountApplication is the customer-facing application form.
type AccountApplication struct {
	UserID       int64
	ProductID    int64
	Deposit      float64
	Declaration  bool
	IDType       domain.IDType
	IDNumber     string
	DocumentPath string
}

// Apply validates the application and stores the pending account together
// with its KYC document.
func (uc *AccountUsecase) Apply(ctx context.Context, in AccountApplication) (*domain.Account, error) {
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Type != domain.ProductSavings && product.Type != domain.ProductFixedDeposit {
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
	if product.MinBalance != nil && in.Deposit < *product.MinBalance {
		return nil, xerrors.ErrBelowMinimumDeposit
	}

	// One live savings application per product per customer. Fixed
	// deposits may be opened repeatedly.
	if product.Type == domain.ProductSavings {
		dup, err := uc.accounts.HasLiveApplication(ctx, in.UserID, in.ProductID)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, xerrors.ErrDuplicateApplication
		}
	}

	account := &domain.Account{
		UserID:        in.UserID,
		ProductID:     in.ProductID,
		AccountNumber: newAccountNumber(),
		Balance:       in.Deposit,
		Status:        domain.StatusPending,
		OpenedAt:      time.Now(),
	}
	kyc := &domain.KYCDocument{
		UserID:       in.UserID,
		IDType:       in.IDType,
		IDNumber:     in.IDNumber,
		DocumentPath: in.DocumentPath,
		Status:       domain.KYCPending,
	}
	if err := uc.accounts.CreateWithKYC(ctx, account, kyc); err != nil {
		return nil, err
	}
	return account, nil
}

func (uc *AccountUsecase) ListMine(ctx context.Context, userID int64) ([]*domain.Account, error) {
	return uc.accounts.ListByUser(ctx, userID)
}

func (uc *AccountUsecase) ListPending(ctx context.Context) ([]*domain.Account, error) {
	return uc.accounts.ListPending(ctx)
}

// Approve activates a pending account and verifies its KYC document.
func (uc *AccountUsecase) Approve(ctx context.Context, accountID int64) error {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != domain.StatusPending {
		return xerrors.ErrNotPending
	}
	return uc.accounts.SetStatus(ctx, accountID, domain.StatusActive, domain.KYCVerified)
}

// Reject flips a pending account to rejected; the row and its audit trail
// stay in place.
func (uc *AccountUsecase) Reject(ctx context.Context, accountID int64) error {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != domain.StatusPending {
		return xerrors.ErrNotPending
	}
	return uc.accounts.SetStatus(ctx, accountID, domain.StatusRejected, domain.KYCRejected)
}

// DeletePending withdraws the customer's own not-yet-decided application.
// Active accounts go through the OTP cancellation flow instead.
func (uc *AccountUsecase) DeletePending(ctx context.Context, userID, accountID int64) error {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return xerrors.ErrAccountNotFound
	}
	if account.Status == domain.StatusActive {
		return xerrors.ErrOTPRequired
	}
	return uc.accounts.Delete(ctx, accountID)
}

// BeginCancel opens the OTP confirmation window for closing an active
// account.
func (uc *AccountUsecase) BeginCancel(ctx context.Context, user *domain.User, accountID int64) error {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.UserID != user.ID {
		return xerrors.ErrAccountNotFound
	}
	if account.Status != domain.StatusActive {
		return xerrors.ErrAccountNotActive
	}
	return uc.otps.Begin(ctx, user, domain.PurposeAccountCancel, accountID, nil)
}

// CompleteCancel consumes the code and closes the account.
func (uc *AccountUsecase) CompleteCancel(ctx context.Context, userID int64, code string) error {
	action, err := uc.otps.Pending(ctx, userID, domain.PurposeAccountCancel)
	if err != nil {
		return err
	}
	if err := uc.otps.Validate(ctx, userID, domain.PurposeAccountCancel, code); err != nil {
		return err
	}

	account, err := uc.accounts.GetByID(ctx, action.TargetID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return xerrors.ErrAccountNotFound
	}
	if err := uc.accounts.Delete(ctx, action.TargetID); err != nil {
		return err
	}
	uc.otps.Finish(ctx, userID, domain.PurposeAccountCancel)
	return nil
}
