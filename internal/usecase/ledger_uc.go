package usecase

import (
	"context"
	"fmt"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// LedgerUsecase moves money. Every operation computes the full set of
// balance updates and ledger rows up front and hands them to the repository
// to apply in one transaction.
type LedgerUsecase struct {
	ledger   repository.LedgerRepository
	accounts repository.AccountRepository
}

func NewLedgerUsecase(ledger repository.LedgerRepository, accounts repository.AccountRepository) *LedgerUsecase {
	return &LedgerUsecase{ledger: ledger, accounts: accounts}
}

// TopUp credits the customer's own active account and records the deposit.
func (uc *LedgerUsecase) TopUp(ctx context.Context, userID, accountID int64, amount float64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, xerrors.ErrAccountNotFound
	}
	if account.Status != domain.StatusActive {
		return nil, xerrors.ErrAccountNotActive
	}

	newBalance := account.Balance + amount
	entry := &domain.Transaction{
		AccountID:    accountID,
		Reference:    newTransactionRef(),
		Type:         domain.TransactionDeposit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Description:  "Top up",
	}
	err = uc.ledger.Apply(ctx,
		[]repository.BalanceUpdate{{AccountID: accountID, NewBalance: newBalance}},
		[]*domain.Transaction{entry})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Transfer debits the customer's account and credits the destination. Both
// balance updates and both ledger rows land atomically or not at all.
func (uc *LedgerUsecase) Transfer(ctx context.Context, userID, fromID, toID int64, amount float64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}
	if fromID == toID {
		return nil, xerrors.ErrSelfTransfer
	}

	from, err := uc.accounts.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if from.UserID != userID {
		return nil, xerrors.ErrAccountNotFound
	}
	if from.Status != domain.StatusActive {
		return nil, xerrors.ErrAccountNotActive
	}

	to, err := uc.accounts.GetByID(ctx, toID)
	if err != nil {
		return nil, err
	}
	if to.Status != domain.StatusActive {
		return nil, xerrors.ErrAccountNotActive
	}

	if from.Balance < amount {
		return nil, xerrors.ErrInsufficientBalance
	}

	ref := newTransactionRef()
	debit := &domain.Transaction{
		AccountID:    fromID,
		Reference:    ref,
		Type:         domain.TransactionTransfer,
		Amount:       amount,
		BalanceAfter: from.Balance - amount,
		Description:  fmt.Sprintf("Transfer to %s", to.AccountNumber),
	}
	credit := &domain.Transaction{
		AccountID:    toID,
		Reference:    ref,
		Type:         domain.TransactionDeposit,
		Amount:       amount,
		BalanceAfter: to.Balance + amount,
		Description:  fmt.Sprintf("Transfer from %s", from.AccountNumber),
	}
	err = uc.ledger.Apply(ctx,
		[]repository.BalanceUpdate{
			{AccountID: fromID, NewBalance: from.Balance - amount},
			{AccountID: toID, NewBalance: to.Balance + amount},
		},
		[]*domain.Transaction{debit, credit})
	if err != nil {
		return nil, err
	}
	return debit, nil
}

// History returns the customer's ledger rows, newest first.
func (uc *LedgerUsecase) History(ctx context.Context, userID int64) ([]*domain.Transaction, error) {
	return uc.ledger.ListByUser(ctx, userID)
}
