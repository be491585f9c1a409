package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// UserUsecase is the admin-surface user management. Every operation takes
// the acting admin so role restrictions are enforced here, not in handlers.
type UserUsecase struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	cards    repository.CardRepository
}

func NewUserUsecase(users repository.UserRepository, accounts repository.AccountRepository, cards repository.CardRepository) *UserUsecase {
	return &UserUsecase{users: users, accounts: accounts, cards: cards}
}

var errForbidden = fmt.Errorf("operation not permitted for this role")

func (uc *UserUsecase) List(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if !actor.Role.IsAdmin() {
		return nil, errForbidden
	}
	return uc.users.List(ctx)
}

// UserDetail bundles a user with their banking holdings for the admin view.
type UserDetail struct {
	User     *domain.User
	Accounts []*domain.Account
	Cards    []*domain.CreditCard
}

func (uc *UserUsecase) Detail(ctx context.Context, actor *domain.User, targetID int64) (*UserDetail, error) {
	target, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManage(actor.ID, target.ID, target.Role) {
		return nil, errForbidden
	}

	accounts, err := uc.accounts.ListByUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	cards, err := uc.cards.ListByUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: target, Accounts: accounts, Cards: cards}, nil
}

// CreateInput is the admin create-user form. Unlike self-registration the
// role is chosen, within what the actor may grant.
type CreateInput struct {
	RegisterInput
	Role domain.Role
}

func (uc *UserUsecase) Create(ctx context.Context, actor *domain.User, in CreateInput) (*domain.User, error) {
	if !in.Role.Valid() || !actor.Role.CanCreateRole(in.Role) {
		return nil, errForbidden
	}
	if in.Username == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("missing required fields")
	}
	if err := validateContact(in.PhoneNumber, in.Postcode); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	taken, err := uc.users.ExistsByUsernameOrEmail(ctx, in.Username, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, xerrors.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Alias:        in.Alias,
		DateOfBirth:  in.DateOfBirth,
		PhoneNumber:  in.PhoneNumber,
		Country:      in.Country,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		Postcode:     in.Postcode,
		ImagePath:    in.ImagePath,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateInput is the admin edit-user form.
type UpdateInput struct {
	Username     string
	Email        string
	Role         domain.Role
	FirstName    string
	LastName     string
	Alias        *string
	DateOfBirth  *time.Time
	PhoneNumber  string
	Country      string
	AddressLine1 string
	AddressLine2 *string
	Postcode     string
	NewPassword  string
	ConfirmPass  string
}

func (uc *UserUsecase) Update(ctx context.Context, actor *domain.User, targetID int64, in UpdateInput) (*domain.User, error) {
	target, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManage(actor.ID, target.ID, target.Role) {
		return nil, errForbidden
	}
	// A role change is a grant; it follows the creation rules.
	if in.Role != target.Role && (!in.Role.Valid() || !actor.Role.CanCreateRole(in.Role)) {
		return nil, errForbidden
	}
	if in.Username == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("missing required fields")
	}
	if err := validateContact(in.PhoneNumber, in.Postcode); err != nil {
		return nil, err
	}
	if in.NewPassword != "" {
		if err := validatePassword(in.NewPassword, in.ConfirmPass); err != nil {
			return nil, err
		}
	}

	email := normalizeEmail(in.Email)
	taken, err := uc.users.ExistsByUsernameOrEmail(ctx, in.Username, email, targetID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, xerrors.ErrUserAlreadyExists
	}

	target.Username = in.Username
	target.Email = email
	target.Role = in.Role
	target.FirstName = in.FirstName
	target.LastName = in.LastName
	target.Alias = in.Alias
	target.DateOfBirth = in.DateOfBirth
	target.PhoneNumber = in.PhoneNumber
	target.Country = in.Country
	target.AddressLine1 = in.AddressLine1
	target.AddressLine2 = in.AddressLine2
	target.Postcode = in.Postcode
	if err := uc.users.Update(ctx, target); err != nil {
		return nil, err
	}

	if in.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := uc.users.UpdatePassword(ctx, targetID, string(hash)); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func (uc *UserUsecase) Delete(ctx context.Context, actor *domain.User, targetID int64) error {
	target, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !actor.Role.CanManage(actor.ID, target.ID, target.Role) {
		return errForbidden
	}
	return uc.users.Delete(ctx, targetID)
}
