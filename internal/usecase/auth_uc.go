package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type AuthUsecase struct {
	users repository.UserRepository
	otps  *OTPUsecase
}

func NewAuthUsecase(users repository.UserRepository, otps *OTPUsecase) *AuthUsecase {
	return &AuthUsecase{users: users, otps: otps}
}

// RegisterInput carries the self-registration form. Role is not part of it:
// self-registered users are always customers.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Alias           *string
	DateOfBirth     *time.Time
	PhoneNumber     string
	Country         string
	AddressLine1    string
	AddressLine2    *string
	Postcode        string
	ImagePath       string
}

func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
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
		Role:         domain.RoleCustomer,
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

func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, xerrors.ErrInvalidCredentials
	}
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	return user, nil
}

func (uc *AuthUsecase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

// ProfileUpdateInput is the staged profile edit. It is serialized into the
// pending action payload and only applied after OTP confirmation.
type ProfileUpdateInput struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Alias           *string    `json:"alias,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber     string     `json:"phone_number"`
	Country         string     `json:"country"`
	AddressLine1    string     `json:"address_line_1"`
	AddressLine2    *string    `json:"address_line_2,omitempty"`
	Postcode        string     `json:"postcode"`
	ImagePath       string     `json:"image_path,omitempty"`
	NewPassword     string     `json:"new_password,omitempty"`
	ConfirmPassword string     `json:"confirm_password,omitempty"`
}

// BeginProfileUpdate validates and stages the edit, then opens the OTP
// confirmation window. Nothing is written to the user row yet.
func (uc *AuthUsecase) BeginProfileUpdate(ctx context.Context, userID int64, in ProfileUpdateInput) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if in.Username == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("missing required fields")
	}
	if err := validateContact(in.PhoneNumber, in.Postcode); err != nil {
		return err
	}
	if in.NewPassword != "" {
		if err := validatePassword(in.NewPassword, in.ConfirmPassword); err != nil {
			return err
		}
	}

	in.Email = normalizeEmail(in.Email)
	taken, err := uc.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email, userID)
	if err != nil {
		return err
	}
	if taken {
		return xerrors.ErrUserAlreadyExists
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return uc.otps.Begin(ctx, user, domain.PurposeProfileUpdate, userID, payload)
}

// CompleteProfileUpdate consumes the code and applies the staged edit.
func (uc *AuthUsecase) CompleteProfileUpdate(ctx context.Context, userID int64, code string) (*domain.User, error) {
	action, err := uc.otps.Pending(ctx, userID, domain.PurposeProfileUpdate)
	if err != nil {
		return nil, err
	}
	if err := uc.otps.Validate(ctx, userID, domain.PurposeProfileUpdate, code); err != nil {
		return nil, err
	}

	var in ProfileUpdateInput
	if err := json.Unmarshal(action.Payload, &in); err != nil {
		return nil, fmt.Errorf("decode staged update: %w", err)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Alias = in.Alias
	user.DateOfBirth = in.DateOfBirth
	user.PhoneNumber = in.PhoneNumber
	user.Country = in.Country
	user.AddressLine1 = in.AddressLine1
	user.AddressLine2 = in.AddressLine2
	user.Postcode = in.Postcode
	if in.ImagePath != "" {
		user.ImagePath = in.ImagePath
	}
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if in.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := uc.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
			return nil, err
		}
	}

	uc.otps.Finish(ctx, userID, domain.PurposeProfileUpdate)
	return user, nil
}

// BeginPasswordReset starts the unauthenticated forgot-password flow. The
// response is identical whether or not the email exists; enumeration gets
// nothing.
func (uc *AuthUsecase) BeginPasswordReset(ctx context.Context, email string) error {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	return uc.otps.Begin(ctx, user, domain.PurposePasswordReset, user.ID, nil)
}

// CompletePasswordReset consumes the code and sets the new password.
func (uc *AuthUsecase) CompletePasswordReset(ctx context.Context, email, code, password, confirm string) error {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return xerrors.ErrInvalidOTP
	}
	if _, err := uc.otps.Pending(ctx, user.ID, domain.PurposePasswordReset); err != nil {
		return err
	}
	if err := validatePassword(password, confirm); err != nil {
		return err
	}
	if err := uc.otps.Validate(ctx, user.ID, domain.PurposePasswordReset, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := uc.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	uc.otps.Finish(ctx, user.ID, domain.PurposePasswordReset)
	return nil
}
