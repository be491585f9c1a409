package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

func newAuthFixture() (*AuthUsecase, *fakeUserRepo, *fakeOTPRepo, *fakeSender) {
	users := newFakeUserRepo()
	otpRepo := &fakeOTPRepo{}
	sender := &fakeSender{}
	otps := NewOTPUsecase(otpRepo, newFakePendingRepo(), &fakeLimiter{}, sender, 5*time.Minute)
	return NewAuthUsecase(users, otps), users, otpRepo, sender
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "Alice@Example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "Alice",
		LastName:        "Tan",
		PhoneNumber:     "81234567",
		Country:         "Singapore",
		AddressLine1:    "1 Raffles Place",
		Postcode:        "048616",
	}
}

func TestRegisterCreatesCustomer(t *testing.T) {
	uc, _, _, _ := newAuthFixture()

	user, err := uc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestRegisterValidation(t *testing.T) {
	uc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"bad phone", func(in *RegisterInput) { in.PhoneNumber = "1234" }, xerrors.ErrInvalidPhone},
		{"phone with letters", func(in *RegisterInput) { in.PhoneNumber = "8123456a" }, xerrors.ErrInvalidPhone},
		{"bad postcode", func(in *RegisterInput) { in.Postcode = "1234567" }, xerrors.ErrInvalidPostcode},
		{"short password", func(in *RegisterInput) { in.Password = "abc"; in.ConfirmPassword = "abc" }, xerrors.ErrWeakPassword},
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, xerrors.ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegisterInput()
			tt.mutate(&in)
			_, err := uc.Register(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterRejectsDuplicateUsernameOrEmail(t *testing.T) {
	uc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	dup := validRegisterInput()
	dup.Email = "other@example.com"
	_, err = uc.Register(ctx, dup)
	assert.ErrorIs(t, err, xerrors.ErrUserAlreadyExists)

	dup = validRegisterInput()
	dup.Username = "alice2"
	_, err = uc.Register(ctx, dup)
	assert.ErrorIs(t, err, xerrors.ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	uc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := uc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	user, err := uc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = uc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)

	_, err = uc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestProfileUpdateIsStagedUntilOTPConfirm(t *testing.T) {
	uc, users, otps, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := uc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	in := ProfileUpdateInput{
		Username:     "alice_new",
		Email:        "alice.new@example.com",
		FirstName:    "Alice",
		LastName:     "Tan",
		PhoneNumber:  "91234567",
		Country:      "Singapore",
		AddressLine1: "2 Marina Blvd",
		Postcode:     "018982",
	}
	require.NoError(t, uc.BeginProfileUpdate(ctx, registered.ID, in))

	// nothing applied yet
	current, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	code := otps.latest(registered.ID, domain.PurposeProfileUpdate).Code
	updated, err := uc.CompleteProfileUpdate(ctx, registered.ID, code)
	require.NoError(t, err)
	assert.Equal(t, "alice_new", updated.Username)
	assert.Equal(t, "alice.new@example.com", updated.Email)
	assert.Equal(t, "91234567", updated.PhoneNumber)
}

func TestProfileUpdateRejectsWrongCode(t *testing.T) {
	uc, users, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := uc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	in := ProfileUpdateInput{
		Username: "alice_new", Email: "alice@example.com", FirstName: "Alice", LastName: "Tan",
		PhoneNumber: "81234567", Country: "Singapore", AddressLine1: "1 Raffles Place", Postcode: "048616",
	}
	require.NoError(t, uc.BeginProfileUpdate(ctx, registered.ID, in))

	_, err = uc.CompleteProfileUpdate(ctx, registered.ID, "000000")
	assert.Error(t, err)

	current, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)
}

func TestProfileUpdateCanChangePassword(t *testing.T) {
	uc, _, otps, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := uc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	in := ProfileUpdateInput{
		Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Tan",
		PhoneNumber: "81234567", Country: "Singapore", AddressLine1: "1 Raffles Place", Postcode: "048616",
		NewPassword: "newpass1", ConfirmPassword: "newpass1",
	}
	require.NoError(t, uc.BeginProfileUpdate(ctx, registered.ID, in))

	code := otps.latest(registered.ID, domain.PurposeProfileUpdate).Code
	_, err = uc.CompleteProfileUpdate(ctx, registered.ID, code)
	require.NoError(t, err)

	_, err = uc.Login(ctx, "alice@example.com", "newpass1")
	assert.NoError(t, err)
	_, err = uc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	uc, _, otps, sender := newAuthFixture()
	ctx := context.Background()

	registered, err := uc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	require.NoError(t, uc.BeginPasswordReset(ctx, "alice@example.com"))
	require.NotEmpty(t, sender.sent)

	code := otps.latest(registered.ID, domain.PurposePasswordReset).Code
	require.NoError(t, uc.CompletePasswordReset(ctx, "alice@example.com", code, "brandnew1", "brandnew1"))

	_, err = uc.Login(ctx, "alice@example.com", "brandnew1")
	assert.NoError(t, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	uc, _, _, sender := newAuthFixture()

	assert.NoError(t, uc.BeginPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, sender.sent)
}
