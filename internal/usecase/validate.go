package usecase

import (
	"regexp"
	"strings"

	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

var (
	phonePattern    = regexp.MustCompile(`^\d{8}$`)
	postcodePattern = regexp.MustCompile(`^\d{6}$`)
)

const minPasswordLen = 6

// validateContact checks the fields shared by registration, profile edits
// and admin user management.
func validateContact(phone, postcode string) error {
	if !phonePattern.MatchString(phone) {
		return xerrors.ErrInvalidPhone
	}
	if !postcodePattern.MatchString(postcode) {
		return xerrors.ErrInvalidPostcode
	}
	return nil
}

func validatePassword(password, confirm string) error {
	if len(password) < minPasswordLen {
		return xerrors.ErrWeakPassword
	}
	if password != confirm {
		return xerrors.ErrPasswordMismatch
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
