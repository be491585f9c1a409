package usecase

import (
	"crypto/rand"
	"math/big"

	"github.com/oklog/ulid/v2"
)

func randomDigits(n int) string {
	const chars = "0123456789"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		out[i] = chars[num.Int64()]
	}
	return string(out)
}

// newOTPCode returns a 6-digit confirmation code.
func newOTPCode() string {
	return randomDigits(6)
}

// newAccountNumber returns "RP" followed by nine digits.
func newAccountNumber() string {
	return "RP" + randomDigits(9)
}

// newCardNumber returns a 16-digit card number.
func newCardNumber() string {
	return randomDigits(16)
}

// newTransactionRef returns a sortable unique ledger reference.
func newTransactionRef() string {
	return "TXN-" + ulid.Make().String()
}
