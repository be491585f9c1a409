package domain

import "time"

// OTPPurpose scopes a code to the single action it may confirm.
type OTPPurpose string

const (
	PurposeAccountCancel OTPPurpose = "account_cancel"
	PurposeCardCancel    OTPPurpose = "card_cancel"
	PurposeProfileUpdate OTPPurpose = "profile_update"
	PurposePasswordReset OTPPurpose = "password_reset"
)

type OTPToken struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Code      string     `json:"-" db:"code"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	IsUsed    bool       `json:"is_used" db:"is_used"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (t *OTPToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// PendingAction is the server-side marker that gates the OTP confirmation
// page: it records which target the user asked to confirm and when the
// window opened. At most one live row per (user, purpose); issuance and
// resends upsert it. Expiry here is independent of the token's own expiry
// and both checks must pass.
type PendingAction struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	TargetID  int64      `json:"target_id" db:"target_id"`
	Payload   []byte     `json:"-" db:"payload"` // staged form data (profile edit, password reset)
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (p *PendingAction) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Matches reports whether this marker authorizes rendering the confirm page
// for the given purpose and target.
func (p *PendingAction) Matches(purpose OTPPurpose, targetID int64, now time.Time) bool {
	return p.Purpose == purpose && p.TargetID == targetID && !p.Expired(now)
}
