package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
)

func parsePurpose(r *http.Request) (domain.OTPPurpose, bool) {
	switch p := domain.OTPPurpose(chi.URLParam(r, "purpose")); p {
	case domain.PurposeAccountCancel, domain.PurposeCardCancel, domain.PurposeProfileUpdate:
		return p, true
	}
	return "", false
}

// ConfirmPage renders the code entry form. It only renders while a live
// pending action exists for the purpose; otherwise the flow has lapsed and
// the user starts over.
func (h *Handler) ConfirmPage(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	purpose, ok := parsePurpose(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := h.otps.Pending(r.Context(), sess.UserID, purpose); err != nil {
		redirectErr(w, r, landingFor(sess.Role), err)
		return
	}
	h.render.Render(w, r, "otp_confirm.html", map[string]string{
		"Purpose": string(purpose),
	})
}

// Confirm consumes the code and runs the guarded action. A bad code sends
// the user back to the form with the marker intact.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	purpose, ok := parsePurpose(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/otp/confirm/"+string(purpose), err)
		return
	}
	code := r.FormValue("code")
	ctx := r.Context()

	var err error
	var done string
	switch purpose {
	case domain.PurposeAccountCancel:
		err = h.accounts.CompleteCancel(ctx, sess.UserID, code)
		done = withQuery("/customer/accounts", "success", "Account closed.")
	case domain.PurposeCardCancel:
		err = h.cards.CompleteCancel(ctx, sess.UserID, code)
		done = withQuery("/customer/cards", "success", "Card cancelled.")
	case domain.PurposeProfileUpdate:
		var user *domain.User
		user, err = h.auth.CompleteProfileUpdate(ctx, sess.UserID, code)
		if err == nil {
			sess.Username = user.Username
			sess.ImagePath = user.ImagePath
			// stale display name until next login at worst
			_ = h.sessions.Refresh(ctx, sess)
		}
		done = withQuery("/profile", "success", "Profile updated.")
	}
	if err != nil {
		redirectErr(w, r, "/otp/confirm/"+string(purpose), err)
		return
	}
	http.Redirect(w, r, done, http.StatusSeeOther)
}

// Resend reissues the code for an in-flight confirmation.
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	purpose, ok := parsePurpose(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user, err := h.auth.GetUser(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, landingFor(sess.Role), err)
		return
	}
	if err := h.otps.Resend(r.Context(), user, purpose); err != nil {
		redirectErr(w, r, "/otp/confirm/"+string(purpose), err)
		return
	}
	redirectOK(w, r, "/otp/confirm/"+string(purpose), "A new code is on its way.")
}
