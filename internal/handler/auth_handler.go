package handler

import (
	"log"
	"net/http"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
	"github.com/Keganchiaa/fyp-bank/internal/usecase"
)

const maxUploadBytes = 10 << 20

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "login.html", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	user, err := h.auth.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}

	token, err := h.sessions.Create(r.Context(), &session.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ImagePath: user.ImagePath,
	})
	if err != nil {
		log.Printf("[ERROR] create session: %v", err)
		redirectErr(w, r, "/login", err)
		return
	}
	session.SetCookie(w, token, int(h.sessionTTL.Seconds()))
	http.Redirect(w, r, landingFor(user.Role), http.StatusSeeOther)
}

func landingFor(role domain.Role) string {
	switch {
	case role.IsAdmin():
		return "/admin/dashboard"
	case role == domain.RoleAdvisor:
		return "/advisor/dashboard"
	default:
		return "/customer/dashboard"
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			log.Printf("[WARN] destroy session: %v", err)
		}
	}
	session.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "register.html", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		redirectErr(w, r, "/register", err)
		return
	}

	in := usecase.RegisterInput{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Alias:           optional(r, "alias"),
		PhoneNumber:     r.FormValue("phone_number"),
		Country:         r.FormValue("country"),
		AddressLine1:    r.FormValue("address_line_1"),
		AddressLine2:    optional(r, "address_line_2"),
		Postcode:        r.FormValue("postcode"),
	}
	if dob, err := formDate(r, "date_of_birth"); err == nil {
		in.DateOfBirth = &dob
	}

	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		path, err := h.store.SaveProfileImage(file)
		if err != nil {
			redirectErr(w, r, "/register", err)
			return
		}
		in.ImagePath = path
	}

	if _, err := h.auth.Register(r.Context(), in); err != nil {
		redirectErr(w, r, "/register", err)
		return
	}
	redirectOK(w, r, "/login", "Registration successful. Please sign in.")
}

func (h *Handler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "forgot_password.html", nil)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/forgot-password", err)
		return
	}
	email := r.FormValue("email")
	if err := h.auth.BeginPasswordReset(r.Context(), email); err != nil {
		redirectErr(w, r, "/forgot-password", err)
		return
	}
	http.Redirect(w, r, withQuery("/reset-password", "email", email), http.StatusSeeOther)
}

func (h *Handler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "reset_password.html", map[string]string{
		"Email": r.URL.Query().Get("email"),
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/forgot-password", err)
		return
	}
	email := r.FormValue("email")
	err := h.auth.CompletePasswordReset(r.Context(), email,
		r.FormValue("code"), r.FormValue("password"), r.FormValue("confirm_password"))
	if err != nil {
		redirectErr(w, r, withQuery("/reset-password", "email", email), err)
		return
	}
	redirectOK(w, r, "/login", "Password updated. Please sign in.")
}

// Home routes an authenticated user to their dashboard and everyone else to
// the login page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	sess, err := h.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, landingFor(sess.Role), http.StatusSeeOther)
}
