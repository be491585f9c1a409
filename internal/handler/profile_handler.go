package handler

import (
	"net/http"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
	"github.com/Keganchiaa/fyp-bank/internal/usecase"
)

func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := h.auth.GetUser(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, landingFor(sess.Role), err)
		return
	}
	h.render.Render(w, r, "profile.html", user)
}

// BeginProfileUpdate stages the edit and sends the browser to the OTP
// confirmation page. The user row stays untouched until the code checks out.
func (h *Handler) BeginProfileUpdate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		redirectErr(w, r, "/profile", err)
		return
	}

	in := usecase.ProfileUpdateInput{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Alias:           optional(r, "alias"),
		PhoneNumber:     r.FormValue("phone_number"),
		Country:         r.FormValue("country"),
		AddressLine1:    r.FormValue("address_line_1"),
		AddressLine2:    optional(r, "address_line_2"),
		Postcode:        r.FormValue("postcode"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	if dob, err := formDate(r, "date_of_birth"); err == nil {
		in.DateOfBirth = &dob
	}

	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		path, err := h.store.SaveProfileImage(file)
		if err != nil {
			redirectErr(w, r, "/profile", err)
			return
		}
		in.ImagePath = path
	}

	if err := h.auth.BeginProfileUpdate(r.Context(), sess.UserID, in); err != nil {
		redirectErr(w, r, "/profile", err)
		return
	}
	http.Redirect(w, r, "/otp/confirm/"+string(domain.PurposeProfileUpdate), http.StatusSeeOther)
}
