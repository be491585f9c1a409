package handler

import (
	"net/http"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
	"github.com/Keganchiaa/fyp-bank/internal/usecase"
)

func (h *Handler) actor(r *http.Request) (*domain.User, error) {
	sess := session.FromContext(r.Context())
	return h.auth.GetUser(r.Context(), sess.UserID)
}

func (h *Handler) AdminUserList(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/admin/dashboard", err)
		return
	}
	users, err := h.users.List(r.Context(), actor)
	if err != nil {
		redirectErr(w, r, "/admin/dashboard", err)
		return
	}
	h.render.Render(w, r, "admin_users.html", users)
}

func (h *Handler) AdminUserDetail(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	detail, err := h.users.Detail(r.Context(), actor, id)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	h.render.Render(w, r, "admin_user_detail.html", detail)
}

func (h *Handler) AdminUserCreatePage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "admin_user_form.html", nil)
}

func (h *Handler) AdminUserCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/admin/users/new", err)
		return
	}

	role, ok := domain.ParseRole(r.FormValue("role"))
	if !ok {
		redirectErr(w, r, "/admin/users/new", errInvalidRole)
		return
	}
	in := usecase.CreateInput{
		RegisterInput: usecase.RegisterInput{
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
		},
		Role: role,
	}
	if dob, err := formDate(r, "date_of_birth"); err == nil {
		in.DateOfBirth = &dob
	}

	if _, err := h.users.Create(r.Context(), actor, in); err != nil {
		redirectErr(w, r, "/admin/users/new", err)
		return
	}
	redirectOK(w, r, "/admin/users", "User created.")
}

func (h *Handler) AdminUserEditPage(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	detail, err := h.users.Detail(r.Context(), actor, id)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	h.render.Render(w, r, "admin_user_form.html", detail.User)
}

func (h *Handler) AdminUserUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}

	role, ok := domain.ParseRole(r.FormValue("role"))
	if !ok {
		redirectErr(w, r, "/admin/users", errInvalidRole)
		return
	}
	in := usecase.UpdateInput{
		Username:     r.FormValue("username"),
		Email:        r.FormValue("email"),
		Role:         role,
		FirstName:    r.FormValue("first_name"),
		LastName:     r.FormValue("last_name"),
		Alias:        optional(r, "alias"),
		PhoneNumber:  r.FormValue("phone_number"),
		Country:      r.FormValue("country"),
		AddressLine1: r.FormValue("address_line_1"),
		AddressLine2: optional(r, "address_line_2"),
		Postcode:     r.FormValue("postcode"),
		NewPassword:  r.FormValue("new_password"),
		ConfirmPass:  r.FormValue("confirm_password"),
	}
	if dob, err := formDate(r, "date_of_birth"); err == nil {
		in.DateOfBirth = &dob
	}

	if _, err := h.users.Update(r.Context(), actor, id, in); err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	redirectOK(w, r, "/admin/users", "User updated.")
}

func (h *Handler) AdminUserDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	redirectOK(w, r, "/admin/users", "User deleted.")
}
