package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
	"github.com/Keganchiaa/fyp-bank/internal/usecase"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// AccountApplyPage lists the savings and fixed-deposit products the
// customer can apply for.
func (h *Handler) AccountApplyPage(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		redirectErr(w, r, "/customer/accounts", err)
		return
	}
	open := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if p.Type == domain.ProductSavings || p.Type == domain.ProductFixedDeposit {
			open = append(open, p)
		}
	}
	h.render.Render(w, r, "account_apply.html", open)
}

func (h *Handler) AccountApply(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		redirectErr(w, r, "/customer/accounts/apply", err)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		redirectErr(w, r, "/customer/accounts/apply", xerrors.ErrKYCDocumentRequired)
		return
	}
	defer file.Close()
	docPath, err := h.store.SaveKYC(file, header)
	if err != nil {
		redirectErr(w, r, "/customer/accounts/apply", err)
		return
	}

	_, err = h.accounts.Apply(r.Context(), usecase.AccountApplication{
		UserID:       sess.UserID,
		ProductID:    formInt(r, "product_id"),
		Deposit:      formFloat(r, "deposit"),
		Declaration:  r.FormValue("declaration") == "on",
		IDType:       domain.IDType(r.FormValue("id_type")),
		IDNumber:     r.FormValue("id_number"),
		DocumentPath: docPath,
	})
	if err != nil {
		// The application never landed, so the upload is orphaned.
		if rerr := h.store.Remove(docPath); rerr != nil {
			log.Printf("[WARN] remove orphaned upload %s: %v", docPath, rerr)
		}
		redirectErr(w, r, "/customer/accounts/apply", err)
		return
	}
	redirectOK(w, r, "/customer/accounts", "Application submitted for review.")
}

func (h *Handler) AccountList(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	accounts, err := h.accounts.ListMine(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "accounts.html", accounts)
}

// AccountDelete withdraws a pending application. For an active account it
// kicks off the OTP confirmation flow instead.
func (h *Handler) AccountDelete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	err = h.accounts.DeletePending(r.Context(), sess.UserID, id)
	if errors.Is(err, xerrors.ErrOTPRequired) {
		h.beginAccountCancel(w, r, id)
		return
	}
	if err != nil {
		redirectErr(w, r, "/customer/accounts", err)
		return
	}
	redirectOK(w, r, "/customer/accounts", "Application withdrawn.")
}

func (h *Handler) beginAccountCancel(w http.ResponseWriter, r *http.Request, accountID int64) {
	user, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/customer/accounts", err)
		return
	}
	if err := h.accounts.BeginCancel(r.Context(), user, accountID); err != nil {
		redirectErr(w, r, "/customer/accounts", err)
		return
	}
	http.Redirect(w, r, "/otp/confirm/"+string(domain.PurposeAccountCancel), http.StatusSeeOther)
}

func (h *Handler) AdminAccountPending(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListPending(r.Context())
	if err != nil {
		redirectErr(w, r, "/admin/dashboard", err)
		return
	}
	h.render.Render(w, r, "admin_accounts.html", accounts)
}

func (h *Handler) AdminAccountApprove(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.accounts.Approve(r.Context(), id); err != nil {
		redirectErr(w, r, "/admin/accounts", err)
		return
	}
	redirectOK(w, r, "/admin/accounts", "Account approved.")
}

func (h *Handler) AdminAccountReject(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.accounts.Reject(r.Context(), id); err != nil {
		redirectErr(w, r, "/admin/accounts", err)
		return
	}
	redirectOK(w, r, "/admin/accounts", "Account rejected.")
}
