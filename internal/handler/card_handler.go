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

func (h *Handler) CardApplyPage(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		redirectErr(w, r, "/customer/cards", err)
		return
	}
	open := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if p.Type == domain.ProductCreditCard {
			open = append(open, p)
		}
	}
	h.render.Render(w, r, "card_apply.html", open)
}

func (h *Handler) CardApply(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		redirectErr(w, r, "/customer/cards/apply", err)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		redirectErr(w, r, "/customer/cards/apply", xerrors.ErrKYCDocumentRequired)
		return
	}
	defer file.Close()
	docPath, err := h.store.SaveKYC(file, header)
	if err != nil {
		redirectErr(w, r, "/customer/cards/apply", err)
		return
	}

	_, err = h.cards.Apply(r.Context(), usecase.CardApplication{
		UserID:       sess.UserID,
		ProductID:    formInt(r, "product_id"),
		DesiredLimit: formFloat(r, "desired_limit"),
		Declaration:  r.FormValue("declaration") == "on",
		IDType:       domain.IDType(r.FormValue("id_type")),
		IDNumber:     r.FormValue("id_number"),
		DocumentPath: docPath,
	})
	if err != nil {
		if rerr := h.store.Remove(docPath); rerr != nil {
			log.Printf("[WARN] remove orphaned upload %s: %v", docPath, rerr)
		}
		redirectErr(w, r, "/customer/cards/apply", err)
		return
	}
	redirectOK(w, r, "/customer/cards", "Application submitted for review.")
}

func (h *Handler) CardList(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	cards, err := h.cards.ListMine(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "cards.html", cards)
}

func (h *Handler) CardDelete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	err = h.cards.DeletePending(r.Context(), sess.UserID, id)
	if errors.Is(err, xerrors.ErrOTPRequired) {
		h.beginCardCancel(w, r, id)
		return
	}
	if err != nil {
		redirectErr(w, r, "/customer/cards", err)
		return
	}
	redirectOK(w, r, "/customer/cards", "Application withdrawn.")
}

func (h *Handler) beginCardCancel(w http.ResponseWriter, r *http.Request, cardID int64) {
	user, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/customer/cards", err)
		return
	}
	if err := h.cards.BeginCancel(r.Context(), user, cardID); err != nil {
		redirectErr(w, r, "/customer/cards", err)
		return
	}
	http.Redirect(w, r, "/otp/confirm/"+string(domain.PurposeCardCancel), http.StatusSeeOther)
}

func (h *Handler) AdminCardPending(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListPending(r.Context())
	if err != nil {
		redirectErr(w, r, "/admin/dashboard", err)
		return
	}
	h.render.Render(w, r, "admin_cards.html", cards)
}

// AdminCardApprove activates the card with the limit the admin grants in
// the approval form.
func (h *Handler) AdminCardApprove(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/admin/cards", err)
		return
	}
	if err := h.cards.Approve(r.Context(), id, formFloat(r, "approved_limit")); err != nil {
		redirectErr(w, r, "/admin/cards", err)
		return
	}
	redirectOK(w, r, "/admin/cards", "Card approved.")
}

func (h *Handler) AdminCardReject(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.cards.Reject(r.Context(), id); err != nil {
		redirectErr(w, r, "/admin/cards", err)
		return
	}
	redirectOK(w, r, "/admin/cards", "Card rejected.")
}
