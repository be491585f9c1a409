package handler

import (
	"fmt"
	"net/http"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
)

// activeAccounts narrows the customer's accounts to the ones money can move
// through.
func (h *Handler) activeAccounts(r *http.Request) ([]*domain.Account, error) {
	sess := session.FromContext(r.Context())
	accounts, err := h.accounts.ListMine(r.Context(), sess.UserID)
	if err != nil {
		return nil, err
	}
	active := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Status == domain.StatusActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (h *Handler) TopUpPage(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.activeAccounts(r)
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "topup.html", accounts)
}

func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/customer/topup", err)
		return
	}
	entry, err := h.ledger.TopUp(r.Context(), sess.UserID, formInt(r, "account_id"), formFloat(r, "amount"))
	if err != nil {
		redirectErr(w, r, "/customer/topup", err)
		return
	}
	redirectOK(w, r, "/customer/transactions", fmt.Sprintf("Top up complete. Reference %s.", entry.Reference))
}

func (h *Handler) TransferPage(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.activeAccounts(r)
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "transfer.html", accounts)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/customer/transfer", err)
		return
	}
	entry, err := h.ledger.Transfer(r.Context(), sess.UserID,
		formInt(r, "from_account_id"), formInt(r, "to_account_id"), formFloat(r, "amount"))
	if err != nil {
		redirectErr(w, r, "/customer/transfer", err)
		return
	}
	redirectOK(w, r, "/customer/transactions", fmt.Sprintf("Transfer complete. Reference %s.", entry.Reference))
}

func (h *Handler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	entries, err := h.ledger.History(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "transactions.html", entries)
}
