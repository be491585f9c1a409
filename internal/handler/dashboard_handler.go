package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/session"
)

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reports.Snapshot(r.Context())
	if err != nil {
		redirectErr(w, r, "/admin/users", err)
		return
	}
	h.render.Render(w, r, "admin_dashboard.html", snap)
}

// ReportExport streams the admin snapshot as a spreadsheet download.
func (h *Handler) ReportExport(w http.ResponseWriter, r *http.Request) {
	buf, err := h.reports.Export(r.Context())
	if err != nil {
		redirectErr(w, r, "/admin/dashboard", err)
		return
	}
	filename := fmt.Sprintf("bank-report-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = buf.WriteTo(w)
}

type advisorDashboard struct {
	CalendarLinked bool
	Slots          []*domain.TimeSlot
	Consultations  []*domain.Consultation
}

func (h *Handler) AdvisorDashboard(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	slots, err := h.consultations.UpcomingSlots(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	consultations, err := h.consultations.ListForAdvisor(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	h.render.Render(w, r, "advisor_dashboard.html", advisorDashboard{
		CalendarLinked: user.HasCalendarLinked(),
		Slots:          slots,
		Consultations:  consultations,
	})
}

type customerDashboard struct {
	Accounts []*domain.Account
	Cards    []*domain.CreditCard
	Recent   []*domain.Transaction
}

const recentTransactionCount = 5

func (h *Handler) CustomerDashboard(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	accounts, err := h.accounts.ListMine(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	cards, err := h.cards.ListMine(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	recent, err := h.ledger.History(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/login", err)
		return
	}
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}
	h.render.Render(w, r, "customer_dashboard.html", customerDashboard{
		Accounts: accounts,
		Cards:    cards,
		Recent:   recent,
	})
}
