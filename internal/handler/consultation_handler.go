package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/Keganchiaa/fyp-bank/internal/session"
)

// AdvisorSlotList shows the advisor's upcoming slots with the creation form.
func (h *Handler) AdvisorSlotList(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	slots, err := h.consultations.UpcomingSlots(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/advisor/dashboard", err)
		return
	}
	h.render.Render(w, r, "advisor_slots.html", slots)
}

func (h *Handler) AdvisorSlotCreate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/advisor/slots", err)
		return
	}
	date, err := formDate(r, "date")
	if err != nil {
		redirectErr(w, r, "/advisor/slots", errors.New("invalid date"))
		return
	}
	if _, err := h.consultations.CreateSlot(r.Context(), sess.UserID, date, r.FormValue("start_time")); err != nil {
		redirectErr(w, r, "/advisor/slots", err)
		return
	}
	redirectOK(w, r, "/advisor/slots", "Slot added.")
}

func (h *Handler) AdvisorSlotUpdate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/advisor/slots", err)
		return
	}
	date, err := formDate(r, "date")
	if err != nil {
		redirectErr(w, r, "/advisor/slots", errors.New("invalid date"))
		return
	}
	if err := h.consultations.UpdateSlot(r.Context(), sess.UserID, id, date, r.FormValue("start_time")); err != nil {
		redirectErr(w, r, "/advisor/slots", err)
		return
	}
	redirectOK(w, r, "/advisor/slots", "Slot updated.")
}

func (h *Handler) AdvisorSlotDelete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.consultations.DeleteSlot(r.Context(), sess.UserID, id); err != nil {
		redirectErr(w, r, "/advisor/slots", err)
		return
	}
	redirectOK(w, r, "/advisor/slots", "Slot removed.")
}

func (h *Handler) AdvisorConsultationList(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	consultations, err := h.consultations.ListForAdvisor(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/advisor/dashboard", err)
		return
	}
	h.render.Render(w, r, "advisor_consultations.html", consultations)
}

func (h *Handler) AdvisorConsultationComplete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.consultations.Complete(r.Context(), sess.UserID, id); err != nil {
		redirectErr(w, r, "/advisor/consultations", err)
		return
	}
	redirectOK(w, r, "/advisor/consultations", "Consultation marked completed.")
}

func (h *Handler) AdvisorConsultationNotes(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/advisor/consultations", err)
		return
	}
	if err := h.consultations.SaveNotes(r.Context(), sess.UserID, id, r.FormValue("notes")); err != nil {
		redirectErr(w, r, "/advisor/consultations", err)
		return
	}
	redirectOK(w, r, "/advisor/consultations", "Notes saved.")
}

const oauthStateCookie = "bb_oauth_state"

// AdvisorCalendarConnect sends the advisor into the calendar provider's
// consent flow. The state lands in a short-lived cookie and is checked on
// the way back.
func (h *Handler) AdvisorCalendarConnect(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		redirectErr(w, r, "/advisor/dashboard", err)
		return
	}
	state := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.consultations.CalendarAuthURL(state), http.StatusSeeOther)
}

func (h *Handler) AdvisorCalendarCallback(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		redirectErr(w, r, "/advisor/dashboard", errors.New("calendar authorization state mismatch"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectErr(w, r, "/advisor/dashboard", errors.New("calendar authorization was denied"))
		return
	}
	if err := h.consultations.LinkCalendar(r.Context(), sess.UserID, code); err != nil {
		redirectErr(w, r, "/advisor/dashboard", err)
		return
	}
	redirectOK(w, r, "/advisor/dashboard", "Calendar connected.")
}

// BookingPage lists every open future slot across advisors.
func (h *Handler) BookingPage(w http.ResponseWriter, r *http.Request) {
	slots, err := h.consultations.OpenSlots(r.Context())
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "booking.html", slots)
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	user, err := h.actor(r)
	if err != nil {
		redirectErr(w, r, "/customer/consultations/book", err)
		return
	}
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := h.consultations.Book(r.Context(), user, id); err != nil {
		redirectErr(w, r, "/customer/consultations/book", err)
		return
	}
	redirectOK(w, r, "/customer/consultations", "Consultation booked. Check your email for the meeting link.")
}

func (h *Handler) ConsultationList(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	consultations, err := h.consultations.ListForCustomer(r.Context(), sess.UserID)
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "consultations.html", consultations)
}

func (h *Handler) ConsultationCancel(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.consultations.Cancel(r.Context(), sess.UserID, id); err != nil {
		redirectErr(w, r, "/customer/consultations", err)
		return
	}
	redirectOK(w, r, "/customer/consultations", "Consultation cancelled.")
}
