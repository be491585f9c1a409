package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Keganchiaa/fyp-bank/internal/session"
	"github.com/Keganchiaa/fyp-bank/internal/storage"
	"github.com/Keganchiaa/fyp-bank/internal/usecase"
)

// Handler holds every page handler. One instance serves the whole app.
type Handler struct {
	render        *Renderer
	sessions      *session.Store
	store         *storage.Store
	auth          *usecase.AuthUsecase
	users         *usecase.UserUsecase
	products      *usecase.ProductUsecase
	accounts      *usecase.AccountUsecase
	cards         *usecase.CardUsecase
	otps          *usecase.OTPUsecase
	ledger        *usecase.LedgerUsecase
	consultations *usecase.ConsultationUsecase
	reports       *usecase.ReportUsecase
	sessionTTL    time.Duration
}

type Deps struct {
	Render        *Renderer
	Sessions      *session.Store
	Store         *storage.Store
	Auth          *usecase.AuthUsecase
	Users         *usecase.UserUsecase
	Products      *usecase.ProductUsecase
	Accounts      *usecase.AccountUsecase
	Cards         *usecase.CardUsecase
	OTPs          *usecase.OTPUsecase
	Ledger        *usecase.LedgerUsecase
	Consultations *usecase.ConsultationUsecase
	Reports       *usecase.ReportUsecase
	SessionTTL    time.Duration
}

func New(d Deps) *Handler {
	return &Handler{
		render:        d.Render,
		sessions:      d.Sessions,
		store:         d.Store,
		auth:          d.Auth,
		users:         d.Users,
		products:      d.Products,
		accounts:      d.Accounts,
		cards:         d.Cards,
		otps:          d.OTPs,
		ledger:        d.Ledger,
		consultations: d.Consultations,
		reports:       d.Reports,
		sessionTTL:    d.SessionTTL,
	}
}

var errInvalidRole = errors.New("invalid role selected")

func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func formFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.FormValue(key), 64)
	return v
}

func formInt(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.FormValue(key), 10, 64)
	return v
}

func formDate(r *http.Request, key string) (time.Time, error) {
	return time.Parse("2006-01-02", r.FormValue(key))
}

func optional(r *http.Request, key string) *string {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}
