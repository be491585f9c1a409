package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/handler"
	"github.com/Keganchiaa/fyp-bank/internal/session"
)

// SetupRoutes wires every page onto the mux. Three authenticated areas hang
// off the session middleware: /admin, /advisor and /customer, each gated to
// its role.
func SetupRoutes(r chi.Router, h *handler.Handler, sessions *session.Store) chi.Router {
	// ---- Global Middleware ----
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// ---- Public pages ----
	r.Get("/", h.Home)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Get("/forgot-password", h.ForgotPasswordPage)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Get("/reset-password", h.ResetPasswordPage)
	r.Post("/reset-password", h.ResetPassword)

	// ---- Authenticated pages ----
	r.Group(func(pr chi.Router) {
		pr.Use(sessions.RequireAuth)

		pr.Post("/logout", h.Logout)
		pr.Get("/uploads/*", h.ServeUpload)

		pr.Get("/profile", h.ProfilePage)
		pr.Post("/profile", h.BeginProfileUpdate)

		pr.Route("/otp", func(o chi.Router) {
			o.Get("/confirm/{purpose}", h.ConfirmPage)
			o.Post("/confirm/{purpose}", h.Confirm)
			o.Post("/resend/{purpose}", h.Resend)
		})

		// ---------------- Admin ----------------
		pr.Route("/admin", func(a chi.Router) {
			a.Use(session.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))

			a.Get("/dashboard", h.AdminDashboard)
			a.Get("/report/export", h.ReportExport)

			a.Route("/users", func(u chi.Router) {
				u.Get("/", h.AdminUserList)
				u.Get("/new", h.AdminUserCreatePage)
				u.Post("/new", h.AdminUserCreate)
				u.Get("/{id}", h.AdminUserDetail)
				u.Get("/{id}/edit", h.AdminUserEditPage)
				u.Post("/{id}/edit", h.AdminUserUpdate)
				u.Post("/{id}/delete", h.AdminUserDelete)
			})

			a.Route("/products", func(p chi.Router) {
				p.Get("/", h.AdminProductList)
				p.Get("/new", h.AdminProductCreatePage)
				p.Post("/new", h.AdminProductCreate)
				p.Get("/{id}/edit", h.AdminProductEditPage)
				p.Post("/{id}/edit", h.AdminProductUpdate)
				p.Post("/{id}/delete", h.AdminProductDelete)
			})

			a.Route("/accounts", func(ac chi.Router) {
				ac.Get("/", h.AdminAccountPending)
				ac.Post("/{id}/approve", h.AdminAccountApprove)
				ac.Post("/{id}/reject", h.AdminAccountReject)
			})

			a.Route("/cards", func(c chi.Router) {
				c.Get("/", h.AdminCardPending)
				c.Post("/{id}/approve", h.AdminCardApprove)
				c.Post("/{id}/reject", h.AdminCardReject)
			})
		})

		// ---------------- Advisor ----------------
		pr.Route("/advisor", func(a chi.Router) {
			a.Use(session.RequireRole(domain.RoleAdvisor))

			a.Get("/dashboard", h.AdvisorDashboard)
			a.Get("/calendar/connect", h.AdvisorCalendarConnect)
			a.Get("/calendar/callback", h.AdvisorCalendarCallback)

			a.Route("/slots", func(s chi.Router) {
				s.Get("/", h.AdvisorSlotList)
				s.Post("/new", h.AdvisorSlotCreate)
				s.Post("/{id}/edit", h.AdvisorSlotUpdate)
				s.Post("/{id}/delete", h.AdvisorSlotDelete)
			})

			a.Route("/consultations", func(c chi.Router) {
				c.Get("/", h.AdvisorConsultationList)
				c.Post("/{id}/complete", h.AdvisorConsultationComplete)
				c.Post("/{id}/notes", h.AdvisorConsultationNotes)
			})
		})

		// ---------------- Customer ----------------
		pr.Route("/customer", func(c chi.Router) {
			c.Use(session.RequireRole(domain.RoleCustomer))

			c.Get("/dashboard", h.CustomerDashboard)
			c.Get("/products", h.ProductCatalog)

			c.Route("/accounts", func(ac chi.Router) {
				ac.Get("/", h.AccountList)
				ac.Get("/apply", h.AccountApplyPage)
				ac.Post("/apply", h.AccountApply)
				ac.Post("/{id}/delete", h.AccountDelete)
			})

			c.Route("/cards", func(cd chi.Router) {
				cd.Get("/", h.CardList)
				cd.Get("/apply", h.CardApplyPage)
				cd.Post("/apply", h.CardApply)
				cd.Post("/{id}/delete", h.CardDelete)
			})

			c.Get("/topup", h.TopUpPage)
			c.Post("/topup", h.TopUp)
			c.Get("/transfer", h.TransferPage)
			c.Post("/transfer", h.Transfer)
			c.Get("/transactions", h.TransactionHistory)

			c.Route("/consultations", func(cs chi.Router) {
				cs.Get("/", h.ConsultationList)
				cs.Get("/book", h.BookingPage)
				cs.Post("/book/{id}", h.Book)
				cs.Post("/{id}/cancel", h.ConsultationCancel)
			})
		})
	})

	return r
}
