package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/Keganchiaa/fyp-bank/internal/calendar"
	"github.com/Keganchiaa/fyp-bank/internal/config"
	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/handler"
	"github.com/Keganchiaa/fyp-bank/internal/mailer"
	"github.com/Keganchiaa/fyp-bank/internal/rate"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/internal/router"
	"github.com/Keganchiaa/fyp-bank/internal/session"
	"github.com/Keganchiaa/fyp-bank/internal/storage"
	"github.com/Keganchiaa/fyp-bank/internal/usecase"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
	"github.com/Keganchiaa/fyp-bank/web"
)

// NewServer connects the infrastructure and wires every layer together.
func NewServer(cfg config.Config) *http.Server {
	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Printf("[WARN] load timezone %q: %v, using UTC", cfg.TimeZone, err)
		loc = time.UTC
	}

	store, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("init upload storage: %v", err)
	}

	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	provider := calendar.NewClient(cfg.CalendarBaseURL, cfg.CalendarAuthBaseURL,
		cfg.CalendarClientID, cfg.CalendarClientSecret, cfg.CalendarRedirectURL)

	// --- Repositories ---
	userRepo := repository.NewUserRepo(dbpool)
	productRepo := repository.NewProductRepo(dbpool)
	accountRepo := repository.NewAccountRepo(dbpool)
	cardRepo := repository.NewCardRepo(dbpool)
	ledgerRepo := repository.NewLedgerRepo(dbpool)
	otpRepo := repository.NewOTPRepo(dbpool)
	pendingRepo := repository.NewPendingActionRepo(dbpool)
	slotRepo := repository.NewSlotRepo(dbpool)
	consultationRepo := repository.NewConsultationRepo(dbpool)
	reportRepo := repository.NewReportRepo(dbpool)

	seedSuperAdmin(ctx, userRepo, cfg)

	// --- Usecases ---
	limiter := rate.NewLimiter(rdb, cfg.OTPWindow, cfg.OTPMaxPerWindow, cfg.OTPCooldown)
	otps := usecase.NewOTPUsecase(otpRepo, pendingRepo, limiter, sender, cfg.OTPTTL)
	auth := usecase.NewAuthUsecase(userRepo, otps)
	users := usecase.NewUserUsecase(userRepo, accountRepo, cardRepo)
	products := usecase.NewProductUsecase(productRepo)
	accounts := usecase.NewAccountUsecase(accountRepo, productRepo, otps)
	cards := usecase.NewCardUsecase(cardRepo, accountRepo, productRepo, otps)
	ledger := usecase.NewLedgerUsecase(ledgerRepo, accountRepo)
	consultations := usecase.NewConsultationUsecase(slotRepo, consultationRepo, userRepo, provider, sender, loc)
	reports := usecase.NewReportUsecase(reportRepo)

	// --- HTTP layer ---
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	h := handler.New(handler.Deps{
		Render:        handler.NewRenderer(web.Templates),
		Sessions:      sessions,
		Store:         store,
		Auth:          auth,
		Users:         users,
		Products:      products,
		Accounts:      accounts,
		Cards:         cards,
		OTPs:          otps,
		Ledger:        ledger,
		Consultations: consultations,
		Reports:       reports,
		SessionTTL:    cfg.SessionTTL,
	})

	r := chi.NewRouter()
	router.SetupRoutes(r, h, sessions)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}

// seedSuperAdmin creates the bootstrap super admin on first start. Skipped
// when the seed env vars are absent or the user already exists.
func seedSuperAdmin(ctx context.Context, users repository.UserRepository, cfg config.Config) {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return
	}
	if _, err := users.GetByEmail(ctx, cfg.SeedAdminEmail); err == nil {
		return
	} else if !errors.Is(err, xerrors.ErrUserNotFound) {
		log.Fatalf("seed super admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("seed super admin: %v", err)
	}
	err = users.Create(ctx, &domain.User{
		Username:     "superadmin",
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		FirstName:    "System",
		LastName:     "Administrator",
	})
	if err != nil {
		log.Fatalf("seed super admin: %v", err)
	}
	log.Printf("[INFO] seeded super admin %s", cfg.SeedAdminEmail)
}
