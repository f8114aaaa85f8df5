package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/rentiq/internal/adapter/firebase"
	"github.com/neomorfeo/rentiq/internal/adapter/fsm"
	"github.com/neomorfeo/rentiq/internal/adapter/jwt"
	"github.com/neomorfeo/rentiq/internal/adapter/otel"
	"github.com/neomorfeo/rentiq/internal/adapter/river"
	"github.com/neomorfeo/rentiq/internal/adapter/smtp"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/adapter/stripe"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/config"
	"github.com/neomorfeo/rentiq/internal/domain"

	handler "github.com/neomorfeo/rentiq/internal/adapter/http"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	cfg := config.FromEnv()
	ctx := context.Background()

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		log.Fatalf("otel: %v", err)
	}

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users, err := sqlite.NewFromDB(db)
	if err != nil {
		log.Fatalf("migrations: %v", err)
	}

	fbClient, err := firebase.NewClient(ctx, cfg.FirebaseDatabaseURL, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	tenants := otel.NewTracingDirectory(firebase.NewTenantDirectory(fbClient, cfg.DefaultOwnerID))
	properties := firebase.NewPropertyDirectory(fbClient, cfg.DefaultOwnerID)
	reminderLog := firebase.NewReminderLog(fbClient)
	messageLog := firebase.NewMessageLog(fbClient)

	smtpMailer, err := smtp.New(smtp.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: "RentIQ",
		ReplyTo:  cfg.MailReplyTo,
		Secure:   cfg.SMTPSecure,
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	mailer := otel.NewTracingMailer(smtpMailer)

	var gateway domain.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = stripe.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		slog.Warn("stripe key missing, payment routes will report unavailable")
	}

	issuer := jwt.New(cfg.JWTSecret, time.Duration(cfg.JWTExpireDays)*24*time.Hour)
	tenantFSM := fsm.NewTenantValidator()
	propertyFSM := fsm.NewPropertyValidator()

	// --- Application ---
	authSvc := app.NewAuthService(users, issuer)
	propertySvc := app.NewPropertyService(properties, propertyFSM)
	tenantSvc := app.NewTenantService(tenants, propertySvc)
	reconciler := app.NewReconcileService(tenants, tenantFSM)
	// Reminders need a working relay even when REMINDER_ENABLED forces them on.
	reminderSvc := app.NewReminderService(tenants, properties, mailer, reminderLog, app.ReminderOptions{
		AppURL:         cfg.AppURL,
		DefaultOwnerID: cfg.DefaultOwnerID,
		Active:         cfg.ReminderActive() && smtpMailer.Configured(),
	})
	messageSvc := app.NewMessageService(tenants, properties, mailer, messageLog)
	paymentSvc := app.NewPaymentService(gateway, tenants, properties, tenantFSM, mailer, app.PaymentOptions{
		AppURL: cfg.AppURL,
	})

	if err := authSvc.SeedDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("admin seed: %v", err)
	}

	// --- Background jobs ---
	jobs, err := river.Setup(ctx, db, reconciler, reminderSvc)
	if err != nil {
		log.Fatalf("river: %v", err)
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatalf("river start: %v", err)
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("rentiq", otelchi.WithChiRoutes(router)))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api := humachi.New(router, huma.DefaultConfig("rentiq", "0.1.0"))
	api.UseMiddleware(handler.NewAuthMiddleware(api, authSvc))
	handler.Register(api, handler.Services{
		Auth:       authSvc,
		Tenants:    tenantSvc,
		Properties: propertySvc,
		Payments:   paymentSvc,
		Reminders:  reminderSvc,
		Reconciler: reconciler,
		Messages:   messageSvc,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("rentiq listening on :%s", cfg.Port)
		log.Printf("API docs: http://localhost:%s/docs", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Printf("river stop error: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown error: %v", err)
	}

	log.Println("stopped")
}
