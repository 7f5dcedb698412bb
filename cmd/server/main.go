// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mkanyali/assetcomply-backend/internal/config"
	"github.com/mkanyali/assetcomply-backend/internal/controller"
	"github.com/mkanyali/assetcomply-backend/internal/db"
	"github.com/mkanyali/assetcomply-backend/internal/hubspot"
	"github.com/mkanyali/assetcomply-backend/internal/logger"
	"github.com/mkanyali/assetcomply-backend/internal/mailer"
	"github.com/mkanyali/assetcomply-backend/internal/middleware"
	"github.com/mkanyali/assetcomply-backend/internal/queue"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
	"github.com/mkanyali/assetcomply-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	zlog, err := logger.Init(cfg)
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer zlog.Sync()
	slog := zlog.Sugar()

	conn, err := db.Open(cfg)
	if err != nil {
		slog.Fatalw("failed to open database", "err", err)
	}
	defer conn.Close()
	if err := db.Migrate(conn, cfg.DBDriver); err != nil {
		slog.Fatalw("failed to run migrations", "err", err)
	}

	// Repositories
	userRepo := &repository.UserRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	recordRepo := &repository.RecordRepository{DB: conn}
	inviteRepo := &repository.InviteRepository{DB: conn}
	assetRepo := &repository.AssetRepository{DB: conn}
	companyRepo := &repository.CompanyRepository{DB: conn}
	outboundRepo := &repository.OutboundEmailRepository{DB: conn}
	auditRepo := &repository.AuditRepository{DB: conn}
	authSettingsRepo := &repository.AuthSettingsRepository{DB: conn}
	syncSettingsRepo := &repository.SyncSettingsRepository{DB: conn}
	syncLogRepo := &repository.SyncLogRepository{DB: conn}

	gateway := mailer.NewSMTPMailer(cfg, slog.With("component", "mailer"))

	// Queue: AMQP publishes for cmd/worker; memory delivers in-process.
	var q queue.Queue
	switch cfg.QueueDriver {
	case "amqp":
		aq, err := queue.NewAMQPQueue(cfg.AMQPURL, slog.With("component", "queue"))
		if err != nil {
			slog.Fatalw("failed to connect queue", "err", err)
		}
		defer aq.Close()
		q = aq
	default:
		mq := queue.NewInMemoryQueue(slog.With("component", "queue"))
		queue.StartInviteSendSubscriber(mq, outboundRepo, gateway, slog.With("component", "invite-sender"))
		q = mq
	}

	// Services
	lifecycle := &service.LifecycleService{
		Campaigns:   campaignRepo,
		Records:     recordRepo,
		Users:       userRepo,
		Invites:     inviteRepo,
		Outbound:    outboundRepo,
		Audit:       auditRepo,
		Queue:       q,
		Gateway:     gateway,
		FrontendURL: cfg.FrontendURL,
		Log:         slog.With("component", "lifecycle"),
	}
	authService := &service.AuthService{
		Users:     userRepo,
		Invites:   inviteRepo,
		Campaigns: campaignRepo,
		Settings:  authSettingsRepo,
		Audit:     auditRepo,
		JWTSecret: cfg.JWTSecret,
		Log:       slog.With("component", "auth"),
	}
	hubspotClient := hubspot.NewClient()
	syncScheduler := &service.SyncScheduler{
		Settings: syncSettingsRepo,
		Logs:     syncLogRepo,
		Sync: func(ctx context.Context, accessToken string, cursor *string) (*hubspot.SyncResult, error) {
			return hubspotClient.Sync(ctx, accessToken, companyRepo, auditRepo, cursor)
		},
		Log: slog.With("component", "sync-scheduler"),
	}
	attScheduler := &service.AttestationScheduler{
		Campaigns:   campaignRepo,
		Records:     recordRepo,
		Users:       userRepo,
		Lifecycle:   lifecycle,
		Gateway:     gateway,
		FrontendURL: cfg.FrontendURL,
		Log:         slog.With("component", "attestation-scheduler"),
	}

	// Controllers
	authController := &controller.AuthController{AuthService: authService, Settings: authSettingsRepo, Log: slog}
	campaignController := &controller.CampaignController{Campaigns: campaignRepo, Lifecycle: lifecycle}
	recordController := &controller.RecordController{Records: recordRepo, Lifecycle: lifecycle}
	assetController := &controller.AssetController{Assets: assetRepo, Companies: companyRepo}
	adminController := &controller.AdminController{
		AuthSettings: authSettingsRepo,
		SyncSettings: syncSettingsRepo,
		SyncLogs:     syncLogRepo,
		Audit:        auditRepo,
		Assets:       assetRepo,
		Companies:    companyRepo,
		HubSpot:      hubspotClient,
		Scheduler:    syncScheduler,
		Log:          slog.With("component", "admin"),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/auth/register", authController.Register)
	r.Post("/api/auth/login", authController.Login)
	r.Get("/api/auth/config", authController.Config)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.CapAttestSelf))
			r.Get("/api/attestation/my-records", recordController.MyRecords)
			r.Post("/api/attestation/records/{id}/start", recordController.Start)
			r.Post("/api/attestation/records/{id}/complete", recordController.Complete)
			r.Post("/api/assets", assetController.Create)
			r.Get("/api/assets", assetController.List)
			r.Get("/api/assets/{id}", assetController.Get)
			r.Get("/api/companies", assetController.ListCompanies)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.CapManageCampaigns))
			r.Post("/api/attestation/campaigns", campaignController.Create)
			r.Get("/api/attestation/campaigns", campaignController.List)
			r.Get("/api/attestation/campaigns/{id}", campaignController.Get)
			r.Post("/api/attestation/campaigns/{id}/start", campaignController.Start)
			r.Post("/api/attestation/campaigns/{id}/cancel", campaignController.Cancel)
			r.Delete("/api/attestation/campaigns/{id}", campaignController.Delete)
			r.Get("/api/attestation/campaigns/{id}/records", recordController.ByCampaign)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.CapManageInvites))
			r.Post("/api/attestation/campaigns/{id}/invites", campaignController.CreateInvite)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.CapManageAssets))
			r.Delete("/api/assets/{id}", assetController.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.CapManageSettings))
			r.Get("/api/admin/auth-settings", adminController.GetAuthSettings)
			r.Put("/api/admin/auth-settings", adminController.UpdateAuthSettings)
			r.Get("/api/admin/hubspot-settings", adminController.GetSyncSettings)
			r.Put("/api/admin/hubspot-settings", adminController.UpdateSyncSettings)
			r.Post("/api/admin/hubspot-test", adminController.TestConnection)
			r.Post("/api/admin/hubspot-sync", adminController.TriggerSync)
			r.Get("/api/admin/hubspot-sync-logs", adminController.ListSyncLogs)
			r.Get("/api/admin/audit", adminController.ListAudit)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.CapViewReports))
			r.Get("/api/stats", adminController.Stats)
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Single-binary deployments run the scheduler loops in-process; larger
	// ones run cmd/scheduler separately and leave this off.
	if cfg.RunSchedulers {
		go attScheduler.Run(ctx)
		go syncScheduler.Run(ctx)
	}

	srv := &http.Server{Addr: cfg.ServerAddr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	slog.Infow("server running", "addr", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Fatalw("server failed", "err", err)
	}
}
