// cmd/scheduler/main.go
//
// Standalone scheduler process: the attestation reminder/escalation/auto-close
// loop and the HubSpot sync loop. Run exactly one instance; the passes assume
// no concurrent scheduler is stamping the same records.
package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mkanyali/assetcomply-backend/internal/config"
	"github.com/mkanyali/assetcomply-backend/internal/db"
	"github.com/mkanyali/assetcomply-backend/internal/hubspot"
	"github.com/mkanyali/assetcomply-backend/internal/logger"
	"github.com/mkanyali/assetcomply-backend/internal/mailer"
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

	userRepo := &repository.UserRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	recordRepo := &repository.RecordRepository{DB: conn}
	inviteRepo := &repository.InviteRepository{DB: conn}
	companyRepo := &repository.CompanyRepository{DB: conn}
	outboundRepo := &repository.OutboundEmailRepository{DB: conn}
	auditRepo := &repository.AuditRepository{DB: conn}
	syncSettingsRepo := &repository.SyncSettingsRepository{DB: conn}
	syncLogRepo := &repository.SyncLogRepository{DB: conn}

	gateway := mailer.NewSMTPMailer(cfg, slog.With("component", "mailer"))

	// Auto-close can re-trigger invites only through the lifecycle service,
	// which needs a queue; in-process delivery keeps this binary standalone.
	mq := queue.NewInMemoryQueue(slog.With("component", "queue"))
	queue.StartInviteSendSubscriber(mq, outboundRepo, gateway, slog.With("component", "invite-sender"))

	lifecycle := &service.LifecycleService{
		Campaigns:   campaignRepo,
		Records:     recordRepo,
		Users:       userRepo,
		Invites:     inviteRepo,
		Outbound:    outboundRepo,
		Audit:       auditRepo,
		Queue:       mq,
		Gateway:     gateway,
		FrontendURL: cfg.FrontendURL,
		Log:         slog.With("component", "lifecycle"),
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

	hubspotClient := hubspot.NewClient()
	syncScheduler := &service.SyncScheduler{
		Settings: syncSettingsRepo,
		Logs:     syncLogRepo,
		Sync: func(ctx context.Context, accessToken string, cursor *string) (*hubspot.SyncResult, error) {
			return hubspotClient.Sync(ctx, accessToken, companyRepo, auditRepo, cursor)
		},
		Log: slog.With("component", "sync-scheduler"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		attScheduler.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		syncScheduler.Run(ctx)
	}()

	slog.Info("schedulers running")
	wg.Wait()
	slog.Info("schedulers stopped")
}
