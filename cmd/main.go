package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/handler"
	"eventtix/registrar/internal/mail"
	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/qr"
	"eventtix/registrar/internal/queue"
	"eventtix/registrar/internal/repository"
	"eventtix/registrar/internal/scheduler"
	"eventtix/registrar/internal/service"
	"eventtix/registrar/internal/storage"
	"eventtix/registrar/internal/worker"
	jwtpkg "eventtix/registrar/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 3. Open the registration store (PostgreSQL or in-memory)
	var store repository.Store
	switch cfg.Database.Backend {
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}

		// 4. Auto-migrate if enabled
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		store = repository.NewPGStore(db)
	case "memory":
		store = repository.NewMemoryStore()
		logger.Warn("using in-memory registration store, data is lost on restart")
	default:
		logger.Fatal("unknown database backend", zap.String("backend", cfg.Database.Backend))
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)

	// 6. Initialize storage, mail and QR collaborators
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}
	logger.Info("storage initialized", zap.String("backend", cfg.Storage.Backend))

	mailer, err := mail.New(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}
	templates, err := mail.LoadTemplates()
	if err != nil {
		logger.Fatal("failed to load email templates", zap.Error(err))
	}

	qrKey := cfg.QR.SigningKey
	if qrKey == "" {
		qrKey = cfg.JWT.SigningKey
	}
	signer := qr.NewSigner(qrKey)
	renderer := qr.NewPNGRenderer(cfg.QR.Size)

	// 7. Connect to RabbitMQ if enabled
	var (
		publisher service.Publisher
		rabbit    *queue.Client
	)
	if cfg.Queue.Enabled {
		rabbit, err = queue.NewRabbit(cfg.Queue, logger)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer rabbit.Close()
		publisher = rabbit
	} else {
		logger.Info("queue disabled, notifications are delivered inline")
	}

	// 8. Initialize services
	auditService := service.NewAuditService(store.Repositories().AuditLogs, logger)
	settingsService := service.NewSettingsService(store, auditService, cfg.Event)
	notificationService := service.NewNotificationService(
		store, settingsService, mailer, templates, renderer, signer,
		publisher, cfg.Mail.Timeout, logger,
	)
	registrationService := service.NewRegistrationService(
		store, settingsService, uploader, notificationService,
		cfg.Storage.MaxUploadSize, cfg.Storage.Timeout, logger,
	)
	reviewService := service.NewReviewService(
		store, renderer, signer, uploader, cfg.Storage.Timeout,
		notificationService, auditService, logger,
	)
	ticketService := service.NewTicketService(store, auditService, logger)
	adminService := service.NewAdminService(store, auditService, logger)
	authService := service.NewAuthService(store.Repositories().Admins, stateStore, jwtManager, auditService, logger)
	reminderService := service.NewReminderService(store, settingsService, notificationService, cfg.Scheduler.ReminderLead, logger)

	if err := adminService.EnsureBootstrap(ctx, cfg.Bootstrap); err != nil {
		logger.Fatal("failed to bootstrap superadmin", zap.Error(err))
	}

	// 9. Start background workers
	var notificationWorker *worker.NotificationWorker
	if rabbit != nil {
		notificationWorker = worker.NewNotificationWorker(rabbit, notificationService, logger)
		notificationWorker.Start(ctx)
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.NewScheduler(cfg.Scheduler, reminderService, logger)
		if err != nil {
			logger.Fatal("failed to init scheduler", zap.Error(err))
		}
		sched.Start()
	}

	// 10. Setup router
	router := handler.SetupRouter(cfg, logger, authService, handler.Handlers{
		Registration: handler.NewRegistrationHandler(registrationService, settingsService, cfg.Storage.MaxUploadSize),
		Auth:         handler.NewAuthHandler(authService),
		Review:       handler.NewReviewHandler(reviewService),
		Ticket:       handler.NewTicketHandler(ticketService),
		Audit:        handler.NewAuditHandler(auditService),
		Admin:        handler.NewAdminHandler(adminService, settingsService),
	})

	// 11. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 12. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if sched != nil {
		sched.Stop()
	}
	if notificationWorker != nil {
		notificationWorker.Stop()
	}
	logger.Info("server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
