package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hibiken/asynq"

	"github.com/glossworks/glossworks/internal/ai"
	"github.com/glossworks/glossworks/internal/analytics"
	analytichttp "github.com/glossworks/glossworks/internal/analytics/http"
	"github.com/glossworks/glossworks/internal/app"
	"github.com/glossworks/glossworks/internal/appointments"
	"github.com/glossworks/glossworks/internal/assessments"
	"github.com/glossworks/glossworks/internal/audit"
	audithttp "github.com/glossworks/glossworks/internal/audit/http"
	"github.com/glossworks/glossworks/internal/auth"
	"github.com/glossworks/glossworks/internal/bookings"
	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/clients"
	"github.com/glossworks/glossworks/internal/feedback"
	"github.com/glossworks/glossworks/internal/invoices"
	"github.com/glossworks/glossworks/internal/observability"
	"github.com/glossworks/glossworks/internal/orgs"
	"github.com/glossworks/glossworks/internal/payments"
	"github.com/glossworks/glossworks/internal/platform/cache"
	"github.com/glossworks/glossworks/internal/platform/db"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
	"github.com/glossworks/glossworks/internal/tenants"
	"github.com/glossworks/glossworks/internal/uploads"
	"github.com/glossworks/glossworks/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Sessions, rate limits and the analytics cache all live in Redis, so
	// a dead Redis is fatal here.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "glossworks_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	rateLimiter := shared.NewRateLimiter(redisClient, cfg.UserRateLimit, cfg.UserRateLimitWindow)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	auditLogger := shared.NewAuditLogger(dbpool)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo)

	orgRepo := orgs.NewRepository(dbpool)
	orgService := orgs.NewService(orgRepo, rbacService, rbacRepo)
	orgsHandler := orgs.NewHandler(logger, orgService)

	tenantRepo := tenants.NewRepository(dbpool)
	tenantService := tenants.NewService(tenantRepo, rbacService, cfg.BaseURL)
	tenantsHandler := tenants.NewHandler(logger, tenantService)

	clientRepo := clients.NewRepository(dbpool)
	clientService := clients.NewService(clientRepo, rbacService)
	clientsHandler := clients.NewHandler(logger, clientService)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogManager := catalog.NewManager(catalogRepo, rbacService)
	catalogHandler := catalog.NewHandler(logger, catalogManager)

	invoiceRepo := invoices.NewRepository(dbpool)
	invoiceService := invoices.NewService(invoiceRepo, rbacService, auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoiceService)

	appointmentRepo := appointments.NewRepository(dbpool)
	appointmentService := appointments.NewService(appointmentRepo, rbacService, auditLogger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentService)

	bookingRepo := bookings.NewRepository(dbpool)
	bookingService := bookings.NewService(bookingRepo, rbacService, auditLogger)
	bookingsHandler := bookings.NewHandler(logger, bookingService)

	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)

	stripeProvider := payments.NewStripeProvider(cfg.StripeSecretKey)
	paymentRepo := payments.NewRepository(dbpool)
	paymentService := payments.NewService(paymentRepo, stripeProvider, logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		logger.Error("load aws config", slog.Any("error", err))
		os.Exit(1)
	}
	s3Store := uploads.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket)
	mediaRepo := uploads.NewRepository(dbpool)
	mediaService := uploads.NewService(mediaRepo, s3Store, cfg.S3PublicBaseURL)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	assessmentRepo := assessments.NewRepository(dbpool)
	assessmentService := assessments.NewService(assessmentRepo, catalogRepo, aiClient, paymentService, rbacService, auditLogger, logger)
	assessmentsHandler := assessments.NewHandler(logger, assessmentService, mediaService, jobsClient)

	feedbackRepo := feedback.NewRepository(dbpool)
	feedbackService := feedback.NewService(feedbackRepo, rbacService)
	feedbackHandler := feedback.NewHandler(feedbackService)

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, rbacService)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo, rbacService)
	auditHandler := audithttp.NewHandler(logger, auditService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		RateLimiter:         rateLimiter,
		AuthHandler:         authHandler,
		OrgsHandler:         orgsHandler,
		TenantsHandler:      tenantsHandler,
		ClientsHandler:      clientsHandler,
		CatalogHandler:      catalogHandler,
		InvoicesHandler:     invoicesHandler,
		AppointmentsHandler: appointmentsHandler,
		BookingsHandler:     bookingsHandler,
		AssessmentsHandler:  assessmentsHandler,
		FeedbackHandler:     feedbackHandler,
		AnalyticsHandler:    analyticsHandler,
		AuditHandler:        auditHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
