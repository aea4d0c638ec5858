package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	auditapp "github.com/locaflow/backend/internal/application/audit"
	billingapp "github.com/locaflow/backend/internal/application/billing"
	bookingapp "github.com/locaflow/backend/internal/application/booking"
	financeapp "github.com/locaflow/backend/internal/application/finance"
	fiscalapp "github.com/locaflow/backend/internal/application/fiscal"
	identityapp "github.com/locaflow/backend/internal/application/identity"
	inventoryapp "github.com/locaflow/backend/internal/application/inventory"
	partnerapp "github.com/locaflow/backend/internal/application/partner"
	printingapp "github.com/locaflow/backend/internal/application/printing"
	reportapp "github.com/locaflow/backend/internal/application/report"
	"github.com/locaflow/backend/internal/infrastructure/auth"
	"github.com/locaflow/backend/internal/infrastructure/cache"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/locaflow/backend/internal/infrastructure/errortracking"
	"github.com/locaflow/backend/internal/infrastructure/event"
	"github.com/locaflow/backend/internal/infrastructure/integration"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"github.com/locaflow/backend/internal/infrastructure/mail"
	"github.com/locaflow/backend/internal/infrastructure/migration"
	"github.com/locaflow/backend/internal/infrastructure/persistence"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	infraprinting "github.com/locaflow/backend/internal/infrastructure/printing"
	"github.com/locaflow/backend/internal/infrastructure/scheduler"
	"github.com/locaflow/backend/internal/infrastructure/storage"
	"github.com/locaflow/backend/internal/infrastructure/telemetry"
	"github.com/locaflow/backend/internal/interfaces/http/handler"
	"github.com/locaflow/backend/internal/interfaces/http/middleware"
	"github.com/locaflow/backend/internal/interfaces/http/router"
	"github.com/locaflow/backend/migrations"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/locaflow/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			LocaFlow API
//	@version		1.0
//	@description	API da plataforma LocaFlow para locadoras de equipamentos: estoque, reservas, clientes, financeiro e NFS-e.
//	@termsOfService	https://locaflow.com.br/termos

//	@contact.name	LocaFlow Suporte
//	@contact.url	https://locaflow.com.br
//	@contact.email	suporte@locaflow.com.br

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						lf_session
//	@description				Session cookie set by /auth/login

//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				"Bearer {token}" with an access token or an API key (lf_...)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("Failed to read .env: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if core := providers.LogCore(cfg.App.Name, logger.ParseLevel(cfg.Log.Level)); core != nil {
		log = log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}

	log.Info("Starting LocaFlow",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	tracker, err := errortracking.New(cfg.Sentry, log, errortracking.WithRelease(version))
	if err != nil {
		log.Fatal("Failed to initialize error tracking", zap.Error(err))
	}
	defer tracker.Flush(2 * time.Second)

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, cfg.Telemetry); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := migrate(db, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Shared infrastructure
	redisClient := cache.NewRedisClient(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	lookupCache := cache.NewLookupCache(redisClient)
	idempotency := cache.NewIdempotencyStore(redisClient)
	blacklist := auth.NewTokenBlacklist(redisClient, log)
	jwtService := auth.NewJWTService(cfg.JWT)
	cookies := auth.NewCookies(cfg.Cookie)
	metrics := telemetry.NewMetrics()
	bus := event.NewInMemoryEventBus(log, event.WithObserver(metrics))

	objects, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	txm := persistence.NewGormTransactionManager(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	resetRepo := persistence.NewGormPasswordResetRepository(db.DB)
	apiKeyRepo := persistence.NewGormAPIKeyRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	equipmentRepo := persistence.NewGormEquipmentRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	recurringRepo := persistence.NewGormRecurringRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Billing comes first: it checks plan limits and features for every
	// other service
	var gateway billingapp.Gateway
	if cfg.Asaas.Enabled() {
		gateway = integration.NewAsaasClient(cfg.Asaas, log)
	} else {
		log.Warn("Asaas is not configured, subscriptions activate locally")
	}
	billingService := billingapp.NewService(planRepo, subscriptionRepo, tenantRepo, gateway, txm, billingapp.Config{
		TrialDays:   cfg.Billing.TrialDays,
		DefaultPlan: cfg.Billing.DefaultPlan,
	}, log)
	if err := billingService.EnsureDefaultPlans(ctx); err != nil {
		log.Fatal("Failed to seed plans", zap.Error(err))
	}
	webhooks := billingapp.NewWebhookHandler(billingService, idempotency, log)

	auditService := auditapp.NewService(activityRepo, log)
	categoryService := financeapp.NewCategoryService(categoryRepo, log)

	authService := identityapp.NewAuthService(identityapp.AuthServiceDeps{
		Tenants:      tenantRepo,
		Users:        userRepo,
		Resets:       resetRepo,
		Tx:           txm,
		JWT:          jwtService,
		Blacklist:    blacklist,
		Mailer:       mail.New(cfg.Mail, log),
		Activity:     auditService,
		Events:       bus,
		Initializers: []identityapp.TenantInitializer{billingService, categoryService},
	}, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
		LockDuration:     cfg.Security.LockoutDuration,
		ResetTokenTTL:    cfg.Security.ResetTokenTTL,
		AppURL:           cfg.App.BaseURL,
	}, log)
	userService := identityapp.NewUserService(userRepo, billingService, auditService, bus, log)
	apiKeyService := identityapp.NewAPIKeyService(apiKeyRepo, tenantRepo, auditService, log)

	lookup := integration.NewLookup(cfg.Lookup, lookupCache, log)
	customerService := partnerapp.NewCustomerService(customerRepo, bookingRepo, lookup, bus, log)
	leadService := partnerapp.NewLeadService(leadRepo, log)

	equipmentService := inventoryapp.NewEquipmentService(equipmentRepo, movementRepo, bookingRepo, txm, billingService, bus, log)
	stockService := inventoryapp.NewStockService(equipmentRepo, movementRepo, txm, bus, log)
	bookingService := bookingapp.NewService(bookingRepo, customerRepo, equipmentRepo, movementRepo, txm, billingService, bus, log)

	transactionService := financeapp.NewTransactionService(transactionRepo, categoryRepo, bus, log)
	recurringService := financeapp.NewRecurringService(recurringRepo, transactionRepo, categoryRepo, txm, bus, log)

	fiscalService := fiscalapp.NewService(invoiceRepo, bookingRepo, customerRepo, tenantRepo, billingService,
		integration.NewFocusNFeClient(cfg.FocusNFe, log), objects, bus, log)

	templates, err := infraprinting.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to parse contract templates", zap.Error(err))
	}
	renderer := infraprinting.NewChromedpRenderer(cfg.Printing, log)
	defer func() { _ = renderer.Close() }()
	contractService := printingapp.NewContractService(bookingRepo, customerRepo, tenantRepo, equipmentRepo,
		templates, renderer, objects, cfg.Printing.Timeout, log)

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		log.Warn("Time zone data unavailable, reports use UTC", zap.Error(err))
		loc = time.UTC
	}
	reportService := reportapp.NewService(persistence.NewGormReportReadModel(db.DB), equipmentRepo, lookupCache, loc, log)

	// Event subscribers
	bus.Subscribe(auditapp.NewEventLogger(auditService, log))
	bus.Subscribe(event.NewIdempotentHandler(
		financeapp.NewBookingReceivables(transactionRepo, categoryRepo, bus, log), idempotency, 0, log))

	// Background jobs
	jobs := scheduler.New(cfg.Scheduler, log, metrics)
	if err := registerJobs(jobs, cfg.Scheduler, tenantRepo, log, jobServices{
		billing:      billingService,
		transactions: transactionService,
		recurring:    recurringService,
		invoices:     fiscalService,
	}); err != nil {
		log.Fatal("Failed to register jobs", zap.Error(err))
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Handlers
	adminHandler, err := handler.NewAdminHandler(reportService, bookingService, equipmentService)
	if err != nil {
		log.Fatal("Failed to parse admin templates", zap.Error(err))
	}
	checks := []handler.HealthCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cookies),
		Users:      handler.NewUserHandler(userService),
		APIKeys:    handler.NewAPIKeyHandler(apiKeyService),
		Equipment:  handler.NewEquipmentHandler(equipmentService),
		Stock:      handler.NewStockHandler(stockService),
		Customers:  handler.NewCustomerHandler(customerService),
		Leads:      handler.NewLeadHandler(leadService),
		Bookings:   handler.NewBookingHandler(bookingService, contractService),
		Finance:    handler.NewFinanceHandler(transactionService),
		Categories: handler.NewCategoryHandler(categoryService),
		Recurring:  handler.NewRecurringHandler(recurringService),
		Invoices:   handler.NewInvoiceHandler(fiscalService),
		Billing:    handler.NewBillingHandler(billingService, webhooks),
		Activity:   handler.NewActivityHandler(auditService),
		Lookup:     handler.NewLookupHandler(lookup),
		Reports:    handler.NewReportHandler(reportService),
		Admin:      adminHandler,
		Health:     handler.NewHealthHandler(version, checks...),
	}

	// Engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowCredentials = true
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Recovery(tracker),
		middleware.Tracing(cfg.Telemetry.ServiceName, providers.Enabled()),
		middleware.Metrics(metrics),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	authenticate := middleware.Authenticate(middleware.AuthConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		Cookies:    cookies,
		APIKeys:    apiKeyService,
		Logger:     log,
	})
	chains := router.Chains{
		Protected: []gin.HandlerFunc{
			authenticate,
			middleware.RequireActiveTenant(tenantRepo),
			middleware.SpanEnricher(),
			middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
		},
		Admin: []gin.HandlerFunc{
			middleware.Authenticate(middleware.AuthConfig{
				JWTService: jwtService,
				Blacklist:  blacklist,
				Cookies:    cookies,
				OnError:    adminHandler.SignInRequired,
				Logger:     log,
			}),
			middleware.RequireActiveTenant(tenantRepo),
		},
	}

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		general := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		strict := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, general, strict)

		chains.Public = []gin.HandlerFunc{middleware.RateLimit(general, middleware.ClientIPKey)}
		chains.AuthLimit = middleware.RateLimit(strict, middleware.ClientIPKey)
		chains.Protected = append(chains.Protected, middleware.RateLimit(general, middleware.PrincipalKeyFunc))
	}
	if cfg.Telemetry.MetricsEnabled {
		chains.Metrics = metrics.Handler()
	}
	if cfg.Swagger.Enabled {
		chains.Swagger = []gin.HandlerFunc{
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:     true,
				RequireAuth: cfg.App.IsProduction(),
				AllowedIPs:  cfg.Swagger.AllowedIPs,
			}, authenticate),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		}
	}

	router.Mount(engine, handlers, chains)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
	}
	for _, l := range limiters {
		l.Close()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate applies the embedded SQL migrations on Postgres and falls back to
// AutoMigrate for sqlite, which golang-migrate's postgres driver cannot serve
func migrate(db *persistence.Database, driver string, log *zap.Logger) error {
	if driver == "sqlite" {
		return db.DB.AutoMigrate(models.AllModels()...)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	// The migrator is not closed: closing it closes the shared pool
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
