package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"memberhub_backend/database"
	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/cache"
	"memberhub_backend/internal/config"
	"memberhub_backend/internal/email"
	"memberhub_backend/internal/handlers"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/metrics"
	"memberhub_backend/internal/middleware"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/routes"
	"memberhub_backend/internal/services"
	"memberhub_backend/internal/storage"
	"memberhub_backend/internal/validator"
	"memberhub_backend/internal/workers"
	"memberhub_backend/pkg/apperrors"
	"memberhub_backend/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// infrastructure is everything services are built on top of.
type infrastructure struct {
	cache   cache.Cache
	storage storage.Storage
	mailer  *email.Mailer
	details *validator.DetailsValidator
	tokens  *auth.TokenService
	hub     *ws.WebSocketManager
}

func Run() {
	if err := config.LoadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	defer logger.Sync()
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Migration failed", "error", err)
		}
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := initializeInfrastructure(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize infrastructure", "error", err)
	}
	defer infra.cache.Close()

	serviceContainer := initializeServices(cfg, infra)
	ginRouter := SetupRouter(cfg, gormDB, infra, serviceContainer)

	go infra.hub.Run(ctx)

	scheduler, err := initializeWorkers(cfg, gormDB, serviceContainer)
	if err != nil {
		logger.Fatal("Failed to schedule workers", "error", err)
	}
	scheduler.Start()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("Server startup error", "error", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	scheduler.Stop(shutdownCtx)
	stop()

	select {
	case <-infra.hub.Done():
	case <-shutdownCtx.Done():
		logger.Warn("WebSocket hub did not stop in time")
	}
	logger.Info("Server stopped")
}

func initializeInfrastructure(ctx context.Context, cfg *config.Config) (*infrastructure, error) {
	infra := &infrastructure{
		tokens: auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTTL()),
		hub:    ws.NewWebSocketManager(),
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("Redis unavailable at startup, reads will be uncached until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
		infra.cache = redisCache
	} else {
		logger.Info("Redis address not set, caching disabled")
		infra.cache = cache.Noop{}
	}

	store, err := storage.NewStorage(ctx, storage.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	infra.storage = store
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	provider, err := email.NewProviderFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("email provider: %w", err)
	}
	if err := provider.Validate(); err != nil {
		return nil, fmt.Errorf("email provider: %w", err)
	}

	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	if cfg.Email.TemplatesDir != "" {
		if err := templates.LoadTemplates(cfg.Email.TemplatesDir); err != nil {
			return nil, fmt.Errorf("email templates: %w", err)
		}
	}
	infra.mailer = email.NewMailer(provider, templates, email.MailerOptions{
		PublicURL: cfg.Server.PublicURL,
		Async:     true,
	})
	logger.Info("Email initialized", "provider", cfg.Email.Provider, "templates", len(templates.TemplateNames()))

	details, err := validator.NewDetailsValidator()
	if err != nil {
		return nil, fmt.Errorf("details schemas: %w", err)
	}
	infra.details = details

	return infra, nil
}

func initializeServices(cfg *config.Config, infra *infrastructure) *services.ServiceContainer {
	return services.NewServiceContainer(services.Dependencies{
		Tokens:       infra.tokens,
		Mailer:       infra.mailer,
		Cache:        infra.cache,
		CacheTTL:     cfg.CacheTTL(),
		RefreshTTL:   cfg.RefreshTTL(),
		Storage:      infra.storage,
		UploadPolicy: cfg.UploadPolicy(),
		Details:      infra.details,
		Notifier:     infra.hub,
	})
}

// SetupRouter builds the gin engine with every middleware and route.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, infra *infrastructure, serviceContainer *services.ServiceContainer) *gin.Engine {
	session := auth.NewSessionService(infra.tokens, func(ctx context.Context, userID string) (*auth.Identity, error) {
		return serviceContainer.UserService.Identity(gormDB.WithContext(ctx), userID)
	})
	guards := middleware.NewGuards(session, serviceContainer.ProfileService)

	appHandlers := initializeHandlers(serviceContainer, guards, infra)
	wsHandler := ws.NewWebSocketHandler(infra.hub, session, cfg.Server.AllowedOrigins)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := initializeGinRouter(cfg, gormDB)

	opts := routes.Options{Swagger: true}
	if local, ok := infra.storage.(*storage.LocalStorage); ok {
		opts.UploadsDir = local.BasePath()
	}
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, opts)

	return ginRouter
}

func initializeHandlers(s *services.ServiceContainer, guards *middleware.Guards, infra *infrastructure) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New(), guards)
	health := handlers.NewHealthHandler(baseHandler, infra.cache, handlers.HealthRuntime{
		DetailSchemas:    infra.details.SchemaTypes,
		WebsocketClients: infra.hub.ClientCount,
	})

	return &handlers.AppHandlers{
		HealthHandler:      health,
		AuthHandler:        handlers.NewAuthHandler(baseHandler, s.AuthService),
		UserHandler:        handlers.NewUserHandler(baseHandler, s.UserService),
		ProfileHandler:     handlers.NewProfileHandler(baseHandler, s.ProfileService),
		MembershipHandler:  handlers.NewMembershipHandler(baseHandler, s.MembershipService),
		OpportunityHandler: handlers.NewOpportunityHandler(baseHandler, s.OpportunityService),
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, s.ApplicationService),
		DashboardHandler:   handlers.NewDashboardHandler(baseHandler, s.DashboardService),
		ContentHandler:     handlers.NewContentHandler(baseHandler, s.LeaderService, s.GalleryService, s.VideoService, s.UploadService),
		AdminHandler:       handlers.NewAdminHandler(baseHandler, s.UserService, s.MembershipService, s.OpportunityService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

func initializeWorkers(cfg *config.Config, db *gorm.DB, s *services.ServiceContainer) (*workers.Scheduler, error) {
	scheduler := workers.NewScheduler()
	if err := scheduler.Add(cfg.Workers.ExpirySpec, workers.NewExpiryWorker(db, s.OpportunityService)); err != nil {
		return nil, err
	}
	if err := scheduler.Add(cfg.Workers.TokenCleanupSpec, workers.NewTokenCleanupWorker(db, s.AuthService)); err != nil {
		return nil, err
	}
	return scheduler, nil
}

// seedFirstAdmin creates the configured administrator once. The account is
// approved and verified but holds no member roles.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.Admin.FirstEmail))
	adminPassword := cfg.Admin.FirstPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var existing models.User
	result := tx.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		FullName:     "Administrator",
		IsAdmin:      true,
		IsVerified:   true,
	}
	admin.ApprovalStatus = models.ApprovalApproved
	admin.ReviewedAt = &now

	if err := tx.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return tx.Commit().Error
}
