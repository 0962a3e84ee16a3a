package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "artemis/docs"
	"artemis/internal/config"
	"artemis/internal/handlers"
	"artemis/internal/middleware"
	"artemis/internal/migrations"
	"artemis/internal/pdf"
	"artemis/internal/repositories"
	"artemis/internal/routes"
	"artemis/internal/services"
	"artemis/internal/utils"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *sql.DB
	server *http.Server
}

// New opens the database, applies migrations when configured and wires the HTTP stack.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if cfg.Database.MigrateOnBoot {
		if err := migrations.Up(db, log); err != nil {
			db.Close()
			return nil, err
		}
	}

	alerts, err := services.NewTelegramAlertService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
	if err != nil {
		// alerts are optional
		log.Warn("[app] telegram alerts disabled", zap.Error(err))
		alerts = services.NopAlertService{}
	}

	router := NewRouter(cfg, log, db, alerts)
	return &App{
		cfg: cfg,
		log: log,
		db:  db,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.Server.RequestTimeout,
			WriteTimeout:      cfg.Server.RequestTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// NewRouter builds repositories, services and handlers on top of db.
func NewRouter(cfg *config.Config, log *zap.Logger, db *sql.DB, alerts services.AlertService) *gin.Engine {
	// === Repos ===
	profileRepo := repositories.NewProfileRepository(db)
	authUserRepo := repositories.NewAuthUserRepository(db)
	formRepo := repositories.NewFormRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	emailService := newEmailService(cfg.Email, log)
	identity := newIdentityAdmin(cfg.Identity, authUserRepo, authService)

	resetService := services.NewPasswordResetService(profileRepo, emailService, identity, alerts, log, services.ResetOptions{
		CodeTTL:           cfg.Reset.CodeTTL,
		MinPasswordLength: cfg.Reset.MinPasswordLength,
	})
	pdfGen := pdf.NewDocumentGenerator(cfg.Files.RootDir, cfg.Files.FontPath)
	formService := services.NewFormService(formRepo, profileRepo, pdfGen, log)
	nitService := services.NewNITService(cfg.NIT.SearchURL, cfg.NIT.Timeout, log)

	// === Handlers ===
	healthHandler := handlers.NewHealthHandler(db, log)
	resetHandler := handlers.NewPasswordResetHandler(resetService, log)
	formHandler := handlers.NewFormHandler(formService, log)
	nitHandler := handlers.NewNITHandler(nitService, log)
	var authHandler *handlers.AuthHandler
	if cfg.Identity.Provider == config.IdentityProviderLocal {
		accounts := services.NewAccountService(authUserRepo, profileRepo, authService, emailService, log, cfg.Auth.SignupMinPasswordLength)
		authHandler = handlers.NewAuthHandler(accounts, log)
	}

	// === Gin ===
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn("[app] invalid trusted proxies, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	// logger wraps recovery so recovered panics are logged with their 500
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	return routes.SetupRoutes(router, authService, limiter, healthHandler, resetHandler, authHandler, formHandler, nitHandler)
}

func newEmailService(cfg config.EmailConfig, log *zap.Logger) services.EmailService {
	switch cfg.Provider {
	case config.EmailProviderResend:
		return services.NewResendEmailService(utils.NewResendClient(cfg.ResendAPIKey, cfg.ResendURL, cfg.FromEmail), log)
	case config.EmailProviderLog:
		return services.NewLogEmailService(log)
	default:
		return services.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail)
	}
}

func newIdentityAdmin(cfg config.IdentityConfig, users repositories.AuthUserRepository, auth services.AuthService) services.IdentityAdmin {
	if cfg.Provider == config.IdentityProviderGoTrue {
		return services.NewGoTrueIdentityAdmin(cfg.URL, cfg.ServiceKey)
	}
	return services.NewLocalIdentityAdmin(users, auth)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("[app] http server starting", zap.String("addr", a.server.Addr), zap.String("env", a.cfg.App.Env))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	return a.db.Close()
}
