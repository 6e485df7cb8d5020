package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kosench/shortlink/internal/auth"
	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/config"
	"github.com/Kosench/shortlink/internal/database"
	"github.com/Kosench/shortlink/internal/handler"
	"github.com/Kosench/shortlink/internal/logger"
	"github.com/Kosench/shortlink/internal/oauth"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	db, err := database.Connect(cfg.Database, logger.NewGormLogger(log, cfg.App.Environment))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close(db)

	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("dbname", cfg.Database.DBName))

	store := newStore(cfg, log)
	defer store.Close()

	users := repository.NewUserRepository(db)
	links := repository.NewLinkRepository(db)
	clicks := repository.NewClickRepository(db)

	issuer := auth.NewJWTIssuer(auth.Config{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		Issuer:        cfg.Auth.Issuer,
	})

	linkService := service.NewLinkService(links, clicks, cfg.GetBaseURL(), log)
	analyticsService := service.NewAnalyticsService(links, clicks)
	authService := service.NewAuthService(users, issuer, store, service.AuthOptions{
		BcryptCost:  cfg.Auth.BcryptCost,
		LinkByEmail: cfg.OAuth.LinkByEmail,
	}, log)
	userService := service.NewUserService(users, cfg.Auth.BcryptCost, log)

	providers := newProviders(cfg.OAuth, log)
	cookies := handler.CookieConfig{
		Secure:     cfg.IsProduction(),
		RefreshTTL: cfg.Auth.RefreshTTL,
	}

	linkHandler := handler.NewLinkHandler(linkService, cfg.App.NotFoundRedirect, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Links:     linkHandler,
		Analytics: handler.NewAnalyticsHandler(analyticsService, log),
		Auth:      handler.NewAuthHandler(authService, cookies, log),
		OAuth: handler.NewOAuthHandler(providers, store, authService, cookies, handler.OAuthConfig{
			StateTTL:        cfg.OAuth.StateTTL,
			SuccessRedirect: cfg.OAuth.SuccessRedirect,
		}, log),
		Users:  handler.NewUserHandler(userService, cookies, log),
		Health: handler.NewHealthHandler(db, store),

		TokenParser: issuer,
		RateLimiter: store,
		RateLimit: handler.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		AllowedOrigins: cfg.GetAllowedOrigins(),
		Logger:         log,
	})

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("base_url", cfg.GetBaseURL()),
			zap.String("store", store.Driver()),
			zap.Strings("oauth_providers", providers.Names()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Дожидаемся записи кликов, начатых до остановки
	if err := linkHandler.Shutdown(ctx); err != nil {
		log.Warn("pending click records dropped", zap.Error(err))
	}

	log.Info("server gracefully stopped")
	return nil
}

// newStore подключает Redis, а без него работает на памяти процесса
func newStore(cfg *config.Config, log *zap.Logger) cache.Store {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using in-memory store")
		return cache.NewMemoryStore()
	}

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		Namespace:    cfg.Redis.Namespace,
	})
	if err != nil {
		log.Warn("failed to connect to redis, using in-memory store", zap.Error(err))
		return cache.NewMemoryStore()
	}

	log.Info("connected to redis", zap.String("addr", cfg.GetRedisAddress()))
	return client
}

func newProviders(cfg config.OAuthConfig, log *zap.Logger) *oauth.Registry {
	var providers []oauth.Provider
	if cfg.GitHub.Enabled() {
		providers = append(providers, oauth.NewGitHub(cfg.GitHub))
	}
	if cfg.Google.Enabled() {
		providers = append(providers, oauth.NewGoogle(cfg.Google))
	}

	if len(providers) == 0 {
		log.Info("no oauth providers configured")
	}
	return oauth.NewRegistry(providers...)
}
