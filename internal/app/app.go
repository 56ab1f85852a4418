package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"cosmic-chat/backend/internal/api"
	"cosmic-chat/backend/internal/config"
	"cosmic-chat/backend/internal/credential"
	"cosmic-chat/backend/internal/database"
	"cosmic-chat/backend/internal/llm"
	"cosmic-chat/backend/internal/repository"
	"cosmic-chat/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// logLevel is shared by the default logger so config reloads can change it.
var logLevel = new(slog.LevelVar)

// App holds the wired dependencies of a running relay.
type App struct {
	DB     *sql.DB
	Redis  *redis.Client
	Server *http.Server
}

// NewApp opens storage, picks the configured backends and provider, and
// builds the HTTP server. It does not start listening.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

	app := &App{DB: db}

	repo, err := app.newRepository(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	provider := newProvider(cfg)
	store := newCredentialStore(cfg, db)

	settingsService := service.NewSettingsService(db, provider)
	appSettings, err := settingsService.InitAndGet(context.Background(), cfg.DefaultModelFor())
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize application settings: %w", err)
	}
	slog.Info("Loaded application settings", "default_model", appSettings.DefaultModel, "provider", provider.Name())

	relay := service.NewRelay(provider, service.RelayConfig{
		Model:        cfg.DefaultModelFor(),
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		HistoryLimit: cfg.HistoryLimit,
		Timeout:      cfg.RelayTimeout,
	})
	credentialService := service.NewCredentialService(store, service.NewKeyValidator(provider))
	chatService := service.NewChatService(repo, relay, credentialService, settingsService)
	modelService := service.NewModelService(provider, credentialService)

	router := api.NewRouter(
		api.NewChatHandler(chatService, settingsService),
		api.NewCredentialHandler(credentialService),
		api.NewModelHandler(modelService),
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}
	return app, nil
}

func (a *App) newRepository(cfg *config.Config) (repository.Repository, error) {
	if cfg.RepositoryBackend != config.BackendRedis {
		return repository.NewSQLiteRepository(a.DB), nil
	}

	a.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)
	return repository.NewRedisRepository(a.Redis), nil
}

func newProvider(cfg *config.Config) llm.Provider {
	if cfg.UpstreamProvider == config.ProviderAnthropic {
		return llm.NewAnthropicProvider(cfg.AnthropicBaseURL)
	}
	return llm.NewOpenAIProvider(cfg.OpenAIBaseURL)
}

func newCredentialStore(cfg *config.Config, db *sql.DB) credential.Store {
	if cfg.CredentialBackend == config.BackendFile {
		store := credential.NewFileStore(cfg.CredentialFile)
		slog.Info("Using file credential store", "path", store.Path())
		return store
	}
	return credential.NewSQLiteStore(db)
}

// Close releases storage connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// Run loads configuration and serves until SIGINT or SIGTERM. It returns
// the process exit code.
func Run(configFile string) int {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to start application", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("Failed to close storage connections", "error", err)
		}
	}()

	config.Watch(func(c *config.Config) {
		logLevel.Set(parseLevel(c.LogLevel))
		slog.Info("Log level updated", "level", logLevel.Level().String())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort)
		errCh <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}

// Migrate applies the schema migrations and exits.
func Migrate(configFile string) int {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	setupLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		return 1
	}
	slog.Info("Database schema is up to date", "path", cfg.DatabasePath)
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(level string) {
	logLevel.Set(parseLevel(level))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
