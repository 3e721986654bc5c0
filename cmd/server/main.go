package main

import (
	"VaultKeeper/internal/audit"
	"VaultKeeper/internal/config"
	"VaultKeeper/internal/crypto"
	"VaultKeeper/internal/handlers"
	"VaultKeeper/internal/middleware"
	"VaultKeeper/internal/repo"
	"VaultKeeper/internal/security"
	"VaultKeeper/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	issuedTokenTTL  = 30 * 24 * time.Hour
)

func main() {
	cfg := config.NewConfig()

	if cfg.IssueTokenFor > 0 {
		token, err := middleware.IssueToken(cfg.IssueTokenFor, cfg.AuthSecret, issuedTokenTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	cipher, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		sugar.Fatalw("failed to initialize cipher", "error", err)
	}

	tracker := newTracker(cfg, sugar)

	vaultRepo := repo.NewVaultRepository(gormDB)
	auditRepo := repo.NewAuditRepository(gormDB)

	history := service.NewHistoryRecorder(repo.NewHistoryRepository(gormDB), vaultRepo, cipher)
	reuse := service.NewReuseDetector(vaultRepo, cipher, sugar)
	vaultService := service.NewVaultService(
		vaultRepo, history, reuse, tracker, cipher,
		audit.NewRecorder(auditRepo, sugar), sugar,
	)

	h := handlers.NewHandler(vaultService, history, auditRepo, sugar, cfg)

	addr := cfg.BaseURL
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server", "addr", addr)
	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"LogLevel", cfg.LogLevel,
		"BreachAPIURL", cfg.BreachAPIURL,
		"OracleTimeout", cfg.OracleTimeout,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// newTracker подключает оракулы; о неподключённом предупреждаем один раз здесь.
func newTracker(cfg *config.Config, logger *zap.SugaredLogger) *security.Tracker {
	var breach security.BreachChecker
	if cfg.BreachAPIURL != "" {
		breach = security.NewPwnedPasswords(cfg.BreachAPIURL)
	} else {
		logger.Warnw("breach oracle is not configured, passwords will not be checked")
	}

	// nil-указатель нельзя заворачивать в интерфейс: Tracker проверяет именно nil интерфейса
	var urls security.URLChecker
	if sb := security.NewSafeBrowsing(cfg.SafeBrowsingURL, cfg.SafeBrowsingAPIKey); sb != nil {
		urls = sb
	} else {
		logger.Warnw("url safety oracle is not configured (SAFE_BROWSING_API_KEY is empty), urls will not be checked")
	}

	return security.NewTracker(breach, urls, cfg.OracleTimeout, logger)
}
