package commands

import (
	"VaultKeeper/internal/audit"
	"VaultKeeper/internal/cli/auth"
	"VaultKeeper/internal/config"
	"VaultKeeper/internal/crypto"
	"VaultKeeper/internal/handlers"
	"VaultKeeper/internal/middleware"
	"VaultKeeper/internal/repo"
	"VaultKeeper/internal/security"
	"VaultKeeper/internal/service"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testAuthSecret = "test-secret"

// withTempConfig кладёт токен во временный файл, чтобы артефакты CLI не попадали в домашний каталог.
func withTempConfig(t *testing.T, token string) *config.Config {
	t.Helper()
	cfg := &config.Config{TokenFile: filepath.Join(t.TempDir(), "vk_token")}
	if token != "" {
		if err := auth.SaveToken(cfg.TokenFile, token); err != nil {
			t.Fatalf("save token: %v", err)
		}
	}
	return cfg
}

// newVaultServer поднимает настоящий сервер хранилища на in-memory SQLite
// и возвращает конфиг CLI с токеном владельца ownerID.
func newVaultServer(t *testing.T, ownerID int64) *config.Config {
	t.Helper()
	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)

	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	c, err := crypto.New("test-encryption-key")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	vaults := repo.NewVaultRepository(db)
	audits := repo.NewAuditRepository(db)
	history := service.NewHistoryRecorder(repo.NewHistoryRepository(db), vaults, c)
	svc := service.NewVaultService(
		vaults, history, service.NewReuseDetector(vaults, c, logger),
		security.NewTracker(nil, nil, time.Second, logger), c,
		audit.NewRecorder(audits, logger), logger,
	)
	h := handlers.NewHandler(svc, history, audits, logger, &config.Config{AuthSecret: testAuthSecret})

	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)

	token, err := middleware.IssueToken(ownerID, testAuthSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	cfg := withTempConfig(t, token)
	cfg.ServerURL = ts.URL
	return cfg
}

func mustToken(t *testing.T, ownerID int64) string {
	t.Helper()
	token, err := middleware.IssueToken(ownerID, testAuthSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
