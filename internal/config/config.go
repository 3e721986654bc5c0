package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDSN     = "file:vault.db?_pragma=foreign_keys(1)"
	defaultBreachAPIURL    = "https://api.pwnedpasswords.com"
	defaultSafeBrowsingURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	defaultOracleTimeout   = 5 * time.Second
)

type Config struct {
	// Server-side settings
	DatabaseDSN   string `env:"DATABASE_URI"`
	AuthSecret    string `env:"AUTH_SECRET"`
	EncryptionKey string `env:"ENCRYPTION_KEY"`
	LogLevel      string `env:"LOG_LEVEL"`

	// Оракулы безопасности (утечки паролей и проверка URL)
	BreachAPIURL       string        `env:"BREACH_API_URL"`
	SafeBrowsingAPIKey string        `env:"SAFE_BROWSING_API_KEY"`
	SafeBrowsingURL    string        `env:"SAFE_BROWSING_URL"`
	OracleTimeout      time.Duration `env:"ORACLE_TIMEOUT"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// выдать токен для указанного владельца и выйти (только флаг)
	IssueTokenFor int64 `env:"-"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги переопределяют значения из env, если заданы явно
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres:// или путь SQLite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для проверки подписи JWT")
	flag.StringVar(&cfg.EncryptionKey, "encryption-key", cfg.EncryptionKey, "секрет, из которого выводится ключ шифрования хранилища")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования: debug|info|warn|error")
	flag.StringVar(&cfg.BreachAPIURL, "breach-url", cfg.BreachAPIURL, "base URL of the k-anonymity breach range API")
	flag.StringVar(&cfg.SafeBrowsingAPIKey, "safe-browsing-key", cfg.SafeBrowsingAPIKey, "API key for URL safety lookups (empty disables the check)")
	flag.StringVar(&cfg.SafeBrowsingURL, "safe-browsing-url", cfg.SafeBrowsingURL, "URL safety lookup endpoint")
	flag.DurationVar(&cfg.OracleTimeout, "oracle-timeout", cfg.OracleTimeout, "timeout for a single oracle call")
	flag.Int64Var(&cfg.IssueTokenFor, "issue-token", cfg.IssueTokenFor, "print an auth token for the given owner id and exit (server)")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the vault server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()

	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDatabaseDSN
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = "dev-encryption-key"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.BreachAPIURL == "" {
		cfg.BreachAPIURL = defaultBreachAPIURL
	}
	if cfg.SafeBrowsingURL == "" {
		cfg.SafeBrowsingURL = defaultSafeBrowsingURL
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = defaultOracleTimeout
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".vk_token")
	}
}
