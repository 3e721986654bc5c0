package handlers_test

import (
	"VaultKeeper/internal/audit"
	"VaultKeeper/internal/config"
	"VaultKeeper/internal/crypto"
	"VaultKeeper/internal/handlers"
	"VaultKeeper/internal/middleware"
	"VaultKeeper/internal/repo"
	"VaultKeeper/internal/security"
	"VaultKeeper/internal/service"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// breachedPassword числится в фейковом range API с этим счётчиком.
const (
	breachedPassword = "hunter2"
	breachedCount    = 7
)

// newBreachServer поднимает range API, знающий только breachedPassword.
func newBreachServer(t *testing.T) *httptest.Server {
	t.Helper()
	sum := sha1.Sum([]byte(breachedPassword))
	full := strings.ToUpper(hex.EncodeToString(sum[:]))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/range/"+full[:5] {
			fmt.Fprintf(w, "%s:%d\r\n", full[5:], breachedCount)
		}
		fmt.Fprint(w, "0000000000000000000000000000000000A:0\r\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	router http.Handler
	cfg    *config.Config
}

func newTestRouter(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret"}
	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)

	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	c, err := crypto.New("test-encryption-key")
	require.NoError(t, err)

	vaults := repo.NewVaultRepository(db)
	audits := repo.NewAuditRepository(db)
	tracker := security.NewTracker(security.NewPwnedPasswords(newBreachServer(t).URL), nil, time.Second, logger)

	history := service.NewHistoryRecorder(repo.NewHistoryRepository(db), vaults, c)
	reuse := service.NewReuseDetector(vaults, c, logger)
	svc := service.NewVaultService(vaults, history, reuse, tracker, c, audit.NewRecorder(audits, logger), logger)

	h := handlers.NewHandler(svc, history, audits, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg}
}

// do выполняет запрос от имени userID (0: анонимно) и возвращает ответ.
func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		addAuth(t, req, userID, e.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func addAuth(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}
