package handlers_test

import (
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/service"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEntry(t *testing.T, env *testEnv, userID int64, website, username, password string) model.VaultEntry {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/api/vault", userID, map[string]any{
		"website": website, "username": username, "password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.VaultEntry](t, rr)
}

func TestVault_RequiresAuth(t *testing.T) {
	env := newTestRouter(t)
	for _, path := range []string{"/api/vault", "/api/vault/history", "/api/vault/some-id"} {
		rr := env.do(t, http.MethodGet, path, 0, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestVault_CreateGetPassword(t *testing.T) {
	env := newTestRouter(t)
	e := createEntry(t, env, 1, "Google", "a@b.com", "P1")
	assert.NotEmpty(t, e.ID)

	rr := env.do(t, http.MethodGet, "/api/vault/"+e.ID, 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "P1", "entry view must not leak secret or plaintext")
	assert.NotContains(t, rr.Body.String(), "secret")
	got := decode[model.VaultEntry](t, rr)
	assert.Equal(t, "Google", got.Website)
	assert.Equal(t, "a@b.com", got.Username)

	rr = env.do(t, http.MethodGet, "/api/vault/"+e.ID+"/password", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "P1", decode[map[string]string](t, rr)["password"])
}

func TestVault_CreateValidation(t *testing.T) {
	env := newTestRouter(t)

	rr := env.do(t, http.MethodPost, "/api/vault", 1, `{"website":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/vault", 1, map[string]any{"website": "x", "username": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVault_CreateFlagsBreachedPassword(t *testing.T) {
	env := newTestRouter(t)
	e := createEntry(t, env, 1, "Forum", "me", breachedPassword)
	assert.True(t, e.IsCompromised)
	assert.Equal(t, uint(breachedCount), e.BreachCount)

	ok := createEntry(t, env, 1, "Bank", "me", "a much better password")
	assert.False(t, ok.IsCompromised)
}

func TestVault_ForeignEntryLooksMissing(t *testing.T) {
	env := newTestRouter(t)
	e := createEntry(t, env, 1, "Site", "me", "pw")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/vault/" + e.ID},
		{http.MethodGet, "/api/vault/" + e.ID + "/password"},
		{http.MethodGet, "/api/vault/" + e.ID + "/history"},
		{http.MethodDelete, "/api/vault/" + e.ID},
	} {
		rr := env.do(t, tc.method, tc.path, 2, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, "%s %s", tc.method, tc.path)
	}
	rr := env.do(t, http.MethodPatch, "/api/vault/"+e.ID, 2, map[string]any{"website": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/vault", 2, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]model.VaultEntry](t, rr))
}

func TestVault_UpdateHistoryRemove(t *testing.T) {
	env := newTestRouter(t)
	e := createEntry(t, env, 1, "Google", "a@b.com", "P1")

	rr := env.do(t, http.MethodPatch, "/api/vault/"+e.ID, 1, map[string]any{"password": "P2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/vault/"+e.ID+"/history", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	hist := decode[[]service.HistoryView](t, rr)
	require.Len(t, hist, 1)
	assert.Equal(t, "P1", hist[0].Password)

	rr = env.do(t, http.MethodDelete, "/api/vault/"+e.ID, 1, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/vault/"+e.ID, 1, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/vault/history", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	all := decode[map[string][]service.HistoryView](t, rr)
	require.Len(t, all[e.ID], 2)
	assert.Equal(t, "P2", all[e.ID][0].Password)
}

func TestVault_UpdateRejectsEmptyRequired(t *testing.T) {
	env := newTestRouter(t)
	e := createEntry(t, env, 1, "Site", "me", "pw")

	rr := env.do(t, http.MethodPatch, "/api/vault/"+e.ID, 1, map[string]any{"password": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVault_CheckReused(t *testing.T) {
	env := newTestRouter(t)
	a := createEntry(t, env, 1, "Mail", "a@b.com", "Sh@red123")
	b := createEntry(t, env, 1, "Bank", "acc", "Sh@red123")
	assert.True(t, b.IsReused)

	rr := env.do(t, http.MethodPost, "/api/vault/reused", 1, map[string]any{"password": "Sh@red123", "exclude_id": a.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[service.ReuseResult](t, rr)
	assert.True(t, res.IsReused)
	assert.Equal(t, []model.ReuseRef{{Website: "Bank", Username: "acc"}}, res.UsedIn)

	rr = env.do(t, http.MethodPost, "/api/vault/reused", 1, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVault_UpdateSecurityAndRescan(t *testing.T) {
	env := newTestRouter(t)
	a := createEntry(t, env, 1, "A", "u", "dup")
	createEntry(t, env, 1, "B", "u", "dup")

	rr := env.do(t, http.MethodPatch, "/api/vault/"+a.ID+"/security", 1, map[string]any{"is_url_unsafe": true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[model.VaultEntry](t, rr).IsURLUnsafe)

	rr = env.do(t, http.MethodPost, "/api/vault/rescan", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[service.RescanReport](t, rr)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.Reused)

	rr = env.do(t, http.MethodGet, "/api/vault/"+a.ID, 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[model.VaultEntry](t, rr)
	assert.True(t, got.IsReused)
	// без URL проверка URL не выполняется и ручной флаг сохраняется
	assert.True(t, got.IsURLUnsafe)
}

func TestVault_Audit(t *testing.T) {
	env := newTestRouter(t)
	createEntry(t, env, 1, "Site", "me", "pw")
	createEntry(t, env, 2, "Other", "them", "pw")

	rr := env.do(t, http.MethodGet, "/api/vault/audit?limit=10", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	records := decode[[]model.AuditRecord](t, rr)
	require.Len(t, records, 1)
	assert.Equal(t, "vault entry created", records[0].Message)
	assert.NotContains(t, rr.Body.String(), `"pw"`)

	rr = env.do(t, http.MethodGet, "/api/vault/audit?limit=abc", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
