package handlers

import (
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/repo"
	"VaultKeeper/internal/service"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultAuditLimit = 50

// VaultHandler обслуживает записи хранилища, их историю и проверки безопасности.
type VaultHandler struct {
	Vault     *service.VaultService
	Histories *service.HistoryRecorder
	Audits    repo.AuditRepository
	Logger    *zap.SugaredLogger
}

func NewVaultHandler(v *service.VaultService, h *service.HistoryRecorder, audits repo.AuditRepository, logger *zap.SugaredLogger) *VaultHandler {
	return &VaultHandler{Vault: v, Histories: h, Audits: audits, Logger: logger}
}

// CreateRequest: тело POST /api/vault.
type CreateRequest struct {
	Website  string   `json:"website"`
	URL      *string  `json:"url,omitempty"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Notes    *string  `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateRequest: тело PATCH /api/vault/{id}; отсутствующее поле не меняется.
type UpdateRequest struct {
	Website  *string   `json:"website,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Username *string   `json:"username,omitempty"`
	Password *string   `json:"password,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// SecurityRequest: тело PATCH /api/vault/{id}/security.
type SecurityRequest struct {
	IsCompromised  *bool             `json:"is_compromised,omitempty"`
	BreachCount    *uint             `json:"breach_count,omitempty"`
	IsURLUnsafe    *bool             `json:"is_url_unsafe,omitempty"`
	URLThreatTypes *[]string         `json:"url_threat_types,omitempty"`
	IsReused       *bool             `json:"is_reused,omitempty"`
	ReusedIn       *[]model.ReuseRef `json:"reused_in,omitempty"`
	LastScanned    *time.Time        `json:"last_scanned,omitempty"`
}

// ReusedRequest: тело POST /api/vault/reused.
type ReusedRequest struct {
	Password  string `json:"password"`
	ExcludeID string `json:"exclude_id,omitempty"`
}

type PasswordResponse struct {
	Password string `json:"password"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warnw(op+": invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// List возвращает все записи владельца
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Vault.FindAll(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, h.Logger, "List", err)
		return
	}
	if list == nil {
		list = []model.VaultEntry{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Create создаёт запись
func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decodeBody(w, r, h.Logger, "Create", &req) {
		return
	}
	req.Website = strings.TrimSpace(req.Website)
	req.Username = strings.TrimSpace(req.Username)
	if req.Website == "" || req.Username == "" || req.Password == "" {
		http.Error(w, "website, username and password are required", http.StatusBadRequest)
		return
	}

	e, err := h.Vault.Create(r.Context(), ownerID(r), service.EntryDraft{
		Website:  req.Website,
		URL:      req.URL,
		Username: req.Username,
		Password: req.Password,
		Notes:    req.Notes,
		Tags:     req.Tags,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Get возвращает одну запись без пароля
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.Vault.FindOne(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Get", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Update применяет частичное изменение записи
func (h *VaultHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !decodeBody(w, r, h.Logger, "Update", &req) {
		return
	}
	if (req.Website != nil && strings.TrimSpace(*req.Website) == "") ||
		(req.Username != nil && strings.TrimSpace(*req.Username) == "") ||
		(req.Password != nil && *req.Password == "") {
		http.Error(w, "website, username and password cannot be empty", http.StatusBadRequest)
		return
	}

	e, err := h.Vault.Update(r.Context(), ownerID(r), chi.URLParam(r, "id"), service.EntryPatch{
		Website:  req.Website,
		URL:      req.URL,
		Username: req.Username,
		Password: req.Password,
		Notes:    req.Notes,
		Tags:     req.Tags,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "Update", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Remove удаляет запись, история сохраняется
func (h *VaultHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Vault.Remove(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, "Remove", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Password отдаёт расшифрованный пароль
func (h *VaultHandler) Password(w http.ResponseWriter, r *http.Request) {
	plain, err := h.Vault.DecryptPassword(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Password", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, PasswordResponse{Password: plain})
}

// History: история одной записи, в том числе удалённой
func (h *VaultHandler) History(w http.ResponseWriter, r *http.Request) {
	views, err := h.Histories.GetHistory(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "History", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, views)
}

// AllHistory: история всех записей владельца, сгруппированная по id
func (h *VaultHandler) AllHistory(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Histories.GetAllHistory(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, h.Logger, "AllHistory", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, groups)
}

// CheckReused проверяет пароль на повтор среди записей владельца
func (h *VaultHandler) CheckReused(w http.ResponseWriter, r *http.Request) {
	var req ReusedRequest
	if !decodeBody(w, r, h.Logger, "CheckReused", &req) {
		return
	}
	if req.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}
	res, err := h.Vault.CheckReused(r.Context(), ownerID(r), req.Password, req.ExcludeID)
	if err != nil {
		writeServiceError(w, h.Logger, "CheckReused", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateSecurity записывает переданные поля статуса безопасности
func (h *VaultHandler) UpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var req SecurityRequest
	if !decodeBody(w, r, h.Logger, "UpdateSecurity", &req) {
		return
	}
	e, err := h.Vault.UpdateSecurityInfo(r.Context(), ownerID(r), chi.URLParam(r, "id"), service.SecurityPatch{
		IsCompromised:  req.IsCompromised,
		BreachCount:    req.BreachCount,
		IsURLUnsafe:    req.IsURLUnsafe,
		URLThreatTypes: req.URLThreatTypes,
		IsReused:       req.IsReused,
		ReusedIn:       req.ReusedIn,
		LastScanned:    req.LastScanned,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "UpdateSecurity", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Rescan перепроверяет всё хранилище владельца
func (h *VaultHandler) Rescan(w http.ResponseWriter, r *http.Request) {
	report, err := h.Vault.Rescan(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, h.Logger, "Rescan", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Audit: последние записи журнала аудита владельца, ?limit=N
func (h *VaultHandler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.Audits.ListByOwner(r.Context(), ownerID(r), limit)
	if err != nil {
		writeServiceError(w, h.Logger, "Audit", err)
		return
	}
	if list == nil {
		list = []model.AuditRecord{}
	}
	writeJSON(w, http.StatusOK, list)
}
