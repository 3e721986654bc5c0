// Package api: HTTP-клиент CLI к серверу хранилища.
package api

import (
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnauthorized: токена нет или сервер его не принял.
	ErrUnauthorized = errors.New("not authorized: save a token with `vkcli token <token>`")
	// ErrNotFound: запись не найдена (или принадлежит другому владельцу).
	ErrNotFound = errors.New("entry not found")
)

// StatusError: неожиданный ответ сервера.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server status %d: %s", e.Code, e.Body)
}

// Client ходит в /api/vault с токеном в cookie auth_token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewEntry: данные для создания записи.
type NewEntry struct {
	Website  string   `json:"website"`
	URL      *string  `json:"url,omitempty"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Notes    *string  `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// EntryChanges: частичное изменение записи, nil поля не отправляются.
type EntryChanges struct {
	Website  *string   `json:"website,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Username *string   `json:"username,omitempty"`
	Password *string   `json:"password,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

func (c *Client) List(ctx context.Context) ([]model.VaultEntry, error) {
	var out []model.VaultEntry
	err := c.do(ctx, http.MethodGet, "/api/vault", nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id string) (*model.VaultEntry, error) {
	var out model.VaultEntry
	if err := c.do(ctx, http.MethodGet, entryPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, e NewEntry) (*model.VaultEntry, error) {
	var out model.VaultEntry
	if err := c.do(ctx, http.MethodPost, "/api/vault", e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, ch EntryChanges) (*model.VaultEntry, error) {
	var out model.VaultEntry
	if err := c.do(ctx, http.MethodPatch, entryPath(id), ch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil)
}

func (c *Client) Password(ctx context.Context, id string) (string, error) {
	var out struct {
		Password string `json:"password"`
	}
	err := c.do(ctx, http.MethodGet, entryPath(id)+"/password", nil, &out)
	return out.Password, err
}

func (c *Client) History(ctx context.Context, id string) ([]service.HistoryView, error) {
	var out []service.HistoryView
	err := c.do(ctx, http.MethodGet, entryPath(id)+"/history", nil, &out)
	return out, err
}

func (c *Client) AllHistory(ctx context.Context) (map[string][]service.HistoryView, error) {
	var out map[string][]service.HistoryView
	err := c.do(ctx, http.MethodGet, "/api/vault/history", nil, &out)
	return out, err
}

func (c *Client) CheckReused(ctx context.Context, password, excludeID string) (service.ReuseResult, error) {
	var out service.ReuseResult
	req := map[string]string{"password": password}
	if excludeID != "" {
		req["exclude_id"] = excludeID
	}
	err := c.do(ctx, http.MethodPost, "/api/vault/reused", req, &out)
	return out, err
}

func (c *Client) Rescan(ctx context.Context) (service.RescanReport, error) {
	var out service.RescanReport
	err := c.do(ctx, http.MethodPost, "/api/vault/rescan", nil, &out)
	return out, err
}

func (c *Client) Audit(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	var out []model.AuditRecord
	path := "/api/vault/audit"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func entryPath(id string) string {
	return "/api/vault/" + url.PathEscape(id)
}

// do отправляет JSON-запрос и раскладывает JSON-ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Cookie", "auth_token="+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
