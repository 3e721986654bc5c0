package security

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var defaultThreatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// SafeBrowsing проверяет URL через Lookup API (threatMatches:find).
type SafeBrowsing struct {
	endpoint   string
	apiKey     string
	clientID   string
	httpClient *http.Client
}

// NewSafeBrowsing возвращает nil, если ключ не задан: проверка URL тогда отключена.
func NewSafeBrowsing(endpoint, apiKey string) *SafeBrowsing {
	if apiKey == "" {
		return nil
	}
	return &SafeBrowsing{
		endpoint:   endpoint,
		apiKey:     apiKey,
		clientID:   "vaultkeeper",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sbRequest struct {
	Client     sbClient     `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbThreatInfo struct {
	ThreatTypes      []string        `json:"threatTypes"`
	PlatformTypes    []string        `json:"platformTypes"`
	ThreatEntryTypes []string        `json:"threatEntryTypes"`
	ThreatEntries    []sbThreatEntry `json:"threatEntries"`
}

type sbThreatEntry struct {
	URL string `json:"url"`
}

type sbResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

func (s *SafeBrowsing) CheckURLSafety(ctx context.Context, rawURL string) (URLResult, error) {
	payload := sbRequest{
		Client: sbClient{ClientID: s.clientID, ClientVersion: "1.0"},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      defaultThreatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbThreatEntry{{URL: rawURL}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return URLResult{}, fmt.Errorf("safebrowsing: encode request: %w", err)
	}

	reqURL := s.endpoint + "?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return URLResult{}, fmt.Errorf("safebrowsing: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return URLResult{}, fmt.Errorf("safebrowsing: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return URLResult{}, fmt.Errorf("safebrowsing: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return URLResult{}, fmt.Errorf("safebrowsing: read body: %w", err)
	}
	var out sbResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return URLResult{}, fmt.Errorf("safebrowsing: decode json: %w", err)
	}

	if len(out.Matches) == 0 {
		return URLResult{IsSafe: true}, nil
	}

	seen := make(map[string]struct{}, len(out.Matches))
	threats := make([]string, 0, len(out.Matches))
	for _, m := range out.Matches {
		if _, ok := seen[m.ThreatType]; ok || m.ThreatType == "" {
			continue
		}
		seen[m.ThreatType] = struct{}{}
		threats = append(threats, m.ThreatType)
	}
	return URLResult{IsSafe: false, ThreatTypes: threats}, nil
}
