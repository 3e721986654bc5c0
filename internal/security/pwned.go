package security

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const prefixLen = 5

// PwnedPasswords проверяет пароль по k-anonymity range API:
// наружу уходят только первые 5 символов SHA-1, сравнение суффикса: локально.
type PwnedPasswords struct {
	baseURL    string
	httpClient *http.Client
}

// NewPwnedPasswords создаёт клиента; baseURL без завершающего слэша, например https://api.pwnedpasswords.com.
func NewPwnedPasswords(baseURL string) *PwnedPasswords {
	return &PwnedPasswords{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PwnedPasswords) CheckPasswordBreach(ctx context.Context, password string) (BreachResult, error) {
	sum := sha1.Sum([]byte(password))
	full := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := full[:prefixLen], full[prefixLen:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return BreachResult{}, fmt.Errorf("pwned: create request: %w", err)
	}
	// паддинг скрывает от наблюдателя реальный размер ответа
	req.Header.Set("Add-Padding", "true")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return BreachResult{}, fmt.Errorf("pwned: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BreachResult{}, fmt.Errorf("pwned: unexpected status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		candidate, count, ok := parseRangeLine(sc.Text())
		if !ok || candidate != suffix {
			continue
		}
		// строки паддинга приходят с нулевым счётчиком
		if count == 0 {
			return BreachResult{}, nil
		}
		return BreachResult{IsCompromised: true, BreachCount: count}, nil
	}
	if err := sc.Err(); err != nil {
		return BreachResult{}, fmt.Errorf("pwned: read body: %w", err)
	}
	return BreachResult{}, nil
}

// parseRangeLine разбирает строку вида "SUFFIX:COUNT".
func parseRangeLine(line string) (string, uint, bool) {
	suffix, countStr, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found {
		return "", 0, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(suffix), uint(count), true
}
