package service

import (
	"VaultKeeper/internal/model"
	"strings"
	"time"
)

// EntryDraft: данные новой записи. Password в открытом виде, текст, в БД не сохраняется.
type EntryDraft struct {
	Website  string
	URL      *string
	Username string
	Password string
	Notes    *string
	Tags     []string
}

// EntryPatch: частичное обновление, nil означает «поле не передано».
// Пустая строка в URL или Notes очищает поле.
type EntryPatch struct {
	Website  *string
	URL      *string
	Username *string
	Password *string
	Notes    *string
	Tags     *[]string
}

// SecurityPatch: частичное обновление статуса безопасности; каждое поле задаётся независимо.
type SecurityPatch struct {
	IsCompromised  *bool
	BreachCount    *uint
	IsURLUnsafe    *bool
	URLThreatTypes *[]string
	IsReused       *bool
	ReusedIn       *[]model.ReuseRef
	LastScanned    *time.Time
}

// ReuseResult: результат проверки повторного использования пароля.
type ReuseResult struct {
	IsReused bool             `json:"is_reused"`
	UsedIn   []model.ReuseRef `json:"used_in"`
}

// HistoryView: снимок истории, расшифрованный для показа владельцу.
type HistoryView struct {
	ID           string    `json:"id"`
	VaultEntryID string    `json:"vault_entry_id"`
	Website      string    `json:"website"`
	URL          *string   `json:"url,omitempty"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	CreatedAt    time.Time `json:"created_at"`
	ReplacedAt   time.Time `json:"replaced_at"`
}

// normalizeTags обрезает пробелы, выкидывает пустые и повторные теги, порядок сохраняется.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// optional превращает пустую строку в nil.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func defaultNow() time.Time {
	// Postgres хранит микросекунды: усечение делает метки сравнимыми после чтения из БД
	return time.Now().UTC().Truncate(time.Microsecond)
}
