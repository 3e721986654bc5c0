package service

import (
	"VaultKeeper/internal/audit"
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VaultService инкапсулирует бизнес-логику записей хранилища:
// шифрование, проверку владельца, историю, повторы паролей и статус безопасности.
//
// Конкурентные изменения одной записи не сериализуются: побеждает последняя запись в БД.
type VaultService struct {
	repo    repo.VaultRepository
	history *HistoryRecorder
	reuse   *ReuseDetector
	tracker securityTracker
	cipher  secretCipher
	audit   audit.Sink
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewVaultService(
	r repo.VaultRepository,
	history *HistoryRecorder,
	reuse *ReuseDetector,
	tracker securityTracker,
	c secretCipher,
	sink audit.Sink,
	logger *zap.SugaredLogger,
) *VaultService {
	return &VaultService{
		repo:    r,
		history: history,
		reuse:   reuse,
		tracker: tracker,
		cipher:  c,
		audit:   sink,
		logger:  logger,
		now:     defaultNow,
	}
}

// Create проверяет пароль и URL, ищет повторы, шифрует и сохраняет новую запись.
func (s *VaultService) Create(ctx context.Context, ownerID int64, d EntryDraft) (*model.VaultEntry, error) {
	breach := s.tracker.CheckPassword(ctx, d.Password)

	url := optional(d.URL)
	var urlUnsafe bool
	var threats []string
	if url != nil {
		res := s.tracker.CheckURL(ctx, *url)
		urlUnsafe, threats = !res.IsSafe, res.ThreatTypes
	}

	reuse, err := s.reuse.CheckReused(ctx, ownerID, d.Password, "")
	if err != nil {
		return nil, err
	}

	secret, err := s.cipher.Encrypt(d.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt secret: %w", err)
	}

	now := s.now()
	e := &model.VaultEntry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Website:     d.Website,
		URL:         url,
		Username:    d.Username,
		Secret:      secret,
		Notes:       optional(d.Notes),
		Tags:        normalizeTags(d.Tags),
		LastUpdated: now,
		SecurityStatus: model.SecurityStatus{
			IsCompromised:  breach.IsCompromised,
			BreachCount:    breach.BreachCount,
			IsURLUnsafe:    urlUnsafe,
			URLThreatTypes: threats,
			IsReused:       reuse.IsReused,
			ReusedIn:       reuse.UsedIn,
			LastScanned:    &now,
		},
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create vault entry: %w", err)
	}

	s.audit.Record(ctx, audit.LevelInfo, "vault entry created", ownerID, map[string]any{
		"entry_id":       e.ID,
		"website":        e.Website,
		"username":       e.Username,
		"is_compromised": e.IsCompromised,
		"is_reused":      e.IsReused,
		"is_url_unsafe":  e.IsURLUnsafe,
	})
	return e, nil
}

// FindAll возвращает все записи владельца.
func (s *VaultService) FindAll(ctx context.Context, ownerID int64) ([]model.VaultEntry, error) {
	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list vault entries: %w", err)
	}
	return list, nil
}

// FindOne: единственная точка доступа к одной записи. ErrNotFound, если записи нет,
// ErrUnauthorized, если она принадлежит другому владельцу.
func (s *VaultService) FindOne(ctx context.Context, ownerID int64, id string) (*model.VaultEntry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get vault entry: %w", err)
	}
	if e.OwnerID != ownerID {
		s.logger.Warnw("vault entry access denied", "owner_id", ownerID, "entry_id", id)
		return nil, ErrUnauthorized
	}
	return e, nil
}

// Update применяет только реально изменившиеся поля патча.
// Перед сменой пароля, сайта или логина сохраняется снимок прежнего состояния.
// Патч без отличий ничего не пишет и не трогает статус безопасности.
func (s *VaultService) Update(ctx context.Context, ownerID int64, id string, p EntryPatch) (*model.VaultEntry, error) {
	cur, err := s.FindOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	next := *cur
	var changed []string

	if p.Website != nil && *p.Website != cur.Website {
		next.Website = *p.Website
		changed = append(changed, "website")
	}
	urlChanged := false
	if p.URL != nil {
		if u := optional(p.URL); !sameOptional(u, cur.URL) {
			next.URL = u
			urlChanged = true
			changed = append(changed, "url")
		}
	}
	if p.Username != nil && *p.Username != cur.Username {
		next.Username = *p.Username
		changed = append(changed, "username")
	}
	if p.Notes != nil {
		if n := optional(p.Notes); !sameOptional(n, cur.Notes) {
			next.Notes = n
			changed = append(changed, "notes")
		}
	}
	if p.Tags != nil {
		if tags := normalizeTags(*p.Tags); !sameStrings(tags, cur.Tags) {
			next.Tags = tags
			changed = append(changed, "tags")
		}
	}
	secretChanged := false
	if p.Password != nil {
		// расшифровка нужна для сравнения; ошибка здесь фатальна
		plain, err := s.cipher.Decrypt(cur.Secret)
		if err != nil {
			return nil, err
		}
		secretChanged = plain != *p.Password
	}

	if len(changed) == 0 && !secretChanged {
		return cur, nil
	}

	now := s.now()

	if secretChanged || contains(changed, "website") || contains(changed, "username") {
		if _, err := s.history.snapshotAt(ctx, ownerID, cur, now); err != nil {
			return nil, err
		}
	}

	scanned := false
	if secretChanged {
		plain := *p.Password
		breach := s.tracker.CheckPassword(ctx, plain)
		reuse, err := s.reuse.CheckReused(ctx, ownerID, plain, id)
		if err != nil {
			return nil, err
		}
		secret, err := s.cipher.Encrypt(plain)
		if err != nil {
			return nil, fmt.Errorf("encrypt secret: %w", err)
		}
		next.Secret = secret
		next.IsCompromised = breach.IsCompromised
		next.BreachCount = breach.BreachCount
		next.IsReused = reuse.IsReused
		next.ReusedIn = reuse.UsedIn
		changed = append(changed, "secret", "is_compromised", "breach_count", "is_reused", "reused_in")
		scanned = true
	}
	if urlChanged {
		if next.URL != nil {
			res := s.tracker.CheckURL(ctx, *next.URL)
			next.IsURLUnsafe = !res.IsSafe
			next.URLThreatTypes = res.ThreatTypes
			scanned = true
		} else {
			next.IsURLUnsafe = false
			next.URLThreatTypes = nil
		}
		changed = append(changed, "is_url_unsafe", "url_threat_types")
	}
	if scanned {
		next.LastScanned = &now
		changed = append(changed, "last_scanned")
	}
	next.LastUpdated = now
	columns := append(changed, "last_updated")

	if err := s.repo.Update(ctx, &next, columns); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update vault entry: %w", err)
	}

	s.audit.Record(ctx, audit.LevelInfo, "vault entry updated", ownerID, map[string]any{
		"entry_id":       id,
		"website":        next.Website,
		"changed_fields": changed,
	})
	return &next, nil
}

// Remove сохраняет снимок и удаляет запись; история остаётся.
func (s *VaultService) Remove(ctx context.Context, ownerID int64, id string) error {
	cur, err := s.FindOne(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if _, err := s.history.snapshotAt(ctx, ownerID, cur, s.now()); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete vault entry: %w", err)
	}

	s.audit.Record(ctx, audit.LevelInfo, "vault entry removed", ownerID, map[string]any{
		"entry_id": id,
		"website":  cur.Website,
		"username": cur.Username,
	})
	return nil
}

// DecryptPassword возвращает открытый пароль записи владельца.
func (s *VaultService) DecryptPassword(ctx context.Context, ownerID int64, id string) (string, error) {
	e, err := s.FindOne(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	plain, err := s.cipher.Decrypt(e.Secret)
	if err != nil {
		s.logger.Errorw("failed to decrypt vault entry", "owner_id", ownerID, "entry_id", id, "error", err)
		return "", err
	}
	return plain, nil
}

// CheckReused: проверка пароля на повтор среди записей владельца.
func (s *VaultService) CheckReused(ctx context.Context, ownerID int64, candidate, excludeID string) (ReuseResult, error) {
	return s.reuse.CheckReused(ctx, ownerID, candidate, excludeID)
}

// UpdateSecurityInfo записывает только переданные поля статуса безопасности.
func (s *VaultService) UpdateSecurityInfo(ctx context.Context, ownerID int64, id string, p SecurityPatch) (*model.VaultEntry, error) {
	cur, err := s.FindOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	next := *cur
	var columns []string
	if p.IsCompromised != nil {
		next.IsCompromised = *p.IsCompromised
		columns = append(columns, "is_compromised")
	}
	if p.BreachCount != nil {
		next.BreachCount = *p.BreachCount
		columns = append(columns, "breach_count")
	}
	if p.IsURLUnsafe != nil {
		next.IsURLUnsafe = *p.IsURLUnsafe
		columns = append(columns, "is_url_unsafe")
	}
	if p.URLThreatTypes != nil {
		next.URLThreatTypes = *p.URLThreatTypes
		columns = append(columns, "url_threat_types")
	}
	if p.IsReused != nil {
		next.IsReused = *p.IsReused
		columns = append(columns, "is_reused")
	}
	if p.ReusedIn != nil {
		next.ReusedIn = *p.ReusedIn
		columns = append(columns, "reused_in")
	}
	if p.LastScanned != nil {
		ts := p.LastScanned.UTC()
		next.LastScanned = &ts
		columns = append(columns, "last_scanned")
	}
	if len(columns) == 0 {
		return cur, nil
	}

	if err := s.repo.Update(ctx, &next, columns); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update security info: %w", err)
	}
	return &next, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
