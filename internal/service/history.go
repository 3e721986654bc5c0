package service

import (
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRecorder ведёт журнал прежних зашифрованных состояний записей.
// Снимки только добавляются; изменения и удаления не предусмотрены.
type HistoryRecorder struct {
	history repo.HistoryRepository
	vaults  repo.VaultRepository
	cipher  secretCipher
	now     func() time.Time
}

func NewHistoryRecorder(h repo.HistoryRepository, v repo.VaultRepository, c secretCipher) *HistoryRecorder {
	return &HistoryRecorder{history: h, vaults: v, cipher: c, now: defaultNow}
}

// Snapshot копирует текущее состояние записи (шифртекст как есть) в новый снимок.
func (r *HistoryRecorder) Snapshot(ctx context.Context, ownerID int64, e *model.VaultEntry) (*model.HistoryEntry, error) {
	return r.snapshotAt(ctx, ownerID, e, r.now())
}

func (r *HistoryRecorder) snapshotAt(ctx context.Context, ownerID int64, e *model.VaultEntry, at time.Time) (*model.HistoryEntry, error) {
	if e.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	h := &model.HistoryEntry{
		ID:           uuid.NewString(),
		OwnerID:      e.OwnerID,
		VaultEntryID: e.ID,
		Website:      e.Website,
		URL:          e.URL,
		Username:     e.Username,
		Secret:       e.Secret,
		CreatedAt:    e.LastUpdated,
		ReplacedAt:   at,
	}
	if err := r.history.Append(ctx, h); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	return h, nil
}

// GetHistory возвращает снимки записи, новые первыми, с расшифрованными паролями.
// История удалённой записи остаётся доступна её владельцу.
func (r *HistoryRecorder) GetHistory(ctx context.Context, ownerID int64, vaultEntryID string) ([]HistoryView, error) {
	live, err := r.vaults.GetByID(ctx, vaultEntryID)
	switch {
	case err == nil:
		if live.OwnerID != ownerID {
			return nil, ErrUnauthorized
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		live = nil
	default:
		return nil, fmt.Errorf("get vault entry: %w", err)
	}

	rows, err := r.history.ListByEntry(ctx, vaultEntryID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if live == nil && len(rows) == 0 {
		return nil, ErrNotFound
	}
	for i := range rows {
		if rows[i].OwnerID != ownerID {
			return nil, ErrUnauthorized
		}
	}
	return r.decryptAll(rows)
}

// GetAllHistory группирует все снимки владельца по id записи.
func (r *HistoryRecorder) GetAllHistory(ctx context.Context, ownerID int64) (map[string][]HistoryView, error) {
	rows, err := r.history.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	for i := range rows {
		if rows[i].OwnerID != ownerID {
			return nil, ErrUnauthorized
		}
	}
	views, err := r.decryptAll(rows)
	if err != nil {
		return nil, err
	}

	// порядок replaced_at DESC сохраняется внутри каждой группы
	out := make(map[string][]HistoryView)
	for _, v := range views {
		out[v.VaultEntryID] = append(out[v.VaultEntryID], v)
	}
	return out, nil
}

func (r *HistoryRecorder) decryptAll(rows []model.HistoryEntry) ([]HistoryView, error) {
	views := make([]HistoryView, 0, len(rows))
	for _, h := range rows {
		plain, err := r.cipher.Decrypt(h.Secret)
		if err != nil {
			return nil, fmt.Errorf("decrypt history entry %s: %w", h.ID, err)
		}
		views = append(views, HistoryView{
			ID:           h.ID,
			VaultEntryID: h.VaultEntryID,
			Website:      h.Website,
			URL:          h.URL,
			Username:     h.Username,
			Password:     plain,
			CreatedAt:    h.CreatedAt,
			ReplacedAt:   h.ReplacedAt,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].ReplacedAt.After(views[j].ReplacedAt)
	})
	return views, nil
}
