package repo

import (
	"VaultKeeper/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryRepository: только добавление и чтение снимков; изменять и удалять их нельзя.
type HistoryRepository interface {
	// Append сохраняет снимок. Повторная вставка с тем же id ничего не делает.
	Append(ctx context.Context, h *model.HistoryEntry) error
	// ListByEntry возвращает снимки записи (любого владельца), новые первыми.
	ListByEntry(ctx context.Context, vaultEntryID string) ([]model.HistoryEntry, error)
	// ListByOwner возвращает все снимки владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.HistoryEntry, error)
}

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepository создаёт реализацию репозитория для HistoryEntry.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Append(ctx context.Context, h *model.HistoryEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(h).Error
}

func (r *historyRepo) ListByEntry(ctx context.Context, vaultEntryID string) ([]model.HistoryEntry, error) {
	var list []model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("vault_entry_id = ?", vaultEntryID).
		Order("replaced_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *historyRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.HistoryEntry, error) {
	var list []model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("replaced_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
