package repo

import (
	"VaultKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// VaultRepository: контракт доступа к записям хранилища для слоя сервиса.
// Проверка владельца выполняется в сервисе: GetByID ищет только по id,
// чтобы сервис мог отличить «нет записи» от «чужая запись».
type VaultRepository interface {
	Create(ctx context.Context, e *model.VaultEntry) error
	// GetByID возвращает gorm.ErrRecordNotFound, если записи нет.
	GetByID(ctx context.Context, id string) (*model.VaultEntry, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.VaultEntry, error)
	// Update записывает только перечисленные колонки записи (включая нулевые значения).
	Update(ctx context.Context, e *model.VaultEntry, columns []string) error
	Delete(ctx context.Context, id string) error
}

type vaultRepo struct {
	db *gorm.DB
}

// NewVaultRepository создаёт реализацию репозитория для VaultEntry.
func NewVaultRepository(db *gorm.DB) VaultRepository {
	return &vaultRepo{db: db}
}

func (r *vaultRepo) Create(ctx context.Context, e *model.VaultEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *vaultRepo) GetByID(ctx context.Context, id string) (*model.VaultEntry, error) {
	var e model.VaultEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByOwner возвращает записи владельца в порядке создания (по last_updated, затем id).
func (r *vaultRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.VaultEntry, error) {
	var list []model.VaultEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("last_updated ASC").
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Update обновляет структурой, а не map: так срабатывают json-сериализаторы полей.
func (r *vaultRepo) Update(ctx context.Context, e *model.VaultEntry, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Model(e).Select(columns).Updates(e)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *vaultRepo) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VaultEntry{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
