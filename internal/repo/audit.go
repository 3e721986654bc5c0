package repo

import (
	"VaultKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// AuditRepository: журнал аудита, только добавление.
type AuditRepository interface {
	Create(ctx context.Context, rec *model.AuditRecord) error
	ListByOwner(ctx context.Context, ownerID int64, limit int) ([]model.AuditRecord, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, rec *model.AuditRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListByOwner возвращает последние записи аудита владельца; limit <= 0: без ограничения.
func (r *auditRepo) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]model.AuditRecord, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.AuditRecord
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
