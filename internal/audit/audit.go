// Package audit: журнал действий над хранилищем.
package audit

import (
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/repo"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level: уровень записи аудита.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Sink принимает записи аудита по принципу fire-and-forget: ошибок не возвращает.
type Sink interface {
	Record(ctx context.Context, level Level, message string, ownerID int64, metadata map[string]any)
}

// Recorder пишет запись в лог и сохраняет её в БД.
type Recorder struct {
	repo   repo.AuditRepository
	logger *zap.SugaredLogger
}

// NewRecorder создаёт Recorder; repo может быть nil: тогда запись идёт только в лог.
func NewRecorder(r repo.AuditRepository, logger *zap.SugaredLogger) *Recorder {
	return &Recorder{repo: r, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, level Level, message string, ownerID int64, metadata map[string]any) {
	meta := sanitize(metadata)

	kv := make([]any, 0, 2+2*len(meta))
	kv = append(kv, "owner_id", ownerID)
	for k, v := range meta {
		kv = append(kv, k, v)
	}
	switch level {
	case LevelWarn:
		r.logger.Warnw(message, kv...)
	case LevelError:
		r.logger.Errorw(message, kv...)
	default:
		r.logger.Infow(message, kv...)
	}

	if r.repo == nil {
		return
	}
	rec := &model.AuditRecord{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Level:     string(level),
		Message:   message,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
	// контекст запроса может быть уже отменён: запись аудита не должна от этого теряться
	if err := r.repo.Create(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Errorw("audit: failed to persist record", "owner_id", ownerID, "message", message, "error", err)
	}
}

// sanitize убирает ключи, похожие на секреты.
func sanitize(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "password") || strings.Contains(lk, "secret") || strings.Contains(lk, "plaintext") {
			continue
		}
		out[k] = v
	}
	return out
}
