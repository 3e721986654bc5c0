package model

import "time"

// AuditRecord: запись журнала аудита. Никогда не содержит открытых секретов.
type AuditRecord struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID   int64          `gorm:"not null;index" json:"-"`
	Level     string         `gorm:"not null" json:"level"`
	Message   string         `gorm:"not null" json:"message"`
	Metadata  map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}
