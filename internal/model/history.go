package model

import "time"

// HistoryEntry: неизменяемый снимок зашифрованного состояния VaultEntry.
// Ссылка на vault_entries не является внешним ключом: история переживает удаление записи.
type HistoryEntry struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	OwnerID      int64  `gorm:"not null;index"`
	VaultEntryID string `gorm:"type:uuid;not null;index"`

	Website  string `gorm:"not null"`
	URL      *string
	Username string `gorm:"not null"`
	Secret   string `gorm:"not null"`

	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false"` // lastUpdated снимаемой записи
	ReplacedAt time.Time `gorm:"not null;index"`
}
