package model

import "time"

// VaultEntry: серверная модель записи хранилища, один секрет одного владельца.
// Secret всегда хранит шифртекст, открытый текст в БД не попадает.
type VaultEntry struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID int64  `gorm:"not null;index" json:"owner_id"`

	Website  string   `gorm:"not null" json:"website"`
	URL      *string  `json:"url,omitempty"`
	Username string   `gorm:"not null" json:"username"`
	Secret   string   `gorm:"not null" json:"-"`
	Notes    *string  `json:"notes,omitempty"`
	Tags     []string `gorm:"serializer:json" json:"tags"`

	LastUpdated time.Time `gorm:"not null" json:"last_updated"`

	SecurityStatus `gorm:"embedded"`
}

// SecurityStatus: сводка последних проверок безопасности записи.
// Флаги независимы друг от друга.
type SecurityStatus struct {
	IsCompromised  bool       `gorm:"not null;default:false" json:"is_compromised"`
	BreachCount    uint       `gorm:"not null;default:0" json:"breach_count"`
	IsURLUnsafe    bool       `gorm:"column:is_url_unsafe;not null;default:false" json:"is_url_unsafe"`
	URLThreatTypes []string   `gorm:"column:url_threat_types;serializer:json" json:"url_threat_types"`
	IsReused       bool       `gorm:"not null;default:false" json:"is_reused"`
	ReusedIn       []ReuseRef `gorm:"serializer:json" json:"reused_in"`
	LastScanned    *time.Time `json:"last_scanned,omitempty"`
}

// ReuseRef указывает на другую запись владельца с тем же паролем.
type ReuseRef struct {
	Website  string `json:"website"`
	Username string `json:"username"`
}
