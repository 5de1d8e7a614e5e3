package model

import "time"

// Base carries the identity, timestamps and soft-delete flag shared by
// every persisted entity. Soft-deleted rows are filtered out centrally
// by the repository layer; callers never see them.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Deleted   bool      `gorm:"not null;default:false;index" json:"-"`
}

// Meta exposes the embedded Base through the Entity interface so the
// generic repository can stamp the soft-delete flag without reflection.
func (b *Base) Meta() *Base { return b }

// Entity is satisfied by a pointer to any persisted model: TableName is
// the usual GORM convention, Meta grants access to the shared columns.
type Entity interface {
	TableName() string
	Meta() *Base
}
