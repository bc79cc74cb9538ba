package model

import "time"

// Base carries the identity and timestamp columns shared by every tracked
// entity.
type Base struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// All returns every tracked entity type for schema ensure/migration.
func All() []any {
	return []any{&Product{}, &Trend{}, &Region{}, &Video{}}
}
