// Package models contains database model definitions.
package models

import "time"

// Setting is a named blob persisted by the sql stores.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:191"`
	Value     []byte
	UpdatedAt time.Time
}
