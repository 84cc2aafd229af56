package models

import "time"

// CommitteeMember - Integrante de la comisión directiva.
// OrderIndex define el orden en que se listan los cargos.
type CommitteeMember struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:150;not null"`
	Position   string `gorm:"size:100;not null"` // Presidente, Secretario General, etc.
	Phone      string `gorm:"size:30"`
	OrderIndex int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
