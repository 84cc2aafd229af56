package models

import "time"

// Activity - Actividad o evento del sindicato (asambleas, jornadas, festejos).
type Activity struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:2000"`
	EventDate   time.Time `gorm:"index;not null"`
	Location    string    `gorm:"size:255"`
	ImageURL    *string   `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
