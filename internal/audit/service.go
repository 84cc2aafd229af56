package audit

import (
	"encoding/json"
	"fmt"

	"asura-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog registra un cambio sensible con su estado anterior y posterior.
// Un error acá nunca corta la operación principal: el que llama decide si
// lo loguea y sigue.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  marshalOrNull(opts.Before),
		AfterData:   marshalOrNull(opts.After),
	}

	if err := db.Create(&log).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el registro de auditoría: %w", err)
	}

	return nil
}

// Para jsonb un valor ausente se guarda como el literal JSON "null"
func marshalOrNull(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
