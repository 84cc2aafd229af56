package database

import (
	"log"

	"asura-backend/internal/config"
	"asura-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init abre la conexión y corre las migraciones. Devuelve el handle en lugar
// de guardarlo en una variable global: main lo construye una sola vez y lo
// pasa explícitamente a cada handler y servicio.
func Init(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("Error en AutoMigrate: %v", err)
	}

	log.Println("Conexión a la base de datos exitosa. Migraciones completadas.")
	return db
}

// Migrate está separada de Init para poder reutilizarla sobre la base
// en memoria de los tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Affiliate{},
		&models.Payment{},
		&models.Activity{},
		&models.CommitteeMember{},
		&models.AuditLog{},
	)
}
