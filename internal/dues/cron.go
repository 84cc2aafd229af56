package dues

import (
	"errors"
	"log"
	"time"

	"asura-backend/internal/config"
	"asura-backend/internal/models"
	"asura-backend/internal/payment"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Runner mantiene el libro de cuotas al día: una pasada al arrancar y otra
// el primer día de cada mes a las 03:00.
type Runner struct {
	db     *gorm.DB
	paySvc *payment.Service
	cfg    *config.Config
	cron   *cron.Cron
}

func NewRunner(db *gorm.DB, paySvc *payment.Service, cfg *config.Config) *Runner {
	return &Runner{
		db:     db,
		paySvc: paySvc,
		cfg:    cfg,
		cron:   cron.New(),
	}
}

// Start corre un TopUp inmediato (por si el servidor estuvo caído un cambio
// de mes) y programa la corrida mensual.
func (r *Runner) Start() error {
	if err := r.TopUp(); err != nil {
		log.Printf("Error en la generación inicial de cuotas: %v", err)
	}

	if _, err := r.cron.AddFunc("0 3 1 * *", func() {
		if err := r.TopUp(); err != nil {
			log.Printf("Error en la generación mensual de cuotas: %v", err)
		}
	}); err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

func (r *Runner) Stop() {
	r.cron.Stop()
}

// TopUp genera las cuotas faltantes de todos los afiliados activos hasta el
// mes corriente. Los afiliados con fecha de alta futura todavía no generan
// cuotas y se saltean sin error.
func (r *Runner) TopUp() error {
	var affiliates []models.Affiliate
	if err := r.db.Where("active = ?", true).Find(&affiliates).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	total := 0
	for i := range affiliates {
		created, err := r.paySvc.EnsureSchedule(affiliates[i].ID, r.cfg.MonthlyFee, r.cfg.DueDay, now)
		if err != nil {
			if errors.Is(err, payment.ErrInvalidDateRange) {
				continue
			}
			log.Printf("No se pudieron generar las cuotas del afiliado %d: %v", affiliates[i].ID, err)
			continue
		}
		total += created
	}

	if total > 0 {
		log.Printf("Generación de cuotas: %d cuotas nuevas para %d afiliados activos", total, len(affiliates))
	}
	return nil
}
