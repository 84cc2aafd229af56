package payment

import (
	"time"

	"asura-backend/internal/models"
)

// Overdue - "Vencida" no es un estado guardado sino una propiedad derivada:
// cuota pendiente cuyo vencimiento ya pasó. Todas las vistas y reportes usan
// este único predicado en lugar de repetir la comparación.
func Overdue(status models.PaymentStatus, dueDate, today time.Time) bool {
	if status != models.PaymentPending {
		return false
	}
	d := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(t)
}
