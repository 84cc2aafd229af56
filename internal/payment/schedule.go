package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDateRange = errors.New("la fecha de alta es posterior a la fecha final")
	ErrInvalidAmount    = errors.New("el monto de la cuota debe ser mayor a cero")
	ErrInvalidDueDay    = errors.New("el día de vencimiento debe estar entre 1 y 28")
)

// ScheduleEntry - Una cuota proyectada: período (fecha de vencimiento
// normalizada) y monto.
type ScheduleEntry struct {
	DueDate time.Time
	Amount  decimal.Decimal
}

// GenerateSchedule proyecta las cuotas mensuales de un afiliado: una por cada
// mes calendario desde el mes de alta hasta el mes de `through`, ambos
// inclusive, con vencimiento el día `dueDay` de cada mes. El día se limita a
// 1-28 para no pelear con los meses cortos.
//
// El resultado es determinístico y viene ordenado en forma ascendente.
func GenerateSchedule(enrollment time.Time, monthly decimal.Decimal, dueDay int, through time.Time) ([]ScheduleEntry, error) {
	if dueDay < 1 || dueDay > 28 {
		return nil, ErrInvalidDueDay
	}
	if !monthly.IsPositive() {
		return nil, ErrInvalidAmount
	}

	start := monthStart(enrollment)
	end := monthStart(through)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	var entries []ScheduleEntry
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		entries = append(entries, ScheduleEntry{
			DueDate: time.Date(cur.Year(), cur.Month(), dueDay, 0, 0, 0, 0, time.UTC),
			Amount:  monthly,
		})
	}

	return entries, nil
}

// monthStart normaliza al día 1 del mes en UTC. Avanzar de a un mes desde el
// día 1 nunca produce fechas inválidas (ej: 31 de enero + 1 mes).
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween cuenta los meses calendario entre dos fechas, inclusive.
// Es la cantidad de cuotas que genera GenerateSchedule para ese rango.
func MonthsBetween(from, to time.Time) int {
	a := monthStart(from)
	b := monthStart(to)
	if a.After(b) {
		return 0
	}
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()) + 1
}
