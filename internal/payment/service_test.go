package payment

import (
	"testing"
	"time"

	"asura-backend/internal/database"
	"asura-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedAffiliate(t *testing.T, db *gorm.DB, joinDate time.Time) *models.Affiliate {
	t.Helper()
	aff := &models.Affiliate{
		Name:       "Juana Pérez",
		DocumentID: "30123456",
		JoinDate:   joinDate,
		Active:     true,
	}
	require.NoError(t, db.Create(aff).Error)
	return aff
}

var testActor = Actor{UserID: 1, UserName: "admin"}

func TestEnsureSchedule_EsIdempotente(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 15))

	through := date(2024, time.June, 20)

	created, err := svc.EnsureSchedule(aff.ID, fee, 1, through)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	// Segunda pasada: no duplica nada
	created, err = svc.EnsureSchedule(aff.ID, fee, 1, through)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var count int64
	db.Model(&models.Payment{}).Where("affiliate_id = ?", aff.ID).Count(&count)
	assert.EqualValues(t, 4, count)
}

func TestEnsureSchedule_ExtiendeSinTocarLoExistente(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 15))

	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.April, 1))
	require.NoError(t, err)

	// Marcamos marzo como pagada y extendemos dos meses más
	var march models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).Order("due_date asc").First(&march).Error)
	_, err = svc.MarkPaid(march.ID, MarkPaidOptions{}, testActor)
	require.NoError(t, err)

	created, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// La cuota pagada sigue pagada
	require.NoError(t, db.First(&march, march.ID).Error)
	assert.Equal(t, models.PaymentPaid, march.Status)
}

func TestEnsureSchedule_AfiliadoInexistente(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	_, err := svc.EnsureSchedule(999, fee, 1, date(2024, time.June, 1))
	assert.ErrorIs(t, err, ErrAffiliateNotFound)
}

func TestMarkPaid_GuardaMetadatos(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 1))

	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&p).Error)

	paid, err := svc.MarkPaid(p.ID, MarkPaidOptions{
		TransactionID: "MP-12345",
		Notes:         "Comprobante subido: recibo.jpg",
		Verifier:      &testActor,
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, paid.Status)
	require.NotNil(t, paid.PaymentDate)
	require.NotNil(t, paid.TransactionID)
	assert.Equal(t, "MP-12345", *paid.TransactionID)
	require.NotNil(t, paid.VerifiedBy)
	assert.Equal(t, testActor.UserID, *paid.VerifiedBy)
	assert.NotNil(t, paid.VerificationDate)
	assert.Equal(t, p.Version+1, paid.Version)
}

func TestMarkPaid_DobleConfirmacionDevuelveError(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 1))

	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&p).Error)

	_, err = svc.MarkPaid(p.ID, MarkPaidOptions{}, testActor)
	require.NoError(t, err)

	_, err = svc.MarkPaid(p.ID, MarkPaidOptions{}, testActor)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestMarkPending_LimpiaTodosLosMetadatos(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 1))

	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&p).Error)

	_, err = svc.MarkPaid(p.ID, MarkPaidOptions{
		TransactionID: "MP-99",
		Notes:         "pago en ventanilla",
		ProofURL:      "http://localhost:8080/files/comprobantes/x.jpg",
		Verifier:      &testActor,
	}, testActor)
	require.NoError(t, err)

	reverted, err := svc.MarkPending(p.ID, testActor)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, reverted.Status)
	assert.Nil(t, reverted.PaymentDate)
	assert.Nil(t, reverted.TransactionID)
	assert.Nil(t, reverted.VerificationNotes)
	assert.Nil(t, reverted.VerifiedBy)
	assert.Nil(t, reverted.VerificationDate)
	assert.Nil(t, reverted.ProofURL)
}

func TestMarkPending_SobreCuotaPendiente(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 1))

	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&p).Error)

	_, err = svc.MarkPending(p.ID, testActor)
	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestMarkPaid_EscrituraConVersionViejaFalla(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 1))

	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&p).Error)

	// Otra sesión pagó y revirtió en el medio: la versión avanzó dos veces
	_, err = svc.MarkPaid(p.ID, MarkPaidOptions{}, testActor)
	require.NoError(t, err)
	_, err = svc.MarkPending(p.ID, testActor)
	require.NoError(t, err)

	// Simulamos la escritura vieja: condición sobre la versión original
	res := db.Model(&models.Payment{}).
		Where("id = ? AND status = ? AND version = ?", p.ID, models.PaymentPending, p.Version).
		Update("status", models.PaymentPaid)
	require.NoError(t, res.Error)
	assert.EqualValues(t, 0, res.RowsAffected, "la actualización condicional no debe afectar filas")
}

func TestCreateAdHoc_RechazaPeriodoDuplicado(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	aff := seedAffiliate(t, db, date(2024, time.March, 1))

	_, err := svc.CreateAdHoc(aff.ID, date(2024, time.March, 10), fee)
	require.NoError(t, err)

	_, err = svc.CreateAdHoc(aff.ID, date(2024, time.March, 25), fee)
	assert.ErrorIs(t, err, ErrDuplicatePeriod)
}
