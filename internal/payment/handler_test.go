package payment

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"asura-backend/internal/auth"
	"asura-backend/internal/models"
	"asura-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAffiliateDoc(t *testing.T, db *gorm.DB, name, doc string) *models.Affiliate {
	t.Helper()
	aff := &models.Affiliate{
		Name:       name,
		DocumentID: doc,
		JoinDate:   date(2024, time.March, 1),
		Active:     true,
	}
	require.NoError(t, db.Create(aff).Error)
	return aff
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, affiliateID *uint) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Usuario " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		AffiliateID:  affiliateID,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// newTestApp monta los handlers con los Locals que deja el middleware JWT.
func newTestApp(db *gorm.DB, svc *Service, store *storage.Local, user *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		c.Locals(auth.CtxAffiliateIDKey, user.AffiliateID)
		return c.Next()
	})
	app.Get("/api/affiliates/:id/payments", ListPaymentsHandler(db))
	app.Post("/api/payments/:id/proof", AttachProofHandler(db, svc, store))
	return app
}

func newProofRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("transaction_id", "MP-555"))
	fw, err := w.CreateFormFile("file", "recibo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("imagen"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func firstPayment(t *testing.T, db *gorm.DB, affiliateID uint) *models.Payment {
	t.Helper()
	var p models.Payment
	require.NoError(t, db.Where("affiliate_id = ?", affiliateID).Order("due_date asc").First(&p).Error)
	return &p
}

func TestAttachProof_CuotaDeOtroAfiliadoProhibida(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	store := storage.NewLocal(t.TempDir(), "http://localhost:8080")

	affA := seedAffiliateDoc(t, db, "Afiliada A", "30111111")
	affB := seedAffiliateDoc(t, db, "Afiliado B", "30222222")
	_, err := svc.EnsureSchedule(affA.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	userB := seedUser(t, db, "b@example.com", models.RoleAffiliate, &affB.ID)
	app := newTestApp(db, svc, store, userB)

	target := firstPayment(t, db, affA.ID)

	resp, err := app.Test(newProofRequest(t, fmt.Sprintf("/api/payments/%d/proof", target.ID)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// La cuota ajena quedó intacta
	require.NoError(t, db.First(target, target.ID).Error)
	assert.Equal(t, models.PaymentPending, target.Status)
	assert.Nil(t, target.ProofURL)
	assert.Equal(t, 0, target.Version)
}

func TestAttachProof_PropiaSinVerificador(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	store := storage.NewLocal(t.TempDir(), "http://localhost:8080")

	aff := seedAffiliateDoc(t, db, "Afiliada A", "30111111")
	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	user := seedUser(t, db, "a@example.com", models.RoleAffiliate, &aff.ID)
	app := newTestApp(db, svc, store, user)

	target := firstPayment(t, db, aff.ID)

	resp, err := app.Test(newProofRequest(t, fmt.Sprintf("/api/payments/%d/proof", target.ID)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(target, target.ID).Error)
	assert.Equal(t, models.PaymentPaid, target.Status)
	require.NotNil(t, target.TransactionID)
	assert.Equal(t, "MP-555", *target.TransactionID)
	assert.NotNil(t, target.ProofURL)
	require.NotNil(t, target.VerificationNotes)
	assert.Equal(t, "Comprobante subido: recibo.jpg", *target.VerificationNotes)

	// El pago autoinformado queda sin verificar hasta que lo confirme un admin
	assert.Nil(t, target.VerifiedBy)
	assert.Nil(t, target.VerificationDate)
}

func TestAttachProof_AdminQuedaComoVerificador(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	store := storage.NewLocal(t.TempDir(), "http://localhost:8080")

	aff := seedAffiliateDoc(t, db, "Afiliada A", "30111111")
	_, err := svc.EnsureSchedule(aff.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin, nil)
	app := newTestApp(db, svc, store, admin)

	target := firstPayment(t, db, aff.ID)

	resp, err := app.Test(newProofRequest(t, fmt.Sprintf("/api/payments/%d/proof", target.ID)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(target, target.ID).Error)
	require.NotNil(t, target.VerifiedBy)
	assert.Equal(t, admin.ID, *target.VerifiedBy)
	assert.NotNil(t, target.VerificationDate)
}

func TestListPayments_SoloPropiasOAdmin(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	store := storage.NewLocal(t.TempDir(), "http://localhost:8080")

	affA := seedAffiliateDoc(t, db, "Afiliada A", "30111111")
	affB := seedAffiliateDoc(t, db, "Afiliado B", "30222222")
	_, err := svc.EnsureSchedule(affA.ID, fee, 1, date(2024, time.March, 31))
	require.NoError(t, err)

	t.Run("otro afiliado recibe 403", func(t *testing.T) {
		userB := seedUser(t, db, "b@example.com", models.RoleAffiliate, &affB.ID)
		app := newTestApp(db, svc, store, userB)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/affiliates/%d/payments", affA.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("el propio afiliado accede", func(t *testing.T) {
		userA := seedUser(t, db, "a@example.com", models.RoleAffiliate, &affA.ID)
		app := newTestApp(db, svc, store, userA)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/affiliates/%d/payments", affA.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("un admin accede a cualquiera", func(t *testing.T) {
		admin := seedUser(t, db, "admin@example.com", models.RoleAdmin, nil)
		app := newTestApp(db, svc, store, admin)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/affiliates/%d/payments", affA.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
