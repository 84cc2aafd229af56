package main

import (
	"log"
	"strings"

	"asura-backend/internal/activity"
	"asura-backend/internal/affiliate"
	"asura-backend/internal/arrears"
	"asura-backend/internal/audit"
	"asura-backend/internal/auth"
	"asura-backend/internal/committee"
	"asura-backend/internal/config"
	"asura-backend/internal/database"
	"asura-backend/internal/dues"
	"asura-backend/internal/export"
	"asura-backend/internal/mercadopago"
	"asura-backend/internal/models"
	"asura-backend/internal/payment"
	"asura-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg)

	store := storage.NewLocal(cfg.StoragePath, cfg.PublicBaseURL)

	paySvc := payment.NewService(db)
	arrearsSvc := arrears.NewService(db)
	mpClient := mercadopago.NewClient(cfg.MPAccessToken)

	runner := dues.NewRunner(db, paySvc, cfg)
	if err := runner.Start(); err != nil {
		log.Fatalf("[FATAL] No se pudo programar la generación mensual de cuotas: %v", err)
	}
	defer runner.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // comprobantes y fotos
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Error inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Archivos subidos (fotos, comprobantes, imágenes de actividades)
	app.Static("/files", cfg.StoragePath)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db, cfg))
	api.Post("/auth/signup", auth.SignUpHandler(db, cfg))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Público: cartelera de actividades y comisión directiva
	api.Get("/activities", activity.ListActivitiesHandler(db))
	api.Get("/activities/:id", activity.GetActivityHandler(db))
	api.Get("/committee", committee.ListCommitteeHandler(db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Cuotas del afiliado: el propio afiliado también puede consultar
	protected.Get("/affiliates/:id/payments", payment.ListPaymentsHandler(db))
	protected.Get("/affiliates/:id/arrears", arrears.SummarizeAffiliateHandler(arrearsSvc))
	protected.Get("/affiliates/:id/statement.pdf", export.StatementPDFHandler(db, cfg))
	protected.Get("/affiliates/:id/credential.pdf", export.CredentialPDFHandler(db, cfg))
	protected.Get("/payments/:id/receipt.pdf", export.ReceiptPDFHandler(db, cfg))
	protected.Post("/payments/:id/proof", payment.AttachProofHandler(db, paySvc, store))
	protected.Post("/payments/:id/checkout", mercadopago.CreateCheckoutHandler(db, mpClient, cfg))

	// Admin
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Padrón de afiliados
	adminRoutes.Get("/affiliates", affiliate.ListAffiliatesHandler(db))
	adminRoutes.Get("/affiliates/:id", affiliate.GetAffiliateHandler(db))
	adminRoutes.Post("/affiliates", affiliate.CreateAffiliateHandler(db, paySvc, cfg))
	adminRoutes.Put("/affiliates/:id", affiliate.UpdateAffiliateHandler(db))
	adminRoutes.Put("/affiliates/:id/active", affiliate.ToggleActiveHandler(db))
	adminRoutes.Delete("/affiliates/:id", affiliate.DeleteAffiliateHandler(db, store))
	adminRoutes.Post("/affiliates/:id/photo", affiliate.UploadPhotoHandler(db, store))

	// Libro de cuotas
	adminRoutes.Post("/affiliates/:id/payments/generate", payment.GenerateScheduleHandler(paySvc, cfg))
	adminRoutes.Post("/payments", payment.CreatePaymentHandler(paySvc))
	adminRoutes.Put("/payments/:id/paid", payment.MarkPaidHandler(db, paySvc))
	adminRoutes.Put("/payments/:id/pending", payment.MarkPendingHandler(db, paySvc))

	// Estado de deuda y reportes
	adminRoutes.Get("/arrears", arrears.SummarizeOrganizationHandler(arrearsSvc))
	adminRoutes.Get("/arrears/report.pdf", export.ControlPDFHandler(arrearsSvc))
	adminRoutes.Get("/arrears/report.xlsx", export.ControlXLSXHandler(arrearsSvc))

	// Actividades y comisión directiva
	adminRoutes.Post("/activities", activity.CreateActivityHandler(db))
	adminRoutes.Put("/activities/:id", activity.UpdateActivityHandler(db))
	adminRoutes.Delete("/activities/:id", activity.DeleteActivityHandler(db, store))
	adminRoutes.Post("/activities/:id/image", activity.UploadImageHandler(db, store))
	adminRoutes.Post("/committee", committee.CreateCommitteeMemberHandler(db))
	adminRoutes.Put("/committee/:id", committee.UpdateCommitteeMemberHandler(db))
	adminRoutes.Delete("/committee/:id", committee.DeleteCommitteeMemberHandler(db))

	// Auditoría
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Printf("Servidor escuchando en el puerto %s", cfg.HTTPPort)
	log.Fatal(app.Listen(":" + cfg.HTTPPort))
}
