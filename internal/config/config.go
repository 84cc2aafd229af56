package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort      string
	DatabaseDSN   string
	JWTSecret     string
	CORSOrigins   string
	StoragePath   string // Carpeta donde se guardan fotos y comprobantes
	PublicBaseURL string // URL base para armar links públicos de archivos
	MonthlyFee    decimal.Decimal
	DueDay        int    // Día de vencimiento de cada cuota (1-28)
	PaymentAlias  string // Alias de Mercado Pago que se muestra en los resúmenes
	MPAccessToken string // Access token de Mercado Pago (vacío = links deshabilitados)
}

func Load() *Config {
	// .env es opcional, en producción las variables vienen del entorno
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=asura port=5432 sslmode=disable"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		StoragePath:   getEnv("STORAGE_PATH", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		MonthlyFee:    getEnvDecimal("MONTHLY_FEE", "7000"),
		DueDay:        getEnvInt("DUE_DAY", 1),
		PaymentAlias:  getEnv("PAYMENT_ALIAS", "asurasantiago.mp"),
		MPAccessToken: getEnv("MP_ACCESS_TOKEN", ""),
	}

	// Controles de seguridad para producción
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] La variable de entorno JWT_SECRET no está definida. Es obligatoria.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET debe tener al menos 32 caracteres. Riesgo de seguridad.")
	}
	if cfg.DueDay < 1 || cfg.DueDay > 28 {
		log.Fatalf("[FATAL] DUE_DAY debe estar entre 1 y 28, se recibió %d", cfg.DueDay)
	}
	if !cfg.MonthlyFee.IsPositive() {
		log.Fatalf("[FATAL] MONTHLY_FEE debe ser mayor a cero, se recibió %s", cfg.MonthlyFee)
	}
	if cfg.MPAccessToken == "" {
		log.Println("[WARN] MP_ACCESS_TOKEN no está definido, la generación de links de pago queda deshabilitada.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Fatalf("[FATAL] %s no es un número válido: %q", key, v)
	}
	return def
}

func getEnvDecimal(key, def string) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.Fatalf("[FATAL] %s no es un monto válido: %q", key, v)
	}
	return d
}
