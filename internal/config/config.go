package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the API server reads from the environment.
type Config struct {
	Port           string
	DBDriver       string // "mysql" in production, "sqlite" for local runs and tests
	DBDSN          string
	RedisURL       string // empty means carts are kept in process memory
	CartTTL        time.Duration
	JWTSecret      []byte
	JWTTTL         time.Duration
	CORSOrigins    []string
	BaseURL        string
	UploadDir      string
	PayPalClientID string
	OTelStdout     bool
}

// Load reads the environment, applying defaults for anything unset.
// Call godotenv.Load first if a .env file should be honoured.
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "mysql"),
		DBDSN:          getEnv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/shopkart?parseTime=true"),
		RedisURL:       getEnv("REDIS_URL", ""),
		CartTTL:        getDuration("CART_TTL", 30*24*time.Hour),
		JWTTTL:         getDuration("JWT_TTL", 30*24*time.Hour),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		BaseURL:        getEnv("BASE_URL", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		PayPalClientID: getEnv("PAYPAL_CLIENT_ID", "sb"),
		OTelStdout:     getEnv("OTEL_STDOUT", "false") == "true",
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("WARNING: JWT_SECRET is not set. Using an insecure development secret.")
		secret = "shopkart-dev-secret-change-me"
	}
	cfg.JWTSecret = []byte(secret)

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		log.Printf("WARNING: invalid PORT %q, falling back to 8080", cfg.Port)
		cfg.Port = "8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s %q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
