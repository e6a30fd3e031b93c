package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Env     string
	Port    string
	BaseURL string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Sessions and signed tokens
	SecretKey            string
	SessionTTL           time.Duration
	PasswordResetTimeout time.Duration

	// Organization and reports
	ChurchName       string
	CurrencySymbol   string
	OfferingCategory string
	SeedOnStart      bool

	// Mail
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	DefaultFromEmail string
}

var appConfig *Config

// devSecretKey signs sessions outside production when SECRET_KEY is unset.
const devSecretKey = "fallback-secret-key-for-dev-only"

// ErrMissingSecretKey is returned by Load in production when SECRET_KEY is
// unset.
var ErrMissingSecretKey = errors.New("SECRET_KEY must be set when ENV=production")

var defaults = map[string]any{
	"ENV":                    "development",
	"PORT":                   "8080",
	"BASE_URL":               "http://localhost:8080",
	"DB_DRIVER":              "postgres",
	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "faithledger",
	"DB_PASSWORD":            "faithledger",
	"DB_NAME":                "faithledger",
	"DB_SSLMODE":             "disable",
	"SQLITE_PATH":            "faithledger.db",
	"SECRET_KEY":             devSecretKey,
	"SESSION_TTL":            "24h",
	"PASSWORD_RESET_TIMEOUT": "30m",
	"CHURCH_NAME":            "FaithLedger Church",
	"CURRENCY_SYMBOL":        "₹",
	"OFFERING_CATEGORY":      "Sunday Offerings",
	"SEED_ON_START":          false,
	"SMTP_HOST":              "",
	"SMTP_PORT":              587,
	"SMTP_USERNAME":          "",
	"SMTP_PASSWORD":          "",
	"DEFAULT_FROM_EMAIL":     "noreply@faithledger.local",
}

// Load loads configuration from the environment, after merging a .env file
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	config := &Config{
		Env:     v.GetString("ENV"),
		Port:    v.GetString("PORT"),
		BaseURL: strings.TrimRight(v.GetString("BASE_URL"), "/"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		SecretKey: v.GetString("SECRET_KEY"),

		ChurchName:       v.GetString("CHURCH_NAME"),
		CurrencySymbol:   v.GetString("CURRENCY_SYMBOL"),
		OfferingCategory: v.GetString("OFFERING_CATEGORY"),
		SeedOnStart:      v.GetBool("SEED_ON_START"),

		SMTPHost:         v.GetString("SMTP_HOST"),
		SMTPPort:         v.GetInt("SMTP_PORT"),
		SMTPUsername:     v.GetString("SMTP_USERNAME"),
		SMTPPassword:     v.GetString("SMTP_PASSWORD"),
		DefaultFromEmail: v.GetString("DEFAULT_FROM_EMAIL"),
	}

	if config.Env == "production" && (config.SecretKey == "" || config.SecretKey == devSecretKey) {
		return nil, ErrMissingSecretKey
	}

	config.SessionTTL = parseDuration(v, "SESSION_TTL", 24*time.Hour)
	config.PasswordResetTimeout = parseDuration(v, "PASSWORD_RESET_TIMEOUT", 30*time.Minute)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// parseDuration reads key as a duration, falling back when the value does not parse.
func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}
