package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// MailConfig holds outbound SMTP relay settings. The account password is
// read from PasswordFile at startup, never from the environment.
type MailConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Sender       string
	Password     string
	PasswordFile string
}

type Config struct {
	Port          string
	Environment   string
	DatabasePath  string
	SnapshotPath  string
	ArtifactDir   string
	Currencies    []string
	FetchInterval time.Duration
	Thresholds    map[string]decimal.Decimal
	SessionSecret string
	SessionTTL    time.Duration
	Mail          MailConfig
}

// defaultThresholds are the built-in alert levels per currency,
// overridable via ALERT_THRESHOLD_<CODE>.
var defaultThresholds = map[string]string{
	"USD": "60000",
	"INR": "5000000",
	"EUR": "55000",
	"JPY": "9000000",
}

// LoadConfig loads environment variables and the SMTP password file.
// When mail is enabled, a missing password file is a fatal condition.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		DatabasePath:  getEnv("DATABASE_PATH", "data/coinwatch.db"),
		SnapshotPath:  getEnv("SNAPSHOT_PATH", "data/btc_latest.json"),
		ArtifactDir:   getEnv("ARTIFACT_DIR", "static"),
		Currencies:    splitCurrencies(getEnv("CURRENCIES", "usd,inr,eur,jpy")),
		FetchInterval: time.Duration(getEnvInt("FETCH_INTERVAL_MINUTES", 5)) * time.Minute,
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production"),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		Mail: MailConfig{
			Enabled:      getEnv("MAIL_ENABLED", "true") == "true",
			Host:         getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:         getEnvInt("SMTP_PORT", 587),
			Sender:       getEnv("SMTP_SENDER", ""),
			PasswordFile: getEnv("SMTP_PASSWORD_FILE", "data/app_password.txt"),
		},
	}

	if len(cfg.Currencies) == 0 {
		return nil, fmt.Errorf("CURRENCIES must name at least one currency code")
	}

	thresholds, err := loadThresholds()
	if err != nil {
		return nil, err
	}
	cfg.Thresholds = thresholds

	if cfg.Mail.Enabled {
		password, err := os.ReadFile(cfg.Mail.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read SMTP password file %s: %w", cfg.Mail.PasswordFile, err)
		}
		cfg.Mail.Password = strings.TrimSpace(string(password))
	}

	return cfg, nil
}

// loadThresholds builds the per-currency alert levels, starting from the
// defaults and applying any ALERT_THRESHOLD_<CUR> overrides.
func loadThresholds() (map[string]decimal.Decimal, error) {
	thresholds := make(map[string]decimal.Decimal, len(defaultThresholds))
	for currency, value := range defaultThresholds {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid default threshold for %s: %w", currency, err)
		}
		thresholds[currency] = d
	}

	for _, env := range os.Environ() {
		key, value, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(key, "ALERT_THRESHOLD_") {
			continue
		}
		currency := strings.ToUpper(strings.TrimPrefix(key, "ALERT_THRESHOLD_"))
		if currency == "" {
			continue
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold override %s=%s: %w", key, value, err)
		}
		thresholds[currency] = d
	}

	return thresholds, nil
}

func splitCurrencies(raw string) []string {
	var currencies []string
	for _, code := range strings.Split(raw, ",") {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			currencies = append(currencies, code)
		}
	}
	return currencies
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
