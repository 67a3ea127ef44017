// Package config loads and validates the round-up service's environment
// configuration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"os"
)

// Config holds all configuration for the round-up scheduler and consumer.
type Config struct {
	// Server configuration
	ListenAddr  string
	MetricsAddr string
	LogLevel    string

	// Database configuration
	DatabaseURL         string
	DatabaseMaxConns    int
	DatabaseMinConns    int
	DatabaseMaxIdleTime int // seconds
	DatabaseMaxLifetime int // seconds

	// Aggregator configuration
	PlaidEnv      string
	PlaidClientID string
	PlaidSecret   string

	// External signer configuration
	SignerURL       string
	SignerPublicKey string

	// Server signing key
	ServerPrivateKey string // hex-encoded ed25519 private key
	ServerKID        string

	// Queue configuration
	AWSRegion        string
	SQSURLToSigner   string
	SQSURLFromSigner string

	// Scheduler configuration
	ScheduleCron string // cron expression for the daily dispatch trigger

	// Bank-type registry
	BankRegistryPath string

	// Firestore real-time sync mirror (optional, no-op when disabled)
	FirestoreEnabled        bool
	FirebaseProjectID       string
	FirebaseCredentialsFile string
}

// Load reads configuration from environment variables, applying the
// documented defaults for every ambient field. Of the core's variables,
// PLAID_ENV defaults to "sandbox" and SERVER_KID to "server"; the rest
// (AWS_SQS_URL_TO_SIGNER, AWS_SQS_URL_FROM_SIGNER, PLAID_CLIENTID,
// PLAID_SECRET, SIGNER_URL, SIGNER_PUBLIC_KEY, SERVER_PRIVATE_KEY) and
// DATABASE_URL have no defaults; call Validate() after Load() to confirm
// they are present.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:    getEnvInt("DATABASE_MAX_CONNS", 25),
		DatabaseMinConns:    getEnvInt("DATABASE_MIN_CONNS", 5),
		DatabaseMaxIdleTime: getEnvInt("DATABASE_MAX_IDLE_TIME", 300),
		DatabaseMaxLifetime: getEnvInt("DATABASE_MAX_LIFETIME", 3600),

		PlaidEnv:      getEnv("PLAID_ENV", "sandbox"),
		PlaidClientID: getEnv("PLAID_CLIENTID", ""),
		PlaidSecret:   getEnv("PLAID_SECRET", ""),

		SignerURL:       getEnv("SIGNER_URL", ""),
		SignerPublicKey: getEnv("SIGNER_PUBLIC_KEY", ""),

		ServerPrivateKey: getEnv("SERVER_PRIVATE_KEY", ""),
		ServerKID:        getEnv("SERVER_KID", "server"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		SQSURLToSigner:   getEnv("AWS_SQS_URL_TO_SIGNER", ""),
		SQSURLFromSigner: getEnv("AWS_SQS_URL_FROM_SIGNER", ""),

		ScheduleCron: getEnv("SCHEDULE_CRON", "0 6 * * *"),

		BankRegistryPath: getEnv("BANK_REGISTRY_PATH", "./config/bank_registry.yaml"),

		FirestoreEnabled:        getEnvBool("FIRESTORE_ENABLED", false),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}

	return cfg, nil
}

// Validate checks that every variable without a default is set: DATABASE_URL
// and the core's queue, aggregator, signer and server-key variables.
// PLAID_ENV and SERVER_KID always carry a default and are not checked.
// FIREBASE_PROJECT_ID is required only when FIRESTORE_ENABLED is true.
func (c *Config) Validate() error {
	var problems []string

	required := map[string]string{
		"DATABASE_URL":            c.DatabaseURL,
		"AWS_SQS_URL_TO_SIGNER":   c.SQSURLToSigner,
		"AWS_SQS_URL_FROM_SIGNER": c.SQSURLFromSigner,
		"PLAID_CLIENTID":          c.PlaidClientID,
		"PLAID_SECRET":            c.PlaidSecret,
		"SIGNER_URL":              c.SignerURL,
		"SIGNER_PUBLIC_KEY":       c.SignerPublicKey,
		"SERVER_PRIVATE_KEY":      c.ServerPrivateKey,
	}
	for name, value := range required {
		if value == "" {
			problems = append(problems, fmt.Sprintf("%s is required but not set", name))
		}
	}

	if c.FirestoreEnabled && c.FirebaseProjectID == "" {
		problems = append(problems, "FIREBASE_PROJECT_ID is required when FIRESTORE_ENABLED=true")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// DatabaseConnMaxLifetime is DatabaseMaxLifetime as a time.Duration, for
// callers that configure *sql.DB directly.
func (c *Config) DatabaseConnMaxLifetime() time.Duration {
	return time.Duration(c.DatabaseMaxLifetime) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
