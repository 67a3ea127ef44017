package config

import (
	"os"
	"testing"
)

func clearRoundupEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "AWS_SQS_URL_TO_SIGNER", "AWS_SQS_URL_FROM_SIGNER",
		"PLAID_CLIENTID", "PLAID_SECRET", "SIGNER_URL", "SIGNER_PUBLIC_KEY",
		"SERVER_PRIVATE_KEY", "FIRESTORE_ENABLED", "FIREBASE_PROJECT_ID",
	} {
		os.Unsetenv(key)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	clearRoundupEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for missing required configuration")
	}
}

func TestValidate_AllRequiredSet(t *testing.T) {
	clearRoundupEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/roundup")
	t.Setenv("AWS_SQS_URL_TO_SIGNER", "https://sqs/to-signer")
	t.Setenv("AWS_SQS_URL_FROM_SIGNER", "https://sqs/from-signer")
	t.Setenv("PLAID_CLIENTID", "client-id")
	t.Setenv("PLAID_SECRET", "secret")
	t.Setenv("SIGNER_URL", "https://signer.example.com")
	t.Setenv("SIGNER_PUBLIC_KEY", "abcd")
	t.Setenv("SERVER_PRIVATE_KEY", "deadbeef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_FirestoreRequiresProjectID(t *testing.T) {
	clearRoundupEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/roundup")
	t.Setenv("AWS_SQS_URL_TO_SIGNER", "https://sqs/to-signer")
	t.Setenv("AWS_SQS_URL_FROM_SIGNER", "https://sqs/from-signer")
	t.Setenv("PLAID_CLIENTID", "client-id")
	t.Setenv("PLAID_SECRET", "secret")
	t.Setenv("SIGNER_URL", "https://signer.example.com")
	t.Setenv("SIGNER_PUBLIC_KEY", "abcd")
	t.Setenv("SERVER_PRIVATE_KEY", "deadbeef")
	t.Setenv("FIRESTORE_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error when Firestore is enabled without a project id")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearRoundupEnv(t)
	os.Unsetenv("SCHEDULE_CRON")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScheduleCron != "0 6 * * *" {
		t.Errorf("ScheduleCron default = %s, want 0 6 * * *", cfg.ScheduleCron)
	}
	if cfg.ServerKID != "server" {
		t.Errorf("ServerKID default = %s, want server", cfg.ServerKID)
	}
}
