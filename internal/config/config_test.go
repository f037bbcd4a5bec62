package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
paystack:
  currency: GHS
  timeout: 5s
email:
  from_name: testshop
store:
  public_url: https://shop.example.com
auth:
  login_per_min: 25
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Paystack.Currency != "GHS" {
		t.Fatalf("unexpected paystack currency: %s", cfg.Paystack.Currency)
	}
	if cfg.Paystack.Timeout != 5*time.Second {
		t.Fatalf("unexpected paystack timeout: %s", cfg.Paystack.Timeout)
	}
	if cfg.Email.FromName != "testshop" {
		t.Fatalf("unexpected email from name: %s", cfg.Email.FromName)
	}
	if cfg.Store.PublicURL != "https://shop.example.com" {
		t.Fatalf("unexpected public url: %s", cfg.Store.PublicURL)
	}
	if cfg.Auth.LoginPerMin != 25 {
		t.Fatalf("unexpected login_per_min override: %d", cfg.Auth.LoginPerMin)
	}

	if cfg.Paystack.BaseURL != "https://api.paystack.co" {
		t.Fatalf("paystack base url default should stay: %s", cfg.Paystack.BaseURL)
	}
	if cfg.Email.SMTPHost != "smtp.resend.com" {
		t.Fatalf("smtp host default should stay: %s", cfg.Email.SMTPHost)
	}
	if cfg.Auth.LoginPer10s != 4 {
		t.Fatalf("login_per_10s default should stay 4, got %d", cfg.Auth.LoginPer10s)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://env:env@db:5432/store")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")
	t.Setenv("PAYSTACK_WEBHOOK_SECRET", "whsec_abc")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("PUBLIC_SERVER_URL", "https://zikistorez.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://env:env@db:5432/store" {
		t.Fatalf("unexpected postgres dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Paystack.SecretKey != "sk_test_abc" {
		t.Fatalf("unexpected paystack secret: %s", cfg.Paystack.SecretKey)
	}
	if cfg.Paystack.WebhookSecret != "whsec_abc" {
		t.Fatalf("unexpected webhook secret: %s", cfg.Paystack.WebhookSecret)
	}
	if cfg.Email.SMTPPass != "re_123" {
		t.Fatalf("RESEND_API_KEY should map onto smtp pass, got %q", cfg.Email.SMTPPass)
	}
	if cfg.Store.PublicURL != "https://zikistorez.com" {
		t.Fatalf("unexpected public url: %s", cfg.Store.PublicURL)
	}
}

func TestLoadRejectsMissingJWTSecret(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when auth.jwt_secret is empty")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"DATABASE_URL",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"AUTH_LOGIN_PER_MIN",
		"AUTH_LOGIN_PER_10S",
		"PAYSTACK_BASE_URL",
		"PAYSTACK_SECRET_KEY",
		"PAYSTACK_WEBHOOK_SECRET",
		"PAYSTACK_CURRENCY",
		"PAYSTACK_TIMEOUT",
		"SMTP_HOST",
		"SMTP_PORT",
		"SMTP_USER",
		"SMTP_PASS",
		"RESEND_API_KEY",
		"EMAIL_FROM_NAME",
		"EMAIL_FROM_ADDRESS",
		"PUBLIC_SERVER_URL",
	} {
		t.Setenv(key, "")
	}
}
