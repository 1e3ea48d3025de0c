package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	for _, k := range []string{"DB_PATH", "GRPC_ADDRESS", "HTTP_ADDRESS", "JWT_SECRET", "WORKDAY_START", "DECIMAL_SEPARATOR", "SHOP_TIMEZONE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("ENV_FILE", "")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address == "" || cfg.HTTP.Address == "" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Shop.WorkdayStart != 8*time.Hour {
		t.Fatalf("workday start: got %s want 8h", cfg.Shop.WorkdayStart)
	}
	if cfg.Shop.DecimalSeparator != "," {
		t.Fatalf("decimal separator: got %q", cfg.Shop.DecimalSeparator)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
}

func TestLoad_ShopSettings(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("SHOP_TIMEZONE", "UTC")
	t.Setenv("WORKDAY_START", "09:30")
	t.Setenv("DECIMAL_SEPARATOR", ".")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shop.Location.String() != "UTC" {
		t.Fatalf("location: got %s", cfg.Shop.Location)
	}
	if cfg.Shop.WorkdayStart != 9*time.Hour+30*time.Minute {
		t.Fatalf("workday start: got %s", cfg.Shop.WorkdayStart)
	}
	if cfg.Shop.DecimalSeparator != "." {
		t.Fatalf("separator: got %q", cfg.Shop.DecimalSeparator)
	}
}

func TestLoad_InvalidShopSettings(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "x")

	t.Setenv("SHOP_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SHOP_TIMEZONE") {
		t.Fatalf("expected SHOP_TIMEZONE error, got %v", err)
	}

	t.Setenv("SHOP_TIMEZONE", "UTC")
	t.Setenv("WORKDAY_START", "8 am")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "WORKDAY_START") {
		t.Fatalf("expected WORKDAY_START error, got %v", err)
	}
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("JWT_SECRET=from-file\nLOGIN_URL=/accounts/login\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LOGIN_URL", "")
	os.Unsetenv("LOGIN_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("secret: got %q want from-env", cfg.Auth.JWTSecret)
	}
	if cfg.HTTP.LoginURL != "/accounts/login" {
		t.Fatalf("login url: got %q", cfg.HTTP.LoginURL)
	}
}

func TestString_MasksSecret(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "hunter2"}, Shop: ShopConfig{Location: time.UTC}}
	if strings.Contains(cfg.String(), "hunter2") {
		t.Fatalf("secret leaked: %s", cfg)
	}
}
